package database

import (
	"database/sql"
)

// InsertSite creates a new site and fills in its generated ID.
func (db *DB) InsertSite(site *Site) error {
	query := `
		INSERT INTO sites (name, slug, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return db.QueryRow(query, site.Name, site.Slug, site.Latitude, site.Longitude).
		Scan(&site.ID, &site.CreatedAt)
}

// GetSite retrieves a site by ID. Returns nil when not found.
func (db *DB) GetSite(id int64) (*Site, error) {
	query := `
		SELECT id, name, slug, latitude, longitude, created_at
		FROM sites
		WHERE id = $1
	`

	var site Site
	err := db.QueryRow(query, id).Scan(
		&site.ID,
		&site.Name,
		&site.Slug,
		&site.Latitude,
		&site.Longitude,
		&site.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &site, nil
}

// GetSiteBySlug retrieves a site by its slug. Returns nil when not found.
func (db *DB) GetSiteBySlug(slug string) (*Site, error) {
	query := `
		SELECT id, name, slug, latitude, longitude, created_at
		FROM sites
		WHERE slug = $1
	`

	var site Site
	err := db.QueryRow(query, slug).Scan(
		&site.ID,
		&site.Name,
		&site.Slug,
		&site.Latitude,
		&site.Longitude,
		&site.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &site, nil
}

// ListSites returns all sites ordered by name.
func (db *DB) ListSites() ([]*Site, error) {
	query := `
		SELECT id, name, slug, latitude, longitude, created_at
		FROM sites
		ORDER BY name
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []*Site
	for rows.Next() {
		var site Site
		if err := rows.Scan(
			&site.ID,
			&site.Name,
			&site.Slug,
			&site.Latitude,
			&site.Longitude,
			&site.CreatedAt,
		); err != nil {
			return nil, err
		}
		sites = append(sites, &site)
	}

	return sites, rows.Err()
}

// ListParameters returns all configured parameters ordered by key.
func (db *DB) ListParameters() ([]*Parameter, error) {
	query := `
		SELECT key, display_name, unit, decimals, default_min, default_max,
		       watch_min, watch_max, alarm_min, alarm_max, updated_at
		FROM parameters
		ORDER BY key
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var params []*Parameter
	for rows.Next() {
		var p Parameter
		if err := rows.Scan(
			&p.Key,
			&p.DisplayName,
			&p.Unit,
			&p.Decimals,
			&p.DefaultMin,
			&p.DefaultMax,
			&p.WatchMin,
			&p.WatchMax,
			&p.AlarmMin,
			&p.AlarmMax,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		params = append(params, &p)
	}

	return params, rows.Err()
}

// GetParameter retrieves one parameter by key. Returns nil when not found.
func (db *DB) GetParameter(key string) (*Parameter, error) {
	query := `
		SELECT key, display_name, unit, decimals, default_min, default_max,
		       watch_min, watch_max, alarm_min, alarm_max, updated_at
		FROM parameters
		WHERE key = $1
	`

	var p Parameter
	err := db.QueryRow(query, key).Scan(
		&p.Key,
		&p.DisplayName,
		&p.Unit,
		&p.Decimals,
		&p.DefaultMin,
		&p.DefaultMax,
		&p.WatchMin,
		&p.WatchMax,
		&p.AlarmMin,
		&p.AlarmMax,
		&p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// UpdateParameterBands updates the watch/alarm bands of a parameter.
func (db *DB) UpdateParameterBands(key string, watchMin, watchMax, alarmMin, alarmMax *float64) error {
	query := `
		UPDATE parameters
		SET watch_min = $1, watch_max = $2, alarm_min = $3, alarm_max = $4,
		    updated_at = CURRENT_TIMESTAMP
		WHERE key = $5
	`
	_, err := db.Exec(query, watchMin, watchMax, alarmMin, alarmMax, key)
	return err
}
