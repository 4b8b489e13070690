package database

import (
	"database/sql"
)

// InsertEmailRecipient creates a recipient and fills in its ID.
func (db *DB) InsertEmailRecipient(r *EmailRecipient) error {
	query := `
		INSERT INTO email_recipients (name, email, active, alert_types)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return db.QueryRow(query, r.Name, r.Email, r.Active, r.AlertTypes).Scan(&r.ID)
}

// UpdateEmailRecipient replaces a recipient's settings.
func (db *DB) UpdateEmailRecipient(r *EmailRecipient) error {
	query := `
		UPDATE email_recipients
		SET name = $1, email = $2, active = $3, alert_types = $4
		WHERE id = $5
	`
	_, err := db.Exec(query, r.Name, r.Email, r.Active, r.AlertTypes, r.ID)
	return err
}

// ListEmailRecipients returns all recipients ordered by name.
func (db *DB) ListEmailRecipients() ([]*EmailRecipient, error) {
	query := `
		SELECT id, name, email, active, alert_types
		FROM email_recipients
		ORDER BY name
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecipients(rows)
}

// ActiveRecipientsFor returns active recipients whose filter matches the
// given notification kind ("alerts" or "calibration").
func (db *DB) ActiveRecipientsFor(kind string) ([]*EmailRecipient, error) {
	query := `
		SELECT id, name, email, active, alert_types
		FROM email_recipients
		WHERE active = true AND (alert_types = $1 OR alert_types = $2)
		ORDER BY name
	`

	rows, err := db.Query(query, AlertTypesAll, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecipients(rows)
}

func scanRecipients(rows *sql.Rows) ([]*EmailRecipient, error) {
	var recipients []*EmailRecipient
	for rows.Next() {
		var r EmailRecipient
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Active, &r.AlertTypes); err != nil {
			return nil, err
		}
		recipients = append(recipients, &r)
	}
	return recipients, rows.Err()
}

// InsertEmailLog records one delivery attempt.
func (db *DB) InsertEmailLog(log *EmailLog) error {
	query := `
		INSERT INTO email_logs (recipient_email, subject, kind, status, error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return db.QueryRow(
		query,
		log.RecipientEmail,
		log.Subject,
		log.Kind,
		log.Status,
		log.Error,
		log.SentAt,
	).Scan(&log.ID)
}

// UpsertSiteMap stores or replaces the object reference for a site's map.
func (db *DB) UpsertSiteMap(m *SiteMap) error {
	query := `
		INSERT INTO site_maps (site_id, object_key, content_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (site_id) DO UPDATE
		SET object_key = EXCLUDED.object_key,
		    content_type = EXCLUDED.content_type,
		    uploaded_at = CURRENT_TIMESTAMP
	`
	_, err := db.Exec(query, m.SiteID, m.ObjectKey, m.ContentType)
	return err
}

// DeleteSiteMap removes the stored map reference for a site.
func (db *DB) DeleteSiteMap(siteID int64) error {
	_, err := db.Exec(`DELETE FROM site_maps WHERE site_id = $1`, siteID)
	return err
}

// GetSiteMap returns the stored map reference for a site, or nil when the
// site has no uploaded map.
func (db *DB) GetSiteMap(siteID int64) (*SiteMap, error) {
	query := `
		SELECT site_id, object_key, content_type, uploaded_at
		FROM site_maps
		WHERE site_id = $1
	`

	var m SiteMap
	err := db.QueryRow(query, siteID).Scan(&m.SiteID, &m.ObjectKey, &m.ContentType, &m.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}
