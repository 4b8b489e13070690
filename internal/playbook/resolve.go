package playbook

import (
	"encoding/json"
	"fmt"

	"github.com/plantops/plantwatch/internal/database"
)

// OverrideStore is the slice of storage behaviour playbook resolution
// needs; *database.DB satisfies it.
type OverrideStore interface {
	GetSitePlaybook(siteID int64, parameterKey, direction string) (*database.SitePlaybook, error)
}

// Effective resolves the playbook an operator should see for a breach: the
// site's stored override when one exists, else the built-in default, else
// nil when neither is defined.
func Effective(store OverrideStore, siteID int64, parameterKey, direction string) (*Playbook, error) {
	override, err := store.GetSitePlaybook(siteID, parameterKey, direction)
	if err != nil {
		return nil, fmt.Errorf("failed to load site playbook: %w", err)
	}

	if override != nil {
		pb, err := FromStored(override)
		if err != nil {
			return nil, err
		}
		return pb, nil
	}

	if pb, ok := Default(parameterKey, direction); ok {
		return &pb, nil
	}

	return nil, nil
}

// FromStored decodes a stored site override into a Playbook, preserving
// step and link ordering.
func FromStored(stored *database.SitePlaybook) (*Playbook, error) {
	var steps []string
	if err := json.Unmarshal([]byte(stored.StepsJSON), &steps); err != nil {
		return nil, fmt.Errorf("failed to decode playbook steps: %w", err)
	}

	var links []ReferenceLink
	if stored.ReferencesJSON != "" {
		if err := json.Unmarshal([]byte(stored.ReferencesJSON), &links); err != nil {
			return nil, fmt.Errorf("failed to decode reference links: %w", err)
		}
	}

	return &Playbook{
		ParameterKey:   stored.ParameterKey,
		Direction:      stored.Direction,
		Steps:          steps,
		ReferenceLinks: links,
		SiteOverride:   true,
	}, nil
}

// ToStored encodes a Playbook for persistence as a site override.
func ToStored(siteID int64, pb *Playbook) (*database.SitePlaybook, error) {
	stepsJSON, err := json.Marshal(pb.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode playbook steps: %w", err)
	}

	links := pb.ReferenceLinks
	if links == nil {
		links = []ReferenceLink{}
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reference links: %w", err)
	}

	return &database.SitePlaybook{
		SiteID:         siteID,
		ParameterKey:   pb.ParameterKey,
		Direction:      pb.Direction,
		StepsJSON:      string(stepsJSON),
		ReferencesJSON: string(linksJSON),
	}, nil
}
