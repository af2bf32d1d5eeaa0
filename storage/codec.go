package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"excelmanager/models"
)

// Encode serializes a settings record with stable field ordering and the
// current schema version stamped. The input is not modified.
func Encode(settings *models.Settings) ([]byte, error) {
	out := settings.Clone()
	out.SchemaVersion = models.SettingsSchemaVersion

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

// legacyFields carries version 1 field names plus a presence marker for
// schema_version. Version 1 documents were written before versioning and
// used team_url / document_folder.
type legacyFields struct {
	TeamURL        *string `json:"team_url"`
	DocumentFolder *string `json:"document_folder"`
	SchemaVersion  *int    `json:"schema_version"`
}

// Decode parses a settings document. Unknown fields are ignored and
// missing fields keep their defaults, so documents written by older or
// newer versions of the app both load. Malformed input reports
// ErrCorrupt; callers default rather than propagate.
func Decode(data []byte) (*models.Settings, error) {
	settings := models.DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var legacy legacyFields
	_ = json.Unmarshal(data, &legacy)
	migrate(settings, &legacy)
	return settings, nil
}

// migrate upgrades older records in place. One way and best effort:
// known fields are kept, renamed fields are carried over, gaps take
// defaults, and the version is bumped to current.
func migrate(settings *models.Settings, legacy *legacyFields) {
	if legacy.SchemaVersion == nil {
		// Version 1 document. Carry the renamed fields unless the
		// current names are also present.
		if legacy.TeamURL != nil && settings.SiteURL == "" {
			settings.SiteURL = *legacy.TeamURL
		}
		if legacy.DocumentFolder != nil && settings.FolderPath == "" {
			settings.FolderPath = *legacy.DocumentFolder
		}
	}

	if settings.RecentConnections == nil {
		settings.RecentConnections = []models.RecentConnection{}
	}
	now := time.Now()
	for i := range settings.RecentConnections {
		if settings.RecentConnections[i].LastUsed.IsZero() {
			settings.RecentConnections[i].LastUsed = now
		}
	}
	settings.TruncateRecents()
	if settings.Theme == "" {
		settings.Theme = "system"
	}
	settings.SchemaVersion = models.SettingsSchemaVersion
}
