package models

import (
	"net/url"
	"strings"
	"time"
)

const (
	// SettingsSchemaVersion is written by every save. Version 1 files
	// (no schema_version field, no recency timestamps) are migrated on
	// load.
	SettingsSchemaVersion = 2

	// MaxRecentConnections bounds the recent connections list.
	MaxRecentConnections = 10

	// MaxFieldLength caps site URL and folder path lengths on save.
	MaxFieldLength = 2048
)

// Settings represents application settings persisted between sessions.
type Settings struct {
	SiteURL           string             `json:"site_url"`
	FolderPath        string             `json:"folder_path"`
	WindowWidth       int                `json:"window_width"`
	WindowHeight      int                `json:"window_height"`
	WindowX           *int               `json:"window_x,omitempty"`
	WindowY           *int               `json:"window_y,omitempty"`
	AutoConnect       bool               `json:"auto_connect"`
	LastUsername      string             `json:"last_username"`
	Theme             string             `json:"theme"`
	RecentConnections []RecentConnection `json:"recent_connections"`
	SchemaVersion     int                `json:"schema_version"`
}

// RecentConnection is one entry of the most-recent-first connections list.
type RecentConnection struct {
	SiteURL    string    `json:"site_url"`
	FolderPath string    `json:"folder_path"`
	LastUsed   time.Time `json:"last_used"`
}

// DefaultSettings returns default application settings
func DefaultSettings() *Settings {
	return &Settings{
		SiteURL:           "",
		FolderPath:        "",
		WindowWidth:       800,
		WindowHeight:      600,
		AutoConnect:       false,
		LastUsername:      "",
		Theme:             "system",
		RecentConnections: []RecentConnection{},
		SchemaVersion:     SettingsSchemaVersion,
	}
}

// Key returns the dedup key of a connection. The site host compares
// case-insensitively; folder paths compare case-insensitively with
// surrounding slashes ignored, matching SharePoint server-relative URL
// semantics.
func (c RecentConnection) Key() string {
	site := strings.TrimRight(strings.TrimSpace(c.SiteURL), "/")
	if u, err := url.Parse(site); err == nil && u.Host != "" {
		u.Host = strings.ToLower(u.Host)
		site = u.String()
	}
	folder := strings.ToLower(strings.Trim(strings.TrimSpace(c.FolderPath), "/"))
	return site + "|" + folder
}

// RecordConnection upserts a connection at the front of the recents list.
// A duplicate key moves the existing entry to the front with a fresh
// timestamp; the list never grows past MaxRecentConnections.
func (s *Settings) RecordConnection(siteURL, folderPath string) {
	s.recordConnection(siteURL, folderPath, MaxRecentConnections)
}

func (s *Settings) recordConnection(siteURL, folderPath string, bound int) {
	entry := RecentConnection{
		SiteURL:    strings.TrimSpace(siteURL),
		FolderPath: strings.TrimSpace(folderPath),
		LastUsed:   time.Now(),
	}
	key := entry.Key()

	updated := make([]RecentConnection, 0, len(s.RecentConnections)+1)
	updated = append(updated, entry)
	for _, rc := range s.RecentConnections {
		if rc.Key() == key {
			continue
		}
		updated = append(updated, rc)
	}
	if len(updated) > bound {
		updated = updated[:bound]
	}
	s.RecentConnections = updated
}

// TruncateRecents drops entries beyond MaxRecentConnections.
func (s *Settings) TruncateRecents() {
	if len(s.RecentConnections) > MaxRecentConnections {
		s.RecentConnections = s.RecentConnections[:MaxRecentConnections]
	}
}

// Clone returns a deep copy. Background saves write a clone so later
// edits never leak into an in-flight encode.
func (s *Settings) Clone() *Settings {
	out := *s
	if s.WindowX != nil {
		x := *s.WindowX
		out.WindowX = &x
	}
	if s.WindowY != nil {
		y := *s.WindowY
		out.WindowY = &y
	}
	out.RecentConnections = make([]RecentConnection, len(s.RecentConnections))
	copy(out.RecentConnections, s.RecentConnections)
	return &out
}

// SetWindowPosition records the last-known window origin.
func (s *Settings) SetWindowPosition(x, y int) {
	s.WindowX = &x
	s.WindowY = &y
}

// SetWindowSize records the last-known window dimensions.
func (s *Settings) SetWindowSize(width, height int) {
	s.WindowWidth = width
	s.WindowHeight = height
}
