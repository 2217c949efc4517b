package session

import (
	"time"

	"github.com/wricardo/interstellar-mission/game/engine"
	"github.com/wricardo/interstellar-mission/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// ConfigLoader resolves the universe a persisted session was created from
type ConfigLoader interface {
	LoadConfig(name string) (*engine.UniverseConfig, error)
}

// PlaybackCursor is the persisted playback position
type PlaybackCursor struct {
	Solution int `json:"solution"`
	Step     int `json:"step"`
}

// PersistedSessionData represents the JSON structure for persisted sessions.
// A running search is not persisted; only its last finished result is.
type PersistedSessionData struct {
	ID             string               `json:"id"`
	ConfigID       string               `json:"config_id"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	Options        engine.SearchOptions `json:"options"`
	Result         *engine.SearchResult `json:"result,omitempty"`
	Cursor         PlaybackCursor       `json:"cursor"`
}
