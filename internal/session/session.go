package session

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quasilyte/gdata"
)

const itemKey = "session"

// Store is the key/value surface of a gdata manager.
type Store interface {
	LoadItem(itemKey string) ([]byte, error)
	SaveItem(itemKey string, data []byte) error
}

// Snapshot is where the player stood when the demo last quit.
type Snapshot struct {
	Level string  `json:"level"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Open returns the per-user gdata store for appName.
func Open(appName string) (*gdata.Manager, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return m, nil
}

type Session struct {
	store Store
	level string
}

// New binds a session to level. Snapshots saved for another level are ignored on Load.
func New(store Store, level string) *Session {
	return &Session{store: store, level: level}
}

// Load returns the saved snapshot, or nil when there is none for this level.
func (s *Session) Load() (*Snapshot, error) {
	data, err := s.store.LoadItem(itemKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if snap.Level != s.level {
		slog.Debug("Ignoring session for another level", "saved", snap.Level, "level", s.level)
		return nil, nil
	}
	return &snap, nil
}

func (s *Session) Save(snap Snapshot) error {
	snap.Level = s.level
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.SaveItem(itemKey, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	slog.Debug("Session saved", "level", s.level, "x", snap.X, "y", snap.Y, "z", snap.Z)
	return nil
}

// Clear drops the saved snapshot.
func (s *Session) Clear() error {
	if err := s.store.SaveItem(itemKey, nil); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
