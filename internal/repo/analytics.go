package repo

import (
	"database/sql"
	"fmt"

	"github.com/openpatra/formstore/pkg/types"
)

// Analytics is the append-only repository for usage events.
type Analytics struct {
	s *Store
}

// Append records an event. Events are never updated or deleted, so no cache
// family tracks them.
func (r *Analytics) Append(eventType, entityID, language string, meta map[string]any) (string, error) {
	if eventType == "" {
		return "", types.ErrInvalidInput
	}
	id := newID()
	_, err := r.s.eng.Exec(
		`INSERT INTO analytics_events (id, event_type, entity_id, language, meta, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, eventType, nullable(entityID), nullable(language),
		encodeJSON(meta), nowISO(),
	)
	if err != nil {
		return "", fmt.Errorf("appending analytics event: %w", err)
	}
	if err := r.s.eng.Save(); err != nil {
		return "", err
	}
	return id, nil
}

// CountByType returns how many events of the given type were recorded.
func (r *Analytics) CountByType(eventType string) (int, error) {
	row, err := r.s.eng.QueryRow(
		"SELECT COUNT(*) FROM analytics_events WHERE event_type = ?", eventType)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s events: %w", eventType, err)
	}
	return n, nil
}

// ListRecent returns the newest events, up to limit.
func (r *Analytics) ListRecent(limit int) ([]*types.AnalyticsEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.s.eng.Query(
		`SELECT id, event_type, entity_id, language, meta, created_at
		 FROM analytics_events ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing analytics events: %w", err)
	}
	defer rows.Close()

	events := []*types.AnalyticsEvent{}
	for rows.Next() {
		var e types.AnalyticsEvent
		var entityID, language sql.NullString
		var meta string
		if err := rows.Scan(&e.ID, &e.EventType, &entityID, &language, &meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning analytics event: %w", err)
		}
		e.EntityID = stringOf(entityID)
		e.Language = stringOf(language)
		e.Meta = decodeJSONOr(meta, map[string]any{})
		events = append(events, &e)
	}
	return events, rows.Err()
}

// Config is the repository for system configuration key-value pairs.
type Config struct {
	s *Store
}

// Get returns the value stored under key, or ErrNotFound.
func (r *Config) Get(key string) (string, error) {
	if key == "" {
		return "", types.ErrInvalidInput
	}
	row, err := r.s.eng.QueryRow(
		"SELECT value FROM system_config WHERE key = ?", key)
	if err != nil {
		return "", err
	}
	var v string
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return "", types.ErrNotFound
		}
		return "", fmt.Errorf("getting config %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (r *Config) Set(key, value string) error {
	if key == "" {
		return types.ErrInvalidInput
	}
	_, err := r.s.eng.Exec(
		`INSERT INTO system_config (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, nowISO())
	if err != nil {
		return fmt.Errorf("setting config %s: %w", key, err)
	}
	return r.s.saveAndInvalidate(CacheConfig)
}

// All returns every config entry ordered by key.
func (r *Config) All() ([]types.ConfigEntry, error) {
	rows, err := r.s.eng.Query(
		"SELECT key, value, updated_at FROM system_config ORDER BY key ASC")
	if err != nil {
		return nil, fmt.Errorf("listing config: %w", err)
	}
	defer rows.Close()

	entries := []types.ConfigEntry{}
	for rows.Next() {
		var e types.ConfigEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning config entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
