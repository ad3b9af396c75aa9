package repo

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/openpatra/formstore/pkg/types"
)

// draftLifetime is how long an untouched draft survives before PurgeExpired
// removes it.
const draftLifetime = 30 * 24 * time.Hour

// Drafts is the repository for in-progress form fills.
type Drafts struct {
	s *Store
}

// DraftInput carries the fields accepted on draft creation.
type DraftInput struct {
	FormID            string
	UserID            string
	Data              map[string]any
	CompletionPercent float64
}

const draftColumns = `id, form_id, user_id, data, completion_percent,
	expires_at, created_at, updated_at`

func scanDraft(row rowScanner) (*types.Draft, error) {
	var d types.Draft
	var data string
	if err := row.Scan(
		&d.ID, &d.FormID, &d.UserID, &data, &d.CompletionPercent,
		&d.ExpiresAt, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Data = decodeJSONOr(data, map[string]any{})
	return &d, nil
}

// Create starts a draft with a fresh expiry and returns its id.
func (r *Drafts) Create(in DraftInput) (string, error) {
	if in.FormID == "" || in.UserID == "" {
		return "", types.ErrInvalidInput
	}
	id := newID()
	now := time.Now().UTC()
	_, err := r.s.eng.Exec(
		`INSERT INTO drafts (id, form_id, user_id, data, completion_percent,
			expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.FormID, in.UserID, encodeJSON(in.Data), in.CompletionPercent,
		now.Add(draftLifetime).Format(time.RFC3339),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("creating draft: %w", err)
	}
	if err := r.s.saveAndInvalidate(CacheDrafts); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the draft by id, or ErrNotFound.
func (r *Drafts) Get(id string) (*types.Draft, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	row, err := r.s.eng.QueryRow(
		"SELECT "+draftColumns+" FROM drafts WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	d, err := scanDraft(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting draft %s: %w", id, err)
	}
	return d, nil
}

// Save overwrites a draft's payload and completion, extends its expiry, and
// bumps updated_at. Safe to call at auto-save frequency: each call is one
// complete statement plus a snapshot save.
func (r *Drafts) Save(id string, data map[string]any, completionPercent float64) error {
	if id == "" {
		return types.ErrInvalidID
	}
	now := time.Now().UTC()
	res, err := r.s.eng.Exec(
		`UPDATE drafts SET data = ?, completion_percent = ?, expires_at = ?,
			updated_at = ? WHERE id = ?`,
		encodeJSON(data), completionPercent,
		now.Add(draftLifetime).Format(time.RFC3339),
		now.Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("saving draft %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheDrafts)
}

// ListByUser returns a user's unexpired drafts, most recently touched first.
func (r *Drafts) ListByUser(userID string) ([]*types.Draft, error) {
	rows, err := r.s.eng.Query(
		"SELECT "+draftColumns+
			" FROM drafts WHERE user_id = ? AND expires_at > ? ORDER BY updated_at DESC",
		userID, nowISO())
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	drafts := []*types.Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// Delete removes a draft. Hard delete; drafts have no visibility toggle.
func (r *Drafts) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	res, err := r.s.eng.Exec("DELETE FROM drafts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting draft %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheDrafts)
}

// PurgeExpired removes every draft past its expiry and reports how many
// were dropped.
func (r *Drafts) PurgeExpired() (int, error) {
	res, err := r.s.eng.Exec("DELETE FROM drafts WHERE expires_at <= ?", nowISO())
	if err != nil {
		return 0, fmt.Errorf("purging drafts: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return 0, nil
	}
	if err := r.s.saveAndInvalidate(CacheDrafts); err != nil {
		return 0, err
	}
	return int(n), nil
}
