package repo

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/openpatra/formstore/pkg/types"
)

// Divisions is the repository for institution org-chart divisions.
// Divisions soft-delete through is_active; deactivating a division also
// deactivates its contacts.
type Divisions struct {
	s *Store
}

// DivisionInput carries the fields accepted on division creation.
type DivisionInput struct {
	InstitutionID string
	ParentID      string
	NameEN        string
	NameHI        string
	NameMR        string
	OrderIndex    int
}

// DivisionUpdate is a partial update; nil fields keep their stored value.
type DivisionUpdate struct {
	ParentID   *string
	NameEN     *string
	NameHI     *string
	NameMR     *string
	OrderIndex *int
	IsActive   *bool
}

const divisionColumns = `id, institution_id, parent_id, name_en, name_hi,
	name_mr, order_index, contact_count, is_active, created_at, updated_at`

func scanDivision(row rowScanner) (*types.Division, error) {
	var d types.Division
	var parentID, nameHI, nameMR sql.NullString
	var active int
	if err := row.Scan(
		&d.ID, &d.InstitutionID, &parentID, &d.NameEN, &nameHI, &nameMR,
		&d.OrderIndex, &d.ContactCount, &active, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.ParentID = stringOf(parentID)
	d.NameHI = stringOf(nameHI)
	d.NameMR = stringOf(nameMR)
	d.IsActive = active != 0
	return &d, nil
}

// Create inserts an active division and returns its id.
func (r *Divisions) Create(in DivisionInput) (string, error) {
	if in.InstitutionID == "" || in.NameEN == "" {
		return "", types.ErrInvalidInput
	}
	id := newID()
	now := nowISO()
	_, err := r.s.eng.Exec(
		`INSERT INTO divisions (id, institution_id, parent_id, name_en,
			name_hi, name_mr, order_index, contact_count, is_active,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 1, ?, ?)`,
		id, in.InstitutionID, nullable(in.ParentID), in.NameEN,
		nullable(in.NameHI), nullable(in.NameMR), in.OrderIndex, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating division: %w", err)
	}
	if err := r.s.saveAndInvalidate(CacheDivisions); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the division by id, or ErrNotFound. The stored contact_count
// is verified against a live COUNT(*) and silently repaired when a caller
// forgot the explicit refresh after a contact mutation.
func (r *Divisions) Get(id string) (*types.Division, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	row, err := r.s.eng.QueryRow(
		"SELECT "+divisionColumns+" FROM divisions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	d, err := scanDivision(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting division %s: %w", id, err)
	}

	live, err := r.liveContactCount(id)
	if err != nil {
		return nil, err
	}
	if live != d.ContactCount {
		if _, err := r.s.eng.Exec(
			"UPDATE divisions SET contact_count = ? WHERE id = ?", live, id); err != nil {
			return nil, fmt.Errorf("repairing contact count for %s: %w", id, err)
		}
		// The repair is a write like any other: persist it so the durable
		// snapshot keeps trailing by at most one operation.
		if err := r.s.saveAndInvalidate(CacheDivisions); err != nil {
			return nil, err
		}
		d.ContactCount = live
	}
	return d, nil
}

// ListByInstitution returns the active divisions of an institution in
// display order. Inactive divisions are invisible to listings.
func (r *Divisions) ListByInstitution(institutionID string) ([]*types.Division, error) {
	rows, err := r.s.eng.Query(
		"SELECT "+divisionColumns+
			" FROM divisions WHERE institution_id = ? AND is_active = 1 ORDER BY order_index ASC, name_en ASC",
		institutionID)
	if err != nil {
		return nil, fmt.Errorf("listing divisions: %w", err)
	}
	defer rows.Close()

	divisions := []*types.Division{}
	for rows.Next() {
		d, err := scanDivision(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning division: %w", err)
		}
		divisions = append(divisions, d)
	}
	return divisions, rows.Err()
}

// ListChildren returns the active child divisions of parentID.
func (r *Divisions) ListChildren(parentID string) ([]*types.Division, error) {
	rows, err := r.s.eng.Query(
		"SELECT "+divisionColumns+
			" FROM divisions WHERE parent_id = ? AND is_active = 1 ORDER BY order_index ASC, name_en ASC",
		parentID)
	if err != nil {
		return nil, fmt.Errorf("listing child divisions: %w", err)
	}
	defer rows.Close()

	divisions := []*types.Division{}
	for rows.Next() {
		d, err := scanDivision(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning division: %w", err)
		}
		divisions = append(divisions, d)
	}
	return divisions, rows.Err()
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (r *Divisions) Update(id string, upd DivisionUpdate) error {
	if id == "" {
		return types.ErrInvalidID
	}

	sets := []string{"updated_at = ?"}
	args := []any{nowISO()}
	if upd.ParentID != nil {
		sets = append(sets, "parent_id = ?")
		args = append(args, nullable(*upd.ParentID))
	}
	if upd.NameEN != nil {
		if *upd.NameEN == "" {
			return fmt.Errorf("%w: default-language name must not be empty", types.ErrInvalidInput)
		}
		sets = append(sets, "name_en = ?")
		args = append(args, *upd.NameEN)
	}
	if upd.NameHI != nil {
		sets = append(sets, "name_hi = ?")
		args = append(args, nullable(*upd.NameHI))
	}
	if upd.NameMR != nil {
		sets = append(sets, "name_mr = ?")
		args = append(args, nullable(*upd.NameMR))
	}
	if upd.OrderIndex != nil {
		sets = append(sets, "order_index = ?")
		args = append(args, *upd.OrderIndex)
	}
	if upd.IsActive != nil {
		active := 0
		if *upd.IsActive {
			active = 1
		}
		sets = append(sets, "is_active = ?")
		args = append(args, active)
	}
	args = append(args, id)

	res, err := r.s.eng.Exec(
		"UPDATE divisions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating division %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheDivisions)
}

// Delete soft-deletes a division and cascades the deactivation to its
// contacts. The rows stay in place so a restore of visibility is possible.
func (r *Divisions) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	now := nowISO()
	res, err := r.s.eng.Exec(
		"UPDATE divisions SET is_active = 0, updated_at = ? WHERE id = ?", now, id)
	if err != nil {
		return fmt.Errorf("deactivating division %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	if _, err := r.s.eng.Exec(
		"UPDATE contacts SET is_active = 0, updated_at = ? WHERE division_id = ?", now, id); err != nil {
		return fmt.Errorf("deactivating contacts of division %s: %w", id, err)
	}
	if err := r.RefreshContactCount(id); err != nil {
		return err
	}
	if r.s.cache != nil {
		r.s.cache.InvalidateType(CacheContacts)
	}
	return r.s.saveAndInvalidate(CacheDivisions)
}

// RefreshContactCount recomputes the denormalized contact_count from a live
// COUNT(*) over active contacts. The contacts repository calls this after
// every contact mutation.
func (r *Divisions) RefreshContactCount(id string) error {
	_, err := r.s.eng.Exec(
		`UPDATE divisions
		 SET contact_count = (SELECT COUNT(*) FROM contacts WHERE division_id = ? AND is_active = 1)
		 WHERE id = ?`, id, id)
	if err != nil {
		return fmt.Errorf("refreshing contact count for division %s: %w", id, err)
	}
	if r.s.cache != nil {
		r.s.cache.InvalidateType(CacheDivisions)
	}
	return nil
}

// liveContactCount counts the active contacts of a division.
func (r *Divisions) liveContactCount(id string) (int, error) {
	row, err := r.s.eng.QueryRow(
		"SELECT COUNT(*) FROM contacts WHERE division_id = ? AND is_active = 1", id)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting contacts for division %s: %w", id, err)
	}
	return n, nil
}
