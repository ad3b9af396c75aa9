package repo

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/openpatra/formstore/pkg/types"
)

// Contacts is the repository for org-chart contacts. Every mutation refreshes
// the owning division's denormalized contact_count.
type Contacts struct {
	s *Store
}

// ContactInput carries the fields accepted on contact creation.
type ContactInput struct {
	DivisionID    string
	InstitutionID string
	Name          string
	TitleEN       string
	TitleHI       string
	TitleMR       string
	Phone         string
	Email         string
	OrderIndex    int
}

// ContactUpdate is a partial update; nil fields keep their stored value.
type ContactUpdate struct {
	Name       *string
	TitleEN    *string
	TitleHI    *string
	TitleMR    *string
	Phone      *string
	Email      *string
	OrderIndex *int
	IsActive   *bool
}

const contactColumns = `id, division_id, institution_id, name, title_en,
	title_hi, title_mr, phone, email, order_index, is_active, created_at,
	updated_at`

func scanContact(row rowScanner) (*types.Contact, error) {
	var c types.Contact
	var titleHI, titleMR, phone, email sql.NullString
	var active int
	if err := row.Scan(
		&c.ID, &c.DivisionID, &c.InstitutionID, &c.Name, &c.TitleEN,
		&titleHI, &titleMR, &phone, &email, &c.OrderIndex, &active,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.TitleHI = stringOf(titleHI)
	c.TitleMR = stringOf(titleMR)
	c.Phone = stringOf(phone)
	c.Email = stringOf(email)
	c.IsActive = active != 0
	return &c, nil
}

// Create inserts an active contact, refreshes the division's count, and
// returns the new id.
func (r *Contacts) Create(in ContactInput) (string, error) {
	if in.DivisionID == "" || in.InstitutionID == "" || in.Name == "" {
		return "", types.ErrInvalidInput
	}
	id := newID()
	now := nowISO()
	_, err := r.s.eng.Exec(
		`INSERT INTO contacts (id, division_id, institution_id, name,
			title_en, title_hi, title_mr, phone, email, order_index,
			is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, in.DivisionID, in.InstitutionID, in.Name, in.TitleEN,
		nullable(in.TitleHI), nullable(in.TitleMR), nullable(in.Phone),
		nullable(in.Email), in.OrderIndex, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating contact: %w", err)
	}
	if err := r.s.Divisions().RefreshContactCount(in.DivisionID); err != nil {
		return "", err
	}
	if err := r.s.saveAndInvalidate(CacheContacts); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the contact by id, or ErrNotFound.
func (r *Contacts) Get(id string) (*types.Contact, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	row, err := r.s.eng.QueryRow(
		"SELECT "+contactColumns+" FROM contacts WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	c, err := scanContact(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting contact %s: %w", id, err)
	}
	return c, nil
}

// ListByDivision returns the active contacts of a division in display order.
func (r *Contacts) ListByDivision(divisionID string) ([]*types.Contact, error) {
	rows, err := r.s.eng.Query(
		"SELECT "+contactColumns+
			" FROM contacts WHERE division_id = ? AND is_active = 1 ORDER BY order_index ASC, name ASC",
		divisionID)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*types.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Update applies the non-nil fields of upd and bumps updated_at. Toggling
// IsActive refreshes the division's contact count.
func (r *Contacts) Update(id string, upd ContactUpdate) error {
	if id == "" {
		return types.ErrInvalidID
	}
	prev, err := r.Get(id)
	if err != nil {
		return err
	}

	sets := []string{"updated_at = ?"}
	args := []any{nowISO()}
	if upd.Name != nil {
		if *upd.Name == "" {
			return fmt.Errorf("%w: contact name must not be empty", types.ErrInvalidInput)
		}
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.TitleEN != nil {
		sets = append(sets, "title_en = ?")
		args = append(args, *upd.TitleEN)
	}
	if upd.TitleHI != nil {
		sets = append(sets, "title_hi = ?")
		args = append(args, nullable(*upd.TitleHI))
	}
	if upd.TitleMR != nil {
		sets = append(sets, "title_mr = ?")
		args = append(args, nullable(*upd.TitleMR))
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, nullable(*upd.Phone))
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, nullable(*upd.Email))
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

	if _, err := r.s.eng.Exec(
		"UPDATE contacts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return fmt.Errorf("updating contact %s: %w", id, err)
	}

	if upd.IsActive != nil && *upd.IsActive != prev.IsActive {
		if err := r.s.Divisions().RefreshContactCount(prev.DivisionID); err != nil {
			return err
		}
	}
	return r.s.saveAndInvalidate(CacheContacts)
}

// Delete soft-deletes a contact and refreshes the division's count.
func (r *Contacts) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	c, err := r.Get(id)
	if err != nil {
		return err
	}
	if _, err := r.s.eng.Exec(
		"UPDATE contacts SET is_active = 0, updated_at = ? WHERE id = ?",
		nowISO(), id); err != nil {
		return fmt.Errorf("deactivating contact %s: %w", id, err)
	}
	if err := r.s.Divisions().RefreshContactCount(c.DivisionID); err != nil {
		return err
	}
	return r.s.saveAndInvalidate(CacheContacts)
}
