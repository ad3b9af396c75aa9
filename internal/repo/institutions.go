package repo

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/openpatra/formstore/pkg/types"
)

// Institutions is the repository for form-owning organizations.
type Institutions struct {
	s *Store
}

// InstitutionInput carries the fields accepted on institution creation.
type InstitutionInput struct {
	NameEN        string
	NameHI        string
	NameMR        string
	DescriptionEN string
	DescriptionHI string
	DescriptionMR string
	Type          string
	ParentID      string
	ContactEmail  string
	ContactPhone  string
	Website       string
}

// InstitutionUpdate is a partial update; nil fields keep their stored value.
type InstitutionUpdate struct {
	NameEN        *string
	NameHI        *string
	NameMR        *string
	DescriptionEN *string
	DescriptionHI *string
	DescriptionMR *string
	Type          *string
	ParentID      *string
	ContactEmail  *string
	ContactPhone  *string
	Website       *string
}

const institutionColumns = `id, name_en, name_hi, name_mr, description_en,
	description_hi, description_mr, type, parent_id, contact_email,
	contact_phone, website, form_count, created_at, updated_at`

func scanInstitution(row rowScanner) (*types.Institution, error) {
	var i types.Institution
	var nameHI, nameMR, descHI, descMR sql.NullString
	var parentID, email, phone, website sql.NullString
	if err := row.Scan(
		&i.ID, &i.NameEN, &nameHI, &nameMR, &i.DescriptionEN, &descHI, &descMR,
		&i.Type, &parentID, &email, &phone, &website, &i.FormCount,
		&i.CreatedAt, &i.UpdatedAt,
	); err != nil {
		return nil, err
	}
	i.NameHI = stringOf(nameHI)
	i.NameMR = stringOf(nameMR)
	i.DescriptionHI = stringOf(descHI)
	i.DescriptionMR = stringOf(descMR)
	i.ParentID = stringOf(parentID)
	i.ContactEmail = stringOf(email)
	i.ContactPhone = stringOf(phone)
	i.Website = stringOf(website)
	return &i, nil
}

// Create inserts an institution and returns its id.
func (r *Institutions) Create(in InstitutionInput) (string, error) {
	if in.NameEN == "" {
		return "", types.ErrInvalidInput
	}
	if !types.ValidInstitutionType(in.Type) {
		return "", fmt.Errorf("%w: unknown institution type %q", types.ErrInvalidInput, in.Type)
	}
	id := newID()
	now := nowISO()
	_, err := r.s.eng.Exec(
		`INSERT INTO institutions (id, name_en, name_hi, name_mr,
			description_en, description_hi, description_mr, type, parent_id,
			contact_email, contact_phone, website, form_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		id, in.NameEN, nullable(in.NameHI), nullable(in.NameMR),
		in.DescriptionEN, nullable(in.DescriptionHI), nullable(in.DescriptionMR),
		in.Type, nullable(in.ParentID), nullable(in.ContactEmail),
		nullable(in.ContactPhone), nullable(in.Website), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating institution: %w", err)
	}
	if err := r.s.saveAndInvalidate(CacheInstitutions); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the institution by id, or ErrNotFound.
func (r *Institutions) Get(id string) (*types.Institution, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	row, err := r.s.eng.QueryRow(
		"SELECT "+institutionColumns+" FROM institutions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	i, err := scanInstitution(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting institution %s: %w", id, err)
	}
	return i, nil
}

// List returns all institutions ordered by name.
func (r *Institutions) List() ([]*types.Institution, error) {
	return r.list("SELECT " + institutionColumns + " FROM institutions ORDER BY name_en ASC")
}

// ListByParent returns the direct children of parentID. An empty parentID
// lists the root institutions.
func (r *Institutions) ListByParent(parentID string) ([]*types.Institution, error) {
	if parentID == "" {
		return r.list("SELECT " + institutionColumns +
			" FROM institutions WHERE parent_id IS NULL ORDER BY name_en ASC")
	}
	return r.list("SELECT "+institutionColumns+
		" FROM institutions WHERE parent_id = ? ORDER BY name_en ASC", parentID)
}

func (r *Institutions) list(query string, args ...any) ([]*types.Institution, error) {
	rows, err := r.s.eng.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing institutions: %w", err)
	}
	defer rows.Close()

	insts := []*types.Institution{}
	for rows.Next() {
		i, err := scanInstitution(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning institution: %w", err)
		}
		insts = append(insts, i)
	}
	return insts, rows.Err()
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (r *Institutions) Update(id string, upd InstitutionUpdate) error {
	if id == "" {
		return types.ErrInvalidID
	}

	sets := []string{"updated_at = ?"}
	args := []any{nowISO()}
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
	if upd.DescriptionEN != nil {
		sets = append(sets, "description_en = ?")
		args = append(args, *upd.DescriptionEN)
	}
	if upd.DescriptionHI != nil {
		sets = append(sets, "description_hi = ?")
		args = append(args, nullable(*upd.DescriptionHI))
	}
	if upd.DescriptionMR != nil {
		sets = append(sets, "description_mr = ?")
		args = append(args, nullable(*upd.DescriptionMR))
	}
	if upd.Type != nil {
		if !types.ValidInstitutionType(*upd.Type) {
			return fmt.Errorf("%w: unknown institution type %q", types.ErrInvalidInput, *upd.Type)
		}
		sets = append(sets, "type = ?")
		args = append(args, *upd.Type)
	}
	if upd.ParentID != nil {
		sets = append(sets, "parent_id = ?")
		args = append(args, nullable(*upd.ParentID))
	}
	if upd.ContactEmail != nil {
		sets = append(sets, "contact_email = ?")
		args = append(args, nullable(*upd.ContactEmail))
	}
	if upd.ContactPhone != nil {
		sets = append(sets, "contact_phone = ?")
		args = append(args, nullable(*upd.ContactPhone))
	}
	if upd.Website != nil {
		sets = append(sets, "website = ?")
		args = append(args, nullable(*upd.Website))
	}
	args = append(args, id)

	res, err := r.s.eng.Exec(
		"UPDATE institutions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating institution %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheInstitutions)
}

// Delete removes an institution. Hard delete; divisions and forms keep
// their institution_id as dangling references.
func (r *Institutions) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	res, err := r.s.eng.Exec("DELETE FROM institutions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting institution %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheInstitutions)
}

// RefreshFormCount recomputes the denormalized form_count from a live COUNT(*).
func (r *Institutions) RefreshFormCount(id string) error {
	_, err := r.s.eng.Exec(
		`UPDATE institutions
		 SET form_count = (SELECT COUNT(*) FROM forms WHERE institution_id = ?)
		 WHERE id = ?`, id, id)
	if err != nil {
		return fmt.Errorf("refreshing form count for institution %s: %w", id, err)
	}
	if r.s.cache != nil {
		r.s.cache.InvalidateType(CacheInstitutions)
	}
	return nil
}
