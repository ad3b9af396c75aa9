package repo

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/openpatra/formstore/pkg/types"
)

// Categories is the repository for form categories.
type Categories struct {
	s *Store
}

// CategoryInput carries the fields accepted on category creation. NameEN is
// required; the alternates are optional.
type CategoryInput struct {
	NameEN        string
	NameHI        string
	NameMR        string
	DescriptionEN string
	DescriptionHI string
	DescriptionMR string
	Icon          string
	DisplayOrder  int
}

// CategoryUpdate is a partial update; nil fields keep their stored value.
type CategoryUpdate struct {
	NameEN        *string
	NameHI        *string
	NameMR        *string
	DescriptionEN *string
	DescriptionHI *string
	DescriptionMR *string
	Icon          *string
	DisplayOrder  *int
}

const categoryColumns = `id, name_en, name_hi, name_mr, description_en,
	description_hi, description_mr, icon, display_order, form_count,
	created_at, updated_at`

func scanCategory(row rowScanner) (*types.Category, error) {
	var c types.Category
	var nameHI, nameMR, descHI, descMR, icon sql.NullString
	if err := row.Scan(
		&c.ID, &c.NameEN, &nameHI, &nameMR, &c.DescriptionEN, &descHI, &descMR,
		&icon, &c.DisplayOrder, &c.FormCount, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.NameHI = stringOf(nameHI)
	c.NameMR = stringOf(nameMR)
	c.DescriptionHI = stringOf(descHI)
	c.DescriptionMR = stringOf(descMR)
	c.Icon = stringOf(icon)
	return &c, nil
}

// Create inserts a category and returns its id.
func (r *Categories) Create(in CategoryInput) (string, error) {
	if in.NameEN == "" {
		return "", types.ErrInvalidInput
	}
	id := newID()
	now := nowISO()
	_, err := r.s.eng.Exec(
		`INSERT INTO categories (id, name_en, name_hi, name_mr, description_en,
			description_hi, description_mr, icon, display_order, form_count,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		id, in.NameEN, nullable(in.NameHI), nullable(in.NameMR),
		in.DescriptionEN, nullable(in.DescriptionHI), nullable(in.DescriptionMR),
		nullable(in.Icon), in.DisplayOrder, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating category: %w", err)
	}
	if err := r.s.saveAndInvalidate(CacheCategories); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the category by id, or ErrNotFound.
func (r *Categories) Get(id string) (*types.Category, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	row, err := r.s.eng.QueryRow(
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	c, err := scanCategory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting category %s: %w", id, err)
	}
	return c, nil
}

// List returns all categories ordered by display order, then name.
func (r *Categories) List() ([]*types.Category, error) {
	rows, err := r.s.eng.Query(
		"SELECT " + categoryColumns + " FROM categories ORDER BY display_order ASC, name_en ASC")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	cats := []*types.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (r *Categories) Update(id string, upd CategoryUpdate) error {
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
	if upd.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, nullable(*upd.Icon))
	}
	if upd.DisplayOrder != nil {
		sets = append(sets, "display_order = ?")
		args = append(args, *upd.DisplayOrder)
	}
	args = append(args, id)

	res, err := r.s.eng.Exec(
		"UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating category %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheCategories)
}

// Delete removes a category. Forms referencing it keep their category_id;
// referential integrity is the caller's responsibility.
func (r *Categories) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	res, err := r.s.eng.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheCategories)
}

// RefreshFormCount recomputes the denormalized form_count from a live
// COUNT(*). The forms repository calls this after every form mutation that
// touches the category.
func (r *Categories) RefreshFormCount(id string) error {
	_, err := r.s.eng.Exec(
		`UPDATE categories
		 SET form_count = (SELECT COUNT(*) FROM forms WHERE category_id = ?)
		 WHERE id = ?`, id, id)
	if err != nil {
		return fmt.Errorf("refreshing form count for category %s: %w", id, err)
	}
	if r.s.cache != nil {
		r.s.cache.InvalidateType(CacheCategories)
	}
	return nil
}
