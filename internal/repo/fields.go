package repo

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/openpatra/formstore/pkg/types"
)

// Fields is the repository for form fields.
type Fields struct {
	s *Store
}

// FieldInput carries the fields accepted on form-field creation.
type FieldInput struct {
	FormID           string
	FieldType        string
	LabelEN          string
	LabelHI          string
	LabelMR          string
	Required         bool
	Validation       types.FieldValidation
	Options          []string
	Position         types.FieldPosition
	PositionVariants map[string]types.FieldPosition
	OrderIndex       int
}

// FieldUpdate is a partial update; nil fields keep their stored value.
type FieldUpdate struct {
	LabelEN          *string
	LabelHI          *string
	LabelMR          *string
	Required         *bool
	Validation       *types.FieldValidation
	Options          *[]string
	Position         *types.FieldPosition
	PositionVariants *map[string]types.FieldPosition
	OrderIndex       *int
}

const fieldColumns = `id, form_id, field_type, label_en, label_hi, label_mr,
	required, validation, options, position, position_variants, order_index,
	created_at, updated_at`

// scanField maps a row to a typed FormField. Every JSON column decodes
// through a typed default.
func scanField(row rowScanner) (*types.FormField, error) {
	var ff types.FormField
	var labelHI, labelMR sql.NullString
	var required int
	var validation, options, position, variants string
	if err := row.Scan(
		&ff.ID, &ff.FormID, &ff.FieldType, &ff.LabelEN, &labelHI, &labelMR,
		&required, &validation, &options, &position, &variants,
		&ff.OrderIndex, &ff.CreatedAt, &ff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ff.LabelHI = stringOf(labelHI)
	ff.LabelMR = stringOf(labelMR)
	ff.Required = required != 0
	ff.Validation = decodeJSONOr(validation, types.FieldValidation{})
	ff.Options = decodeJSONOr(options, []string{})
	ff.Position = decodeJSONOr(position, types.FieldPosition{})
	ff.PositionVariants = decodeJSONOr(variants, map[string]types.FieldPosition{})
	return &ff, nil
}

// Create inserts a field and returns its id.
func (r *Fields) Create(in FieldInput) (string, error) {
	if in.FormID == "" || in.LabelEN == "" {
		return "", types.ErrInvalidInput
	}
	if !types.ValidFieldType(in.FieldType) {
		return "", fmt.Errorf("%w: unknown field type %q", types.ErrInvalidInput, in.FieldType)
	}
	variants := in.PositionVariants
	if variants == nil {
		variants = map[string]types.FieldPosition{}
	}
	options := in.Options
	if options == nil {
		options = []string{}
	}

	id := newID()
	now := nowISO()
	required := 0
	if in.Required {
		required = 1
	}
	_, err := r.s.eng.Exec(
		`INSERT INTO form_fields (id, form_id, field_type, label_en, label_hi,
			label_mr, required, validation, options, position,
			position_variants, order_index, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.FormID, in.FieldType, in.LabelEN, nullable(in.LabelHI),
		nullable(in.LabelMR), required, encodeJSON(in.Validation),
		encodeJSON(options), encodeJSON(in.Position), encodeJSON(variants),
		in.OrderIndex, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating form field: %w", err)
	}
	if err := r.s.saveAndInvalidate(CacheFormFields); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the field by id, or ErrNotFound.
func (r *Fields) Get(id string) (*types.FormField, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	row, err := r.s.eng.QueryRow(
		"SELECT "+fieldColumns+" FROM form_fields WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	ff, err := scanField(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting form field %s: %w", id, err)
	}
	return ff, nil
}

// ListByForm returns the fields of a form in layout order.
func (r *Fields) ListByForm(formID string) ([]*types.FormField, error) {
	rows, err := r.s.eng.Query(
		"SELECT "+fieldColumns+
			" FROM form_fields WHERE form_id = ? ORDER BY order_index ASC, created_at ASC",
		formID)
	if err != nil {
		return nil, fmt.Errorf("listing form fields: %w", err)
	}
	defer rows.Close()

	fields := []*types.FormField{}
	for rows.Next() {
		ff, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning form field: %w", err)
		}
		fields = append(fields, ff)
	}
	return fields, rows.Err()
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (r *Fields) Update(id string, upd FieldUpdate) error {
	if id == "" {
		return types.ErrInvalidID
	}

	sets := []string{"updated_at = ?"}
	args := []any{nowISO()}
	if upd.LabelEN != nil {
		if *upd.LabelEN == "" {
			return fmt.Errorf("%w: default-language label must not be empty", types.ErrInvalidInput)
		}
		sets = append(sets, "label_en = ?")
		args = append(args, *upd.LabelEN)
	}
	if upd.LabelHI != nil {
		sets = append(sets, "label_hi = ?")
		args = append(args, nullable(*upd.LabelHI))
	}
	if upd.LabelMR != nil {
		sets = append(sets, "label_mr = ?")
		args = append(args, nullable(*upd.LabelMR))
	}
	if upd.Required != nil {
		required := 0
		if *upd.Required {
			required = 1
		}
		sets = append(sets, "required = ?")
		args = append(args, required)
	}
	if upd.Validation != nil {
		sets = append(sets, "validation = ?")
		args = append(args, encodeJSON(*upd.Validation))
	}
	if upd.Options != nil {
		sets = append(sets, "options = ?")
		args = append(args, encodeJSON(*upd.Options))
	}
	if upd.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, encodeJSON(*upd.Position))
	}
	if upd.PositionVariants != nil {
		sets = append(sets, "position_variants = ?")
		args = append(args, encodeJSON(*upd.PositionVariants))
	}
	if upd.OrderIndex != nil {
		sets = append(sets, "order_index = ?")
		args = append(args, *upd.OrderIndex)
	}
	args = append(args, id)

	res, err := r.s.eng.Exec(
		"UPDATE form_fields SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating form field %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheFormFields)
}

// Delete removes a field. Hard delete.
func (r *Fields) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	res, err := r.s.eng.Exec("DELETE FROM form_fields WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting form field %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheFormFields)
}
