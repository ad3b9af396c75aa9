package repo

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/openpatra/formstore/internal/blob"
	"github.com/openpatra/formstore/pkg/types"
)

// Forms is the repository for forms. Form deletion cascades to form_fields
// and to the form's file blobs; category and institution form counts are
// refreshed after every mutation that changes form membership.
type Forms struct {
	s *Store
}

// FormInput carries the fields accepted on form creation.
type FormInput struct {
	TitleEN       string
	TitleHI       string
	TitleMR       string
	DescriptionEN string
	DescriptionHI string
	DescriptionMR string
	CategoryID    string
	InstitutionID string
	Languages     []string
	CreatedBy     string
}

// FormUpdate is a partial update; nil fields keep their stored value.
type FormUpdate struct {
	TitleEN           *string
	TitleHI           *string
	TitleMR           *string
	DescriptionEN     *string
	DescriptionHI     *string
	DescriptionMR     *string
	CategoryID        *string
	InstitutionID     *string
	Languages         *[]string
	Status            *string
	VerificationLevel *int
	UpdatedBy         *string
}

const formColumns = `id, title_en, title_hi, title_mr, description_en,
	description_hi, description_mr, category_id, institution_id, languages,
	pdf_variants, thumbnails, status, verification_level, view_count,
	download_count, fill_count, created_by, created_at, updated_by,
	updated_at, published_at`

// scanForm maps a row to a typed Form. JSON columns decode through typed
// defaults so a corrupted value reads as empty rather than failing the row.
func scanForm(row rowScanner) (*types.Form, error) {
	var f types.Form
	var titleHI, titleMR, descHI, descMR sql.NullString
	var createdBy, updatedBy, publishedAt sql.NullString
	var languages, pdfVariants, thumbnails string
	if err := row.Scan(
		&f.ID, &f.TitleEN, &titleHI, &titleMR, &f.DescriptionEN, &descHI, &descMR,
		&f.CategoryID, &f.InstitutionID, &languages, &pdfVariants, &thumbnails,
		&f.Status, &f.VerificationLevel, &f.ViewCount, &f.DownloadCount,
		&f.FillCount, &createdBy, &f.CreatedAt, &updatedBy, &f.UpdatedAt,
		&publishedAt,
	); err != nil {
		return nil, err
	}
	f.TitleHI = stringOf(titleHI)
	f.TitleMR = stringOf(titleMR)
	f.DescriptionHI = stringOf(descHI)
	f.DescriptionMR = stringOf(descMR)
	f.CreatedBy = stringOf(createdBy)
	f.UpdatedBy = stringOf(updatedBy)
	f.PublishedAt = stringOf(publishedAt)
	f.Languages = decodeJSONOr(languages, []string{types.LangEnglish})
	f.PDFVariants = decodeJSONOr(pdfVariants, map[string]string{})
	f.Thumbnails = decodeJSONOr(thumbnails, map[string][]string{})
	return &f, nil
}

// Create inserts a draft form and returns its id. The owning category and
// institution form counts are refreshed.
func (r *Forms) Create(in FormInput) (string, error) {
	if in.TitleEN == "" || in.CategoryID == "" || in.InstitutionID == "" {
		return "", types.ErrInvalidInput
	}
	langs := in.Languages
	if len(langs) == 0 {
		langs = []string{types.LangEnglish}
	}
	for _, l := range langs {
		if !types.ValidLanguage(l) {
			return "", fmt.Errorf("%w: unknown language %q", types.ErrInvalidInput, l)
		}
	}

	id := newID()
	now := nowISO()
	_, err := r.s.eng.Exec(
		`INSERT INTO forms (id, title_en, title_hi, title_mr, description_en,
			description_hi, description_mr, category_id, institution_id,
			languages, pdf_variants, thumbnails, status, verification_level,
			view_count, download_count, fill_count, created_by, created_at,
			updated_by, updated_at, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '{}', '{}', ?, 0, 0, 0, 0, ?, ?, ?, ?, NULL)`,
		id, in.TitleEN, nullable(in.TitleHI), nullable(in.TitleMR),
		in.DescriptionEN, nullable(in.DescriptionHI), nullable(in.DescriptionMR),
		in.CategoryID, in.InstitutionID, encodeJSON(langs), types.FormDraft,
		nullable(in.CreatedBy), now, nullable(in.CreatedBy), now,
	)
	if err != nil {
		return "", fmt.Errorf("creating form: %w", err)
	}

	if err := r.s.Categories().RefreshFormCount(in.CategoryID); err != nil {
		return "", err
	}
	if err := r.s.Institutions().RefreshFormCount(in.InstitutionID); err != nil {
		return "", err
	}
	if err := r.s.saveAndInvalidate(CacheForms); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the form by id, or ErrNotFound.
func (r *Forms) Get(id string) (*types.Form, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	row, err := r.s.eng.QueryRow(
		"SELECT "+formColumns+" FROM forms WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	f, err := scanForm(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting form %s: %w", id, err)
	}
	return f, nil
}

// List returns all forms, newest first.
func (r *Forms) List() ([]*types.Form, error) {
	return r.list("SELECT " + formColumns + " FROM forms ORDER BY created_at DESC")
}

// ListByCategory returns the forms under a category, newest first.
func (r *Forms) ListByCategory(categoryID string) ([]*types.Form, error) {
	return r.list("SELECT "+formColumns+
		" FROM forms WHERE category_id = ? ORDER BY created_at DESC", categoryID)
}

// ListByInstitution returns the forms owned by an institution, newest first.
func (r *Forms) ListByInstitution(institutionID string) ([]*types.Form, error) {
	return r.list("SELECT "+formColumns+
		" FROM forms WHERE institution_id = ? ORDER BY created_at DESC", institutionID)
}

// ListPublished returns the published forms, newest publication first.
func (r *Forms) ListPublished() ([]*types.Form, error) {
	return r.list("SELECT "+formColumns+
		" FROM forms WHERE status = ? ORDER BY published_at DESC", types.FormPublished)
}

func (r *Forms) list(query string, args ...any) ([]*types.Form, error) {
	rows, err := r.s.eng.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}
	defer rows.Close()

	forms := []*types.Form{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning form: %w", err)
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// Update applies the non-nil fields of upd and bumps updated_at. Moving a
// form between categories or institutions refreshes both sides' counts.
func (r *Forms) Update(id string, upd FormUpdate) error {
	if id == "" {
		return types.ErrInvalidID
	}
	prev, err := r.Get(id)
	if err != nil {
		return err
	}

	sets := []string{"updated_at = ?"}
	args := []any{nowISO()}
	if upd.TitleEN != nil {
		if *upd.TitleEN == "" {
			return fmt.Errorf("%w: default-language title must not be empty", types.ErrInvalidInput)
		}
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
	if upd.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *upd.CategoryID)
	}
	if upd.InstitutionID != nil {
		sets = append(sets, "institution_id = ?")
		args = append(args, *upd.InstitutionID)
	}
	if upd.Languages != nil {
		for _, l := range *upd.Languages {
			if !types.ValidLanguage(l) {
				return fmt.Errorf("%w: unknown language %q", types.ErrInvalidInput, l)
			}
		}
		sets = append(sets, "languages = ?")
		args = append(args, encodeJSON(*upd.Languages))
	}
	if upd.Status != nil {
		if !types.ValidFormStatus(*upd.Status) {
			return fmt.Errorf("%w: unknown status %q", types.ErrInvalidInput, *upd.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.VerificationLevel != nil {
		if *upd.VerificationLevel < types.VerificationNone || *upd.VerificationLevel > types.VerificationMax {
			return fmt.Errorf("%w: verification level out of range", types.ErrInvalidInput)
		}
		sets = append(sets, "verification_level = ?")
		args = append(args, *upd.VerificationLevel)
	}
	if upd.UpdatedBy != nil {
		sets = append(sets, "updated_by = ?")
		args = append(args, nullable(*upd.UpdatedBy))
	}
	args = append(args, id)

	if _, err := r.s.eng.Exec(
		"UPDATE forms SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return fmt.Errorf("updating form %s: %w", id, err)
	}

	if upd.CategoryID != nil && *upd.CategoryID != prev.CategoryID {
		if err := r.s.Categories().RefreshFormCount(prev.CategoryID); err != nil {
			return err
		}
		if err := r.s.Categories().RefreshFormCount(*upd.CategoryID); err != nil {
			return err
		}
	}
	if upd.InstitutionID != nil && *upd.InstitutionID != prev.InstitutionID {
		if err := r.s.Institutions().RefreshFormCount(prev.InstitutionID); err != nil {
			return err
		}
		if err := r.s.Institutions().RefreshFormCount(*upd.InstitutionID); err != nil {
			return err
		}
	}
	return r.s.saveAndInvalidate(CacheForms)
}

// Publish marks a form published, stamping published_at on first publish.
func (r *Forms) Publish(id, by string) error {
	f, err := r.Get(id)
	if err != nil {
		return err
	}
	publishedAt := f.PublishedAt
	if publishedAt == "" {
		publishedAt = nowISO()
	}
	_, err = r.s.eng.Exec(
		"UPDATE forms SET status = ?, published_at = ?, updated_by = ?, updated_at = ? WHERE id = ?",
		types.FormPublished, publishedAt, nullable(by), nowISO(), id)
	if err != nil {
		return fmt.Errorf("publishing form %s: %w", id, err)
	}
	return r.s.saveAndInvalidate(CacheForms)
}

// Delete removes a form, its fields, and its file blobs, then refreshes the
// owning category and institution counts.
func (r *Forms) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	f, err := r.Get(id)
	if err != nil {
		return err
	}

	tx, err := r.s.eng.Begin()
	if err != nil {
		return fmt.Errorf("beginning form delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM form_fields WHERE form_id = ?", id); err != nil {
		return fmt.Errorf("deleting form fields: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM forms WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting form: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing form delete: %w", err)
	}

	// Drop the form's stored files (PDFs and thumbnails).
	keys, err := r.s.files.List(blob.FormPrefix(id))
	if err != nil {
		return fmt.Errorf("listing form files: %w", err)
	}
	for _, k := range keys {
		if err := r.s.files.Delete(k); err != nil {
			return fmt.Errorf("deleting form file %s: %w", k, err)
		}
	}

	if err := r.s.Categories().RefreshFormCount(f.CategoryID); err != nil {
		return err
	}
	if err := r.s.Institutions().RefreshFormCount(f.InstitutionID); err != nil {
		return err
	}
	if r.s.cache != nil {
		r.s.cache.InvalidateType(CacheFormFields)
	}
	return r.s.saveAndInvalidate(CacheForms)
}

// AttachPDF stores the PDF bytes for a language variant and records its
// path in the form's pdf_variants map.
func (r *Forms) AttachPDF(id, lang string, data []byte) error {
	if !types.ValidLanguage(lang) {
		return fmt.Errorf("%w: unknown language %q", types.ErrInvalidInput, lang)
	}
	f, err := r.Get(id)
	if err != nil {
		return err
	}

	key := blob.FormPDFKey(id, lang)
	if err := r.s.files.Put(key, data); err != nil {
		return fmt.Errorf("storing pdf: %w", err)
	}

	f.PDFVariants[lang] = key
	_, err = r.s.eng.Exec(
		"UPDATE forms SET pdf_variants = ?, updated_at = ? WHERE id = ?",
		encodeJSON(f.PDFVariants), nowISO(), id)
	if err != nil {
		return fmt.Errorf("recording pdf variant: %w", err)
	}
	return r.s.saveAndInvalidate(CacheForms)
}

// AttachThumbnail stores a thumbnail page for a language variant and
// appends its path to the form's thumbnail list.
func (r *Forms) AttachThumbnail(id, lang string, data []byte) error {
	if !types.ValidLanguage(lang) {
		return fmt.Errorf("%w: unknown language %q", types.ErrInvalidInput, lang)
	}
	f, err := r.Get(id)
	if err != nil {
		return err
	}

	index := len(f.Thumbnails[lang])
	key := blob.FormThumbKey(id, lang, index)
	if err := r.s.files.Put(key, data); err != nil {
		return fmt.Errorf("storing thumbnail: %w", err)
	}

	f.Thumbnails[lang] = append(f.Thumbnails[lang], key)
	_, err = r.s.eng.Exec(
		"UPDATE forms SET thumbnails = ?, updated_at = ? WHERE id = ?",
		encodeJSON(f.Thumbnails), nowISO(), id)
	if err != nil {
		return fmt.Errorf("recording thumbnail: %w", err)
	}
	return r.s.saveAndInvalidate(CacheForms)
}

// IncrementViewCount bumps the form's view counter.
func (r *Forms) IncrementViewCount(id string) error {
	return r.bump(id, "view_count")
}

// IncrementDownloadCount bumps the form's download counter.
func (r *Forms) IncrementDownloadCount(id string) error {
	return r.bump(id, "download_count")
}

// IncrementFillCount bumps the form's fill counter.
func (r *Forms) IncrementFillCount(id string) error {
	return r.bump(id, "fill_count")
}

func (r *Forms) bump(id, column string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	res, err := r.s.eng.Exec(
		"UPDATE forms SET "+column+" = "+column+" + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("incrementing %s for form %s: %w", column, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return r.s.saveAndInvalidate(CacheForms)
}
