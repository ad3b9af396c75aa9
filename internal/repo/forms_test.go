package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpatra/formstore/internal/blob"
	"github.com/openpatra/formstore/pkg/types"
)

func TestFormsCreateDefaults(t *testing.T) {
	s := newTestStore(t)
	formID, categoryID, institutionID := seedForm(t, s)

	f, err := s.Forms().Get(formID)
	require.NoError(t, err)
	assert.Equal(t, types.FormDraft, f.Status, "new forms start as drafts")
	assert.Equal(t, types.VerificationNone, f.VerificationLevel)
	assert.Equal(t, []string{types.LangEnglish, types.LangHindi}, f.Languages)
	assert.Empty(t, f.PDFVariants)
	assert.Empty(t, f.PublishedAt)
	assert.Zero(t, f.ViewCount)

	cat, err := s.Categories().Get(categoryID)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.FormCount)

	inst, err := s.Institutions().Get(institutionID)
	require.NoError(t, err)
	assert.Equal(t, 1, inst.FormCount)
}

func TestFormsCreateValidation(t *testing.T) {
	s := newTestStore(t)
	categoryID := seedCategory(t, s)
	institutionID := seedInstitution(t, s)

	_, err := s.Forms().Create(FormInput{
		CategoryID:    categoryID,
		InstitutionID: institutionID,
	})
	assert.ErrorIs(t, err, types.ErrInvalidInput, "default-language title is required")

	_, err = s.Forms().Create(FormInput{
		TitleEN:       "Bad Languages",
		CategoryID:    categoryID,
		InstitutionID: institutionID,
		Languages:     []string{"fr"},
	})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestFormsPublishStampsOnce(t *testing.T) {
	s := newTestStore(t)
	formID, _, _ := seedForm(t, s)

	require.NoError(t, s.Forms().Publish(formID, "admin-1"))
	f, err := s.Forms().Get(formID)
	require.NoError(t, err)
	require.NotEmpty(t, f.PublishedAt)
	first := f.PublishedAt

	// Archive and publish again; the original publication time survives.
	require.NoError(t, s.Forms().Update(formID, FormUpdate{Status: strPtr(types.FormArchived)}))
	require.NoError(t, s.Forms().Publish(formID, "admin-1"))

	f, err = s.Forms().Get(formID)
	require.NoError(t, err)
	assert.Equal(t, types.FormPublished, f.Status)
	assert.Equal(t, first, f.PublishedAt)
}

func TestFormsListPublished(t *testing.T) {
	s := newTestStore(t)
	formID, categoryID, institutionID := seedForm(t, s)

	second, err := s.Forms().Create(FormInput{
		TitleEN:       "Caste Certificate Application",
		CategoryID:    categoryID,
		InstitutionID: institutionID,
	})
	require.NoError(t, err)

	require.NoError(t, s.Forms().Publish(formID, ""))

	published, err := s.Forms().ListPublished()
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, formID, published[0].ID)

	all, err := s.Forms().List()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byCat, err := s.Forms().ListByCategory(categoryID)
	require.NoError(t, err)
	assert.Len(t, byCat, 2)

	_ = second
}

func TestFormsMoveRefreshesCounts(t *testing.T) {
	s := newTestStore(t)
	formID, categoryID, _ := seedForm(t, s)

	otherCat, err := s.Categories().Create(CategoryInput{NameEN: "Licenses"})
	require.NoError(t, err)

	require.NoError(t, s.Forms().Update(formID, FormUpdate{CategoryID: strPtr(otherCat)}))

	old, err := s.Categories().Get(categoryID)
	require.NoError(t, err)
	assert.Zero(t, old.FormCount)

	moved, err := s.Categories().Get(otherCat)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.FormCount)
}

func TestFormsAttachPDFAndThumbnails(t *testing.T) {
	s := newTestStore(t)
	formID, _, _ := seedForm(t, s)

	require.NoError(t, s.Forms().AttachPDF(formID, types.LangEnglish, []byte("%PDF-1.4 en")))
	require.NoError(t, s.Forms().AttachPDF(formID, types.LangHindi, []byte("%PDF-1.4 hi")))
	require.NoError(t, s.Forms().AttachThumbnail(formID, types.LangEnglish, []byte("jpeg-0")))
	require.NoError(t, s.Forms().AttachThumbnail(formID, types.LangEnglish, []byte("jpeg-1")))

	f, err := s.Forms().Get(formID)
	require.NoError(t, err)
	assert.Len(t, f.PDFVariants, 2)
	assert.Len(t, f.Thumbnails[types.LangEnglish], 2)

	// Stored bytes round-trip through the file store.
	data, err := s.Files().Get(f.PDFVariants[types.LangHindi])
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 hi"), data)

	// Marathi variant missing: PDFPath falls back to English.
	assert.Equal(t, f.PDFVariants[types.LangEnglish], f.PDFPath(types.LangMarathi))

	err = s.Forms().AttachPDF(formID, "xx", nil)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestFormsDeleteCascades(t *testing.T) {
	s := newTestStore(t)
	formID, categoryID, institutionID := seedForm(t, s)

	_, err := s.Fields().Create(FieldInput{
		FormID:    formID,
		FieldType: types.FieldText,
		LabelEN:   "Full Name",
	})
	require.NoError(t, err)
	require.NoError(t, s.Forms().AttachPDF(formID, types.LangEnglish, []byte("pdf")))

	require.NoError(t, s.Forms().Delete(formID))

	_, err = s.Forms().Get(formID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	fields, err := s.Fields().ListByForm(formID)
	require.NoError(t, err)
	assert.Empty(t, fields, "fields delete with their form")

	keys, err := s.Files().List(blob.FormPrefix(formID))
	require.NoError(t, err)
	assert.Empty(t, keys, "form files delete with their form")

	cat, err := s.Categories().Get(categoryID)
	require.NoError(t, err)
	assert.Zero(t, cat.FormCount)

	inst, err := s.Institutions().Get(institutionID)
	require.NoError(t, err)
	assert.Zero(t, inst.FormCount)
}

func TestFormsCounters(t *testing.T) {
	s := newTestStore(t)
	formID, _, _ := seedForm(t, s)

	require.NoError(t, s.Forms().IncrementViewCount(formID))
	require.NoError(t, s.Forms().IncrementViewCount(formID))
	require.NoError(t, s.Forms().IncrementDownloadCount(formID))

	f, err := s.Forms().Get(formID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.ViewCount)
	assert.Equal(t, 1, f.DownloadCount)
	assert.Zero(t, f.FillCount)

	assert.ErrorIs(t, s.Forms().IncrementViewCount("missing"), types.ErrNotFound)
}

func TestFieldsCRUD(t *testing.T) {
	s := newTestStore(t)
	formID, _, _ := seedForm(t, s)

	fieldID, err := s.Fields().Create(FieldInput{
		FormID:    formID,
		FieldType: types.FieldNumber,
		LabelEN:   "Age",
		LabelMR:   "वय",
		Required:  true,
		Validation: types.FieldValidation{
			Min: "18",
			Max: "120",
		},
		Position:   types.FieldPosition{Page: 1, X: 10, Y: 20, Width: 100, Height: 18},
		OrderIndex: 2,
	})
	require.NoError(t, err)

	_, err = s.Fields().Create(FieldInput{
		FormID:    formID,
		FieldType: types.FieldDropdown,
		LabelEN:   "District",
		Options:   []string{"Pune", "Nashik"},
	})
	require.NoError(t, err)

	ff, err := s.Fields().Get(fieldID)
	require.NoError(t, err)
	assert.True(t, ff.Required)
	assert.Equal(t, "18", ff.Validation.Min)
	assert.Equal(t, 1, ff.Position.Page)

	// Layout order: the dropdown has order 0 and sorts first.
	fields, err := s.Fields().ListByForm(formID)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "District", fields[0].LabelEN)

	require.NoError(t, s.Fields().Update(fieldID, FieldUpdate{
		OrderIndex: intPtr(0),
		Required:   boolPtr(false),
	}))
	ff, err = s.Fields().Get(fieldID)
	require.NoError(t, err)
	assert.False(t, ff.Required)
	assert.Zero(t, ff.OrderIndex)

	require.NoError(t, s.Fields().Delete(fieldID))
	_, err = s.Fields().Get(fieldID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFieldsRejectUnknownType(t *testing.T) {
	s := newTestStore(t)
	formID, _, _ := seedForm(t, s)

	_, err := s.Fields().Create(FieldInput{
		FormID:    formID,
		FieldType: "hologram",
		LabelEN:   "Nope",
	})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}
