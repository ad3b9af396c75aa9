package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForm_PDFPath(t *testing.T) {
	f := &Form{
		PDFVariants: map[string]string{
			LangEnglish: "forms/f1/pdf_en.pdf",
			LangHindi:   "forms/f1/pdf_hi.pdf",
		},
	}

	assert.Equal(t, "forms/f1/pdf_hi.pdf", f.PDFPath(LangHindi))
	// No Marathi variant; fall back to English.
	assert.Equal(t, "forms/f1/pdf_en.pdf", f.PDFPath(LangMarathi))
	assert.Equal(t, "forms/f1/pdf_en.pdf", f.PDFPath(LangEnglish))
}

func TestFormField_PositionFor(t *testing.T) {
	def := FieldPosition{Page: 1, X: 10, Y: 20, Width: 100, Height: 14}
	hi := FieldPosition{Page: 1, X: 12, Y: 24, Width: 110, Height: 14}

	ff := &FormField{
		Position:         def,
		PositionVariants: map[string]FieldPosition{LangHindi: hi},
	}

	assert.Equal(t, hi, ff.PositionFor(LangHindi))
	assert.Equal(t, def, ff.PositionFor(LangMarathi))
	assert.Equal(t, def, ff.PositionFor(LangEnglish))
}

func TestValidFormStatus(t *testing.T) {
	assert.True(t, ValidFormStatus(FormDraft))
	assert.True(t, ValidFormStatus(FormPublished))
	assert.True(t, ValidFormStatus(FormArchived))
	assert.False(t, ValidFormStatus("deleted"))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleSuperAdmin))
	assert.False(t, ValidRole("owner"))
}

func TestUser_HasBookmark(t *testing.T) {
	u := &User{Bookmarks: []string{"f1", "f2"}}
	assert.True(t, u.HasBookmark("f1"))
	assert.False(t, u.HasBookmark("f3"))
}
