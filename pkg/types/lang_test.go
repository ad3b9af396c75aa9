// Tests for the localization fallback chain shared by all localized entities.
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalizedName_FallbackChain(t *testing.T) {
	category := &Category{NameEN: "Revenue", NameHI: "राजस्व", NameMR: "महसूल"}
	institution := &Institution{NameEN: "District Office", NameHI: "जिला कार्यालय", NameMR: "जिल्हा कार्यालय"}
	form := &Form{TitleEN: "Income Certificate", TitleHI: "आय प्रमाणपत्र", TitleMR: "उत्पन्न दाखला"}
	division := &Division{NameEN: "Records", NameHI: "अभिलेख", NameMR: "नोंदी"}

	tests := []struct {
		name string
		lang string
		want []string // category, institution, form, division
	}{
		{
			name: "default language returns default value",
			lang: LangEnglish,
			want: []string{"Revenue", "District Office", "Income Certificate", "Records"},
		},
		{
			name: "hindi returns hindi value when present",
			lang: LangHindi,
			want: []string{"राजस्व", "जिला कार्यालय", "आय प्रमाणपत्र", "अभिलेख"},
		},
		{
			name: "marathi returns marathi value when present",
			lang: LangMarathi,
			want: []string{"महसूल", "जिल्हा कार्यालय", "उत्पन्न दाखला", "नोंदी"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want[0], category.LocalizedName(tt.lang))
			assert.Equal(t, tt.want[1], institution.LocalizedName(tt.lang))
			assert.Equal(t, tt.want[2], form.LocalizedName(tt.lang))
			assert.Equal(t, tt.want[3], division.LocalizedName(tt.lang))
		})
	}
}

func TestLocalizedName_FallsBackToEnglish(t *testing.T) {
	// Entities with no alternate-language values fall back to English for
	// every supported language.
	category := &Category{NameEN: "Revenue"}
	institution := &Institution{NameEN: "District Office"}
	form := &Form{TitleEN: "Income Certificate"}
	division := &Division{NameEN: "Records"}

	for _, lang := range Languages {
		assert.Equal(t, "Revenue", category.LocalizedName(lang), "category lang=%s", lang)
		assert.Equal(t, "District Office", institution.LocalizedName(lang), "institution lang=%s", lang)
		assert.Equal(t, "Income Certificate", form.LocalizedName(lang), "form lang=%s", lang)
		assert.Equal(t, "Records", division.LocalizedName(lang), "division lang=%s", lang)
	}
}

func TestLocalizedDescription_Fallback(t *testing.T) {
	c := &Category{DescriptionEN: "All revenue forms", DescriptionHI: "सभी राजस्व फॉर्म"}

	assert.Equal(t, "सभी राजस्व फॉर्म", c.LocalizedDescription(LangHindi))
	// Marathi variant absent, falls back to English.
	assert.Equal(t, "All revenue forms", c.LocalizedDescription(LangMarathi))
	assert.Equal(t, "All revenue forms", c.LocalizedDescription(LangEnglish))
}

func TestLocalizedName_UnknownLanguageFallsBack(t *testing.T) {
	c := &Category{NameEN: "Revenue", NameHI: "राजस्व"}
	assert.Equal(t, "Revenue", c.LocalizedName("fr"))
}

func TestValidLanguage(t *testing.T) {
	for _, lang := range Languages {
		assert.True(t, ValidLanguage(lang))
	}
	assert.False(t, ValidLanguage(""))
	assert.False(t, ValidLanguage("fr"))
}
