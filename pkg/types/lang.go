package types

// Supported portal languages. English is the default; every localized field
// family stores a required English value and optional Hindi and Marathi
// variants.
const (
	LangEnglish = "en"
	LangHindi   = "hi"
	LangMarathi = "mr"
)

// Languages lists the supported language codes in display order.
var Languages = []string{LangEnglish, LangHindi, LangMarathi}

// validLanguages is the set of recognized language codes.
var validLanguages = map[string]bool{
	LangEnglish: true,
	LangHindi:   true,
	LangMarathi: true,
}

// ValidLanguage reports whether lang is a supported language code.
func ValidLanguage(lang string) bool {
	return validLanguages[lang]
}

// localized picks the lang-specific value when non-empty, else the default
// (English) value. All Localized* accessors funnel through this so the
// fallback chain is identical for every entity.
func localized(lang, en, hi, mr string) string {
	switch lang {
	case LangHindi:
		if hi != "" {
			return hi
		}
	case LangMarathi:
		if mr != "" {
			return mr
		}
	}
	return en
}
