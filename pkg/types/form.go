package types

// Form lifecycle states.
const (
	FormDraft     = "draft"
	FormPublished = "published"
	FormArchived  = "archived"
)

// validFormStatuses is the set of recognized form statuses.
var validFormStatuses = map[string]bool{
	FormDraft:     true,
	FormPublished: true,
	FormArchived:  true,
}

// ValidFormStatus reports whether s is a recognized form status.
func ValidFormStatus(s string) bool {
	return validFormStatuses[s]
}

// Verification levels. 0 is unverified; 3 is fully verified.
const (
	VerificationNone = 0
	VerificationMax  = 3
)

// Form is a fillable document published by an institution under a category.
// PDFVariants maps a language code to the stored PDF blob path; Thumbnails
// maps a language code to the ordered list of thumbnail blob paths.
type Form struct {
	ID                string
	TitleEN           string // Required default-language title.
	TitleHI           string
	TitleMR           string
	DescriptionEN     string
	DescriptionHI     string
	DescriptionMR     string
	CategoryID        string
	InstitutionID     string
	Languages         []string            // Languages this form is offered in.
	PDFVariants       map[string]string   // lang -> blob path.
	Thumbnails        map[string][]string // lang -> ordered thumbnail paths.
	Status            string              // One of the Form status constants.
	VerificationLevel int                 // VerificationNone..VerificationMax.
	ViewCount         int
	DownloadCount     int
	FillCount         int
	CreatedBy         string
	CreatedAt         string
	UpdatedBy         string
	UpdatedAt         string
	PublishedAt       string // Empty until first publish.
}

// LocalizedTitle returns the lang-specific title, falling back to English.
func (f *Form) LocalizedTitle(lang string) string {
	return localized(lang, f.TitleEN, f.TitleHI, f.TitleMR)
}

// LocalizedName is an alias for LocalizedTitle so forms satisfy the same
// naming contract as categories and institutions.
func (f *Form) LocalizedName(lang string) string {
	return f.LocalizedTitle(lang)
}

// LocalizedDescription returns the lang-specific description, falling back
// to English.
func (f *Form) LocalizedDescription(lang string) string {
	return localized(lang, f.DescriptionEN, f.DescriptionHI, f.DescriptionMR)
}

// PDFPath returns the stored PDF path for lang, falling back to the English
// variant when the requested language has none.
func (f *Form) PDFPath(lang string) string {
	if p, ok := f.PDFVariants[lang]; ok && p != "" {
		return p
	}
	return f.PDFVariants[LangEnglish]
}
