package types

// Institution types.
const (
	InstitutionGovernment  = "government"
	InstitutionPrivate     = "private"
	InstitutionEducational = "educational"
	InstitutionNGO         = "ngo"
)

// validInstitutionTypes is the set of recognized institution types.
var validInstitutionTypes = map[string]bool{
	InstitutionGovernment:  true,
	InstitutionPrivate:     true,
	InstitutionEducational: true,
	InstitutionNGO:         true,
}

// ValidInstitutionType reports whether t is a recognized institution type.
func ValidInstitutionType(t string) bool {
	return validInstitutionTypes[t]
}

// Institution is an organization that owns forms. ParentID builds a
// self-referential hierarchy; it is empty for top-level institutions.
// FormCount is denormalized and refreshed by the forms repository.
type Institution struct {
	ID            string
	NameEN        string // Required default-language name.
	NameHI        string
	NameMR        string
	DescriptionEN string
	DescriptionHI string
	DescriptionMR string
	Type          string // One of the Institution type constants.
	ParentID      string // Empty for root institutions.
	ContactEmail  string
	ContactPhone  string
	Website       string
	FormCount     int
	CreatedAt     string
	UpdatedAt     string
}

// LocalizedName returns the lang-specific name, falling back to English.
func (i *Institution) LocalizedName(lang string) string {
	return localized(lang, i.NameEN, i.NameHI, i.NameMR)
}

// LocalizedDescription returns the lang-specific description, falling back
// to English.
func (i *Institution) LocalizedDescription(lang string) string {
	return localized(lang, i.DescriptionEN, i.DescriptionHI, i.DescriptionMR)
}
