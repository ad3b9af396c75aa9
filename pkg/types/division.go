package types

// Division is an org-chart node scoped to an institution. Divisions form a
// hierarchy via ParentID and are soft-deleted through IsActive. ContactCount
// is denormalized and refreshed by the contacts repository after contact
// mutations.
type Division struct {
	ID            string
	InstitutionID string
	ParentID      string // Empty for top-level divisions.
	NameEN        string // Required default-language name.
	NameHI        string
	NameMR        string
	OrderIndex    int
	ContactCount  int
	IsActive      bool
	CreatedAt     string
	UpdatedAt     string
}

// LocalizedName returns the lang-specific name, falling back to English.
func (d *Division) LocalizedName(lang string) string {
	return localized(lang, d.NameEN, d.NameHI, d.NameMR)
}
