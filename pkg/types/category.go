package types

// Category groups forms for discovery. Names and descriptions are localized;
// FormCount is denormalized and refreshed by the forms repository after form
// mutations.
type Category struct {
	ID            string
	NameEN        string // Required default-language name.
	NameHI        string
	NameMR        string
	DescriptionEN string
	DescriptionHI string
	DescriptionMR string
	Icon          string
	DisplayOrder  int
	FormCount     int
	CreatedAt     string
	UpdatedAt     string
}

// LocalizedName returns the lang-specific name, falling back to English.
func (c *Category) LocalizedName(lang string) string {
	return localized(lang, c.NameEN, c.NameHI, c.NameMR)
}

// LocalizedDescription returns the lang-specific description, falling back
// to English.
func (c *Category) LocalizedDescription(lang string) string {
	return localized(lang, c.DescriptionEN, c.DescriptionHI, c.DescriptionMR)
}
