package types

// Contact is a person listed under a division in an institution's org chart.
// Contacts are soft-deleted through IsActive; deactivating or reactivating a
// contact updates the owning division's ContactCount.
type Contact struct {
	ID            string
	DivisionID    string
	InstitutionID string
	Name          string // Person names are not localized.
	TitleEN       string // Required default-language job title.
	TitleHI       string
	TitleMR       string
	Phone         string
	Email         string
	OrderIndex    int
	IsActive      bool
	CreatedAt     string
	UpdatedAt     string
}

// LocalizedTitle returns the lang-specific job title, falling back to English.
func (c *Contact) LocalizedTitle(lang string) string {
	return localized(lang, c.TitleEN, c.TitleHI, c.TitleMR)
}
