package types

// Form field types.
const (
	FieldText      = "text"
	FieldNumber    = "number"
	FieldDate      = "date"
	FieldCheckbox  = "checkbox"
	FieldRadio     = "radio"
	FieldDropdown  = "dropdown"
	FieldSignature = "signature"
	FieldPhoto     = "photo"
)

// validFieldTypes is the set of recognized field types.
var validFieldTypes = map[string]bool{
	FieldText:      true,
	FieldNumber:    true,
	FieldDate:      true,
	FieldCheckbox:  true,
	FieldRadio:     true,
	FieldDropdown:  true,
	FieldSignature: true,
	FieldPhoto:     true,
}

// ValidFieldType reports whether t is a recognized field type.
func ValidFieldType(t string) bool {
	return validFieldTypes[t]
}

// FieldPosition places a field on a PDF page. Coordinates and sizes are in
// PDF points.
type FieldPosition struct {
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"font_size,omitempty"`
	Align    string  `json:"align,omitempty"`
}

// FieldValidation holds the declarative validation rules for a field.
// Zero values mean "no constraint".
type FieldValidation struct {
	MinLength int    `json:"min_length,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Min       string `json:"min,omitempty"` // Numeric/date lower bound.
	Max       string `json:"max,omitempty"` // Numeric/date upper bound.
}

// FormField is a single fillable element of a form. Position is the
// default-language placement; PositionVariants overrides it per language for
// forms whose PDF layout differs across language variants.
type FormField struct {
	ID               string
	FormID           string
	FieldType        string // One of the Field type constants.
	LabelEN          string // Required default-language label.
	LabelHI          string
	LabelMR          string
	Required         bool
	Validation       FieldValidation
	Options          []string // Choice values for radio/dropdown/checkbox.
	Position         FieldPosition
	PositionVariants map[string]FieldPosition // lang -> position override.
	OrderIndex       int
	CreatedAt        string
	UpdatedAt        string
}

// LocalizedLabel returns the lang-specific label, falling back to English.
func (ff *FormField) LocalizedLabel(lang string) string {
	return localized(lang, ff.LabelEN, ff.LabelHI, ff.LabelMR)
}

// PositionFor returns the position for lang, falling back to the default
// placement when no per-language variant exists.
func (ff *FormField) PositionFor(lang string) FieldPosition {
	if p, ok := ff.PositionVariants[lang]; ok {
		return p
	}
	return ff.Position
}
