package blob

import "fmt"

// Well-known key layout. The engine snapshot lives under a single key; form
// file blobs use structured per-form paths.
const SnapshotKey = "formstore.db"

// FormPDFKey returns the blob key for a form's PDF in the given language.
func FormPDFKey(formID, lang string) string {
	return fmt.Sprintf("forms/%s/pdf_%s.pdf", formID, lang)
}

// FormThumbKey returns the blob key for a form's thumbnail page in the given
// language.
func FormThumbKey(formID, lang string, index int) string {
	return fmt.Sprintf("forms/%s/thumb_%s_%d.jpg", formID, lang, index)
}

// FormPrefix returns the key prefix holding every blob of a form.
func FormPrefix(formID string) string {
	return fmt.Sprintf("forms/%s/", formID)
}
