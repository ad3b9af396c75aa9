package types

// Analytics event types recorded by the portal.
const (
	EventFormView     = "form_view"
	EventFormDownload = "form_download"
	EventFormFill     = "form_fill"
	EventSearch       = "search"
)

// AnalyticsEvent is an append-only usage record. Events are never updated or
// deleted.
type AnalyticsEvent struct {
	ID        string
	EventType string
	EntityID  string         // The form/category/etc. the event refers to.
	Language  string         // UI language active when the event fired.
	Meta      map[string]any // Free-form event attributes.
	CreatedAt string
}

// ConfigEntry is a system configuration key-value pair.
type ConfigEntry struct {
	Key       string
	Value     string
	UpdatedAt string
}
