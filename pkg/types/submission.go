package types

// Submission is a completed, user-authored fill of a form. Data holds the
// field values keyed by field id; the payload is schemaless and stored as a
// JSON column.
type Submission struct {
	ID          string
	FormID      string
	UserID      string
	Data        map[string]any // field id -> value.
	SubmittedAt string
}

// Draft is an in-progress fill of a form. Drafts expire: ExpiresAt is set on
// creation and expired drafts are purged rather than submitted.
type Draft struct {
	ID                string
	FormID            string
	UserID            string
	Data              map[string]any // field id -> value.
	CompletionPercent float64
	ExpiresAt         string
	CreatedAt         string
	UpdatedAt         string
}
