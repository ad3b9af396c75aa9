package repo

import (
	"database/sql"
	"fmt"

	"github.com/openpatra/formstore/pkg/types"
)

// Submissions is the repository for completed form fills.
type Submissions struct {
	s *Store
}

// SubmissionInput carries the fields accepted on submission.
type SubmissionInput struct {
	FormID string
	UserID string
	Data   map[string]any
}

const submissionColumns = `id, form_id, user_id, data, submitted_at`

func scanSubmission(row rowScanner) (*types.Submission, error) {
	var sub types.Submission
	var data string
	if err := row.Scan(&sub.ID, &sub.FormID, &sub.UserID, &data, &sub.SubmittedAt); err != nil {
		return nil, err
	}
	sub.Data = decodeJSONOr(data, map[string]any{})
	return &sub, nil
}

// Create records a submission and bumps the form's fill counter.
func (r *Submissions) Create(in SubmissionInput) (string, error) {
	if in.FormID == "" || in.UserID == "" {
		return "", types.ErrInvalidInput
	}
	id := newID()
	_, err := r.s.eng.Exec(
		`INSERT INTO submissions (id, form_id, user_id, data, submitted_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, in.FormID, in.UserID, encodeJSON(in.Data), nowISO(),
	)
	if err != nil {
		return "", fmt.Errorf("creating submission: %w", err)
	}
	if err := r.s.Forms().IncrementFillCount(in.FormID); err != nil {
		return "", err
	}
	if err := r.s.saveAndInvalidate(CacheSubmissions); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the submission by id, or ErrNotFound.
func (r *Submissions) Get(id string) (*types.Submission, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	row, err := r.s.eng.QueryRow(
		"SELECT "+submissionColumns+" FROM submissions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	sub, err := scanSubmission(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting submission %s: %w", id, err)
	}
	return sub, nil
}

// ListByForm returns a form's submissions, newest first.
func (r *Submissions) ListByForm(formID string) ([]*types.Submission, error) {
	return r.list("SELECT "+submissionColumns+
		" FROM submissions WHERE form_id = ? ORDER BY submitted_at DESC", formID)
}

// ListByUser returns a user's submissions, newest first.
func (r *Submissions) ListByUser(userID string) ([]*types.Submission, error) {
	return r.list("SELECT "+submissionColumns+
		" FROM submissions WHERE user_id = ? ORDER BY submitted_at DESC", userID)
}

func (r *Submissions) list(query string, args ...any) ([]*types.Submission, error) {
	rows, err := r.s.eng.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	subs := []*types.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
