package model

import "invoice-qa-review/internal/domain"

// ViewStatus tells a frontend which layout to draw.
type ViewStatus string

const (
	// ViewOK: the three result regions are filled.
	ViewOK ViewStatus = "ok"
	// ViewDecodeError: the reply could not be decoded; show Raw verbatim with the error.
	ViewDecodeError ViewStatus = "decode_error"
	// ViewWarning: the input was rejected before any network call.
	ViewWarning ViewStatus = "warning"
	// ViewError: the submission failed; show Error.
	ViewError ViewStatus = "error"
)

// NoSuggestions is displayed when the reply carried no suggestion.
const NoSuggestions = "None"

// ReviewView is the frontend-agnostic rendering of one submission.
type ReviewView struct {
	Status      ViewStatus       `json:"status"`
	ReviewID    string           `json:"review_id,omitempty"`
	Identifier  string           `json:"identifier"`
	Mode        ResolveMode      `json:"mode"`
	JobID       string           `json:"job_id,omitempty"`
	Corrected   string           `json:"corrected,omitempty"`
	Alerts      []string         `json:"alerts,omitempty"`
	Suggestions string           `json:"suggestions,omitempty"`
	Raw         string           `json:"raw,omitempty"`
	ErrorKind   domain.ErrorKind `json:"error_kind,omitempty"`
	Error       string           `json:"error,omitempty"`
}
