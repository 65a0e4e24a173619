package model

import (
	"fmt"
	"strings"
	"time"

	"invoice-qa-review/internal/domain"
)

// JobRecord is the job document exactly as the record API returned it.
// Its shape is never validated.
type JobRecord map[string]any

// ResolveMode selects how a user-supplied identifier becomes a job record.
type ResolveMode string

const (
	// ModeJob treats the identifier as a job ID.
	ModeJob ResolveMode = "job"
	// ModeInvoice treats the identifier as an invoice ID and follows its job reference.
	ModeInvoice ResolveMode = "invoice"
)

// ParseResolveMode accepts "job" or "invoice" (case-insensitive).
func ParseResolveMode(s string) (ResolveMode, error) {
	switch ResolveMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeJob:
		return ModeJob, nil
	case ModeInvoice:
		return ModeInvoice, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, s)
	}
}

func (m ResolveMode) String() string { return string(m) }

// Label is the user-facing noun for identifiers in this mode.
func (m ResolveMode) Label() string {
	if m == ModeInvoice {
		return "invoice ID"
	}
	return "job ID"
}

// ReviewRequest pairs a record with its materialized prompt.
type ReviewRequest struct {
	Record JobRecord
	Prompt string
}

// ReviewResult is the model's verdict.
type ReviewResult struct {
	Corrected   string   `json:"corrected"`
	Alerts      []string `json:"alerts"`
	Suggestions string   `json:"suggestions"`
}

// Usage mirrors the token counts reported for the completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ReviewOutcome is everything produced by one submission. When DecodeErr is
// set, Result is nil and Raw holds the reply verbatim.
type ReviewOutcome struct {
	ID         string
	Identifier string
	Mode       ResolveMode
	JobID      string
	Model      string
	Result     *ReviewResult
	Raw        string
	DecodeErr  error
	Usage      Usage
	StartedAt  time.Time
	Duration   time.Duration
}

// Decoded reports whether the reply matched the result schema.
func (o *ReviewOutcome) Decoded() bool { return o != nil && o.Result != nil && o.DecodeErr == nil }
