package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrEmptyIdentifier      = fmt.Errorf("%w: identifier is empty", ErrInvalidArgument)
	ErrUnknownMode          = fmt.Errorf("%w: unknown resolution mode", ErrInvalidArgument)
	ErrJobReferenceMissing  = errors.New("job reference missing from invoice")
	ErrMissingAPIKey        = errors.New("completion service api key is not configured")
	ErrNoCompletionProvider = errors.New("no completion provider available")
)

// Resource names used in record API errors.
const (
	ResourceJob     = "job"
	ResourceInvoice = "invoice"
)

// FetchError reports a record API read that did not produce a document:
// either a non-200 status or a 200 whose body was not valid JSON.
type FetchError struct {
	Resource   string
	ID         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not fetch %s with ID %s (status %d): %v", e.Resource, e.ID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("could not fetch %s with ID %s. Status code: %d", e.Resource, e.ID, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// TransportError wraps a network-level failure talking to the record API.
type TransportError struct {
	Resource string
	ID       string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("error contacting record API for %s %s: %v", e.Resource, e.ID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ReferenceError reports an invoice that does not point at a job.
type ReferenceError struct {
	InvoiceID  string
	Expression string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("job ID not found in invoice %s (looked up %q)", e.InvoiceID, e.Expression)
}

func (e *ReferenceError) Unwrap() error { return ErrJobReferenceMissing }

// CompletionKind groups completion-service failures by cause.
type CompletionKind string

const (
	CompletionAuth        CompletionKind = "auth"
	CompletionQuota       CompletionKind = "quota"
	CompletionUnavailable CompletionKind = "unavailable"
	CompletionBadRequest  CompletionKind = "bad_request"
	CompletionEmpty       CompletionKind = "empty"
	CompletionUnknown     CompletionKind = "unknown"
)

// CompletionError wraps any failure of the completion call.
type CompletionError struct {
	Provider   string
	Kind       CompletionKind
	StatusCode int
	Err        error
}

func (e *CompletionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s completion failed (%s, http %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s completion failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// CompletionKindForStatus maps an HTTP status from a completion provider to a kind.
func CompletionKindForStatus(code int) CompletionKind {
	switch {
	case code == 401 || code == 403:
		return CompletionAuth
	case code == 429:
		return CompletionQuota
	case code >= 500:
		return CompletionUnavailable
	case code >= 400:
		return CompletionBadRequest
	default:
		return CompletionUnknown
	}
}
