package domain

import (
	"context"
	"errors"
)

// ErrorKind names the failure classes shown to users and used as metric labels.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindFetch      ErrorKind = "fetch"
	KindReference  ErrorKind = "reference"
	KindTransport  ErrorKind = "transport"
	KindCompletion ErrorKind = "completion"
	KindDecode     ErrorKind = "decode"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
)

// Classify returns the kind of err. Decode errors live in the model package and
// are classified there; this covers everything the pipeline can return.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		fetchErr *FetchError
		transErr *TransportError
		refErr   *ReferenceError
		compErr  *CompletionError
	)
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return KindValidation
	case errors.As(err, &refErr), errors.Is(err, ErrJobReferenceMissing):
		return KindReference
	case errors.As(err, &fetchErr):
		return KindFetch
	case errors.As(err, &transErr):
		return KindTransport
	case errors.As(err, &compErr):
		return KindCompletion
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
