package adapter

import "context"

// RecordSource reads documents from the field-service record API.
// Documents are returned verbatim. Errors are *domain.FetchError for
// non-200 or malformed responses and *domain.TransportError otherwise.
type RecordSource interface {
	FetchJob(ctx context.Context, id string) (map[string]any, error)
	FetchInvoice(ctx context.Context, id string) (map[string]any, error)
}
