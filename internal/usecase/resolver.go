package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jmespath-community/go-jmespath"
	"github.com/rs/zerolog"

	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/model"
	"invoice-qa-review/internal/domain/ports/adapter"
	"invoice-qa-review/internal/infra/logging"
)

// Resolution is a resolved job record plus the job ID it was fetched by.
type Resolution struct {
	JobID  string
	Record model.JobRecord
}

// RecordResolver turns an identifier into a job record according to a mode.
type RecordResolver interface {
	Resolve(ctx context.Context, identifier string, mode model.ResolveMode) (*Resolution, error)
}

// Compile-time check
var _ RecordResolver = (*recordResolver)(nil)

// resolveStrategy is one resolution mode.
type resolveStrategy func(ctx context.Context, r *recordResolver, identifier string) (*Resolution, error)

var strategies = map[model.ResolveMode]resolveStrategy{
	model.ModeJob:     resolveJob,
	model.ModeInvoice: resolveInvoice,
}

// searcher is a compiled JMESPath expression.
type searcher interface {
	Search(data any) (any, error)
}

type recordResolver struct {
	source  adapter.RecordSource
	jobRef  searcher
	refExpr string
	log     *zerolog.Logger
}

// NewRecordResolver compiles jobRefExpr, the JMESPath that locates the job ID
// inside an invoice document. An empty expression uses the default.
func NewRecordResolver(source adapter.RecordSource, jobRefExpr string, logger *zerolog.Logger) (*recordResolver, error) {
	if source == nil {
		return nil, fmt.Errorf("record source is nil")
	}
	if strings.TrimSpace(jobRefExpr) == "" {
		jobRefExpr = config.DefaultJobReference
	}
	expr, err := jmespath.Compile(jobRefExpr)
	if err != nil {
		return nil, fmt.Errorf("compile job reference %q: %w", jobRefExpr, err)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &recordResolver{source: source, jobRef: expr, refExpr: jobRefExpr, log: logger}, nil
}

func (r *recordResolver) Resolve(ctx context.Context, identifier string, mode model.ResolveMode) (*Resolution, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.ErrEmptyIdentifier
	}
	strategy, ok := strategies[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
	}
	return strategy(ctx, r, identifier)
}

func resolveJob(ctx context.Context, r *recordResolver, jobID string) (*Resolution, error) {
	doc, err := r.source.FetchJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &Resolution{JobID: jobID, Record: model.JobRecord(doc)}, nil
}

func resolveInvoice(ctx context.Context, r *recordResolver, invoiceID string) (*Resolution, error) {
	invoice, err := r.source.FetchInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	jobID, ok := r.jobReference(invoice)
	if !ok {
		return nil, &domain.ReferenceError{InvoiceID: invoiceID, Expression: r.refExpr}
	}
	logging.With(ctx, r.log).Debug().
		Str("invoice_id", invoiceID).
		Str("job_id", jobID).
		Msg("invoice resolved to job")
	return resolveJob(ctx, r, jobID)
}

// jobReference evaluates the JMESPath against the invoice and normalizes the
// result to a non-empty string.
func (r *recordResolver) jobReference(invoice map[string]any) (string, bool) {
	v, err := r.jobRef.Search(invoice)
	if err != nil || v == nil {
		return "", false
	}
	var id string
	switch t := v.(type) {
	case string:
		id = t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			id = strconv.FormatInt(n, 10)
		} else if f, err := t.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1e15 {
			id = strconv.FormatInt(int64(f), 10)
		} else {
			id = t.String()
		}
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			id = strconv.FormatInt(int64(t), 10)
		} else {
			id = strconv.FormatFloat(t, 'f', -1, 64)
		}
	case int:
		id = strconv.Itoa(t)
	case int64:
		id = strconv.FormatInt(t, 10)
	default:
		return "", false
	}
	id = strings.TrimSpace(id)
	return id, id != ""
}
