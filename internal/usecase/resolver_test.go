package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/model"
)

func newTestResolver(t *testing.T, src *memRecordSource, expr string) *recordResolver {
	t.Helper()
	r, err := NewRecordResolver(src, expr, nil)
	require.NoError(t, err)
	return r
}

func TestResolve_JobModeFetchesJobOnce(t *testing.T) {
	src := newMemRecordSource()
	src.jobs["42"] = map[string]any{"id": "42"}

	res, err := newTestResolver(t, src, "").Resolve(context.Background(), " 42 ", model.ModeJob)
	require.NoError(t, err)
	assert.Equal(t, "42", res.JobID)
	assert.Equal(t, "42", res.Record["id"])
	assert.Equal(t, []string{"job/42"}, src.Calls())
}

func TestResolve_InvoiceTargetsReferencedJob(t *testing.T) {
	src := newMemRecordSource()
	src.invoices["INV-1"] = map[string]any{"job": map[string]any{"id": "J123"}}
	src.jobs["J123"] = map[string]any{"id": "J123"}

	res, err := newTestResolver(t, src, "").Resolve(context.Background(), "INV-1", model.ModeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "J123", res.JobID)
	assert.Equal(t, []string{"invoice/INV-1", "job/J123"}, src.Calls())
}

func TestResolve_InvoiceDataEnvelope(t *testing.T) {
	src := newMemRecordSource()
	src.invoices["9"] = map[string]any{"data": map[string]any{"job": map[string]any{"id": float64(123)}}}
	src.jobs["123"] = map[string]any{}

	res, err := newTestResolver(t, src, "").Resolve(context.Background(), "9", model.ModeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "123", res.JobID)
}

func TestResolve_MissingReferenceSkipsJobFetch(t *testing.T) {
	for name, inv := range map[string]map[string]any{
		"no job":     {"total": 10},
		"null id":    {"job": map[string]any{"id": nil}},
		"empty id":   {"job": map[string]any{"id": "  "}},
		"object id":  {"job": map[string]any{"id": map[string]any{}}},
		"job is str": {"job": "J1"},
	} {
		t.Run(name, func(t *testing.T) {
			src := newMemRecordSource()
			src.invoices["INV"] = inv

			_, err := newTestResolver(t, src, "").Resolve(context.Background(), "INV", model.ModeInvoice)
			var re *domain.ReferenceError
			require.ErrorAs(t, err, &re)
			assert.ErrorIs(t, err, domain.ErrJobReferenceMissing)
			assert.Equal(t, "INV", re.InvoiceID)
			assert.Equal(t, []string{"invoice/INV"}, src.Calls())
		})
	}
}

func TestResolve_FetchErrorsPropagate(t *testing.T) {
	src := newMemRecordSource()
	_, err := newTestResolver(t, src, "").Resolve(context.Background(), "INV-404", model.ModeInvoice)
	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.ResourceInvoice, fe.Resource)
	assert.Equal(t, 404, fe.StatusCode)
}

func TestResolve_RejectsBlankAndUnknownMode(t *testing.T) {
	src := newMemRecordSource()
	r := newTestResolver(t, src, "")

	_, err := r.Resolve(context.Background(), "   ", model.ModeJob)
	assert.ErrorIs(t, err, domain.ErrEmptyIdentifier)
	_, err = r.Resolve(context.Background(), "1", model.ResolveMode("quote"))
	assert.ErrorIs(t, err, domain.ErrUnknownMode)
	assert.Empty(t, src.Calls())
}

func TestResolve_CustomJobReference(t *testing.T) {
	src := newMemRecordSource()
	src.invoices["I"] = map[string]any{"meta": map[string]any{"jobNumber": "77"}}
	src.jobs["77"] = map[string]any{}

	res, err := newTestResolver(t, src, "meta.jobNumber").Resolve(context.Background(), "I", model.ModeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "77", res.JobID)
}

func TestNewRecordResolver_BadExpression(t *testing.T) {
	_, err := NewRecordResolver(newMemRecordSource(), "job.[", nil)
	assert.Error(t, err)
}

func TestJobReference_NumberFormatting(t *testing.T) {
	r := newTestResolver(t, newMemRecordSource(), "id")
	cases := map[string]any{
		"123":        float64(123),
		"1234567890": float64(1234567890),
		"12.5":       12.5,
		"7":          7,
		"J-9":        "J-9",

		"12345678901234567": json.Number("12345678901234567"),
		"88":                json.Number("88.0"),
		"4.25":              json.Number("4.25"),
	}
	for want, v := range cases {
		got, ok := r.jobReference(map[string]any{"id": v})
		assert.True(t, ok, want)
		assert.Equal(t, want, got)
	}
}

func TestResolve_InvoiceJSONNumberReference(t *testing.T) {
	src := newMemRecordSource()
	src.invoices["INV-7"] = map[string]any{"job": map[string]any{"id": json.Number("12345678901234567")}}
	src.jobs["12345678901234567"] = map[string]any{}

	res, err := newTestResolver(t, src, "").Resolve(context.Background(), "INV-7", model.ModeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567", res.JobID)
	assert.Equal(t, []string{"invoice/INV-7", "job/12345678901234567"}, src.Calls())
}
