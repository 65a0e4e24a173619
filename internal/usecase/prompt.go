package usecase

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"invoice-qa-review/internal/domain/model"
)

//go:embed prompts/invoice_review.tmpl
var invoiceReviewPromptRaw string

// invoiceReviewTemplate is parsed once; the policy text lives in the template.
var invoiceReviewTemplate = template.Must(template.New("invoice_review").Parse(invoiceReviewPromptRaw))

// BuildPrompt renders the QA policy prompt for one job record. The record is
// serialized as two-space indented JSON with sorted keys and no HTML
// escaping, so the output is byte-identical for equal records.
func BuildPrompt(record model.JobRecord) (string, error) {
	if record == nil {
		record = model.JobRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return "", fmt.Errorf("serialize job record: %w", err)
	}
	var sb strings.Builder
	data := struct{ Record string }{Record: strings.TrimRight(buf.String(), "\n")}
	if err := invoiceReviewTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render review prompt: %w", err)
	}
	return sb.String(), nil
}

// NewReviewRequest pairs a record with its prompt.
func NewReviewRequest(record model.JobRecord) (*model.ReviewRequest, error) {
	p, err := BuildPrompt(record)
	if err != nil {
		return nil, err
	}
	return &model.ReviewRequest{Record: record, Prompt: p}, nil
}
