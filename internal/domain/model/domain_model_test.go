//go:build !integration

package model

import (
	"errors"
	"reflect"
	"testing"

	"invoice-qa-review/internal/domain"
)

// --- ResolveMode Tests ---

func TestParseResolveMode(t *testing.T) {
	t.Run("should accept job and invoice in any case", func(t *testing.T) {
		for in, want := range map[string]ResolveMode{"job": ModeJob, " Invoice ": ModeInvoice, "JOB": ModeJob} {
			got, err := ParseResolveMode(in)
			if err != nil {
				t.Fatalf("ParseResolveMode(%q): unexpected error %v", in, err)
			}
			if got != want {
				t.Errorf("ParseResolveMode(%q) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("should reject anything else as invalid argument", func(t *testing.T) {
		_, err := ParseResolveMode("quote")
		if !errors.Is(err, domain.ErrUnknownMode) || !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrUnknownMode wrapping ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("labels name the identifier", func(t *testing.T) {
		if ModeJob.Label() != "job ID" || ModeInvoice.Label() != "invoice ID" {
			t.Errorf("unexpected labels %q %q", ModeJob.Label(), ModeInvoice.Label())
		}
	})
}

// --- DecodeReviewResult Tests ---

func TestDecodeReviewResult_Success(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ReviewResult
	}{
		{"full object", `{"corrected":"X","alerts":["A"],"suggestions":"S"}`, ReviewResult{"X", []string{"A"}, "S"}},
		{"missing suggestions", `{"corrected":"X","alerts":["A","B"]}`, ReviewResult{"X", []string{"A", "B"}, ""}},
		{"only alerts", `{"alerts":[]}`, ReviewResult{"", []string{}, ""}},
		{"nulls are missing", `{"corrected":null,"alerts":null,"suggestions":"S"}`, ReviewResult{"", []string{}, "S"}},
		{"extra keys ignored", `{"corrected":"X","score":9}`, ReviewResult{"X", []string{}, ""}},
		{"json fence", "```json\n{\"corrected\":\"X\"}\n```", ReviewResult{"X", []string{}, ""}},
		{"bare fence", "```\n{\"suggestions\":\"S\"}\n```", ReviewResult{"", []string{}, "S"}},
		{"surrounding whitespace", "\n  {\"corrected\":\"X\"}  \n", ReviewResult{"X", []string{}, ""}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeReviewResult(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(*got, tc.want) {
				t.Errorf("got %#v, want %#v", *got, tc.want)
			}
		})
	}
}

func TestDecodeReviewResult_ShapeErrors(t *testing.T) {
	tests := map[string]string{
		"prose":            "sorry, I cannot help",
		"empty":            "   ",
		"array":            `["corrected"]`,
		"string":           `"corrected"`,
		"number":           `42`,
		"no known keys":    `{"verdict":"fine"}`,
		"alerts not array": `{"alerts":"Missing signature"}`,
		"alert not string": `{"alerts":["ok", 3]}`,
		"corrected number": `{"corrected":12}`,
		"trailing data":    `{"corrected":"X"} {"corrected":"Y"}`,
		"trailing brace":   `{"corrected":"X"}}`,
		"trailing bracket": `{"corrected":"X"}]`,
		"truncated":        `{"corrected":"X"`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := DecodeReviewResult(raw)
			if res != nil {
				t.Fatalf("expected nil result, got %#v", res)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %v", err)
			}
			if de.Raw != raw {
				t.Errorf("raw not preserved: %q", de.Raw)
			}
			if !errors.Is(err, ErrDecodeShape) {
				t.Errorf("expected ErrDecodeShape in chain")
			}
		})
	}
}

// --- ReviewOutcome Tests ---

func TestReviewOutcomeDecoded(t *testing.T) {
	var nilOutcome *ReviewOutcome
	if nilOutcome.Decoded() {
		t.Error("nil outcome must not be decoded")
	}
	if (&ReviewOutcome{Raw: "x", DecodeErr: &DecodeError{Raw: "x"}}).Decoded() {
		t.Error("outcome with decode error must not be decoded")
	}
	if !(&ReviewOutcome{Result: &ReviewResult{}}).Decoded() {
		t.Error("outcome with result should be decoded")
	}
}
