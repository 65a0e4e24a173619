package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrDecodeShape is wrapped by every DecodeError.
var ErrDecodeShape = errors.New("completion reply does not match the review schema")

// DecodeError carries the raw reply so callers can show it verbatim.
type DecodeError struct {
	Raw    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %s", ErrDecodeShape, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrDecodeShape }

var reviewKeys = []string{"corrected", "alerts", "suggestions"}

// DecodeReviewResult parses a completion reply into a ReviewResult.
//
// The reply must be a JSON object (optionally wrapped in a Markdown code
// fence) holding at least one of corrected, alerts, suggestions. Missing keys
// default to empty values; null is treated as missing. Anything else yields a
// *DecodeError.
func DecodeReviewResult(raw string) (*ReviewResult, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, &DecodeError{Raw: raw, Reason: "reply is empty"}
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodeError{Raw: raw, Reason: "reply is not valid JSON: " + err.Error()}
	}
	if rest := body[dec.InputOffset():]; strings.TrimSpace(rest) != "" {
		return nil, &DecodeError{Raw: raw, Reason: "reply has trailing data after the JSON value"}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &DecodeError{Raw: raw, Reason: fmt.Sprintf("reply is a JSON %s, not an object", jsonKind(v))}
	}

	found := false
	for _, k := range reviewKeys {
		if _, ok := obj[k]; ok {
			found = true
			break
		}
	}
	if !found {
		return nil, &DecodeError{Raw: raw, Reason: "reply object has none of corrected, alerts, suggestions"}
	}

	res := &ReviewResult{Alerts: []string{}}
	var err error
	if res.Corrected, err = stringField(obj, "corrected"); err != nil {
		return nil, &DecodeError{Raw: raw, Reason: err.Error()}
	}
	if res.Suggestions, err = stringField(obj, "suggestions"); err != nil {
		return nil, &DecodeError{Raw: raw, Reason: err.Error()}
	}
	if a, ok := obj["alerts"]; ok && a != nil {
		list, ok := a.([]any)
		if !ok {
			return nil, &DecodeError{Raw: raw, Reason: fmt.Sprintf("alerts is a JSON %s, not an array", jsonKind(a))}
		}
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, &DecodeError{Raw: raw, Reason: fmt.Sprintf("alerts[%d] is a JSON %s, not a string", i, jsonKind(item))}
			}
			res.Alerts = append(res.Alerts, s)
		}
	}
	return res, nil
}

func stringField(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s is a JSON %s, not a string", key, jsonKind(v))
	}
	return s, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		// drop the info string ("json", "JSON", ...)
		if info := strings.TrimSpace(t[:i]); !strings.ContainsAny(info, "{[") {
			t = t[i+1:]
		}
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
