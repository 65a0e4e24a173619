// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"

	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/ports/adapter"
)

// memRecordSource is a small in-memory record API used by unit tests.
type memRecordSource struct {
	mu       sync.Mutex
	jobs     map[string]map[string]any
	invoices map[string]map[string]any
	calls    []string
	jobErr   error // used by tests to simulate record API failures
}

func newMemRecordSource() *memRecordSource {
	return &memRecordSource{jobs: map[string]map[string]any{}, invoices: map[string]map[string]any{}}
}

func (m *memRecordSource) FetchJob(ctx context.Context, id string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "job/"+id)
	if m.jobErr != nil {
		return nil, m.jobErr
	}
	doc, ok := m.jobs[id]
	if !ok {
		return nil, &domain.FetchError{Resource: domain.ResourceJob, ID: id, StatusCode: 404}
	}
	return doc, nil
}

func (m *memRecordSource) FetchInvoice(ctx context.Context, id string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "invoice/"+id)
	doc, ok := m.invoices[id]
	if !ok {
		return nil, &domain.FetchError{Resource: domain.ResourceInvoice, ID: id, StatusCode: 404}
	}
	return doc, nil
}

func (m *memRecordSource) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// scriptedAI returns a fixed reply and records what it was sent.
type scriptedAI struct {
	mu       sync.Mutex
	reply    string
	usage    adapter.Usage
	err      error
	countErr error
	chats    [][]adapter.Message
	models   []string
}

func (s *scriptedAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"gpt-4o"}, nil
}

func (s *scriptedAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model}, nil
}

func (s *scriptedAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n, nil
}

func (s *scriptedAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	r, _, err := s.ChatWithUsage(ctx, model, messages)
	return r, err
}

func (s *scriptedAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = append(s.chats, messages)
	s.models = append(s.models, model)
	if s.err != nil {
		return "", adapter.Usage{}, s.err
	}
	return s.reply, s.usage, nil
}

func (s *scriptedAI) chatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}
