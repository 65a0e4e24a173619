package ai_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-qa-review/internal/domain/ports/adapter"
	ai "invoice-qa-review/internal/infra/adapters/ai"
)

type slowAI struct {
	stubAI
	inFlight, peak int32
}

func (s *slowAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	for {
		p := atomic.LoadInt32(&s.peak)
		if n <= p || atomic.CompareAndSwapInt32(&s.peak, p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	atomic.AddInt32(&s.inFlight, -1)
	return "ok", adapter.Usage{}, nil
}

func TestLimitedAI_SerializesChats(t *testing.T) {
	inner := &slowAI{}
	l := ai.NewLimitedAI(inner, 1)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := l.ChatWithUsage(context.Background(), "m", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&inner.peak))
}

type gateAI struct {
	stubAI
	entered chan struct{}
	release chan struct{}
}

func (g *gateAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	g.entered <- struct{}{}
	<-g.release
	return "ok", adapter.Usage{}, nil
}

func TestLimitedAI_CanceledWhileWaiting(t *testing.T) {
	inner := &gateAI{entered: make(chan struct{}, 1), release: make(chan struct{})}
	l := ai.NewLimitedAI(inner, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = l.ChatWithUsage(context.Background(), "m", nil)
	}()
	<-inner.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := l.ChatWithUsage(ctx, "m", nil)
	require.ErrorIs(t, err, context.Canceled)

	close(inner.release)
	<-done
}

func TestLimitedAI_NonPositiveLimitReturnsInner(t *testing.T) {
	inner := &stubAI{name: "x"}
	assert.Same(t, adapter.AIServiceAdapter(inner), ai.NewLimitedAI(inner, 0))
}
