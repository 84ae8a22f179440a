package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/teemow/recap/internal/ratelimit"
)

// capturingCall is a fake provider that records call order and can fail or
// block on selected prompts.
type capturingCall struct {
	mu      sync.Mutex
	prompts []string
	failOn  map[string]error
	blockOn map[string]chan struct{}
}

func newCapturingCall() *capturingCall {
	return &capturingCall{
		failOn:  make(map[string]error),
		blockOn: make(map[string]chan struct{}),
	}
}

func (c *capturingCall) fn(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	block := c.blockOn[prompt]
	failErr := c.failOn[prompt]
	c.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if failErr != nil {
		return "", failErr
	}
	return "echo:" + prompt, nil
}

func (c *capturingCall) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// largeBucket returns a bucket that never forces a wait in tests.
func largeBucket() *ratelimit.TokenBucket {
	return ratelimit.NewTokenBucket(1e9, 1e9)
}

func shutdownQueue(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("failed to shut down queue: %v", err)
	}
}

func TestQueue_ResolvesInEnqueueOrder(t *testing.T) {
	call := newCapturingCall()
	q := New(largeBucket(), call.fn)
	defer shutdownQueue(t, q)

	const n = 5
	handles := make([]*Pending, 0, n)
	want := make([]string, 0, n)
	for i := 0; i < n; i++ {
		prompt := fmt.Sprintf("request-%d", i)
		want = append(want, prompt)
		p, err := q.Enqueue(context.Background(), prompt, 100, 0.2, 50)
		if err != nil {
			t.Fatalf("failed to enqueue %q: %v", prompt, err)
		}
		handles = append(handles, p)
	}

	// Await out of order; resolution order must still follow enqueue order.
	for i := n - 1; i >= 0; i-- {
		text, err := handles[i].Wait(context.Background())
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if text != "echo:"+want[i] {
			t.Errorf("request %d resolved to %q, want %q", i, text, "echo:"+want[i])
		}
	}

	got := call.calls()
	if len(got) != n {
		t.Fatalf("provider saw %d calls, want %d", len(got), n)
	}
	for i, prompt := range got {
		if prompt != want[i] {
			t.Errorf("call %d was %q, want %q (FIFO violated)", i, prompt, want[i])
		}
	}
}

func TestQueue_FailureDoesNotStallOtherRequests(t *testing.T) {
	call := newCapturingCall()
	providerErr := errors.New("provider rejected the request")
	call.failOn["request-1"] = providerErr

	q := New(largeBucket(), call.fn)
	defer shutdownQueue(t, q)

	const n = 5
	handles := make([]*Pending, 0, n)
	for i := 0; i < n; i++ {
		p, err := q.Enqueue(context.Background(), fmt.Sprintf("request-%d", i), 100, 0.2, 50)
		if err != nil {
			t.Fatalf("failed to enqueue request %d: %v", i, err)
		}
		handles = append(handles, p)
	}

	for i, p := range handles {
		text, err := p.Wait(context.Background())
		if i == 1 {
			if !errors.Is(err, providerErr) {
				t.Errorf("request 1: err = %v, want the provider error", err)
			}
			continue
		}
		if err != nil {
			t.Errorf("request %d should have succeeded, got %v", i, err)
		}
		if want := fmt.Sprintf("echo:request-%d", i); text != want {
			t.Errorf("request %d resolved to %q, want %q", i, text, want)
		}
	}

	if got := call.calls(); len(got) != n {
		t.Errorf("provider saw %d calls, want %d (loop must continue past failures)", len(got), n)
	}
}

func TestQueue_WaitsOutTheBucket(t *testing.T) {
	// Capacity covers one request; each further request must wait a full
	// refill of 60 tokens at 600 tokens/s, i.e. at least 100ms each.
	bucket := ratelimit.NewTokenBucket(60, 600)
	call := newCapturingCall()
	q := New(bucket, call.fn)
	defer shutdownQueue(t, q)

	start := time.Now()
	handles := make([]*Pending, 0, 3)
	for i := 0; i < 3; i++ {
		p, err := q.Enqueue(context.Background(), fmt.Sprintf("request-%d", i), 0, 0.2, 60)
		if err != nil {
			t.Fatalf("failed to enqueue request %d: %v", i, err)
		}
		handles = append(handles, p)
	}
	for i, p := range handles {
		if _, err := p.Wait(context.Background()); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}

	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("three 60-token requests drained in %v; the bucket should have imposed at least 200ms of waiting", elapsed)
	}
}

func TestQueue_EnqueueAfterShutdownFails(t *testing.T) {
	q := New(largeBucket(), newCapturingCall().fn)
	shutdownQueue(t, q)

	if _, err := q.Enqueue(context.Background(), "late", 100, 0.2, 50); !errors.Is(err, ErrClosed) {
		t.Errorf("Enqueue after Shutdown: err = %v, want ErrClosed", err)
	}
}

func TestQueue_ShutdownRejectsQueuedAndCancelsInFlight(t *testing.T) {
	call := newCapturingCall()
	release := make(chan struct{})
	call.blockOn["request-0"] = release

	q := New(largeBucket(), call.fn)

	first, err := q.Enqueue(context.Background(), "request-0", 100, 0.2, 50)
	if err != nil {
		t.Fatalf("failed to enqueue request-0: %v", err)
	}
	second, err := q.Enqueue(context.Background(), "request-1", 100, 0.2, 50)
	if err != nil {
		t.Fatalf("failed to enqueue request-1: %v", err)
	}

	// Give the drain loop time to take request-0 in flight.
	waitForCalls(t, call, 1)
	if got := q.Len(); got != 1 {
		t.Errorf("Len() with one in flight and one queued = %d, want 1", got)
	}

	shutdownQueue(t, q)

	if _, err := first.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("in-flight request: err = %v, want context.Canceled", err)
	}
	if _, err := second.Wait(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("queued request: err = %v, want ErrClosed", err)
	}
}

func TestQueue_SecondWaitReportsClosed(t *testing.T) {
	q := New(largeBucket(), newCapturingCall().fn)
	defer shutdownQueue(t, q)

	p, err := q.Enqueue(context.Background(), "once", 100, 0.2, 50)
	if err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}
	if _, err := p.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}
	if _, err := p.Wait(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("second Wait: err = %v, want ErrClosed", err)
	}
}

func TestQueue_WaitHonorsCallerContext(t *testing.T) {
	call := newCapturingCall()
	release := make(chan struct{})
	call.blockOn["slow"] = release

	q := New(largeBucket(), call.fn)
	defer func() {
		close(release)
		shutdownQueue(t, q)
	}()

	p, err := q.Enqueue(context.Background(), "slow", 100, 0.2, 50)
	if err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait with expired ctx: err = %v, want deadline exceeded", err)
	}
}

func waitForCalls(t *testing.T, call *capturingCall, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(call.calls()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("provider never reached %d calls", n)
}

// capturingMetrics records queue metric events for assertions.
type capturingMetrics struct {
	mu     sync.Mutex
	depth  int
	waits  int
	tokens int
}

func (m *capturingMetrics) QueueDepthChanged(_ context.Context, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depth += delta
}

func (m *capturingMetrics) ObserveQueueWait(_ context.Context, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waits++
}

func (m *capturingMetrics) TokensConsumed(_ context.Context, tokens int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens += tokens
}

func (m *capturingMetrics) snapshot() (int, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depth, m.waits, m.tokens
}

func TestQueue_RecordsMetrics(t *testing.T) {
	call := newCapturingCall()
	metrics := &capturingMetrics{}
	q := New(largeBucket(), call.fn, WithMetrics(metrics))
	defer shutdownQueue(t, q)

	var handles []*Pending
	for i := 0; i < 3; i++ {
		p, err := q.Enqueue(context.Background(), fmt.Sprintf("req-%d", i), 100, 0.2, 500)
		if err != nil {
			t.Fatalf("failed to enqueue: %v", err)
		}
		handles = append(handles, p)
	}
	for _, p := range handles {
		if _, err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}

	depth, waits, tokens := metrics.snapshot()
	if depth != 0 {
		t.Errorf("queue depth after drain = %d, want 0", depth)
	}
	if waits != 3 {
		t.Errorf("wait observations = %d, want 3", waits)
	}
	if tokens != 1500 {
		t.Errorf("tokens consumed = %d, want 1500", tokens)
	}
}
