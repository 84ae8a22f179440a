package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/recap/internal/ratelimit"
)

// Metrics receives queue observability events. instrumentation.Metrics
// implements it; the zero queue uses a no-op.
type Metrics interface {
	QueueDepthChanged(ctx context.Context, delta int)
	ObserveQueueWait(ctx context.Context, d time.Duration)
	TokensConsumed(ctx context.Context, tokens int)
}

type noopMetrics struct{}

func (noopMetrics) QueueDepthChanged(context.Context, int)          {}
func (noopMetrics) ObserveQueueWait(context.Context, time.Duration) {}
func (noopMetrics) TokensConsumed(context.Context, int)             {}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the queue's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithMetrics sets the queue's metrics recorder.
func WithMetrics(metrics Metrics) Option {
	return func(q *Queue) {
		if metrics != nil {
			q.metrics = metrics
		}
	}
}

// WithClock overrides the queue's time source for enqueue timestamps and
// wait accounting. Tests use this together with ratelimit.WithClock.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

// Queue serializes provider calls against a shared token budget. Callers
// enqueue concurrently; a single drain goroutine, started at construction
// and running for the queue's lifetime, consumes the FIFO one request at a
// time. At most one provider call is ever in flight, which keeps bucket
// accounting exact without coordination between callers.
type Queue struct {
	bucket  *ratelimit.TokenBucket
	call    CallFunc
	logger  *slog.Logger
	metrics Metrics
	now     func() time.Time

	mu     sync.Mutex
	fifo   []*Request
	closed bool

	wake     chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	// callCtx covers in-flight provider calls; Shutdown cancels it.
	callCtx context.Context
	cancel  context.CancelFunc
}

// New creates a Queue draining into call under bucket's budget. The drain
// goroutine starts immediately and parks while the queue is empty.
func New(bucket *ratelimit.TokenBucket, call CallFunc, opts ...Option) *Queue {
	q := &Queue{
		bucket:  bucket,
		call:    call,
		logger:  slog.Default(),
		metrics: noopMetrics{},
		now:     time.Now,
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.callCtx, q.cancel = context.WithCancel(context.Background())
	go q.run()
	return q
}

// Enqueue appends a request to the queue tail and returns the caller's
// result handle. ctx guards only the hand-off; it does not bound the
// request's execution. Returns ErrClosed after Shutdown.
func (q *Queue) Enqueue(ctx context.Context, prompt string, maxOutputTokens int, temperature float64, estimatedTokens int) (*Pending, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := &Request{
		ID:              uuid.NewString(),
		Prompt:          prompt,
		MaxOutputTokens: maxOutputTokens,
		Temperature:     temperature,
		EstimatedTokens: estimatedTokens,
		EnqueuedAt:      q.now(),
		result:          make(chan Result, 1),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrClosed
	}
	q.fifo = append(q.fifo, req)
	position := len(q.fifo)
	q.mu.Unlock()

	q.metrics.QueueDepthChanged(ctx, 1)

	select {
	case q.wake <- struct{}{}:
	default:
	}

	q.logger.Debug("request enqueued",
		"request_id", req.ID,
		"position", position,
		"estimated_tokens", estimatedTokens)

	return &Pending{id: req.ID, result: req.result}, nil
}

// Len reports the number of requests waiting in the queue. An in-flight
// request is no longer counted.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fifo)
}

// Shutdown stops intake, cancels any in-flight provider call, and rejects
// all still-queued requests with ErrClosed. It returns once the drain
// goroutine has exited or ctx is done.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.stopCh)
		q.cancel()
	})

	select {
	case <-q.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the drain loop: peek the head, wait out the bucket, remove the
// head, consume its budget, perform the call, resolve the handle. One
// request's failure never stops the loop.
func (q *Queue) run() {
	defer close(q.doneCh)

	for {
		head, ok := q.awaitHead()
		if !ok {
			break
		}
		if !q.waitForBudget(head) {
			break
		}

		// Removed before the call begins; no other path can reprocess it.
		q.removeHead(head)
		q.metrics.QueueDepthChanged(q.callCtx, -1)

		if !q.consumeBudget(head) {
			head.resolve(Result{Err: ErrClosed})
			break
		}
		q.metrics.TokensConsumed(q.callCtx, head.EstimatedTokens)

		waited := q.now().Sub(head.EnqueuedAt)
		q.metrics.ObserveQueueWait(q.callCtx, waited)
		q.logger.Debug("processing request",
			"request_id", head.ID,
			"queued_for", waited,
			"remaining", q.Len())

		text, err := q.call(q.callCtx, head.Prompt, head.MaxOutputTokens, head.Temperature)
		if err != nil {
			q.logger.Warn("request failed",
				"request_id", head.ID,
				"error", err,
				"remaining", q.Len())
			head.resolve(Result{Err: err})
			continue
		}

		q.logger.Debug("request processed",
			"request_id", head.ID,
			"remaining", q.Len())
		head.resolve(Result{Text: text})
	}

	q.rejectAll(ErrClosed)
}

// awaitHead blocks until the queue has a head request, returning false when
// the queue is shutting down.
func (q *Queue) awaitHead() (*Request, bool) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return nil, false
		}
		if len(q.fifo) > 0 {
			head := q.fifo[0]
			q.mu.Unlock()
			return head, true
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-q.stopCh:
			return nil, false
		}
	}
}

// waitForBudget parks until the bucket reports the request affordable,
// returning false when shutdown interrupts the wait. The request stays at
// the queue head while waiting.
func (q *Queue) waitForBudget(req *Request) bool {
	for {
		wait := q.bucket.WaitTime(req.EstimatedTokens)
		if wait <= 0 {
			return true
		}
		q.logger.Info("waiting for token budget",
			"request_id", req.ID,
			"wait", wait,
			"estimated_tokens", req.EstimatedTokens)
		if !q.park(wait) {
			return false
		}
	}
}

// consumeBudget takes the request's estimated tokens from the bucket.
// WaitTime reported zero just before, so the first attempt succeeds unless
// the clock moved; the loop re-waits in that case.
func (q *Queue) consumeBudget(req *Request) bool {
	for {
		if q.bucket.TryConsume(req.EstimatedTokens) {
			return true
		}
		wait := q.bucket.WaitTime(req.EstimatedTokens)
		if wait > 0 && !q.park(wait) {
			return false
		}
	}
}

// park sleeps for d, returning false if shutdown interrupts the sleep.
func (q *Queue) park(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-q.stopCh:
		return false
	}
}

// removeHead pops req from the queue front.
func (q *Queue) removeHead(req *Request) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.fifo) > 0 && q.fifo[0] == req {
		q.fifo = q.fifo[1:]
	}
}

// rejectAll resolves every still-queued request with err. Requests already
// removed by the drain loop are never touched, so each request still
// resolves exactly once.
func (q *Queue) rejectAll(err error) {
	q.mu.Lock()
	pending := q.fifo
	q.fifo = nil
	q.mu.Unlock()

	for _, req := range pending {
		req.resolve(Result{Err: err})
	}
	if len(pending) > 0 {
		q.metrics.QueueDepthChanged(context.Background(), -len(pending))
		q.logger.Warn("rejected queued requests on shutdown", "count", len(pending))
	}
}
