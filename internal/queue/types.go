package queue

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned for requests that cannot run because the queue has
// been shut down: by Enqueue after Shutdown was called, and as the
// resolution of requests that were still waiting when the drain loop
// stopped.
var ErrClosed = errors.New("request queue is closed")

// CallFunc performs one provider call. Implementations must honor ctx
// cancellation and distinguish throttling from other failures through
// their returned error types.
type CallFunc func(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error)

// Result is the single resolution of a queued request: either the provider
// response text or the error that ended the attempt.
type Result struct {
	Text string
	Err  error
}

// Request is one pending provider call owned by the queue. The result
// channel is buffered for exactly one send; the drain loop writes it once
// and closes it, which makes double resolution structurally impossible.
type Request struct {
	ID              string
	Prompt          string
	MaxOutputTokens int
	Temperature     float64
	EstimatedTokens int
	EnqueuedAt      time.Time

	result chan Result
}

// resolve delivers the request's single result and seals the channel.
// It must be called exactly once per request.
func (r *Request) resolve(res Result) {
	r.result <- res
	close(r.result)
}

// Pending is the caller's handle to an enqueued request.
type Pending struct {
	id     string
	result <-chan Result
}

// ID returns the queued request's identifier, for logging and correlation.
func (p *Pending) ID() string {
	return p.id
}

// Wait blocks until the request resolves or ctx is done. Cancelling ctx
// abandons the wait but not the request; once enqueued, a request runs to
// completion or failure.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case res, ok := <-p.result:
		if !ok {
			return "", ErrClosed
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
