// Package queue serializes unbounded concurrent demand for Claude calls
// into a single budget-respecting stream.
//
// Many callers enqueue concurrently; one drain goroutine is the sole
// consumer. For each head request it waits until the token bucket can cover
// the request's estimated cost, removes the request from the queue,
// consumes the budget, performs the provider call, and resolves the
// caller's handle. Requests drain strictly in enqueue order and at most one
// provider call is in flight at any time.
//
// Failures are isolated per request: a rejected or throttled call resolves
// only its own handle with the error, and the loop moves on. The queue
// never retries on its own; callers that want a retry resubmit.
//
// The drain goroutine starts in New and lives until Shutdown, which stops
// intake, cancels any in-flight call, and rejects everything still queued
// with ErrClosed. Queue state is held only in memory; nothing survives a
// process restart.
package queue
