// Package ratelimit implements the token bucket that governs spend against
// the Claude API's tokens-per-minute budget.
//
// A TokenBucket holds a continuously refilling balance of LLM tokens
// (billing units, not auth tokens). Admission control asks two questions:
//
//   - TryConsume(n): can n tokens be spent right now?
//   - WaitTime(n): if not, how long until they could be?
//
// Refill is lazy. The balance is brought up to date on every access from
// the elapsed wall-clock time, so the bucket needs no background goroutine
// and behaves deterministically under an injected clock.
//
// The request queue is the bucket's only consumer in production: it waits
// out WaitTime before each provider call and then consumes the call's
// estimated cost. Capacity is the configured tokens-per-minute limit and
// the refill rate is capacity/60 per second.
package ratelimit
