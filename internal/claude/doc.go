// Package claude holds the provider-facing half of the analysis core: the
// wire client for the Anthropic messages API and the Coordinator that
// callers submit prompts through.
//
// The Coordinator estimates each prompt's token cost with the same crude
// 4-characters-per-token heuristic the rest of the system budgets with.
// Prompts under the per-call ceiling become a single queued request;
// larger prompts are split by the chunk package, submitted sequentially
// with pacing delays, and their responses joined with blank lines. Either
// way a caller sees one result or one error.
//
// Error taxonomy: throttling surfaces as *RateLimitError after a fixed
// cooldown (never an automatic resubmit), every other provider failure as
// *APIError. Both reject only their own request; the queue keeps draining.
package claude
