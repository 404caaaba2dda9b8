// Package llm provides an OpenAI-compatible chat completion client used to
// write the assisted frequency summary.
//
// Complete retries HTTP 408/429/5xx responses, empty replies and network
// timeouts with exponential backoff (1s doubling to 10s, 3 attempts by
// default), honouring Retry-After up to the cap. Context cancellation stops
// retries immediately. HealthCheck is a single cheap request for /nettest.
//
// A missing API key surfaces as services.ErrConfiguration. Callers own the
// fallback: when Complete fails the bot renders the report locally.
package llm
