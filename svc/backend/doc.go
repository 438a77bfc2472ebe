// Package backend is the JSON client for the remote summarization service.
//
// The service owns user records, connected mailboxes and the RAG summaries
// shown on the dashboard. Calls are retried with exponential backoff on
// network errors, 5xx and throttling answers; a circuit breaker stops
// calling a backend that keeps failing.
package backend
