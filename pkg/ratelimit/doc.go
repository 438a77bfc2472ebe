// Package ratelimit is a token bucket limiter with an in-memory store and
// an HTTP middleware. The dashboard puts it in front of the routes that call
// IMAP servers or the summarization backend.
//
//	b, err := ratelimit.NewBucket(ratelimit.NewMemoryStore(), cfg)
//	r.Use(ratelimit.Middleware(b, ratelimit.ClientIP))
package ratelimit
