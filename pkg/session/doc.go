// Package session keeps per-browser state on the server. A signed cookie
// carries only the session token; the data lives in a Store, either
// MemoryStore for a single instance or RedisStore when several dashboard
// instances share state.
package session
