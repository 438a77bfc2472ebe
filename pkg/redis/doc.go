// Package redis connects to the optional Redis server backing the session
// store and exposes a readiness probe for it.
package redis
