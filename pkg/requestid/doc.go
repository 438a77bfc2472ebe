// Package requestid assigns every inbound request an id, exposes it to the
// logger through a context extractor, and propagates it to upstream calls.
package requestid
