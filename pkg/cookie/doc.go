// Package cookie reads and writes HTTP cookies that are either signed
// (HMAC-SHA256) or encrypted (AES-256-GCM).
//
// The dashboard keeps provider credentials and the OAuth state in encrypted
// cookies, so the browser holds the data but can neither read nor forge it.
// Several secrets may be configured: the first is used for writing and all
// of them are tried when reading, which allows rotating COOKIE_SECRETS
// without logging every user out.
package cookie
