// Package credentials relays provider credentials between the request that
// completed a connect flow and later requests of the same browser session.
//
// A Set holds at most one credential per provider. Relay.Middleware loads
// it once per request; SetTokens, ClearTokens and SetBackendToken write it
// back through a Store. CookieStore (the default) keeps everything in
// encrypted cookies; SessionStore keeps it server side in pkg/session.
//
// Values are plain strings. Canonical decodes legacy JSON-quoted values
// when they are read, so nothing past the store sees a quoted token.
package credentials
