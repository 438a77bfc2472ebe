// Package oauth connects a user's Google, Outlook, Zoho and Yahoo accounts.
//
// One generic code path serves all four providers; a per-provider record
// holds what differs: endpoints, scopes, extra authorization parameters,
// the grant (Flow) and how to resolve the account's email.
//
// Start returns the consent URL plus a signed, short-lived state that the
// caller binds to the browser (a cookie). Exchange finishes a code-grant
// callback and Accept finishes Zoho's implicit grant. Both verify the state
// against the bound value and return a credential only after the account
// email is known; a failed identity lookup discards the tokens.
package oauth
