// Package loopin holds the domain types shared by the Loopin dashboard
// services: the supported mail/calendar providers, the credential a provider
// connect flow produces, and the unified calendar event every provider's
// payload is normalized into.
//
// The packages under svc/ build on these types:
//
//   - svc/oauth exchanges provider authorization codes for a Credential.
//   - svc/credentials relays credentials between requests of one browser session.
//   - svc/calendar fetches provider events and normalizes them into CalendarEvent.
//   - svc/mailbox reads recent messages over IMAP with XOAUTH2.
//   - svc/backend relays account records and queries to the summarization backend.
//
// modules/dashboard exposes them over HTTP and cmd/loopin wires the process.
package loopin
