// Package dashboard is the HTTP surface of Loopin.
//
// It serves the provider connect flows (start, callback, and the Zoho
// implicit-grant fragment page), the connected-account list, the calendar
// endpoints, the IMAP mail reader and the summarization backend relay.
// Credentials move between requests through credentials.Relay; the state of
// each connect flow is bound to the browser with a signed cookie named
// oauth_state_{provider}.
//
//	m := dashboard.New(cfg, oauthSvc, relay, cookies,
//		dashboard.WithCalendar(calendarSvc),
//		dashboard.WithMailbox(reader),
//		dashboard.WithBackend(backendClient),
//		dashboard.WithLogger(log),
//	)
//	srv.Run(ctx, m.Router())
package dashboard
