// Package mailbox reads a user's recent unread mail over IMAP, signing in
// with the OAuth2 access token obtained by the connect flow (SASL XOAUTH2).
package mailbox
