// Package calendar fetches events from Google Calendar, Microsoft Graph and
// Zoho Calendar and normalizes them into loopin.CalendarEvent.
//
// Service.Events queries every source the session holds a token for at the
// same time, each under its own timeout. A source that fails contributes an
// entry to Result.Errors instead of events; it never hides the others.
// Normalize is a pure function and can be used on its own.
package calendar
