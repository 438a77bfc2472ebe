package calendar

import (
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/loopinhq/loopin"
)

const (
	zohoLayout       = "20060102T150405"
	zohoDateLayout   = "20060102"
	outlookLayout    = "2006-01-02T15:04:05.9999999"
	googleDateLayout = "2006-01-02"
)

// Normalize converts raw provider events into unified events, Google first,
// then Zoho, then Outlook, each in provider order. Zoho wall-clock times
// are read in loc. Times that cannot be parsed become the zero time.
func Normalize(raw Raw, loc *time.Location) []loopin.CalendarEvent {
	if loc == nil {
		loc = time.Local
	}
	out := make([]loopin.CalendarEvent, 0, len(raw.Google)+len(raw.Zoho)+len(raw.Outlook))
	for _, e := range raw.Google {
		if e != nil {
			out = append(out, fromGoogle(e, loc))
		}
	}
	for _, e := range raw.Zoho {
		out = append(out, fromZoho(e, loc))
	}
	for _, e := range raw.Outlook {
		out = append(out, fromOutlook(e))
	}
	return out
}

func fromGoogle(e *gcal.Event, loc *time.Location) loopin.CalendarEvent {
	ev := loopin.CalendarEvent{
		ID:          e.Id,
		Title:       e.Summary,
		Start:       googleTime(e.Start, loc),
		End:         googleTime(e.End, loc),
		Location:    e.Location,
		Source:      loopin.SourceGoogle,
		Description: e.Description,
		MeetingLink: firstNonEmpty(e.HangoutLink, e.HtmlLink, e.Location),
	}
	if e.Organizer != nil {
		ev.Organizer = e.Organizer.Email
	}
	for _, a := range e.Attendees {
		if a == nil {
			continue
		}
		ev.Attendees = append(ev.Attendees, loopin.Attendee{Email: a.Email, ResponseStatus: a.ResponseStatus})
	}
	return ev
}

// googleTime reads dateTime, falling back to the all-day date.
func googleTime(dt *gcal.EventDateTime, loc *time.Location) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	if dt.Date != "" {
		if dt.TimeZone != "" {
			if l, err := time.LoadLocation(dt.TimeZone); err == nil {
				loc = l
			}
		}
		t, _ := time.ParseInLocation(googleDateLayout, dt.Date, loc)
		return t
	}
	return time.Time{}
}

func fromZoho(e ZohoEvent, loc *time.Location) loopin.CalendarEvent {
	ev := loopin.CalendarEvent{
		ID:          e.UID,
		Title:       e.Title,
		Start:       zohoTime(e.DateAndTime.Start, loc),
		End:         zohoTime(e.DateAndTime.End, loc),
		Location:    e.Location,
		Source:      loopin.SourceZoho,
		Organizer:   e.Organizer,
		Description: e.OrgDName,
		MeetingLink: e.ViewEventURL,
	}
	for _, a := range e.Attendees {
		ev.Attendees = append(ev.Attendees, loopin.Attendee{Email: a.Email, ResponseStatus: a.Status})
	}
	return ev
}

// zohoTime reads the packed local wall clock and ignores the trailing
// offset, so 20250726T150000+0530 is 15:00 in loc.
func zohoTime(s string, loc *time.Location) time.Time {
	var (
		t   time.Time
		err error
	)
	switch {
	case len(s) >= len(zohoLayout) && s[8] == 'T':
		t, err = time.ParseInLocation(zohoLayout, s[:len(zohoLayout)], loc)
	case len(s) == len(zohoDateLayout):
		t, err = time.ParseInLocation(zohoDateLayout, s, loc)
	default:
		return time.Time{}
	}
	if err != nil {
		return time.Time{}
	}
	return t
}

func fromOutlook(e OutlookEvent) loopin.CalendarEvent {
	ev := loopin.CalendarEvent{
		ID:          e.ID,
		Title:       e.Subject,
		Start:       outlookTime(e.Start),
		End:         outlookTime(e.End),
		Location:    e.Location.DisplayName,
		Source:      loopin.SourceOutlook,
		Organizer:   e.Organizer.EmailAddress.Address,
		Description: e.Body.Content,
		MeetingLink: e.WebLink,
	}
	if e.OnlineMeeting != nil && e.OnlineMeeting.JoinURL != "" {
		ev.MeetingLink = e.OnlineMeeting.JoinURL
	}
	for _, a := range e.Attendees {
		ev.Attendees = append(ev.Attendees, loopin.Attendee{Email: a.EmailAddress.Address, ResponseStatus: a.Status.Response})
	}
	return ev
}

// outlookTime reads Graph's zone-less dateTime in its timeZone. Unknown
// zone names (Windows ids) fall back to UTC, which is what the fetcher
// asks Graph for.
func outlookTime(dt OutlookDateTime) time.Time {
	if dt.DateTime == "" {
		return time.Time{}
	}
	loc := time.UTC
	if dt.TimeZone != "" && dt.TimeZone != "UTC" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	}
	t, err := time.ParseInLocation(outlookLayout, dt.DateTime, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
