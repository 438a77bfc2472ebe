package calendar

import (
	gcal "google.golang.org/api/calendar/v3"
)

// Raw is what the fetchers return before normalization. Each fetcher fills
// only its own slice.
type Raw struct {
	Google  []*gcal.Event
	Zoho    []ZohoEvent
	Outlook []OutlookEvent
}

func (r *Raw) merge(o Raw) {
	r.Google = append(r.Google, o.Google...)
	r.Zoho = append(r.Zoho, o.Zoho...)
	r.Outlook = append(r.Outlook, o.Outlook...)
}

// ZohoEvent is one entry of the Zoho Calendar events list. Times are packed
// as YYYYMMDDTHHMMSS±HHMM, or YYYYMMDD for all-day events.
type ZohoEvent struct {
	UID         string `json:"uid"`
	Title       string `json:"title"`
	DateAndTime struct {
		Start    string `json:"start"`
		End      string `json:"end"`
		Timezone string `json:"timezone"`
	} `json:"dateandtime"`
	IsAllDay     bool   `json:"isallday"`
	Location     string `json:"location"`
	ViewEventURL string `json:"viewEventURL"`
	Organizer    string `json:"organizer"`
	OrgDName     string `json:"orgDName"`
	Attendees    []struct {
		Email  string `json:"email"`
		Status string `json:"status"`
	} `json:"attendees"`
}

// OutlookDateTime is Graph's dateTimeTimeZone.
type OutlookDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type outlookEmail struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// OutlookEvent is the subset of a Graph event the dashboard selects.
type OutlookEvent struct {
	ID       string          `json:"id"`
	Subject  string          `json:"subject"`
	Start    OutlookDateTime `json:"start"`
	End      OutlookDateTime `json:"end"`
	Location struct {
		DisplayName string `json:"displayName"`
	} `json:"location"`
	Attendees []struct {
		EmailAddress outlookEmail `json:"emailAddress"`
		Status       struct {
			Response string `json:"response"`
		} `json:"status"`
	} `json:"attendees"`
	Organizer struct {
		EmailAddress outlookEmail `json:"emailAddress"`
	} `json:"organizer"`
	Body struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	OnlineMeeting *struct {
		JoinURL string `json:"joinUrl"`
	} `json:"onlineMeeting"`
	WebLink string `json:"webLink"`
}
