package loopin

import "time"

// Source names the provider a unified calendar event was derived from.
type Source string

const (
	SourceGoogle  Source = "google"
	SourceZoho    Source = "zoho"
	SourceOutlook Source = "outlook"
)

// SourceOf maps a provider to its calendar source. Yahoo has no calendar.
func SourceOf(p Provider) (Source, bool) {
	switch p {
	case ProviderGoogle:
		return SourceGoogle, true
	case ProviderZoho:
		return SourceZoho, true
	case ProviderOutlook:
		return SourceOutlook, true
	}
	return "", false
}

// Attendee is a meeting participant and their reply.
type Attendee struct {
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// CalendarEvent is the provider-independent event shape.
type CalendarEvent struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Location    string     `json:"location,omitempty"`
	Attendees   []Attendee `json:"attendees,omitempty"`
	Source      Source     `json:"source"`
	Organizer   string     `json:"organizer,omitempty"`
	Description string     `json:"description,omitempty"`
	MeetingLink string     `json:"meetingLink,omitempty"`
}
