package domain

import (
	"context"
	"fmt"
	"time"
)

// TimeOfDayLayout is the wire and storage format of event start and end times.
const TimeOfDayLayout = "15:04"

// DateLayout is the wire format of an event date.
const DateLayout = "2006-01-02"

// Event represents an organizer's event.
// swagger:model Event
type Event struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(ownerID, name string, date time.Time, startTime, endTime, location string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		OwnerID:   ownerID,
		Name:      name,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Location:  location,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// ParseTimeOfDay parses an "HH:MM" string into hours and minutes.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse(TimeOfDayLayout, s)
	if err != nil {
		return 0, 0, InvalidInput(fmt.Sprintf("invalid time of day %q, expected HH:MM", s))
	}
	return t.Hour(), t.Minute(), nil
}

// ValidateSchedule checks the start and end times of day. An end time earlier than the
// start time means the event runs past midnight; equal times are rejected.
func ValidateSchedule(startTime, endTime string) error {
	sh, sm, err := ParseTimeOfDay(startTime)
	if err != nil {
		return err
	}
	eh, em, err := ParseTimeOfDay(endTime)
	if err != nil {
		return err
	}
	if sh == eh && sm == em {
		return InvalidInput("end time must differ from start time")
	}
	return nil
}

// DayStart returns midnight of the event date in loc.
func (e *Event) DayStart(loc *time.Location) time.Time {
	y, m, d := e.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndsAt returns the instant the event ends in loc. When the end time of day is before
// the start time of day the end falls on the following day.
func (e *Event) EndsAt(loc *time.Location) (time.Time, error) {
	sh, sm, err := ParseTimeOfDay(e.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	eh, em, err := ParseTimeOfDay(e.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := e.Date.Date()
	if eh*60+em < sh*60+sm {
		d++
	}
	return time.Date(y, m, d, eh, em, 0, 0, loc), nil
}

// EventPatch holds optional event fields for an update; nil fields are unchanged.
type EventPatch struct {
	Name      *string
	Date      *time.Time
	StartTime *string
	EndTime   *string
	Location  *string
}

// Apply copies the set fields of p onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
}

// OrganizerSummary aggregates dashboard figures for one organizer.
// swagger:model OrganizerSummary
type OrganizerSummary struct {
	TotalEvents    int     `json:"total_events"`
	UpcomingEvents int     `json:"upcoming_events"`
	TotalGuests    int     `json:"total_guests"`
	AcceptedGuests int     `json:"accepted_guests"`
	CheckedIn      int     `json:"checked_in"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// EventRSVPCount is the RSVP breakdown of one event. Cancelled RSVPs count as declined.
// swagger:model EventRSVPCount
type EventRSVPCount struct {
	EventID   string    `json:"event_id"`
	EventName string    `json:"event_name"`
	Date      time.Time `json:"date"`
	Accepted  int       `json:"accepted_rsvps"`
	Declined  int       `json:"declined_rsvps"`
	Total     int       `json:"total_rsvps"`
}

// PlatformStatistics aggregates every event for administrators.
// swagger:model PlatformStatistics
type PlatformStatistics struct {
	TotalEvents     int              `json:"total_events"`
	TotalOrganizers int              `json:"total_organizers"`
	TotalRSVPs      int              `json:"total_rsvps"`
	AcceptedRSVPs   int              `json:"total_rsvp_accepted"`
	RSVPsPerEvent   []EventRSVPCount `json:"rsvps_per_event"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOwnerID(ctx context.Context, ownerID string, page PaginationParams) ([]*Event, int, error)
	ListAll(ctx context.Context, page PaginationParams) ([]*Event, int, error)
	// Update rewrites the event row. A non-nil credentialExpiry is stamped on every
	// guest of the event in the same transaction.
	Update(ctx context.Context, event *Event, credentialExpiry *time.Time) error
	Delete(ctx context.Context, id string) error
	SummarizeByOwner(ctx context.Context, ownerID string, today time.Time) (*OrganizerSummary, error)
	// RSVPCountsByOwner and RSVPCounts order events by total RSVPs, busiest first.
	RSVPCountsByOwner(ctx context.Context, ownerID string) ([]EventRSVPCount, error)
	RSVPCounts(ctx context.Context) ([]EventRSVPCount, error)
	SummarizePlatform(ctx context.Context) (*PlatformStatistics, error)
}

// EventService defines event management operations for organizers.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID, requesterID string) (*Event, error)
	ListMyEvents(ctx context.Context, ownerID string, page PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, eventID, ownerID string, patch EventPatch) (*Event, error)
	// DeleteEvent removes the event. admin bypasses the ownership check.
	DeleteEvent(ctx context.Context, eventID, requesterID string, admin bool) error
	OrganizerSummary(ctx context.Context, ownerID string) (*OrganizerSummary, error)
	// RSVPBreakdown is the per-event RSVP distribution of the organizer's events.
	RSVPBreakdown(ctx context.Context, ownerID string) ([]EventRSVPCount, error)

	// Administrator views across every organizer.
	ListAllEvents(ctx context.Context, page PaginationParams) ([]*Event, int, error)
	PlatformStatistics(ctx context.Context) (*PlatformStatistics, error)
}
