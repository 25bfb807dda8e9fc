package domain

import (
	"context"
	"time"
)

// RSVPStatus is a guest's response to an invitation.
type RSVPStatus string

const (
	RSVPAccepted RSVPStatus = "accepted"
	RSVPDeclined RSVPStatus = "declined"
)

// Valid reports whether s is a known status.
func (s RSVPStatus) Valid() bool {
	return s == RSVPAccepted || s == RSVPDeclined
}

// Guest is the record created when an invitee responds. Only CheckedIn, SeatLabel and
// the cancellation fields change after creation.
// swagger:model Guest
type Guest struct {
	ID                  string     `json:"id"`
	EventID             string     `json:"event_id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Email               string     `json:"email_address"`
	Category            string     `json:"category"`
	RSVPStatus          RSVPStatus `json:"rsvp_status"`
	AccessCode          string     `json:"access_code"`
	QRCode              []byte     `json:"qr_code"`
	CredentialExpiresAt time.Time  `json:"credential_expires_at"`
	CheckedIn           bool       `json:"checked_in"`
	SeatLabel           *string    `json:"seat_number"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Cancelled reports whether the RSVP was cancelled after it was submitted.
func (g *Guest) Cancelled() bool {
	return g.CancelledAt != nil
}

// GuestWithEvent joins a guest with the event it belongs to.
type GuestWithEvent struct {
	Guest *Guest `json:"guest"`
	Event *Event `json:"event"`
}

// InvitationView is what a credential holder sees about their own invitation.
// swagger:model InvitationView
type InvitationView struct {
	GuestID       string     `json:"guest_id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	RSVPStatus    RSVPStatus `json:"rsvp_status"`
	Cancelled     bool       `json:"cancelled"`
	CheckedIn     bool       `json:"checked_in"`
	SeatLabel     *string    `json:"seat_number"`
	QRCode        []byte     `json:"qr_code"`
	ExpiresAt     time.Time  `json:"credential_expires_at"`
	EventName     string     `json:"event_name"`
	EventDate     string     `json:"event_date"`
	EventLocation string     `json:"event_location"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
}

// NewInvitationView builds the self-service view from a joined guest and event.
func NewInvitationView(gw *GuestWithEvent) *InvitationView {
	g, e := gw.Guest, gw.Event
	return &InvitationView{
		GuestID:       g.ID,
		FirstName:     g.FirstName,
		LastName:      g.LastName,
		RSVPStatus:    g.RSVPStatus,
		Cancelled:     g.Cancelled(),
		CheckedIn:     g.CheckedIn,
		SeatLabel:     g.SeatLabel,
		QRCode:        g.QRCode,
		ExpiresAt:     g.CredentialExpiresAt,
		EventName:     e.Name,
		EventDate:     e.Date.Format(DateLayout),
		EventLocation: e.Location,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
	}
}

// GuestRepository defines storage operations for guests.
type GuestRepository interface {
	// Create returns ErrAlreadyResponded when (event, email) already has a guest.
	Create(ctx context.Context, g *Guest) error
	GetWithEventByAccessCode(ctx context.Context, code string) (*GuestWithEvent, error)
	ExistsForEventAndEmail(ctx context.Context, eventID, email string) (bool, error)
	ListByEventID(ctx context.Context, eventID string, page PaginationParams) ([]*Guest, int, error)
	// Cancel declines the RSVP, releases the seat and stamps cancelled_at. It reports
	// false when the guest was already cancelled.
	Cancel(ctx context.Context, guestID string, at time.Time) (bool, error)
	// MarkCheckedIn sets checked_in and reports false when it was already set.
	MarkCheckedIn(ctx context.Context, guestID string) (bool, error)
}

// GuestService is the RSVP lifecycle.
type GuestService interface {
	SubmitRSVP(ctx context.Context, eventID, email string, status RSVPStatus) (*Guest, error)
	CancelRSVP(ctx context.Context, code string) (*Guest, error)
	LookupByCode(ctx context.Context, code string) (*InvitationView, error)
	ListGuests(ctx context.Context, eventID, ownerID string, page PaginationParams) ([]*Guest, int, error)
}

// CheckInResult is the outcome of a successful or idempotent check-in.
// swagger:model CheckInResult
type CheckInResult struct {
	GuestID          string  `json:"guest_id"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	SeatLabel        *string `json:"seat_number"`
	AlreadyCheckedIn bool    `json:"already_checked_in"`
	Message          string  `json:"message"`
}

// CheckInService validates scanned credentials at the door.
type CheckInService interface {
	CheckIn(ctx context.Context, code, organizerID string) (*CheckInResult, error)
}
