package domain

import (
	"context"
	"time"
)

// Guest categories accepted on invitee records.
const (
	CategoryVIP     = "VIP"
	CategoryRegular = "Regular"
)

// Invitee is a person known to an event before they RSVP.
// swagger:model Invitee
type Invitee struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	OwnerID   string    `json:"owner_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email_address"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteeCandidate is one tuple offered by a bulk import or manual entry.
// Row is the 1-based source row for reporting and is zero for manual entries.
type InviteeCandidate struct {
	Row       int    `json:"-"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email_address" validate:"required,email,max=254"`
	Category  string `json:"category" validate:"required,oneof=VIP Regular"`
}

// ImportFailure reports one rejected import tuple.
// swagger:model ImportFailure
type ImportFailure struct {
	Row    int    `json:"row"`
	Email  string `json:"email_address,omitempty"`
	Reason string `json:"reason"`
}

// ImportReport summarises a bulk import.
// swagger:model ImportReport
type ImportReport struct {
	Inserted int             `json:"total_inserted"`
	Failed   []ImportFailure `json:"failed_rows"`
}

// InviteeRepository defines storage operations for invitee records.
type InviteeRepository interface {
	// Create returns ErrInviteeExists when (event, email) is already taken.
	Create(ctx context.Context, inv *Invitee) error
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Invitee, error)
	ListByEventID(ctx context.Context, eventID string, page PaginationParams) ([]*Invitee, int, error)
	Delete(ctx context.Context, eventID, email string) error
}

// InviteeService manages an event's invitee list.
type InviteeService interface {
	AddInvitee(ctx context.Context, eventID, ownerID string, c InviteeCandidate) (*Invitee, error)
	ImportInvitees(ctx context.Context, eventID, ownerID string, candidates []InviteeCandidate) (*ImportReport, error)
	ListInvitees(ctx context.Context, eventID, ownerID string, page PaginationParams) ([]*Invitee, int, error)
	DeleteInvitee(ctx context.Context, eventID, ownerID, email string) error
}
