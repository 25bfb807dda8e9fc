package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// MaxSeats caps the number of seats a single layout may enumerate.
const MaxSeats = 10000

// LayoutKind names a seating shape.
type LayoutKind string

const (
	LayoutTable LayoutKind = "table"
	LayoutRows  LayoutKind = "rows"
)

// Shape is a seating layout: either TableLayout or RowLayout, never both.
type Shape interface {
	Kind() LayoutKind
	// Seats returns every seat label, groups ascending then seats ascending.
	Seats() []string
	Capacity() int
	isShape()
}

// TableLayout is a grid of tables each with the same number of seats.
type TableLayout struct {
	Tables        int
	SeatsPerTable int
}

func (TableLayout) Kind() LayoutKind { return LayoutTable }
func (TableLayout) isShape()         {}

func (l TableLayout) Capacity() int { return l.Tables * l.SeatsPerTable }

func (l TableLayout) Seats() []string {
	return enumerate("Table", l.Tables, l.SeatsPerTable)
}

// RowLayout is a grid of rows each with the same number of seats.
type RowLayout struct {
	Rows        int
	SeatsPerRow int
}

func (RowLayout) Kind() LayoutKind { return LayoutRows }
func (RowLayout) isShape()         {}

func (l RowLayout) Capacity() int { return l.Rows * l.SeatsPerRow }

func (l RowLayout) Seats() []string {
	return enumerate("Row", l.Rows, l.SeatsPerRow)
}

func enumerate(group string, groups, perGroup int) []string {
	if groups <= 0 || perGroup <= 0 {
		return []string{}
	}
	labels := make([]string, 0, groups*perGroup)
	for g := 1; g <= groups; g++ {
		for s := 1; s <= perGroup; s++ {
			labels = append(labels, fmt.Sprintf("%s %d - Seat %d", group, g, s))
		}
	}
	return labels
}

// EnumerateSeats returns the ordered seat labels of a shape. A nil shape has no seats.
func EnumerateSeats(s Shape) []string {
	if s == nil {
		return []string{}
	}
	return s.Seats()
}

// NewShape builds a shape from the four optional dimensions of a request or a stored
// row. Exactly one pair must be set and both of its values must be positive.
func NewShape(tableCount, seatsPerTable, rowCount, seatsPerRow *int) (Shape, error) {
	hasTable := tableCount != nil || seatsPerTable != nil
	hasRows := rowCount != nil || seatsPerRow != nil
	var s Shape
	switch {
	case hasTable && !hasRows:
		if tableCount == nil || seatsPerTable == nil || *tableCount <= 0 || *seatsPerTable <= 0 {
			return nil, ErrInvalidShape
		}
		s = TableLayout{Tables: *tableCount, SeatsPerTable: *seatsPerTable}
	case hasRows && !hasTable:
		if rowCount == nil || seatsPerRow == nil || *rowCount <= 0 || *seatsPerRow <= 0 {
			return nil, ErrInvalidShape
		}
		s = RowLayout{Rows: *rowCount, SeatsPerRow: *seatsPerRow}
	default:
		return nil, ErrInvalidShape
	}
	if s.Capacity() > MaxSeats {
		return nil, InvalidInput(fmt.Sprintf("layout exceeds the maximum of %d seats", MaxSeats))
	}
	return s, nil
}

// ShapeDimensions flattens a shape into its four nullable columns.
func ShapeDimensions(s Shape) (tableCount, seatsPerTable, rowCount, seatsPerRow *int) {
	switch l := s.(type) {
	case TableLayout:
		return &l.Tables, &l.SeatsPerTable, nil, nil
	case RowLayout:
		return nil, nil, &l.Rows, &l.SeatsPerRow
	}
	return nil, nil, nil, nil
}

// SeatingConfiguration is an event's single active layout.
// swagger:model SeatingConfiguration
type SeatingConfiguration struct {
	EventID   string
	Shape     Shape
	CreatedAt time.Time
	UpdatedAt time.Time
}

type seatingConfigurationJSON struct {
	EventID       string     `json:"event_id"`
	LayoutType    LayoutKind `json:"layout_type"`
	TableCount    *int       `json:"table_count"`
	SeatsPerTable *int       `json:"seats_per_table"`
	NumberOfRows  *int       `json:"number_of_rows"`
	SeatsPerRow   *int       `json:"seats_per_row"`
	Capacity      int        `json:"capacity"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MarshalJSON renders the shape as four dimensions of which one pair is null.
func (c SeatingConfiguration) MarshalJSON() ([]byte, error) {
	out := seatingConfigurationJSON{
		EventID:   c.EventID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Shape != nil {
		out.LayoutType = c.Shape.Kind()
		out.Capacity = c.Shape.Capacity()
		out.TableCount, out.SeatsPerTable, out.NumberOfRows, out.SeatsPerRow = ShapeDimensions(c.Shape)
	}
	return json.Marshal(out)
}

// GuestSeat is the slice of a guest the allocator works with.
type GuestSeat struct {
	GuestID    string     `json:"guest_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Category   string     `json:"category"`
	RSVPStatus RSVPStatus `json:"rsvp_status"`
	Cancelled  bool       `json:"cancelled"`
	SeatLabel  *string    `json:"seat_number"`
}

// Seatable reports whether the guest may hold a seat.
func (g *GuestSeat) Seatable() bool {
	return g.RSVPStatus == RSVPAccepted && !g.Cancelled
}

// SeatPairing is one guest placed on one seat.
// swagger:model SeatPairing
type SeatPairing struct {
	GuestID   string `json:"guest_id"`
	SeatLabel string `json:"seat_number"`
}

// AutoAssignResult is the outcome of an auto-assignment run.
// swagger:model AutoAssignResult
type AutoAssignResult struct {
	Assigned   int           `json:"assigned"`
	Unassigned int           `json:"unassigned"`
	Pairings   []SeatPairing `json:"pairings"`
}

// ConfigurationUpdate is the outcome of replacing a layout.
// swagger:model ConfigurationUpdate
type ConfigurationUpdate struct {
	Configuration      *SeatingConfiguration `json:"seating_configuration"`
	ClearedAssignments int64                 `json:"cleared_assignments"`
}

// SeatMove reports a drag-style move; Evicted is the guest who lost the seat, if any.
// swagger:model SeatMove
type SeatMove struct {
	GuestID   string  `json:"guest_id"`
	SeatLabel *string `json:"seat_number"`
	Evicted   *string `json:"evicted_guest_id"`
}

// SeatingView is the organizer's seating screen.
// swagger:model SeatingView
type SeatingView struct {
	Configuration *SeatingConfiguration `json:"seating_configuration"`
	Seats         []string              `json:"seats"`
	Guests        []*GuestSeat          `json:"assigned_guests"`
}

// SeatingRepository stores seating configurations and runs seat writes.
type SeatingRepository interface {
	// CreateConfig returns ErrConfigExists when the event already has one.
	CreateConfig(ctx context.Context, cfg *SeatingConfiguration) error
	GetConfig(ctx context.Context, eventID string) (*SeatingConfiguration, error)
	ListGuestSeats(ctx context.Context, eventID string) ([]*GuestSeat, error)
	// WithinEventLock runs fn in one transaction that excludes every other
	// WithinEventLock call for the same event.
	WithinEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, tx SeatingTx) error) error
}

// SeatingTx is the transactional view handed to WithinEventLock callbacks.
type SeatingTx interface {
	GetConfig(ctx context.Context, eventID string) (*SeatingConfiguration, error)
	UpdateConfig(ctx context.Context, cfg *SeatingConfiguration) error
	// ListGuestSeats returns the event's guests in insertion order.
	ListGuestSeats(ctx context.Context, eventID string) ([]*GuestSeat, error)
	// SetSeat sets or, with nil, clears one guest's seat.
	SetSeat(ctx context.Context, eventID, guestID string, label *string) error
	SetSeats(ctx context.Context, eventID string, pairings []SeatPairing) error
	// ClearSeatsExcept clears every assignment whose label is not in keep.
	ClearSeatsExcept(ctx context.Context, eventID string, keep []string) (int64, error)
}

// SeatingService is the configuration store and seat allocator.
type SeatingService interface {
	CreateConfiguration(ctx context.Context, eventID, ownerID string, shape Shape) (*SeatingConfiguration, error)
	UpdateConfiguration(ctx context.Context, eventID, ownerID string, shape Shape) (*ConfigurationUpdate, error)
	GetConfiguration(ctx context.Context, eventID, ownerID string) (*SeatingConfiguration, error)
	GetSeatingView(ctx context.Context, eventID, ownerID string) (*SeatingView, error)
	AutoAssign(ctx context.Context, eventID, ownerID string) (*AutoAssignResult, error)
	// AssignSeat places the guest on a free seat; an empty label unassigns.
	AssignSeat(ctx context.Context, eventID, ownerID, guestID, label string) error
	// MoveGuest places the guest on the seat, sending any other occupant back to the
	// unassigned pool in the same transaction.
	MoveGuest(ctx context.Context, eventID, ownerID, guestID, label string) (*SeatMove, error)
	VacateSeat(ctx context.Context, eventID, ownerID, guestID string) error
	SwapSeats(ctx context.Context, eventID, ownerID, guestA, guestB string) error
}
