package domain

import "errors"

// Error kinds. Every error returned by a service either is one of these or wraps one,
// so callers can branch on the kind with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrDependency   = errors.New("dependency failure")
)

// kindError is a user-visible error that belongs to one of the error kinds above.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Specific errors. Each one matches both itself and its kind under errors.Is.
var (
	ErrEventNotFound    = newKindError(ErrNotFound, "event not found")
	ErrGuestNotFound    = newKindError(ErrNotFound, "guest not found")
	ErrInviteeNotFound  = newKindError(ErrNotFound, "invitee not found")
	ErrConfigNotFound   = newKindError(ErrNotFound, "seating configuration not found")
	ErrCodeNotFound     = newKindError(ErrNotFound, "access code not recognised")
	ErrNotInvited       = newKindError(ErrNotFound, "you are not on the guest list for this event")
	ErrAlreadyResponded = newKindError(ErrConflict, "you have already responded to this invitation")
	ErrAlreadyCancelled = newKindError(ErrConflict, "this RSVP has already been cancelled")
	ErrInviteeExists    = newKindError(ErrConflict, "an invitee with this email already exists for the event")
	ErrConfigExists     = newKindError(ErrConflict, "seating configuration already exists for this event")
	ErrSeatOccupied     = newKindError(ErrConflict, "seat is occupied by another guest")
	ErrSeatTaken        = newKindError(ErrConflict, "seat was taken concurrently, reload and retry")
	ErrNotOwner         = newKindError(ErrForbidden, "you do not own this event")
	ErrEventEnded       = newKindError(ErrForbidden, "check-in is closed, this event has already ended")
	ErrInvalidShape     = newKindError(ErrInvalidInput, "seating layout must specify exactly one of tables or rows with positive dimensions")
	ErrUnknownSeat      = newKindError(ErrInvalidInput, "seat label does not exist in the current seating layout")
	ErrCredentialRender = newKindError(ErrDependency, "could not render the access credential")
)

// InvalidInput returns a validation error carrying msg.
func InvalidInput(msg string) error {
	return newKindError(ErrInvalidInput, msg)
}
