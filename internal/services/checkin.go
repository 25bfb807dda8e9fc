package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventseating/internal/domain"
)

type checkInService struct {
	guestRepo domain.GuestRepository
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewCheckInService creates the door check-in validator. Event dates and times are
// interpreted in loc.
func NewCheckInService(guestRepo domain.GuestRepository, loc *time.Location, logger *slog.Logger) domain.CheckInService {
	if loc == nil {
		loc = time.UTC
	}
	return &checkInService{
		guestRepo: guestRepo,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *checkInService) CheckIn(ctx context.Context, code, organizerID string) (*domain.CheckInResult, error) {
	gw, err := resolveAccessCode(ctx, s.guestRepo, code)
	if err != nil {
		return nil, err
	}
	guest, event := gw.Guest, gw.Event

	if event.OwnerID != organizerID {
		return nil, domain.ErrNotOwner
	}

	result := &domain.CheckInResult{
		GuestID:   guest.ID,
		FirstName: guest.FirstName,
		LastName:  guest.LastName,
		SeatLabel: guest.SeatLabel,
	}
	if guest.CheckedIn {
		return alreadyCheckedIn(result), nil
	}

	endsAt, err := event.EndsAt(s.loc)
	if err != nil {
		return nil, fmt.Errorf("compute event end: %w", err)
	}
	if s.now().After(endsAt) {
		return nil, domain.ErrEventEnded
	}

	updated, err := s.guestRepo.MarkCheckedIn(ctx, guest.ID)
	if err != nil {
		return nil, fmt.Errorf("mark checked in: %w", err)
	}
	if !updated {
		// Another scan of the same code won the race.
		return alreadyCheckedIn(result), nil
	}
	s.logger.InfoContext(ctx, "guest checked in", "guest_id", guest.ID, "event_id", event.ID)
	result.Message = fmt.Sprintf("%s %s checked in", guest.FirstName, guest.LastName)
	return result, nil
}

func alreadyCheckedIn(r *domain.CheckInResult) *domain.CheckInResult {
	r.AlreadyCheckedIn = true
	r.Message = fmt.Sprintf("%s %s is already checked in", r.FirstName, r.LastName)
	return r
}
