package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventseating/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	loc            *time.Location
	now            func() time.Time
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, loc *time.Location, timeout time.Duration) domain.EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &eventService{
		eventRepo:      eventRepo,
		loc:            loc,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return fmt.Errorf("event owner is required")
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	event.CreatedAt = s.now()
	event.UpdatedAt = event.CreatedAt

	return s.eventRepo.Create(ctx, event)
}

func validateEvent(event *domain.Event) error {
	event.Name = strings.TrimSpace(event.Name)
	event.Location = strings.TrimSpace(event.Location)
	if event.Name == "" {
		return domain.InvalidInput("name is required")
	}
	if event.Date.IsZero() {
		return domain.InvalidInput("date is required")
	}
	return domain.ValidateSchedule(event.StartTime, event.EndTime)
}

func (s *eventService) GetEvent(ctx context.Context, eventID, requesterID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return loadOwnedEvent(ctx, s.eventRepo, eventID, requesterID)
}

func (s *eventService) ListMyEvents(ctx context.Context, ownerID string, page domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListByOwnerID(ctx, ownerID, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

// ListAllEvents pages through every organizer's events. Callers must be admins.
func (s *eventService) ListAllEvents(ctx context.Context, page domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListAll(ctx, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list all events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, ownerID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	oldDay := event.DayStart(s.loc)
	patch.Apply(event)
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	event.UpdatedAt = s.now()

	// Credentials expire relative to the event day, so moving the event moves them too.
	var expiry *time.Time
	if !event.DayStart(s.loc).Equal(oldDay) {
		exp := CredentialExpiry(event, s.loc)
		expiry = &exp
	}
	if err := s.eventRepo.Update(ctx, event, expiry); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, requesterID string, admin bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !admin {
		if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, requesterID); err != nil {
			return err
		}
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) OrganizerSummary(ctx context.Context, ownerID string) (*domain.OrganizerSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	y, m, d := s.now().In(s.loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	sum, err := s.eventRepo.SummarizeByOwner(ctx, ownerID, today)
	if err != nil {
		return nil, fmt.Errorf("summarize events: %w", err)
	}
	if sum.AcceptedGuests > 0 {
		sum.AttendanceRate = float64(sum.CheckedIn) / float64(sum.AcceptedGuests)
	}
	return sum, nil
}

// RSVPBreakdown reports accepted, declined and total RSVPs for each of the owner's
// events, busiest first.
func (s *eventService) RSVPBreakdown(ctx context.Context, ownerID string) ([]domain.EventRSVPCount, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	counts, err := s.eventRepo.RSVPCountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("rsvp breakdown: %w", err)
	}
	if counts == nil {
		counts = []domain.EventRSVPCount{}
	}
	return counts, nil
}

func (s *eventService) PlatformStatistics(ctx context.Context) (*domain.PlatformStatistics, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stats, err := s.eventRepo.SummarizePlatform(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize platform: %w", err)
	}
	counts, err := s.eventRepo.RSVPCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("rsvp counts: %w", err)
	}
	if counts == nil {
		counts = []domain.EventRSVPCount{}
	}
	stats.RSVPsPerEvent = counts
	return stats, nil
}

// loadOwnedEvent fetches the event and checks that ownerID owns it.
func loadOwnedEvent(ctx context.Context, repo domain.EventRepository, eventID, ownerID string) (*domain.Event, error) {
	event, err := repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, domain.ErrNotOwner
	}
	return event, nil
}
