package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventseating/internal/domain"
)

type seatingService struct {
	eventRepo   domain.EventRepository
	seatingRepo domain.SeatingRepository
	logger      *slog.Logger
	now         func() time.Time
}

// NewSeatingService creates the seating configuration store and seat allocator.
func NewSeatingService(eventRepo domain.EventRepository, seatingRepo domain.SeatingRepository, logger *slog.Logger) domain.SeatingService {
	return &seatingService{
		eventRepo:   eventRepo,
		seatingRepo: seatingRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *seatingService) CreateConfiguration(ctx context.Context, eventID, ownerID string, shape domain.Shape) (*domain.SeatingConfiguration, error) {
	if shape == nil {
		return nil, domain.ErrInvalidShape
	}
	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, err
	}
	now := s.now()
	cfg := &domain.SeatingConfiguration{EventID: eventID, Shape: shape, CreatedAt: now, UpdatedAt: now}
	if err := s.seatingRepo.CreateConfig(ctx, cfg); err != nil {
		if errors.Is(err, domain.ErrConfigExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create seating configuration: %w", err)
	}
	return cfg, nil
}

func (s *seatingService) UpdateConfiguration(ctx context.Context, eventID, ownerID string, shape domain.Shape) (*domain.ConfigurationUpdate, error) {
	if shape == nil {
		return nil, domain.ErrInvalidShape
	}
	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, err
	}

	var out domain.ConfigurationUpdate
	err := s.seatingRepo.WithinEventLock(ctx, eventID, func(ctx context.Context, tx domain.SeatingTx) error {
		cfg, err := getConfig(ctx, tx, eventID)
		if err != nil {
			return err
		}
		cfg.Shape = shape
		cfg.UpdatedAt = s.now()
		if err := tx.UpdateConfig(ctx, cfg); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrConfigNotFound
			}
			return fmt.Errorf("update seating configuration: %w", err)
		}
		// Assignments that no longer name a seat in the new layout go back to the pool.
		cleared, err := tx.ClearSeatsExcept(ctx, eventID, shape.Seats())
		if err != nil {
			return fmt.Errorf("clear stale seats: %w", err)
		}
		out.Configuration = cfg
		out.ClearedAssignments = cleared
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.ClearedAssignments > 0 {
		s.logger.InfoContext(ctx, "seating layout changed", "event_id", eventID, "cleared", out.ClearedAssignments)
	}
	return &out, nil
}

func (s *seatingService) GetConfiguration(ctx context.Context, eventID, ownerID string) (*domain.SeatingConfiguration, error) {
	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, err
	}
	return getConfig(ctx, s.seatingRepo, eventID)
}

func (s *seatingService) GetSeatingView(ctx context.Context, eventID, ownerID string) (*domain.SeatingView, error) {
	cfg, err := s.GetConfiguration(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	guests, err := s.seatingRepo.ListGuestSeats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list guest seats: %w", err)
	}
	if guests == nil {
		guests = []*domain.GuestSeat{}
	}
	return &domain.SeatingView{
		Configuration: cfg,
		Seats:         domain.EnumerateSeats(cfg.Shape),
		Guests:        guests,
	}, nil
}

func (s *seatingService) AutoAssign(ctx context.Context, eventID, ownerID string) (*domain.AutoAssignResult, error) {
	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, err
	}

	var result *domain.AutoAssignResult
	err := s.seatingRepo.WithinEventLock(ctx, eventID, func(ctx context.Context, tx domain.SeatingTx) error {
		cfg, err := getConfig(ctx, tx, eventID)
		if err != nil {
			return err
		}
		guests, err := tx.ListGuestSeats(ctx, eventID)
		if err != nil {
			return fmt.Errorf("list guest seats: %w", err)
		}
		result = PlanAutoAssignment(domain.EnumerateSeats(cfg.Shape), guests)
		if len(result.Pairings) == 0 {
			return nil
		}
		if err := tx.SetSeats(ctx, eventID, result.Pairings); err != nil {
			return translateSeatWrite(err, "assign seats")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "auto-assigned seats", "event_id", eventID, "assigned", result.Assigned, "unassigned", result.Unassigned)
	return result, nil
}

// PlanAutoAssignment pairs unseated, seatable guests with free seats in order. Seats held
// by any guest count as occupied; guests already seated are never touched.
func PlanAutoAssignment(seats []string, guests []*domain.GuestSeat) *domain.AutoAssignResult {
	occupied := make(map[string]struct{}, len(guests))
	var waiting []*domain.GuestSeat
	for _, g := range guests {
		if g.SeatLabel != nil {
			occupied[*g.SeatLabel] = struct{}{}
			continue
		}
		if g.Seatable() {
			waiting = append(waiting, g)
		}
	}

	free := make([]string, 0, len(seats))
	for _, label := range seats {
		if _, taken := occupied[label]; !taken {
			free = append(free, label)
		}
	}

	n := min(len(waiting), len(free))
	pairings := make([]domain.SeatPairing, 0, n)
	for i := 0; i < n; i++ {
		pairings = append(pairings, domain.SeatPairing{GuestID: waiting[i].GuestID, SeatLabel: free[i]})
	}
	return &domain.AutoAssignResult{
		Assigned:   n,
		Unassigned: len(waiting) - n,
		Pairings:   pairings,
	}
}

func (s *seatingService) AssignSeat(ctx context.Context, eventID, ownerID, guestID, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return s.VacateSeat(ctx, eventID, ownerID, guestID)
	}
	_, err := s.place(ctx, eventID, ownerID, guestID, label, false)
	return err
}

func (s *seatingService) MoveGuest(ctx context.Context, eventID, ownerID, guestID, label string) (*domain.SeatMove, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		if err := s.VacateSeat(ctx, eventID, ownerID, guestID); err != nil {
			return nil, err
		}
		return &domain.SeatMove{GuestID: guestID}, nil
	}
	return s.place(ctx, eventID, ownerID, guestID, label, true)
}

// place seats guestID on label. With evict, another occupant is returned to the unassigned
// pool in the same transaction; without it an occupied seat is a conflict.
func (s *seatingService) place(ctx context.Context, eventID, ownerID, guestID, label string, evict bool) (*domain.SeatMove, error) {
	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, err
	}

	move := &domain.SeatMove{GuestID: guestID, SeatLabel: &label}
	err := s.seatingRepo.WithinEventLock(ctx, eventID, func(ctx context.Context, tx domain.SeatingTx) error {
		cfg, err := getConfig(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if !hasSeat(cfg.Shape, label) {
			return domain.ErrUnknownSeat
		}
		guests, err := tx.ListGuestSeats(ctx, eventID)
		if err != nil {
			return fmt.Errorf("list guest seats: %w", err)
		}
		mover, occupant := findGuest(guests, guestID), occupantOf(guests, label)
		if mover == nil {
			return domain.ErrGuestNotFound
		}
		if !mover.Seatable() {
			return domain.InvalidInput("only guests who accepted can be seated")
		}
		if occupant != nil && occupant.GuestID == mover.GuestID {
			return nil
		}
		if occupant != nil {
			if !evict {
				return domain.ErrSeatOccupied
			}
			if err := tx.SetSeat(ctx, eventID, occupant.GuestID, nil); err != nil {
				return translateSeatWrite(err, "vacate seat")
			}
			move.Evicted = &occupant.GuestID
		}
		if err := tx.SetSeat(ctx, eventID, mover.GuestID, &label); err != nil {
			return translateSeatWrite(err, "assign seat")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return move, nil
}

func (s *seatingService) VacateSeat(ctx context.Context, eventID, ownerID, guestID string) error {
	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return err
	}
	return s.seatingRepo.WithinEventLock(ctx, eventID, func(ctx context.Context, tx domain.SeatingTx) error {
		guests, err := tx.ListGuestSeats(ctx, eventID)
		if err != nil {
			return fmt.Errorf("list guest seats: %w", err)
		}
		g := findGuest(guests, guestID)
		if g == nil {
			return domain.ErrGuestNotFound
		}
		if g.SeatLabel == nil {
			return nil
		}
		if err := tx.SetSeat(ctx, eventID, guestID, nil); err != nil {
			return translateSeatWrite(err, "vacate seat")
		}
		return nil
	})
}

func (s *seatingService) SwapSeats(ctx context.Context, eventID, ownerID, guestA, guestB string) error {
	if guestA == guestB {
		return domain.InvalidInput("cannot swap a guest with themselves")
	}
	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return err
	}
	return s.seatingRepo.WithinEventLock(ctx, eventID, func(ctx context.Context, tx domain.SeatingTx) error {
		guests, err := tx.ListGuestSeats(ctx, eventID)
		if err != nil {
			return fmt.Errorf("list guest seats: %w", err)
		}
		a, b := findGuest(guests, guestA), findGuest(guests, guestB)
		if a == nil || b == nil {
			return domain.ErrGuestNotFound
		}
		if (a.SeatLabel != nil && !b.Seatable()) || (b.SeatLabel != nil && !a.Seatable()) {
			return domain.InvalidInput("only guests who accepted can be seated")
		}
		seatA, seatB := a.SeatLabel, b.SeatLabel
		// Clear first so the per-event seat uniqueness holds after every statement.
		for _, id := range []string{a.GuestID, b.GuestID} {
			if err := tx.SetSeat(ctx, eventID, id, nil); err != nil {
				return translateSeatWrite(err, "swap seats")
			}
		}
		if seatB != nil {
			if err := tx.SetSeat(ctx, eventID, a.GuestID, seatB); err != nil {
				return translateSeatWrite(err, "swap seats")
			}
		}
		if seatA != nil {
			if err := tx.SetSeat(ctx, eventID, b.GuestID, seatA); err != nil {
				return translateSeatWrite(err, "swap seats")
			}
		}
		return nil
	})
}

type configGetter interface {
	GetConfig(ctx context.Context, eventID string) (*domain.SeatingConfiguration, error)
}

func getConfig(ctx context.Context, repo configGetter, eventID string) (*domain.SeatingConfiguration, error) {
	cfg, err := repo.GetConfig(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("get seating configuration: %w", err)
	}
	return cfg, nil
}

// translateSeatWrite keeps a seat uniqueness violation visible as a conflict.
func translateSeatWrite(err error, op string) error {
	if errors.Is(err, domain.ErrSeatTaken) {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrGuestNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func hasSeat(shape domain.Shape, label string) bool {
	for _, l := range domain.EnumerateSeats(shape) {
		if l == label {
			return true
		}
	}
	return false
}

func findGuest(guests []*domain.GuestSeat, id string) *domain.GuestSeat {
	for _, g := range guests {
		if g.GuestID == id {
			return g
		}
	}
	return nil
}

func occupantOf(guests []*domain.GuestSeat, label string) *domain.GuestSeat {
	for _, g := range guests {
		if g.SeatLabel != nil && *g.SeatLabel == label {
			return g
		}
	}
	return nil
}
