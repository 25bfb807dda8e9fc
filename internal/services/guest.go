package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventseating/internal/domain"
)

type guestService struct {
	eventRepo    domain.EventRepository
	inviteeRepo  domain.InviteeRepository
	guestRepo    domain.GuestRepository
	issuer       domain.CredentialIssuer
	emailService domain.EmailService
	dispatcher   *NotificationDispatcher
	now          func() time.Time
}

// NewGuestService creates the RSVP lifecycle service.
func NewGuestService(
	eventRepo domain.EventRepository,
	inviteeRepo domain.InviteeRepository,
	guestRepo domain.GuestRepository,
	issuer domain.CredentialIssuer,
	emailService domain.EmailService,
	dispatcher *NotificationDispatcher,
) domain.GuestService {
	return &guestService{
		eventRepo:    eventRepo,
		inviteeRepo:  inviteeRepo,
		guestRepo:    guestRepo,
		issuer:       issuer,
		emailService: emailService,
		dispatcher:   dispatcher,
		now:          time.Now,
	}
}

func (s *guestService) SubmitRSVP(ctx context.Context, eventID, email string, status domain.RSVPStatus) (*domain.Guest, error) {
	if !status.Valid() {
		return nil, domain.InvalidInput("rsvp_status must be accepted or declined")
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.InvalidInput("email is required")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	exists, err := s.guestRepo.ExistsForEventAndEmail(ctx, eventID, email)
	if err != nil {
		return nil, fmt.Errorf("check existing rsvp: %w", err)
	}
	if exists {
		return nil, domain.ErrAlreadyResponded
	}

	invitee, err := s.inviteeRepo.GetByEventAndEmail(ctx, eventID, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotInvited
		}
		return nil, fmt.Errorf("get invitee: %w", err)
	}

	cred, err := s.issuer.Issue(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	now := s.now()
	guest := &domain.Guest{
		EventID:             eventID,
		FirstName:           invitee.FirstName,
		LastName:            invitee.LastName,
		Email:               invitee.Email,
		Category:            invitee.Category,
		RSVPStatus:          status,
		AccessCode:          cred.Code,
		QRCode:              cred.Image,
		CredentialExpiresAt: cred.ExpiresAt,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	// The unique (event, email) constraint settles a race between two submissions.
	if err := s.guestRepo.Create(ctx, guest); err != nil {
		if errors.Is(err, domain.ErrAlreadyResponded) {
			return nil, err
		}
		return nil, fmt.Errorf("create guest: %w", err)
	}

	s.notify(ctx, "rsvp_confirmation", event, guest, s.sendConfirmation)
	return guest, nil
}

func (s *guestService) CancelRSVP(ctx context.Context, code string) (*domain.Guest, error) {
	gw, err := s.resolveCode(ctx, code)
	if err != nil {
		return nil, err
	}
	guest := gw.Guest
	if guest.Cancelled() {
		return nil, domain.ErrAlreadyCancelled
	}

	now := s.now()
	ok, err := s.guestRepo.Cancel(ctx, guest.ID, now)
	if err != nil {
		return nil, fmt.Errorf("cancel rsvp: %w", err)
	}
	if !ok {
		return nil, domain.ErrAlreadyCancelled
	}
	guest.RSVPStatus = domain.RSVPDeclined
	guest.CancelledAt = &now
	guest.SeatLabel = nil
	guest.UpdatedAt = now

	s.notify(ctx, "rsvp_cancelled", gw.Event, guest, s.sendCancellation)
	return guest, nil
}

func (s *guestService) LookupByCode(ctx context.Context, code string) (*domain.InvitationView, error) {
	gw, err := s.resolveCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return domain.NewInvitationView(gw), nil
}

func (s *guestService) ListGuests(ctx context.Context, eventID, ownerID string, page domain.PaginationParams) ([]*domain.Guest, int, error) {
	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, 0, err
	}
	guests, total, err := s.guestRepo.ListByEventID(ctx, eventID, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list guests: %w", err)
	}
	if guests == nil {
		guests = []*domain.Guest{}
	}
	return guests, total, nil
}

func (s *guestService) resolveCode(ctx context.Context, code string) (*domain.GuestWithEvent, error) {
	return resolveAccessCode(ctx, s.guestRepo, code)
}

// resolveAccessCode looks up a guest by access code. Malformed codes are reported exactly
// like unknown ones.
func resolveAccessCode(ctx context.Context, repo domain.GuestRepository, code string) (*domain.GuestWithEvent, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(code))
	if err != nil {
		return nil, domain.ErrCodeNotFound
	}
	gw, err := repo.GetWithEventByAccessCode(ctx, parsed.String())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("get guest by access code: %w", err)
	}
	return gw, nil
}

type rsvpSender func(ctx context.Context, data *domain.RSVPEmailData) error

func (s *guestService) sendConfirmation(ctx context.Context, data *domain.RSVPEmailData) error {
	return s.emailService.SendRSVPConfirmation(ctx, data)
}

func (s *guestService) sendCancellation(ctx context.Context, data *domain.RSVPEmailData) error {
	return s.emailService.SendRSVPCancellation(ctx, data)
}

func (s *guestService) notify(ctx context.Context, kind string, event *domain.Event, guest *domain.Guest, send rsvpSender) {
	if s.emailService == nil || s.dispatcher == nil {
		return
	}
	data := &domain.RSVPEmailData{
		Email:      guest.Email,
		FirstName:  guest.FirstName,
		EventName:  event.Name,
		EventDate:  event.Date.Format(domain.DateLayout),
		StartTime:  event.StartTime,
		EndTime:    event.EndTime,
		Location:   event.Location,
		Status:     guest.RSVPStatus,
		AccessCode: guest.AccessCode,
		QRCode:     guest.QRCode,
	}
	s.dispatcher.Dispatch(ctx, kind, guest.Email, func(ctx context.Context) error {
		return send(ctx, data)
	})
}
