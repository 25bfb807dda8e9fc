package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"eventseating/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type inviteeService struct {
	eventRepo    domain.EventRepository
	inviteeRepo  domain.InviteeRepository
	emailService domain.EmailService
	dispatcher   *NotificationDispatcher
}

// NewInviteeService creates an InviteeService. emailService may be nil, in which case no
// invitation emails are sent.
func NewInviteeService(
	eventRepo domain.EventRepository,
	inviteeRepo domain.InviteeRepository,
	emailService domain.EmailService,
	dispatcher *NotificationDispatcher,
) domain.InviteeService {
	return &inviteeService{
		eventRepo:    eventRepo,
		inviteeRepo:  inviteeRepo,
		emailService: emailService,
		dispatcher:   dispatcher,
	}
}

func (s *inviteeService) AddInvitee(ctx context.Context, eventID, ownerID string, c domain.InviteeCandidate) (*domain.Invitee, error) {
	event, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	normalizeCandidate(&c)
	if reason := candidateProblem(c); reason != "" {
		return nil, domain.InvalidInput(reason)
	}
	inv, err := s.insert(ctx, event, ownerID, c)
	if err != nil {
		return nil, err
	}
	s.invite(ctx, event, inv)
	return inv, nil
}

func (s *inviteeService) ImportInvitees(ctx context.Context, eventID, ownerID string, candidates []domain.InviteeCandidate) (*domain.ImportReport, error) {
	event, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID)
	if err != nil {
		return nil, err
	}

	report := &domain.ImportReport{Failed: []domain.ImportFailure{}}
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		normalizeCandidate(&c)
		if reason := candidateProblem(c); reason != "" {
			report.Failed = append(report.Failed, domain.ImportFailure{Row: c.Row, Email: c.Email, Reason: reason})
			continue
		}
		if _, dup := seen[c.Email]; dup {
			report.Failed = append(report.Failed, domain.ImportFailure{Row: c.Row, Email: c.Email, Reason: "duplicate email in upload"})
			continue
		}
		seen[c.Email] = struct{}{}

		inv, err := s.insert(ctx, event, ownerID, c)
		if err != nil {
			if errors.Is(err, domain.ErrInviteeExists) {
				report.Failed = append(report.Failed, domain.ImportFailure{Row: c.Row, Email: c.Email, Reason: err.Error()})
				continue
			}
			return nil, err
		}
		report.Inserted++
		s.invite(ctx, event, inv)
	}
	return report, nil
}

func (s *inviteeService) ListInvitees(ctx context.Context, eventID, ownerID string, page domain.PaginationParams) ([]*domain.Invitee, int, error) {
	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, 0, err
	}
	invs, total, err := s.inviteeRepo.ListByEventID(ctx, eventID, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list invitees: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitee{}
	}
	return invs, total, nil
}

func (s *inviteeService) DeleteInvitee(ctx context.Context, eventID, ownerID, email string) error {
	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return err
	}
	if err := s.inviteeRepo.Delete(ctx, eventID, normalizeEmail(email)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInviteeNotFound
		}
		return fmt.Errorf("delete invitee: %w", err)
	}
	return nil
}

func (s *inviteeService) insert(ctx context.Context, event *domain.Event, ownerID string, c domain.InviteeCandidate) (*domain.Invitee, error) {
	inv := &domain.Invitee{
		EventID:   event.ID,
		OwnerID:   ownerID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Category:  c.Category,
		CreatedAt: time.Now(),
	}
	if err := s.inviteeRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrInviteeExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create invitee: %w", err)
	}
	return inv, nil
}

func (s *inviteeService) invite(ctx context.Context, event *domain.Event, inv *domain.Invitee) {
	if s.emailService == nil || s.dispatcher == nil {
		return
	}
	data := &domain.InvitationEmailData{
		Email:     inv.Email,
		FirstName: inv.FirstName,
		EventID:   event.ID,
		EventName: event.Name,
		EventDate: event.Date.Format(domain.DateLayout),
		Location:  event.Location,
	}
	s.dispatcher.Dispatch(ctx, "invitation", inv.Email, func(ctx context.Context) error {
		return s.emailService.SendInvitation(ctx, data)
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeCandidate(c *domain.InviteeCandidate) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = normalizeEmail(c.Email)
	c.Category = strings.TrimSpace(c.Category)
}

// candidateProblem returns a readable reason the candidate is malformed, or "".
func candidateProblem(c domain.InviteeCandidate) string {
	err := validate.Struct(c)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldProblem(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldProblem(fe validator.FieldError) string {
	field := fe.StructField()
	switch field {
	case "FirstName":
		field = "first_name"
	case "LastName":
		field = "last_name"
	case "Email":
		field = "email_address"
	case "Category":
		field = "category"
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	}
	return field + " is invalid"
}
