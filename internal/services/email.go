package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventseating/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRSVPConfirmation sends the "rsvp_confirmation" email with the QR code inlined.
func (s *emailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPEmailData) error {
	if data == nil {
		return fmt.Errorf("rsvp confirmation data is nil")
	}
	var inline *domain.InlineImage
	if len(data.QRCode) > 0 {
		inline = &domain.InlineImage{ContentID: domain.QRContentID, ContentType: "image/png", Data: data.QRCode}
	}
	return s.send(ctx, "rsvp_confirmation", data.Email, data, inline)
}

// SendRSVPCancellation sends the "rsvp_cancelled" email.
func (s *emailService) SendRSVPCancellation(ctx context.Context, data *domain.RSVPEmailData) error {
	if data == nil {
		return fmt.Errorf("rsvp cancellation data is nil")
	}
	return s.send(ctx, "rsvp_cancelled", data.Email, data, nil)
}

// SendInvitation sends the "invitation" email.
func (s *emailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation data is nil")
	}
	return s.send(ctx, "invitation", data.Email, data, nil)
}

func (s *emailService) send(ctx context.Context, template, to string, data any, inline *domain.InlineImage) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	msg := &domain.EmailMessage{
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
		Inline:  inline,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: failed to send %s email: %w", domain.ErrDependency, template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to)
	return nil
}
