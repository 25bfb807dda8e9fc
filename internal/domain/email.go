package domain

import "context"

// InlineImage is an image embedded in an HTML email and referenced as cid:ContentID.
type InlineImage struct {
	ContentID   string
	ContentType string
	Data        []byte
}

// EmailMessage is a rendered email ready to send.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
	Inline  *InlineImage
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// QRContentID is the content id templates use to reference the credential image.
const QRContentID = "access-code-qr"

// RSVPEmailData holds data for the RSVP confirmation and cancellation emails.
type RSVPEmailData struct {
	Email      string
	FirstName  string
	EventName  string
	EventDate  string
	StartTime  string
	EndTime    string
	Location   string
	Status     RSVPStatus
	AccessCode string
	QRCode     []byte
}

// InvitationEmailData holds data for the invitation email sent when an invitee is added.
type InvitationEmailData struct {
	Email     string
	FirstName string
	EventID   string
	EventName string
	EventDate string
	Location  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRSVPConfirmation(ctx context.Context, data *RSVPEmailData) error
	SendRSVPCancellation(ctx context.Context, data *RSVPEmailData) error
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
}
