package domain

import (
	"context"
	"time"
)

// CredentialGracePeriod is how long after the start of the event date a credential stays valid.
const CredentialGracePeriod = 24 * time.Hour

// Credential is a guest's single-use access code with its scannable image.
type Credential struct {
	Code      string
	Image     []byte
	ExpiresAt time.Time
}

// CredentialRenderer turns an access code into image bytes suitable for optical scanning.
type CredentialRenderer interface {
	Render(ctx context.Context, code string) ([]byte, error)
}

// CredentialIssuer produces credentials. It has no side effects; callers persist the result.
type CredentialIssuer interface {
	Issue(ctx context.Context, event *Event) (*Credential, error)
}
