package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventseating/internal/domain"
)

type credentialIssuer struct {
	renderer      domain.CredentialRenderer
	renderTimeout time.Duration
	loc           *time.Location
	newCode       func() string
}

// NewCredentialIssuer returns a CredentialIssuer that mints random UUID access codes,
// renders them with renderer under renderTimeout, and computes expiry in loc.
func NewCredentialIssuer(renderer domain.CredentialRenderer, renderTimeout time.Duration, loc *time.Location) domain.CredentialIssuer {
	if loc == nil {
		loc = time.UTC
	}
	return &credentialIssuer{
		renderer:      renderer,
		renderTimeout: renderTimeout,
		loc:           loc,
		newCode:       uuid.NewString,
	}
}

func (i *credentialIssuer) Issue(ctx context.Context, event *domain.Event) (*domain.Credential, error) {
	code := i.newCode()

	image, err := i.render(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCredentialRender, err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: renderer returned an empty image", domain.ErrCredentialRender)
	}

	return &domain.Credential{
		Code:      code,
		Image:     image,
		ExpiresAt: CredentialExpiry(event, i.loc),
	}, nil
}

// render calls the renderer and gives up once renderTimeout elapses, even if the
// renderer ignores its context.
func (i *credentialIssuer) render(ctx context.Context, code string) ([]byte, error) {
	if i.renderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.renderTimeout)
		defer cancel()
	}

	type result struct {
		image []byte
		err   error
	}
	done := make(chan result, 1)
	go func() {
		image, err := i.renderer.Render(ctx, code)
		done <- result{image: image, err: err}
	}()

	select {
	case r := <-done:
		return r.image, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("render timed out after %s", i.renderTimeout)
		}
		return nil, ctx.Err()
	}
}

// CredentialExpiry is midnight of the event date in loc plus the fixed grace period.
func CredentialExpiry(event *domain.Event, loc *time.Location) time.Time {
	return event.DayStart(loc).Add(domain.CredentialGracePeriod)
}
