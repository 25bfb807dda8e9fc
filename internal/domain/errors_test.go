package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrEventNotFound, ErrNotFound},
		{ErrCodeNotFound, ErrNotFound},
		{ErrNotInvited, ErrNotFound},
		{ErrAlreadyResponded, ErrConflict},
		{ErrSeatOccupied, ErrConflict},
		{ErrSeatTaken, ErrConflict},
		{ErrNotOwner, ErrForbidden},
		{ErrEventEnded, ErrForbidden},
		{ErrUnknownSeat, ErrInvalidInput},
		{ErrCredentialRender, ErrDependency},
		{InvalidInput("bad"), ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
			assert.ErrorIs(t, wrapped, tt.err)
		})
	}
	assert.False(t, errors.Is(ErrNotOwner, ErrNotFound))
}
