package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventseating/internal/domain"
)

func TestRead(t *testing.T) {
	input := "First_Name,last_name,Email,category\n" +
		"Ada,Lovelace,ada@example.com,VIP\n" +
		"Grace,Hopper,grace@example.com\n" +
		"\n" +
		"Alan,Turing,alan@example.com,Regular\n"

	up, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, up.Candidates, 2)
	assert.Equal(t, domain.InviteeCandidate{Row: 2, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Category: "VIP"}, up.Candidates[0])
	assert.Equal(t, "alan@example.com", up.Candidates[1].Email)
	assert.Equal(t, 5, up.Candidates[1].Row)

	require.Len(t, up.Failures, 1)
	assert.Equal(t, 3, up.Failures[0].Row)
	assert.Contains(t, up.Failures[0].Reason, "expected 4 fields")
}

func TestRead_ColumnOrderFollowsHeader(t *testing.T) {
	input := "category,email_address,last_name,first_name\nRegular,ada@example.com,Lovelace,Ada\n"

	up, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, up.Candidates, 1)
	assert.Equal(t, "Ada", up.Candidates[0].FirstName)
	assert.Equal(t, "Regular", up.Candidates[0].Category)
}

func TestRead_QuoteErrorIsRowFailure(t *testing.T) {
	input := "first_name,last_name,email_address,category\n" +
		"Ada,\"Love\"lace,ada@example.com,VIP\n" +
		"Alan,Turing,alan@example.com,Regular\n"

	up, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, up.Failures, 1)
	assert.Equal(t, 2, up.Failures[0].Row)
	require.Len(t, up.Candidates, 1)
	assert.Equal(t, "Alan", up.Candidates[0].FirstName)
}

func TestRead_BadHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing columns", "first_name,last_name\nAda,Lovelace\n"},
		{"repeated column", "email,email_address,first_name,last_name,category\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
