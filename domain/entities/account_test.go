package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanClaimAllowance(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		lastAllowance *time.Time
		want          bool
	}{
		{"never claimed", nil, true},
		{"claimed today", TimePtr(now.Add(-2 * time.Hour)), false},
		{"six days ago", TimePtr(now.AddDate(0, 0, -6)), false},
		{"seven days ago", TimePtr(now.AddDate(0, 0, -7)), true},
		{"eight days ago", TimePtr(now.AddDate(0, 0, -8)), true},
		{
			// Late on day zero to early on day seven still counts as seven
			// calendar days; boundaries are date-based.
			"seven calendar days but under 168 hours",
			TimePtr(time.Date(2024, 3, 8, 23, 30, 0, 0, time.UTC)),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &Account{LastAllowance: tt.lastAllowance}
			assert.Equal(t, tt.want, account.CanClaimAllowance(now, 7))
		})
	}
}

func TestNextAllowanceAt(t *testing.T) {
	last := time.Date(2024, 3, 8, 23, 30, 0, 0, time.UTC)
	account := &Account{LastAllowance: &last}

	next := account.NextAllowanceAt(7)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), next)
}

func TestHasSufficientBalance(t *testing.T) {
	account := &Account{Balance: 100}
	assert.True(t, account.HasSufficientBalance(100))
	assert.True(t, account.HasSufficientBalance(1))
	assert.False(t, account.HasSufficientBalance(101))
}
