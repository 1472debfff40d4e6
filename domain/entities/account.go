package entities

import (
	"time"
)

// Account is a user's economic identity within one server community.
// Balance is never mutated directly; every change goes through the ledger
// (an atomic conditional increment paired with a BalanceHistory record).
type Account struct {
	ID               int64      `db:"id"`
	DiscordID        int64      `db:"discord_id"`
	GuildID          int64      `db:"guild_id"`
	Username         string     `db:"username"`
	Balance          int64      `db:"balance"`
	DealEligible     bool       `db:"deal_eligible"`
	IsMayor          bool       `db:"is_mayor"`
	IsFool           bool       `db:"is_fool"`
	HasLotteryTicket bool       `db:"has_lottery_ticket"`
	LastAllowance    *time.Time `db:"last_allowance"`
	GamesPlayed      int64      `db:"games_played"`
	TotalWagered     int64      `db:"total_wagered"`
	TotalWon         int64      `db:"total_won"`
	ChallengeWins    int64      `db:"challenge_wins"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// HasSufficientBalance checks if the account can cover an amount.
func (a *Account) HasSufficientBalance(amount int64) bool {
	return a.Balance >= amount
}

// CanClaimAllowance reports whether at least the configured number of full
// UTC calendar days have passed since the last claim. Day boundaries are
// date-based, not a rolling 24h window.
func (a *Account) CanClaimAllowance(now time.Time, minDays int) bool {
	if a.LastAllowance == nil {
		return true
	}
	return daysBetweenUTC(*a.LastAllowance, now) >= minDays
}

// NextAllowanceAt returns the first instant the allowance becomes claimable
// again: midnight UTC after the required number of full days.
func (a *Account) NextAllowanceAt(minDays int) time.Time {
	if a.LastAllowance == nil {
		return time.Time{}
	}
	last := a.LastAllowance.UTC()
	return time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, minDays)
}

func daysBetweenUTC(from, to time.Time) int {
	from = from.UTC()
	to = to.UTC()
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}

// AccountDelta is an explicit, typed partial update for an account. Nil
// fields are left untouched; BalanceDelta is applied as an atomic increment
// by the repository, never as a read-modify-write.
type AccountDelta struct {
	BalanceDelta     *int64
	DealEligible     *bool
	IsMayor          *bool
	IsFool           *bool
	HasLotteryTicket *bool
	LastAllowance    *time.Time
	GamesPlayedInc   int64
	TotalWageredInc  int64
	TotalWonInc      int64
	ChallengeWinsInc int64
}

// Int64Ptr is a small helper for building deltas.
func Int64Ptr(v int64) *int64 { return &v }

// BoolPtr is a small helper for building deltas.
func BoolPtr(v bool) *bool { return &v }

// TimePtr is a small helper for building deltas.
func TimePtr(v time.Time) *time.Time { return &v }
