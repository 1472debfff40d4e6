package entities

import (
	"time"
)

// Challenge is the server-wide mayor contest. At most one challenge is
// active per server; resolving it flips the mayor and fool roles and settles
// every side-bet placed on it.
type Challenge struct {
	ID                  int64      `db:"id"`
	GuildID             int64      `db:"guild_id"`
	MayorDiscordID      int64      `db:"mayor_discord_id"`
	ChallengerDiscordID int64      `db:"challenger_discord_id"`
	IsActive            bool       `db:"is_active"`
	WinnerDiscordID     *int64     `db:"winner_discord_id"`
	CreatedAt           time.Time  `db:"created_at"`
	ResolvedAt          *time.Time `db:"resolved_at"`
}

// HasParticipant reports whether the given user is one of the two contestants.
func (c *Challenge) HasParticipant(discordID int64) bool {
	return c.MayorDiscordID == discordID || c.ChallengerDiscordID == discordID
}

// Loser returns the contestant who did not win. Only meaningful once a
// winner is set.
func (c *Challenge) Loser(winnerID int64) int64 {
	if c.MayorDiscordID == winnerID {
		return c.ChallengerDiscordID
	}
	return c.MayorDiscordID
}

// ChallengeBet is a side-bet backing one of the two contestants.
type ChallengeBet struct {
	ID               int64     `db:"id"`
	ChallengeID      int64     `db:"challenge_id"`
	GuildID          int64     `db:"guild_id"`
	DiscordID        int64     `db:"discord_id"`
	BackedDiscordID  int64     `db:"backed_discord_id"`
	Amount           int64     `db:"amount"`
	Won              *bool     `db:"won"`
	PayoutAmount     *int64    `db:"payout_amount"`
	BalanceHistoryID *int64    `db:"balance_history_id"`
	CreatedAt        time.Time `db:"created_at"`
}

// ChallengeResult is the outcome of resolving a challenge.
type ChallengeResult struct {
	Challenge    *Challenge
	NewMayorID   int64
	NewFoolID    int64
	WinningBets  []*ChallengeBet
	LosingBets   []*ChallengeBet
	TotalPaidOut int64
}
