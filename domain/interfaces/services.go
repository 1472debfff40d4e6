package interfaces

import (
	"context"
	"time"

	"billybot/domain/entities"
	"billybot/domain/games"
)

// AccountService defines account lifecycle and plain economy operations.
type AccountService interface {
	// GetOrCreateAccount retrieves an existing account or creates one with
	// the configured starting balance.
	GetOrCreateAccount(ctx context.Context, discordID int64, username string) (*entities.Account, error)

	// Transfer moves amount from one account to another. The two deltas sum
	// to zero and both legs commit or neither does.
	Transfer(ctx context.Context, fromDiscordID, toDiscordID, amount int64) (*TransferResult, error)

	// ClaimAllowance credits the weekly allowance once enough full UTC
	// calendar days have passed since the previous claim.
	ClaimAllowance(ctx context.Context, discordID int64) (*AllowanceResult, error)
}

// BlackjackService drives the blackjack state machine against the ledger.
type BlackjackService interface {
	// StartGame debits the wager and deals a new game. Natural 21s resolve
	// and pay immediately.
	StartGame(ctx context.Context, discordID, wager int64) (*entities.BlackjackView, error)

	// Hit draws a card; doubling down debits a second wager first.
	Hit(ctx context.Context, discordID int64, doubleDown bool) (*entities.BlackjackView, error)

	// Stand lets the dealer play out and settles the game.
	Stand(ctx context.Context, discordID int64) (*entities.BlackjackView, error)
}

// DealService drives the deal-or-no-deal state machine.
type DealService interface {
	// OpenCase opens a case, creating the game (and consuming the account's
	// eligibility flag) when none is active.
	OpenCase(ctx context.Context, discordID int64, caseNum int) (*entities.DealGameView, error)

	// Respond accepts or rejects the standing bank offer.
	Respond(ctx context.Context, discordID int64, accept bool) (*entities.DealGameView, error)
}

// RouletteService resolves single-shot roulette spins.
type RouletteService interface {
	Spin(ctx context.Context, discordID int64, color games.RouletteColor, amount int64) (*RouletteResult, error)
}

// ChallengeService runs mayor challenges: opening them, taking side-bets and
// settling everything on resolution.
type ChallengeService interface {
	// StartChallenge opens a challenge from the given account against the
	// sitting mayor. At most one challenge is active per server.
	StartChallenge(ctx context.Context, challengerDiscordID int64) (*entities.Challenge, error)

	// PlaceBet stakes amount on one of the two contestants. The stake is
	// debited immediately; one bet per account per challenge.
	PlaceBet(ctx context.Context, discordID, backedDiscordID, amount int64) (*entities.ChallengeBet, error)

	ResolveChallenge(ctx context.Context, winnerDiscordID int64) (*entities.ChallengeResult, error)
}

// LotteryService conducts lottery draws.
type LotteryService interface {
	Draw(ctx context.Context) (*LotteryDrawResult, error)
}

// TransferResult reports the balances after a completed transfer.
type TransferResult struct {
	Amount      int64
	FromBalance int64
	ToBalance   int64
}

// AllowanceResult reports a successful allowance claim.
type AllowanceResult struct {
	Amount     int64
	NewBalance int64
	ClaimedAt  time.Time
}

// RouletteResult reports a resolved spin and the bettor's new balance.
type RouletteResult struct {
	Slot         int
	WinningColor games.RouletteColor
	Won          bool
	BalanceDelta int64
	NewBalance   int64
}

// LotteryDrawResult reports a completed lottery draw.
type LotteryDrawResult struct {
	WinnerID   int64
	Jackpot    int64
	Entrants   int
	NewBalance int64
}
