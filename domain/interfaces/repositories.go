package interfaces

import (
	"context"
	"time"

	"billybot/domain/entities"
	"billybot/domain/events"
)

// AccountRepository defines the interface for account data access.
// Balance mutations are expressed as atomic increments against the store,
// never as read-modify-write across two round trips.
type AccountRepository interface {
	// GetByDiscordID retrieves an account by Discord ID, nil when absent.
	GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error)

	// Create creates a new account with the initial balance.
	Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*entities.Account, error)

	// AdjustBalance applies delta as a single conditional increment. A debit
	// that would drive the balance negative fails with an insufficient-funds
	// domain error and leaves the row untouched. Returns the new balance.
	AdjustBalance(ctx context.Context, discordID int64, delta int64) (int64, error)

	// ApplyDelta applies a typed partial update (flags, timestamps, metric
	// increments and an optional balance increment) as one atomic statement.
	ApplyDelta(ctx context.Context, discordID int64, delta *entities.AccountDelta) error

	// StampAllowance sets last_allowance conditionally on its previous
	// value so concurrent claims serialize; the loser of the race fails
	// with a conflict domain error.
	StampAllowance(ctx context.Context, discordID int64, previous *time.Time, claimedAt time.Time) error

	// GetMayor returns the account holding the mayor role, nil when the
	// guild has no sitting mayor.
	GetMayor(ctx context.Context) (*entities.Account, error)

	// GetLotteryEntrants returns all accounts holding a lottery ticket.
	GetLotteryEntrants(ctx context.Context) ([]*entities.Account, error)

	// ClearLotteryTickets clears the ticket flag for every account in the
	// guild scope and returns how many were cleared.
	ClearLotteryTickets(ctx context.Context) (int64, error)

	// GetAll returns all accounts in the guild scope.
	GetAll(ctx context.Context) ([]*entities.Account, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByUser returns balance history for a specific account
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error)
}

// BlackjackRepository defines the interface for blackjack game state.
type BlackjackRepository interface {
	// Create persists a freshly dealt game.
	Create(ctx context.Context, game *entities.BlackjackGame) error

	// GetActiveByUser returns the single incomplete game for an account,
	// nil when there is none.
	GetActiveByUser(ctx context.Context, discordID int64) (*entities.BlackjackGame, error)

	// Update persists a state transition conditionally on the stored game
	// still being incomplete; a race that already finalized the game fails
	// with an invalid-state domain error.
	Update(ctx context.Context, game *entities.BlackjackGame) error
}

// DealRepository defines the interface for deal-or-no-deal game state.
type DealRepository interface {
	// Create persists a freshly created game.
	Create(ctx context.Context, game *entities.DealGame) error

	// GetActiveByUser returns the single incomplete game for an account,
	// nil when there is none.
	GetActiveByUser(ctx context.Context, discordID int64) (*entities.DealGame, error)

	// Update persists a state transition conditionally on the stored game
	// still being incomplete.
	Update(ctx context.Context, game *entities.DealGame) error
}

// ChallengeRepository defines the interface for mayor challenge state.
type ChallengeRepository interface {
	// Create creates a new challenge; fails with a conflict domain error
	// when an active challenge already exists for the guild.
	Create(ctx context.Context, challenge *entities.Challenge) error

	// GetActive returns the single active challenge, nil when there is none.
	GetActive(ctx context.Context) (*entities.Challenge, error)

	// Resolve marks the challenge resolved conditionally on it still being
	// active, recording the winner.
	Resolve(ctx context.Context, challengeID, winnerDiscordID int64) error

	// GetBets returns all side-bets placed on a challenge.
	GetBets(ctx context.Context, challengeID int64) ([]*entities.ChallengeBet, error)

	// CreateBet records a side-bet; fails with a conflict domain error when
	// the account already bet on this challenge.
	CreateBet(ctx context.Context, bet *entities.ChallengeBet) error

	// SettleBet records the outcome of a side-bet after resolution.
	SettleBet(ctx context.Context, bet *entities.ChallengeBet) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events published during a transaction.
// Flush forwards them to the real sink after commit; Discard drops them.
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context)
	Discard()
}

// UnitOfWork bundles guild-scoped repositories inside one transaction.
// Events published through EventBus are flushed only after a successful
// commit and discarded on rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	BlackjackRepository() BlackjackRepository
	DealRepository() DealRepository
	ChallengeRepository() ChallengeRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work scoped to one guild.
type UnitOfWorkFactory interface {
	CreateForGuild(guildID int64) UnitOfWork
}
