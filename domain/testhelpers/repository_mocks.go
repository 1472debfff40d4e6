package testhelpers

import (
	"context"
	"time"

	"billybot/domain/entities"
	"billybot/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*entities.Account, error) {
	args := m.Called(ctx, discordID, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, discordID int64, delta int64) (int64, error) {
	args := m.Called(ctx, discordID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ApplyDelta(ctx context.Context, discordID int64, delta *entities.AccountDelta) error {
	args := m.Called(ctx, discordID, delta)
	return args.Error(0)
}

func (m *MockAccountRepository) StampAllowance(ctx context.Context, discordID int64, previous *time.Time, claimedAt time.Time) error {
	args := m.Called(ctx, discordID, previous, claimedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) GetMayor(ctx context.Context) (*entities.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetLotteryEntrants(ctx context.Context) ([]*entities.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) ClearLotteryTickets(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) GetAll(ctx context.Context) ([]*entities.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockBlackjackRepository is a mock implementation of BlackjackRepository
type MockBlackjackRepository struct {
	mock.Mock
}

func (m *MockBlackjackRepository) Create(ctx context.Context, game *entities.BlackjackGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockBlackjackRepository) GetActiveByUser(ctx context.Context, discordID int64) (*entities.BlackjackGame, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BlackjackGame), args.Error(1)
}

func (m *MockBlackjackRepository) Update(ctx context.Context, game *entities.BlackjackGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

// MockDealRepository is a mock implementation of DealRepository
type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) Create(ctx context.Context, game *entities.DealGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockDealRepository) GetActiveByUser(ctx context.Context, discordID int64) (*entities.DealGame, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DealGame), args.Error(1)
}

func (m *MockDealRepository) Update(ctx context.Context, game *entities.DealGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

// MockChallengeRepository is a mock implementation of ChallengeRepository
type MockChallengeRepository struct {
	mock.Mock
}

func (m *MockChallengeRepository) Create(ctx context.Context, challenge *entities.Challenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *MockChallengeRepository) GetActive(ctx context.Context) (*entities.Challenge, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Challenge), args.Error(1)
}

func (m *MockChallengeRepository) Resolve(ctx context.Context, challengeID, winnerDiscordID int64) error {
	args := m.Called(ctx, challengeID, winnerDiscordID)
	return args.Error(0)
}

func (m *MockChallengeRepository) GetBets(ctx context.Context, challengeID int64) ([]*entities.ChallengeBet, error) {
	args := m.Called(ctx, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ChallengeBet), args.Error(1)
}

func (m *MockChallengeRepository) CreateBet(ctx context.Context, bet *entities.ChallengeBet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockChallengeRepository) SettleBet(ctx context.Context, bet *entities.ChallengeBet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
