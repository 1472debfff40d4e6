package services

import (
	"context"
	"testing"

	"billybot/config"
	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"
	"billybot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// noShuffleRand leaves the deck in build order: the player is dealt the ace
// and two of clubs, the dealer the three and four.
type noShuffleRand struct{}

func (noShuffleRand) Intn(n int) int                    { return 0 }
func (noShuffleRand) Shuffle(n int, swap func(i, j int)) {}

func setupBlackjackService() (*testhelpers.MockAccountRepository, *testhelpers.MockBlackjackRepository, *testhelpers.MockBalanceHistoryRepository, *testhelpers.MockEventPublisher, *blackjackService) {
	config.SetTestConfig(config.NewTestConfig())
	mockAccountRepo := new(testhelpers.MockAccountRepository)
	mockGameRepo := new(testhelpers.MockBlackjackRepository)
	mockHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockPublisher := new(testhelpers.MockEventPublisher)
	svc := NewBlackjackService(mockAccountRepo, mockGameRepo, mockHistoryRepo, mockPublisher, noShuffleRand{}).(*blackjackService)
	return mockAccountRepo, mockGameRepo, mockHistoryRepo, mockPublisher, svc
}

func TestStartGameRejectsBelowMinimumBet(t *testing.T) {
	_, _, _, _, svc := setupBlackjackService()

	_, err := svc.StartGame(context.Background(), 1, 5)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMove)
}

func TestStartGameInsufficientFunds(t *testing.T) {
	mockAccountRepo, _, _, _, svc := setupBlackjackService()
	ctx := context.Background()

	account := &entities.Account{DiscordID: 1, Balance: 5}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)

	_, err := svc.StartGame(ctx, 1, 50)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)
}

func TestStartGameRejectsSecondActiveGame(t *testing.T) {
	mockAccountRepo, mockGameRepo, _, _, svc := setupBlackjackService()
	ctx := context.Background()

	account := &entities.Account{DiscordID: 1, Balance: 500}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)
	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(&entities.BlackjackGame{ID: 7}, nil)

	_, err := svc.StartGame(ctx, 1, 50)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
	mockAccountRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartGameDebitsWagerAndDeals(t *testing.T) {
	mockAccountRepo, mockGameRepo, mockHistoryRepo, mockPublisher, svc := setupBlackjackService()
	ctx := context.Background()

	account := &entities.Account{DiscordID: 1, GuildID: 7, Balance: 500}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)
	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(nil, nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(1), int64(-50)).Return(int64(450), nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil).Run(func(args mock.Arguments) {
		history := args.Get(1).(*entities.BalanceHistory)
		history.ID = 1
		assert.Equal(t, entities.TransactionTypeBlackjackWager, history.TransactionType)
		assert.Equal(t, int64(-50), history.ChangeAmount)
	})
	mockPublisher.On("Publish", mock.Anything).Return(nil)
	mockGameRepo.On("Create", ctx, mock.AnythingOfType("*entities.BlackjackGame")).Return(nil).Run(func(args mock.Arguments) {
		game := args.Get(1).(*entities.BlackjackGame)
		// The game carries the account's server so events report the right one.
		assert.Equal(t, int64(7), game.GuildID)
	})

	view, err := svc.StartGame(ctx, 1, 50)
	require.NoError(t, err)
	assert.False(t, view.IsComplete)
	assert.Len(t, view.PlayerHand, 2)
	// The dealer's second card stays hidden.
	assert.Len(t, view.DealerHand, 1)
	mockGameRepo.AssertExpectations(t)
}

func TestHitWithoutGame(t *testing.T) {
	_, mockGameRepo, _, _, svc := setupBlackjackService()
	ctx := context.Background()

	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(nil, nil)

	_, err := svc.Hit(ctx, 1, false)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)

	_, err = svc.Stand(ctx, 1)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
}

func TestHitDoubleDownDebitsSecondWagerThenSettles(t *testing.T) {
	mockAccountRepo, mockGameRepo, mockHistoryRepo, mockPublisher, svc := setupBlackjackService()
	ctx := context.Background()

	game := &entities.BlackjackGame{
		ID:         9,
		DiscordID:  1,
		Wager:      10,
		Deck:       []entities.Card{{Rank: 10}},
		PlayerHand: []entities.Card{{Rank: 5}, {Rank: 6}},
		DealerHand: []entities.Card{{Rank: 10}, {Rank: 7}},
	}
	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(game, nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(1), int64(-10)).Return(int64(90), nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(1), int64(40)).Return(int64(130), nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.BalanceHistory).ID = 1
	})
	mockGameRepo.On("Update", ctx, game).Return(nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(1), mock.AnythingOfType("*entities.AccountDelta")).Return(nil).Run(func(args mock.Arguments) {
		delta := args.Get(2).(*entities.AccountDelta)
		assert.Equal(t, int64(1), delta.GamesPlayedInc)
		assert.Equal(t, int64(20), delta.TotalWageredInc)
		assert.Equal(t, int64(40), delta.TotalWonInc)
	})
	mockPublisher.On("Publish", mock.Anything).Return(nil)

	view, err := svc.Hit(ctx, 1, true)
	require.NoError(t, err)
	assert.True(t, view.IsComplete)
	assert.True(t, view.DoubledDown)
	assert.Equal(t, int64(20), view.Wager)
	assert.Equal(t, int64(40), view.Payout)
	mockAccountRepo.AssertExpectations(t)
}

func TestHitDoubleDownAfterFirstActionDebitsNothing(t *testing.T) {
	mockAccountRepo, mockGameRepo, _, _, svc := setupBlackjackService()
	ctx := context.Background()

	game := &entities.BlackjackGame{
		ID:         9,
		DiscordID:  1,
		Wager:      10,
		Turn:       1,
		Deck:       []entities.Card{{Rank: 2}},
		PlayerHand: []entities.Card{{Rank: 5}, {Rank: 6}, {Rank: 2}},
		DealerHand: []entities.Card{{Rank: 10}, {Rank: 7}},
	}
	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(game, nil)

	_, err := svc.Hit(ctx, 1, true)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMove)
	mockAccountRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestStandSettlesWin(t *testing.T) {
	mockAccountRepo, mockGameRepo, mockHistoryRepo, mockPublisher, svc := setupBlackjackService()
	ctx := context.Background()

	game := &entities.BlackjackGame{
		ID:         9,
		DiscordID:  1,
		Wager:      10,
		Deck:       []entities.Card{},
		PlayerHand: []entities.Card{{Rank: 10}, {Rank: 9}},
		DealerHand: []entities.Card{{Rank: 10}, {Rank: 8}},
	}
	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(game, nil)
	mockGameRepo.On("Update", ctx, game).Return(nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(1), int64(20)).Return(int64(120), nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil).Run(func(args mock.Arguments) {
		history := args.Get(1).(*entities.BalanceHistory)
		history.ID = 1
		assert.Equal(t, entities.TransactionTypeBlackjackPayout, history.TransactionType)
	})
	mockAccountRepo.On("ApplyDelta", ctx, int64(1), mock.AnythingOfType("*entities.AccountDelta")).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return(nil)

	view, err := svc.Stand(ctx, 1)
	require.NoError(t, err)
	assert.True(t, view.IsComplete)
	assert.Equal(t, entities.BlackjackOutcomeWon, view.Outcome)
	assert.Equal(t, int64(20), view.Payout)
}

func TestStandLossPaysNothing(t *testing.T) {
	mockAccountRepo, mockGameRepo, mockHistoryRepo, mockPublisher, svc := setupBlackjackService()
	ctx := context.Background()

	game := &entities.BlackjackGame{
		ID:         9,
		DiscordID:  1,
		Wager:      10,
		Deck:       []entities.Card{},
		PlayerHand: []entities.Card{{Rank: 10}, {Rank: 7}},
		DealerHand: []entities.Card{{Rank: 10}, {Rank: 9}},
	}
	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(game, nil)
	mockGameRepo.On("Update", ctx, game).Return(nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(1), mock.AnythingOfType("*entities.AccountDelta")).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return(nil)

	view, err := svc.Stand(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.BlackjackOutcomeLost, view.Outcome)
	assert.Equal(t, int64(0), view.Payout)
	// No payout credit for a loss.
	mockAccountRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	mockHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}
