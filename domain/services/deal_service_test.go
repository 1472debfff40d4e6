package services

import (
	"context"
	"testing"

	"billybot/config"
	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"
	"billybot/domain/games"
	"billybot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupDealService() (*testhelpers.MockAccountRepository, *testhelpers.MockDealRepository, *testhelpers.MockBalanceHistoryRepository, *testhelpers.MockEventPublisher, *dealService) {
	config.SetTestConfig(config.NewTestConfig())
	mockAccountRepo := new(testhelpers.MockAccountRepository)
	mockGameRepo := new(testhelpers.MockDealRepository)
	mockHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockPublisher := new(testhelpers.MockEventPublisher)
	svc := NewDealService(mockAccountRepo, mockGameRepo, mockHistoryRepo, mockPublisher, games.NewSeededRand(42)).(*dealService)
	return mockAccountRepo, mockGameRepo, mockHistoryRepo, mockPublisher, svc
}

func TestOpenCaseNotEligible(t *testing.T) {
	mockAccountRepo, mockGameRepo, _, _, svc := setupDealService()
	ctx := context.Background()

	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(nil, nil)
	account := &entities.Account{DiscordID: 1, DealEligible: false}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)

	_, err := svc.OpenCase(ctx, 1, 7)
	assert.ErrorIs(t, err, domainerrors.ErrNotEligible)
	mockAccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestOpenCaseInvalidCaseNumber(t *testing.T) {
	_, mockGameRepo, _, _, svc := setupDealService()
	ctx := context.Background()

	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(nil, nil)

	_, err := svc.OpenCase(ctx, 1, 0)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMove)
}

func TestOpenCaseStartsGameAndConsumesEligibility(t *testing.T) {
	mockAccountRepo, mockGameRepo, _, _, svc := setupDealService()
	ctx := context.Background()

	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(nil, nil)
	account := &entities.Account{DiscordID: 1, GuildID: 7, DealEligible: true}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(1), mock.AnythingOfType("*entities.AccountDelta")).Return(nil).Run(func(args mock.Arguments) {
		delta := args.Get(2).(*entities.AccountDelta)
		require.NotNil(t, delta.DealEligible)
		assert.False(t, *delta.DealEligible)
	})
	mockGameRepo.On("Create", ctx, mock.AnythingOfType("*entities.DealGame")).Return(nil).Run(func(args mock.Arguments) {
		game := args.Get(1).(*entities.DealGame)
		assert.Equal(t, int64(7), game.GuildID)
	})

	view, err := svc.OpenCase(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, view.SelectedCase)
	assert.Equal(t, 5, view.ToOpen)
	mockAccountRepo.AssertExpectations(t)
}

func TestOpenCaseOnExistingGameSkipsEligibility(t *testing.T) {
	mockAccountRepo, mockGameRepo, _, _, svc := setupDealService()
	ctx := context.Background()

	game := entities.NewDealGame(1, 0, 7, games.NewSeededRand(42))
	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(game, nil)
	mockGameRepo.On("Update", ctx, game).Return(nil)

	view, err := svc.OpenCase(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, view.ToOpen)
	// An in-progress game never burns a second eligibility flag.
	mockAccountRepo.AssertNotCalled(t, "GetByDiscordID", mock.Anything, mock.Anything)
	mockAccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestRespondWithoutGame(t *testing.T) {
	_, mockGameRepo, _, _, svc := setupDealService()
	ctx := context.Background()

	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(nil, nil)

	_, err := svc.Respond(ctx, 1, true)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRespondAcceptSettlesAtOffer(t *testing.T) {
	mockAccountRepo, mockGameRepo, mockHistoryRepo, mockPublisher, svc := setupDealService()
	ctx := context.Background()

	game := entities.NewDealGame(1, 0, 7, games.NewSeededRand(42))
	for _, n := range []int{1, 2, 3, 4, 5} {
		require.NoError(t, game.OpenCase(n))
	}
	offer := game.Offer
	require.Positive(t, offer)

	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(game, nil)
	mockGameRepo.On("Update", ctx, game).Return(nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(1), offer).Return(offer+100, nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil).Run(func(args mock.Arguments) {
		history := args.Get(1).(*entities.BalanceHistory)
		history.ID = 1
		assert.Equal(t, entities.TransactionTypeDealPayout, history.TransactionType)
		assert.Equal(t, offer, history.ChangeAmount)
		assert.Equal(t, true, history.TransactionMetadata["accepted_offer"])
	})
	mockAccountRepo.On("ApplyDelta", ctx, int64(1), mock.AnythingOfType("*entities.AccountDelta")).Return(nil).Run(func(args mock.Arguments) {
		delta := args.Get(2).(*entities.AccountDelta)
		assert.Equal(t, int64(1), delta.GamesPlayedInc)
		assert.Equal(t, offer, delta.TotalWonInc)
	})
	mockPublisher.On("Publish", mock.Anything).Return(nil)

	view, err := svc.Respond(ctx, 1, true)
	require.NoError(t, err)
	assert.True(t, view.IsComplete)
	assert.Equal(t, offer, view.Payout)
	mockAccountRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestRespondRejectContinuesWithoutSettling(t *testing.T) {
	mockAccountRepo, mockGameRepo, mockHistoryRepo, _, svc := setupDealService()
	ctx := context.Background()

	game := entities.NewDealGame(1, 0, 7, games.NewSeededRand(42))
	for _, n := range []int{1, 2, 3, 4, 5} {
		require.NoError(t, game.OpenCase(n))
	}

	mockGameRepo.On("GetActiveByUser", ctx, int64(1)).Return(game, nil)
	mockGameRepo.On("Update", ctx, game).Return(nil)

	view, err := svc.Respond(ctx, 1, false)
	require.NoError(t, err)
	assert.False(t, view.IsComplete)
	assert.Equal(t, 4, view.ToOpen)
	mockAccountRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	mockHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}
