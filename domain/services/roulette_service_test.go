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

// slotRand pins the wheel to a single slot.
type slotRand struct {
	slot int
}

func (r slotRand) Intn(n int) int                    { return r.slot }
func (r slotRand) Shuffle(n int, swap func(i, j int)) {}

func setupRouletteService(rng games.Rand) (*testhelpers.MockAccountRepository, *testhelpers.MockBalanceHistoryRepository, *testhelpers.MockEventPublisher, *rouletteService) {
	config.SetTestConfig(config.NewTestConfig())
	mockAccountRepo := new(testhelpers.MockAccountRepository)
	mockHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockPublisher := new(testhelpers.MockEventPublisher)
	svc := NewRouletteService(mockAccountRepo, mockHistoryRepo, mockPublisher, rng).(*rouletteService)
	return mockAccountRepo, mockHistoryRepo, mockPublisher, svc
}

func TestSpinValidation(t *testing.T) {
	_, _, _, svc := setupRouletteService(slotRand{0})
	ctx := context.Background()

	_, err := svc.Spin(ctx, 1, games.RouletteColor("blue"), 100)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMove)

	_, err = svc.Spin(ctx, 1, games.RouletteRed, 0)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMove)

	_, err = svc.Spin(ctx, 1, games.RouletteRed, -5)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMove)
}

func TestSpinInsufficientFunds(t *testing.T) {
	mockAccountRepo, _, _, svc := setupRouletteService(slotRand{0})
	ctx := context.Background()

	account := &entities.Account{DiscordID: 1, Balance: 50}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)

	_, err := svc.Spin(ctx, 1, games.RouletteRed, 100)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)
	mockAccountRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestSpinLossDebitsStake(t *testing.T) {
	// Slot 25 is red; betting black loses.
	mockAccountRepo, mockHistoryRepo, mockPublisher, svc := setupRouletteService(slotRand{25})
	ctx := context.Background()

	account := &entities.Account{DiscordID: 1, Balance: 500}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(1), int64(-100)).Return(int64(400), nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil).Run(func(args mock.Arguments) {
		history := args.Get(1).(*entities.BalanceHistory)
		history.ID = 1
		assert.Equal(t, entities.TransactionTypeRouletteLoss, history.TransactionType)
		assert.Equal(t, int64(-100), history.ChangeAmount)
	})
	mockAccountRepo.On("ApplyDelta", ctx, int64(1), mock.AnythingOfType("*entities.AccountDelta")).Return(nil).Run(func(args mock.Arguments) {
		delta := args.Get(2).(*entities.AccountDelta)
		assert.Equal(t, int64(1), delta.GamesPlayedInc)
		assert.Equal(t, int64(100), delta.TotalWageredInc)
		assert.Equal(t, int64(0), delta.TotalWonInc)
	})
	mockPublisher.On("Publish", mock.Anything).Return(nil)

	result, err := svc.Spin(ctx, 1, games.RouletteBlack, 100)
	require.NoError(t, err)
	assert.False(t, result.Won)
	assert.Equal(t, games.RouletteRed, result.WinningColor)
	assert.Equal(t, int64(-100), result.BalanceDelta)
	assert.Equal(t, int64(400), result.NewBalance)
	mockAccountRepo.AssertExpectations(t)
}

func TestSpinGreenWinPaysSeventeenToOne(t *testing.T) {
	mockAccountRepo, mockHistoryRepo, mockPublisher, svc := setupRouletteService(slotRand{0})
	ctx := context.Background()

	account := &entities.Account{DiscordID: 1, Balance: 500}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(1), int64(1700)).Return(int64(2200), nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil).Run(func(args mock.Arguments) {
		history := args.Get(1).(*entities.BalanceHistory)
		history.ID = 1
		assert.Equal(t, entities.TransactionTypeRouletteWin, history.TransactionType)
	})
	mockAccountRepo.On("ApplyDelta", ctx, int64(1), mock.AnythingOfType("*entities.AccountDelta")).Return(nil).Run(func(args mock.Arguments) {
		delta := args.Get(2).(*entities.AccountDelta)
		assert.Equal(t, int64(1700), delta.TotalWonInc)
	})
	mockPublisher.On("Publish", mock.Anything).Return(nil)

	result, err := svc.Spin(ctx, 1, games.RouletteGreen, 100)
	require.NoError(t, err)
	assert.True(t, result.Won)
	assert.Equal(t, int64(1700), result.BalanceDelta)
	assert.Equal(t, int64(2200), result.NewBalance)
}
