package services

import (
	"context"
	"testing"
	"time"

	"billybot/config"
	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"
	"billybot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAccountService() (*testhelpers.MockAccountRepository, *testhelpers.MockBalanceHistoryRepository, *testhelpers.MockEventPublisher, *accountService) {
	config.SetTestConfig(config.NewTestConfig())
	mockAccountRepo := new(testhelpers.MockAccountRepository)
	mockHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockPublisher := new(testhelpers.MockEventPublisher)
	svc := NewAccountService(mockAccountRepo, mockHistoryRepo, mockPublisher).(*accountService)
	return mockAccountRepo, mockHistoryRepo, mockPublisher, svc
}

func TestGetOrCreateAccountReturnsExisting(t *testing.T) {
	mockAccountRepo, _, _, svc := setupAccountService()
	ctx := context.Background()

	existing := &entities.Account{DiscordID: 123, Balance: 500}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(123)).Return(existing, nil)

	account, err := svc.GetOrCreateAccount(ctx, 123, "billy")
	require.NoError(t, err)
	assert.Equal(t, existing, account)
	mockAccountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrCreateAccountCreatesWithStartingBalance(t *testing.T) {
	mockAccountRepo, mockHistoryRepo, mockPublisher, svc := setupAccountService()
	ctx := context.Background()

	created := &entities.Account{DiscordID: 123, Username: "billy", Balance: 100}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(123)).Return(nil, nil)
	mockAccountRepo.On("Create", ctx, int64(123), "billy", int64(100)).Return(created, nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil).Run(func(args mock.Arguments) {
		history := args.Get(1).(*entities.BalanceHistory)
		history.ID = 1
		assert.Equal(t, entities.TransactionTypeInitial, history.TransactionType)
		assert.Equal(t, int64(100), history.ChangeAmount)
	})
	mockPublisher.On("Publish", mock.Anything).Return(nil)

	account, err := svc.GetOrCreateAccount(ctx, 123, "billy")
	require.NoError(t, err)
	assert.Equal(t, int64(100), account.Balance)
	mockHistoryRepo.AssertExpectations(t)
}

func TestTransferValidation(t *testing.T) {
	_, _, _, svc := setupAccountService()
	ctx := context.Background()

	_, err := svc.Transfer(ctx, 1, 2, 0)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMove)

	_, err = svc.Transfer(ctx, 1, 2, -50)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMove)

	_, err = svc.Transfer(ctx, 1, 1, 50)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMove)
}

func TestTransferInsufficientFunds(t *testing.T) {
	mockAccountRepo, _, _, svc := setupAccountService()
	ctx := context.Background()

	sender := &entities.Account{DiscordID: 1, Balance: 50}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(sender, nil)

	_, err := svc.Transfer(ctx, 1, 2, 100)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)
	mockAccountRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransferRecipientNotFound(t *testing.T) {
	mockAccountRepo, _, _, svc := setupAccountService()
	ctx := context.Background()

	sender := &entities.Account{DiscordID: 1, Balance: 500}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(sender, nil)
	mockAccountRepo.On("GetByDiscordID", ctx, int64(2)).Return(nil, nil)

	_, err := svc.Transfer(ctx, 1, 2, 100)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	mockAccountRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransferMovesBothLegs(t *testing.T) {
	mockAccountRepo, mockHistoryRepo, mockPublisher, svc := setupAccountService()
	ctx := context.Background()

	sender := &entities.Account{DiscordID: 1, Balance: 500}
	recipient := &entities.Account{DiscordID: 2, Balance: 200}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(sender, nil)
	mockAccountRepo.On("GetByDiscordID", ctx, int64(2)).Return(recipient, nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(1), int64(-100)).Return(int64(400), nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(2), int64(100)).Return(int64(300), nil)

	var recorded []*entities.BalanceHistory
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil).Run(func(args mock.Arguments) {
		history := args.Get(1).(*entities.BalanceHistory)
		history.ID = int64(len(recorded) + 1)
		recorded = append(recorded, history)
	})
	mockPublisher.On("Publish", mock.Anything).Return(nil)

	result, err := svc.Transfer(ctx, 1, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Amount)
	assert.Equal(t, int64(400), result.FromBalance)
	assert.Equal(t, int64(300), result.ToBalance)

	// The two ledger entries sum to zero.
	require.Len(t, recorded, 2)
	assert.Equal(t, entities.TransactionTypeTransferOut, recorded[0].TransactionType)
	assert.Equal(t, entities.TransactionTypeTransferIn, recorded[1].TransactionType)
	assert.Equal(t, int64(0), recorded[0].ChangeAmount+recorded[1].ChangeAmount)
	mockAccountRepo.AssertExpectations(t)
}

func TestClaimAllowanceTooSoon(t *testing.T) {
	mockAccountRepo, _, _, svc := setupAccountService()
	ctx := context.Background()

	last := time.Now().UTC().AddDate(0, 0, -2)
	account := &entities.Account{DiscordID: 1, Balance: 100, LastAllowance: &last}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)

	_, err := svc.ClaimAllowance(ctx, 1)
	assert.ErrorIs(t, err, domainerrors.ErrTooSoon)
	assert.ErrorContains(t, err, "available again on")
	mockAccountRepo.AssertNotCalled(t, "StampAllowance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimAllowanceFirstClaim(t *testing.T) {
	mockAccountRepo, mockHistoryRepo, mockPublisher, svc := setupAccountService()
	ctx := context.Background()

	account := &entities.Account{DiscordID: 1, Balance: 100}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)
	mockAccountRepo.On("StampAllowance", ctx, int64(1), (*time.Time)(nil), mock.AnythingOfType("time.Time")).Return(nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(1), int64(200)).Return(int64(300), nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return(nil)

	result, err := svc.ClaimAllowance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(200), result.Amount)
	assert.Equal(t, int64(300), result.NewBalance)
	mockAccountRepo.AssertExpectations(t)
}

func TestClaimAllowanceAfterEightDays(t *testing.T) {
	mockAccountRepo, mockHistoryRepo, mockPublisher, svc := setupAccountService()
	ctx := context.Background()

	last := time.Now().UTC().AddDate(0, 0, -8)
	account := &entities.Account{DiscordID: 1, Balance: 100, LastAllowance: &last}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)
	mockAccountRepo.On("StampAllowance", ctx, int64(1), &last, mock.AnythingOfType("time.Time")).Return(nil)
	mockAccountRepo.On("AdjustBalance", ctx, int64(1), int64(200)).Return(int64(300), nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*entities.BalanceHistory")).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return(nil)

	_, err := svc.ClaimAllowance(ctx, 1)
	require.NoError(t, err)
}

func TestClaimAllowanceRaceLoserGetsConflict(t *testing.T) {
	mockAccountRepo, _, _, svc := setupAccountService()
	ctx := context.Background()

	account := &entities.Account{DiscordID: 1, Balance: 100}
	mockAccountRepo.On("GetByDiscordID", ctx, int64(1)).Return(account, nil)
	mockAccountRepo.On("StampAllowance", ctx, int64(1), (*time.Time)(nil), mock.AnythingOfType("time.Time")).
		Return(domainerrors.Conflict("allowance was already claimed"))

	_, err := svc.ClaimAllowance(ctx, 1)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
	mockAccountRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
}
