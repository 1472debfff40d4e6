package services

import (
	"context"
	"fmt"
	"time"

	"billybot/config"
	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"
	"billybot/domain/interfaces"
	"billybot/domain/utils"
)

type accountService struct {
	accountRepo        interfaces.AccountRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo interfaces.AccountRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher) interfaces.AccountService {
	return &accountService{
		accountRepo:        accountRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

func (s *accountService) GetOrCreateAccount(ctx context.Context, discordID int64, username string) (*entities.Account, error) {
	account, err := s.accountRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	initialBalance := config.Get().StartingBalance
	account, err = s.accountRepo.Create(ctx, discordID, username, initialBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	history := &entities.BalanceHistory{
		DiscordID:       discordID,
		GuildID:         0, // Set by the repository from its guild scope
		BalanceBefore:   0,
		BalanceAfter:    initialBalance,
		ChangeAmount:    initialBalance,
		TransactionType: entities.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": username,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	return account, nil
}

func (s *accountService) Transfer(ctx context.Context, fromDiscordID, toDiscordID, amount int64) (*interfaces.TransferResult, error) {
	if amount <= 0 {
		return nil, domainerrors.InvalidMove("transfer amount must be positive")
	}
	if fromDiscordID == toDiscordID {
		return nil, domainerrors.InvalidMove("cannot transfer to yourself")
	}

	fromAccount, err := s.accountRepo.GetByDiscordID(ctx, fromDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender account: %w", err)
	}
	if fromAccount == nil {
		return nil, domainerrors.NotFound("sender account not found")
	}
	if !fromAccount.HasSufficientBalance(amount) {
		return nil, domainerrors.InsufficientFunds(fromAccount.Balance, amount)
	}

	toAccount, err := s.accountRepo.GetByDiscordID(ctx, toDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient account: %w", err)
	}
	if toAccount == nil {
		return nil, domainerrors.NotFound("recipient account not found")
	}

	// Both legs run inside the caller's transaction; the deltas sum to zero.
	newFromBalance, err := s.accountRepo.AdjustBalance(ctx, fromDiscordID, -amount)
	if err != nil {
		return nil, err
	}
	newToBalance, err := s.accountRepo.AdjustBalance(ctx, toDiscordID, amount)
	if err != nil {
		return nil, err
	}

	fromHistory := &entities.BalanceHistory{
		DiscordID:       fromDiscordID,
		BalanceBefore:   newFromBalance + amount,
		BalanceAfter:    newFromBalance,
		ChangeAmount:    -amount,
		TransactionType: entities.TransactionTypeTransferOut,
		TransactionMetadata: map[string]any{
			"recipient_discord_id": toDiscordID,
			"transfer_amount":      amount,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, fromHistory); err != nil {
		return nil, fmt.Errorf("failed to record sender balance change: %w", err)
	}

	toHistory := &entities.BalanceHistory{
		DiscordID:       toDiscordID,
		BalanceBefore:   newToBalance - amount,
		BalanceAfter:    newToBalance,
		ChangeAmount:    amount,
		TransactionType: entities.TransactionTypeTransferIn,
		TransactionMetadata: map[string]any{
			"sender_discord_id": fromDiscordID,
			"transfer_amount":   amount,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, toHistory); err != nil {
		return nil, fmt.Errorf("failed to record recipient balance change: %w", err)
	}

	return &interfaces.TransferResult{
		Amount:      amount,
		FromBalance: newFromBalance,
		ToBalance:   newToBalance,
	}, nil
}

func (s *accountService) ClaimAllowance(ctx context.Context, discordID int64) (*interfaces.AllowanceResult, error) {
	cfg := config.Get()

	account, err := s.accountRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, domainerrors.NotFound("account not found")
	}

	now := time.Now().UTC()
	if !account.CanClaimAllowance(now, cfg.AllowanceDays) {
		next := account.NextAllowanceAt(cfg.AllowanceDays)
		return nil, domainerrors.TooSoon("allowance available again on %s", next.Format("2006-01-02"))
	}

	// The stamp is conditional on the previous claim time, so a concurrent
	// claim loses the race instead of double-crediting.
	if err := s.accountRepo.StampAllowance(ctx, discordID, account.LastAllowance, now); err != nil {
		return nil, err
	}

	newBalance, err := s.accountRepo.AdjustBalance(ctx, discordID, cfg.AllowanceRate)
	if err != nil {
		return nil, err
	}

	history := &entities.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   newBalance - cfg.AllowanceRate,
		BalanceAfter:    newBalance,
		ChangeAmount:    cfg.AllowanceRate,
		TransactionType: entities.TransactionTypeAllowance,
		TransactionMetadata: map[string]any{
			"claimed_at": now.Format(time.RFC3339),
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record allowance: %w", err)
	}

	return &interfaces.AllowanceResult{
		Amount:     cfg.AllowanceRate,
		NewBalance: newBalance,
		ClaimedAt:  now,
	}, nil
}
