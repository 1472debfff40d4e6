package services

import (
	"context"
	"fmt"

	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"
	"billybot/domain/events"
	"billybot/domain/games"
	"billybot/domain/interfaces"
	"billybot/domain/utils"

	log "github.com/sirupsen/logrus"
)

type rouletteService struct {
	accountRepo        interfaces.AccountRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	rng                games.Rand
}

// NewRouletteService creates a new roulette service
func NewRouletteService(accountRepo interfaces.AccountRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, rng games.Rand) interfaces.RouletteService {
	return &rouletteService{
		accountRepo:        accountRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		rng:                rng,
	}
}

func (s *rouletteService) Spin(ctx context.Context, discordID int64, color games.RouletteColor, amount int64) (*interfaces.RouletteResult, error) {
	if !color.Valid() {
		return nil, domainerrors.InvalidMove("color must be red, black or green")
	}
	if amount <= 0 {
		return nil, domainerrors.InvalidMove("bet amount must be positive")
	}

	account, err := s.accountRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, domainerrors.NotFound("account not found")
	}
	// Checked before the spin; the atomic debit below re-verifies at write
	// time in case of a concurrent spend.
	if !account.HasSufficientBalance(amount) {
		return nil, domainerrors.InsufficientFunds(account.Balance, amount)
	}

	outcome := games.ResolveRoulette(s.rng, color, amount)

	newBalance, err := s.accountRepo.AdjustBalance(ctx, discordID, outcome.BalanceDelta)
	if err != nil {
		return nil, err
	}

	transactionType := entities.TransactionTypeRouletteLoss
	if outcome.Won {
		transactionType = entities.TransactionTypeRouletteWin
	}
	history := &entities.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   newBalance - outcome.BalanceDelta,
		BalanceAfter:    newBalance,
		ChangeAmount:    outcome.BalanceDelta,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"bet_amount":    amount,
			"chosen_color":  string(color),
			"winning_color": string(outcome.WinningColor),
			"slot":          outcome.Slot,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	delta := &entities.AccountDelta{
		GamesPlayedInc:  1,
		TotalWageredInc: amount,
	}
	if outcome.Won {
		delta.TotalWonInc = outcome.BalanceDelta
	}
	if err := s.accountRepo.ApplyDelta(ctx, discordID, delta); err != nil {
		return nil, fmt.Errorf("failed to update gambling metrics: %w", err)
	}

	event := events.GameCompletedEvent{
		DiscordID: discordID,
		GameKind:  "roulette",
		Wager:     amount,
		Payout:    outcome.BalanceDelta,
		Won:       outcome.Won,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish game completed event")
	}

	return &interfaces.RouletteResult{
		Slot:         outcome.Slot,
		WinningColor: outcome.WinningColor,
		Won:          outcome.Won,
		BalanceDelta: outcome.BalanceDelta,
		NewBalance:   newBalance,
	}, nil
}
