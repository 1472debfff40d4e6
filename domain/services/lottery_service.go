package services

import (
	"context"
	"fmt"

	"billybot/config"
	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"
	"billybot/domain/events"
	"billybot/domain/games"
	"billybot/domain/interfaces"
	"billybot/domain/utils"

	log "github.com/sirupsen/logrus"
)

type lotteryService struct {
	accountRepo        interfaces.AccountRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	rng                games.Rand
}

// NewLotteryService creates a new lottery service
func NewLotteryService(accountRepo interfaces.AccountRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, rng games.Rand) interfaces.LotteryService {
	return &lotteryService{
		accountRepo:        accountRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		rng:                rng,
	}
}

// Draw picks one ticket holder uniformly at random, credits the jackpot and
// clears every entrant's ticket, the winner's included.
func (s *lotteryService) Draw(ctx context.Context) (*interfaces.LotteryDrawResult, error) {
	cfg := config.Get()

	entrants, err := s.accountRepo.GetLotteryEntrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery entrants: %w", err)
	}
	if len(entrants) == 0 {
		return nil, domainerrors.NotFound("no accounts hold a lottery ticket")
	}

	winner := entrants[s.rng.Intn(len(entrants))]
	jackpot := int64(len(entrants))*cfg.LotteryTicketCost + cfg.LotteryBaseJackpot

	cleared, err := s.accountRepo.ClearLotteryTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear lottery tickets: %w", err)
	}
	log.WithFields(log.Fields{
		"entrants": len(entrants),
		"cleared":  cleared,
		"winner":   winner.DiscordID,
		"jackpot":  jackpot,
	}).Info("Lottery drawn")

	newBalance, err := s.accountRepo.AdjustBalance(ctx, winner.DiscordID, jackpot)
	if err != nil {
		return nil, err
	}

	history := &entities.BalanceHistory{
		DiscordID:       winner.DiscordID,
		BalanceBefore:   newBalance - jackpot,
		BalanceAfter:    newBalance,
		ChangeAmount:    jackpot,
		TransactionType: entities.TransactionTypeLotteryWin,
		TransactionMetadata: map[string]any{
			"entrants":     len(entrants),
			"ticket_cost":  cfg.LotteryTicketCost,
			"base_jackpot": cfg.LotteryBaseJackpot,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record jackpot: %w", err)
	}

	event := events.LotteryDrawnEvent{
		GuildID:  winner.GuildID,
		WinnerID: winner.DiscordID,
		Jackpot:  jackpot,
		Entrants: len(entrants),
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish lottery drawn event")
	}

	return &interfaces.LotteryDrawResult{
		WinnerID:   winner.DiscordID,
		Jackpot:    jackpot,
		Entrants:   len(entrants),
		NewBalance: newBalance,
	}, nil
}
