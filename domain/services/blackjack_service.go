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

type blackjackService struct {
	accountRepo        interfaces.AccountRepository
	gameRepo           interfaces.BlackjackRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	rng                games.Rand
}

// NewBlackjackService creates a new blackjack service
func NewBlackjackService(accountRepo interfaces.AccountRepository, gameRepo interfaces.BlackjackRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, rng games.Rand) interfaces.BlackjackService {
	return &blackjackService{
		accountRepo:        accountRepo,
		gameRepo:           gameRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		rng:                rng,
	}
}

func (s *blackjackService) StartGame(ctx context.Context, discordID, wager int64) (*entities.BlackjackView, error) {
	minBet := config.Get().MinBlackjackBet
	if wager < minBet {
		return nil, domainerrors.InvalidMove("wager must be at least %d", minBet)
	}

	account, err := s.accountRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, domainerrors.NotFound("account not found")
	}
	if !account.HasSufficientBalance(wager) {
		return nil, domainerrors.InsufficientFunds(account.Balance, wager)
	}

	existing, err := s.gameRepo.GetActiveByUser(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for active game: %w", err)
	}
	if existing != nil {
		return nil, domainerrors.Conflict("a blackjack game is already in progress")
	}

	if err := s.debitWager(ctx, discordID, wager); err != nil {
		return nil, err
	}

	game := entities.NewBlackjackGame(discordID, account.GuildID, wager, s.rng)
	if game.IsComplete {
		if err := s.settle(ctx, game); err != nil {
			return nil, err
		}
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	view := game.View()
	return &view, nil
}

func (s *blackjackService) Hit(ctx context.Context, discordID int64, doubleDown bool) (*entities.BlackjackView, error) {
	game, err := s.gameRepo.GetActiveByUser(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}
	if game == nil {
		return nil, domainerrors.InvalidState("no blackjack game in progress")
	}

	if doubleDown {
		if game.Turn != 0 {
			return nil, domainerrors.InvalidMove("double down is only allowed on your first action")
		}
		// The doubled stake is debited with the same sufficiency guard as
		// the original wager, before the card is drawn.
		if err := s.debitWager(ctx, discordID, game.Wager); err != nil {
			return nil, err
		}
	}

	if err := game.Hit(doubleDown); err != nil {
		return nil, err
	}
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, err
	}
	if game.IsComplete {
		if err := s.settle(ctx, game); err != nil {
			return nil, err
		}
	}

	view := game.View()
	return &view, nil
}

func (s *blackjackService) Stand(ctx context.Context, discordID int64) (*entities.BlackjackView, error) {
	game, err := s.gameRepo.GetActiveByUser(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}
	if game == nil {
		return nil, domainerrors.InvalidState("no blackjack game in progress")
	}

	if err := game.Stand(); err != nil {
		return nil, err
	}
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, err
	}
	if err := s.settle(ctx, game); err != nil {
		return nil, err
	}

	view := game.View()
	return &view, nil
}

func (s *blackjackService) debitWager(ctx context.Context, discordID, wager int64) error {
	newBalance, err := s.accountRepo.AdjustBalance(ctx, discordID, -wager)
	if err != nil {
		return err
	}

	history := &entities.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   newBalance + wager,
		BalanceAfter:    newBalance,
		ChangeAmount:    -wager,
		TransactionType: entities.TransactionTypeBlackjackWager,
		TransactionMetadata: map[string]any{
			"wager": wager,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return fmt.Errorf("failed to record wager debit: %w", err)
	}
	return nil
}

// settle credits the payout of a completed game exactly once and updates the
// account's gambling metrics. Wins and pushes both credit; losses pay zero.
func (s *blackjackService) settle(ctx context.Context, game *entities.BlackjackGame) error {
	if game.Payout > 0 {
		newBalance, err := s.accountRepo.AdjustBalance(ctx, game.DiscordID, game.Payout)
		if err != nil {
			return err
		}
		history := &entities.BalanceHistory{
			DiscordID:       game.DiscordID,
			BalanceBefore:   newBalance - game.Payout,
			BalanceAfter:    newBalance,
			ChangeAmount:    game.Payout,
			TransactionType: entities.TransactionTypeBlackjackPayout,
			TransactionMetadata: map[string]any{
				"wager":   game.Wager,
				"outcome": string(game.Outcome),
			},
		}
		if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
			return fmt.Errorf("failed to record payout: %w", err)
		}
	}

	delta := &entities.AccountDelta{
		GamesPlayedInc:  1,
		TotalWageredInc: game.Wager,
		TotalWonInc:     game.Payout,
	}
	if err := s.accountRepo.ApplyDelta(ctx, game.DiscordID, delta); err != nil {
		return fmt.Errorf("failed to update gambling metrics: %w", err)
	}

	event := events.GameCompletedEvent{
		DiscordID: game.DiscordID,
		GuildID:   game.GuildID,
		GameKind:  "blackjack",
		Wager:     game.Wager,
		Payout:    game.Payout,
		Won:       game.Outcome == entities.BlackjackOutcomeWon,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish game completed event")
	}
	return nil
}
