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

type dealService struct {
	accountRepo        interfaces.AccountRepository
	gameRepo           interfaces.DealRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	rng                games.Rand
}

// NewDealService creates a new deal-or-no-deal service
func NewDealService(accountRepo interfaces.AccountRepository, gameRepo interfaces.DealRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, rng games.Rand) interfaces.DealService {
	return &dealService{
		accountRepo:        accountRepo,
		gameRepo:           gameRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		rng:                rng,
	}
}

func (s *dealService) OpenCase(ctx context.Context, discordID int64, caseNum int) (*entities.DealGameView, error) {
	game, err := s.gameRepo.GetActiveByUser(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}

	if game == nil {
		return s.startGame(ctx, discordID, caseNum)
	}

	if err := game.OpenCase(caseNum); err != nil {
		return nil, err
	}
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, err
	}

	view := game.View()
	return &view, nil
}

// startGame consumes the account's eligibility flag and creates a game with
// the requested case as the player's kept case. Eligibility is only consumed
// when no game exists, so a repeat call against an in-progress game never
// burns a second flag.
func (s *dealService) startGame(ctx context.Context, discordID int64, caseNum int) (*entities.DealGameView, error) {
	if caseNum < 1 || caseNum > entities.DealCaseCount {
		return nil, domainerrors.InvalidMove("case number must be between 1 and %d", entities.DealCaseCount)
	}

	account, err := s.accountRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, domainerrors.NotFound("account not found")
	}
	if !account.DealEligible {
		return nil, domainerrors.NotEligible("you are not eligible to play deal or no deal right now")
	}

	delta := &entities.AccountDelta{DealEligible: entities.BoolPtr(false)}
	if err := s.accountRepo.ApplyDelta(ctx, discordID, delta); err != nil {
		return nil, fmt.Errorf("failed to consume eligibility: %w", err)
	}

	game := entities.NewDealGame(discordID, account.GuildID, caseNum, s.rng)
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	view := game.View()
	return &view, nil
}

func (s *dealService) Respond(ctx context.Context, discordID int64, accept bool) (*entities.DealGameView, error) {
	game, err := s.gameRepo.GetActiveByUser(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}
	if game == nil {
		return nil, domainerrors.NotFound("no deal or no deal game in progress")
	}

	if err := game.Respond(accept); err != nil {
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

func (s *dealService) settle(ctx context.Context, game *entities.DealGame) error {
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
			TransactionType: entities.TransactionTypeDealPayout,
			TransactionMetadata: map[string]any{
				"accepted_offer": game.Accepted,
				"selected_case":  game.SelectedCase,
				"case_value":     game.SelectedValue(),
			},
		}
		if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
			return fmt.Errorf("failed to record payout: %w", err)
		}
	}

	delta := &entities.AccountDelta{
		GamesPlayedInc: 1,
		TotalWonInc:    game.Payout,
	}
	if err := s.accountRepo.ApplyDelta(ctx, game.DiscordID, delta); err != nil {
		return fmt.Errorf("failed to update gambling metrics: %w", err)
	}

	event := events.GameCompletedEvent{
		DiscordID: game.DiscordID,
		GuildID:   game.GuildID,
		GameKind:  "deal_or_no_deal",
		Payout:    game.Payout,
		Won:       game.Payout > 0,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish game completed event")
	}
	return nil
}
