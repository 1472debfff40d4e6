package application

import (
	"context"

	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"
	"billybot/domain/games"
	"billybot/domain/interfaces"
	"billybot/domain/services"

	log "github.com/sirupsen/logrus"
)

// App orchestrates domain services over per-request units of work. Every
// operation runs inside one transaction scoped to the server it targets:
// either all of its writes commit, or none do, and events only go out after
// commit.
type App struct {
	uowFactory interfaces.UnitOfWorkFactory
	rng        games.Rand
}

// New creates the application layer.
func New(uowFactory interfaces.UnitOfWorkFactory, rng games.Rand) *App {
	return &App{
		uowFactory: uowFactory,
		rng:        rng,
	}
}

// withGuildTx runs fn inside a transaction scoped to guildID.
func (a *App) withGuildTx(ctx context.Context, guildID int64, fn func(uow interfaces.UnitOfWork) error) error {
	uow := a.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithError(rbErr).Error("Failed to rollback transaction")
		}
		return err
	}
	return uow.Commit()
}

// GetOrCreateAccount returns the account, creating it with the starting
// balance when absent.
func (a *App) GetOrCreateAccount(ctx context.Context, guildID, discordID int64, username string) (*entities.Account, error) {
	var account *entities.Account
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := services.NewAccountService(uow.AccountRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
		var err error
		account, err = svc.GetOrCreateAccount(ctx, discordID, username)
		return err
	})
	return account, err
}

// GetAccount returns the account, or a not-found domain error.
func (a *App) GetAccount(ctx context.Context, guildID, discordID int64) (*entities.Account, error) {
	var account *entities.Account
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		account, err = uow.AccountRepository().GetByDiscordID(ctx, discordID)
		if err != nil {
			return err
		}
		if account == nil {
			return domainerrors.NotFound("account not found")
		}
		return nil
	})
	return account, err
}

// GetLeaderboard returns the server's accounts ordered by balance.
func (a *App) GetLeaderboard(ctx context.Context, guildID int64) ([]*entities.Account, error) {
	var accounts []*entities.Account
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		accounts, err = uow.AccountRepository().GetAll(ctx)
		return err
	})
	return accounts, err
}

// GetBalanceHistory returns the most recent ledger entries for an account.
func (a *App) GetBalanceHistory(ctx context.Context, guildID, discordID int64, limit int) ([]*entities.BalanceHistory, error) {
	var history []*entities.BalanceHistory
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		history, err = uow.BalanceHistoryRepository().GetByUser(ctx, discordID, limit)
		return err
	})
	return history, err
}

// Transfer moves amount between two accounts in the same server.
func (a *App) Transfer(ctx context.Context, guildID, fromDiscordID, toDiscordID, amount int64) (*interfaces.TransferResult, error) {
	var result *interfaces.TransferResult
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := services.NewAccountService(uow.AccountRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
		var err error
		result, err = svc.Transfer(ctx, fromDiscordID, toDiscordID, amount)
		return err
	})
	return result, err
}

// ClaimAllowance credits the periodic allowance when due.
func (a *App) ClaimAllowance(ctx context.Context, guildID, discordID int64) (*interfaces.AllowanceResult, error) {
	var result *interfaces.AllowanceResult
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := services.NewAccountService(uow.AccountRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
		var err error
		result, err = svc.ClaimAllowance(ctx, discordID)
		return err
	})
	return result, err
}

// StartBlackjack deals a new blackjack game for the wager.
func (a *App) StartBlackjack(ctx context.Context, guildID, discordID, wager int64) (*entities.BlackjackView, error) {
	var view *entities.BlackjackView
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := a.blackjackService(uow)
		var err error
		view, err = svc.StartGame(ctx, discordID, wager)
		return err
	})
	return view, err
}

// HitBlackjack draws a card, optionally doubling down first.
func (a *App) HitBlackjack(ctx context.Context, guildID, discordID int64, doubleDown bool) (*entities.BlackjackView, error) {
	var view *entities.BlackjackView
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := a.blackjackService(uow)
		var err error
		view, err = svc.Hit(ctx, discordID, doubleDown)
		return err
	})
	return view, err
}

// StandBlackjack ends the player's turn and settles the game.
func (a *App) StandBlackjack(ctx context.Context, guildID, discordID int64) (*entities.BlackjackView, error) {
	var view *entities.BlackjackView
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := a.blackjackService(uow)
		var err error
		view, err = svc.Stand(ctx, discordID)
		return err
	})
	return view, err
}

// OpenDealCase opens a case, starting a game when none is active.
func (a *App) OpenDealCase(ctx context.Context, guildID, discordID int64, caseNum int) (*entities.DealGameView, error) {
	var view *entities.DealGameView
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := a.dealService(uow)
		var err error
		view, err = svc.OpenCase(ctx, discordID, caseNum)
		return err
	})
	return view, err
}

// RespondDeal accepts or rejects the standing bank offer.
func (a *App) RespondDeal(ctx context.Context, guildID, discordID int64, accept bool) (*entities.DealGameView, error) {
	var view *entities.DealGameView
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := a.dealService(uow)
		var err error
		view, err = svc.Respond(ctx, discordID, accept)
		return err
	})
	return view, err
}

// SpinRoulette resolves a single roulette bet.
func (a *App) SpinRoulette(ctx context.Context, guildID, discordID int64, color games.RouletteColor, amount int64) (*interfaces.RouletteResult, error) {
	var result *interfaces.RouletteResult
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := services.NewRouletteService(uow.AccountRepository(), uow.BalanceHistoryRepository(), uow.EventBus(), a.rng)
		var err error
		result, err = svc.Spin(ctx, discordID, color, amount)
		return err
	})
	return result, err
}

// StartChallenge opens a mayor challenge for the server.
func (a *App) StartChallenge(ctx context.Context, guildID, challengerDiscordID int64) (*entities.Challenge, error) {
	var challenge *entities.Challenge
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := a.challengeService(uow)
		var err error
		challenge, err = svc.StartChallenge(ctx, challengerDiscordID)
		return err
	})
	return challenge, err
}

// PlaceChallengeBet stakes a side-bet on the server's active challenge.
func (a *App) PlaceChallengeBet(ctx context.Context, guildID, discordID, backedDiscordID, amount int64) (*entities.ChallengeBet, error) {
	var bet *entities.ChallengeBet
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := a.challengeService(uow)
		var err error
		bet, err = svc.PlaceBet(ctx, discordID, backedDiscordID, amount)
		return err
	})
	return bet, err
}

// ResolveChallenge settles the server's active mayor challenge.
func (a *App) ResolveChallenge(ctx context.Context, guildID, winnerDiscordID int64) (*entities.ChallengeResult, error) {
	var result *entities.ChallengeResult
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := a.challengeService(uow)
		var err error
		result, err = svc.ResolveChallenge(ctx, winnerDiscordID)
		return err
	})
	return result, err
}

// DrawLottery conducts a lottery draw for the server.
func (a *App) DrawLottery(ctx context.Context, guildID int64) (*interfaces.LotteryDrawResult, error) {
	var result *interfaces.LotteryDrawResult
	err := a.withGuildTx(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := services.NewLotteryService(uow.AccountRepository(), uow.BalanceHistoryRepository(), uow.EventBus(), a.rng)
		var err error
		result, err = svc.Draw(ctx)
		return err
	})
	return result, err
}

func (a *App) blackjackService(uow interfaces.UnitOfWork) interfaces.BlackjackService {
	return services.NewBlackjackService(uow.AccountRepository(), uow.BlackjackRepository(), uow.BalanceHistoryRepository(), uow.EventBus(), a.rng)
}

func (a *App) dealService(uow interfaces.UnitOfWork) interfaces.DealService {
	return services.NewDealService(uow.AccountRepository(), uow.DealRepository(), uow.BalanceHistoryRepository(), uow.EventBus(), a.rng)
}

func (a *App) challengeService(uow interfaces.UnitOfWork) interfaces.ChallengeService {
	return services.NewChallengeService(uow.AccountRepository(), uow.ChallengeRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
}
