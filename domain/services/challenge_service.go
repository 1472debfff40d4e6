package services

import (
	"context"
	"fmt"
	"time"

	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"
	"billybot/domain/events"
	"billybot/domain/interfaces"
	"billybot/domain/utils"

	log "github.com/sirupsen/logrus"
)

type challengeService struct {
	accountRepo        interfaces.AccountRepository
	challengeRepo      interfaces.ChallengeRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewChallengeService creates a new challenge service
func NewChallengeService(accountRepo interfaces.AccountRepository, challengeRepo interfaces.ChallengeRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher) interfaces.ChallengeService {
	return &challengeService{
		accountRepo:        accountRepo,
		challengeRepo:      challengeRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

// StartChallenge opens a challenge from challengerDiscordID against the
// sitting mayor. The partial unique index on active challenges rejects a
// second one per server.
func (s *challengeService) StartChallenge(ctx context.Context, challengerDiscordID int64) (*entities.Challenge, error) {
	challenger, err := s.accountRepo.GetByDiscordID(ctx, challengerDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenger account: %w", err)
	}
	if challenger == nil {
		return nil, domainerrors.NotFound("challenger account not found")
	}

	mayor, err := s.accountRepo.GetMayor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sitting mayor: %w", err)
	}
	if mayor == nil {
		return nil, domainerrors.InvalidState("this server has no sitting mayor to challenge")
	}
	if mayor.DiscordID == challengerDiscordID {
		return nil, domainerrors.InvalidMove("the mayor cannot challenge themselves")
	}

	challenge := &entities.Challenge{
		MayorDiscordID:      mayor.DiscordID,
		ChallengerDiscordID: challengerDiscordID,
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// PlaceBet stakes amount on one of the two contestants. The debit and the bet
// row commit together; a duplicate bet fails the insert and rolls the debit
// back with it.
func (s *challengeService) PlaceBet(ctx context.Context, discordID, backedDiscordID, amount int64) (*entities.ChallengeBet, error) {
	if amount <= 0 {
		return nil, domainerrors.InvalidMove("bet amount must be positive")
	}

	challenge, err := s.challengeRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active challenge: %w", err)
	}
	if challenge == nil {
		return nil, domainerrors.NotFound("no active challenge")
	}
	if !challenge.HasParticipant(backedDiscordID) {
		return nil, domainerrors.InvalidMove("you can only back one of the challenge participants")
	}

	newBalance, err := s.accountRepo.AdjustBalance(ctx, discordID, -amount)
	if err != nil {
		return nil, err
	}

	history := &entities.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   newBalance + amount,
		BalanceAfter:    newBalance,
		ChangeAmount:    -amount,
		TransactionType: entities.TransactionTypeChallengeBet,
		TransactionMetadata: map[string]any{
			"challenge_id": challenge.ID,
			"backed":       backedDiscordID,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record bet stake: %w", err)
	}

	bet := &entities.ChallengeBet{
		ChallengeID:     challenge.ID,
		DiscordID:       discordID,
		BackedDiscordID: backedDiscordID,
		Amount:          amount,
	}
	if err := s.challengeRepo.CreateBet(ctx, bet); err != nil {
		return nil, err
	}
	return bet, nil
}

// ResolveChallenge settles the active challenge: the winner takes the mayor
// role, the loser becomes the fool, and every side-bet is paid out from a
// snapshot taken before any mutation.
func (s *challengeService) ResolveChallenge(ctx context.Context, winnerDiscordID int64) (*entities.ChallengeResult, error) {
	challenge, err := s.challengeRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active challenge: %w", err)
	}
	if challenge == nil {
		return nil, domainerrors.NotFound("no active challenge")
	}
	if !challenge.HasParticipant(winnerDiscordID) {
		return nil, domainerrors.InvalidMove("winner must be one of the challenge participants")
	}

	// Snapshot the bets before any account is touched.
	bets, err := s.challengeRepo.GetBets(ctx, challenge.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge bets: %w", err)
	}

	// Conditional on the challenge still being active; a racing resolver
	// loses here before any payout happens.
	if err := s.challengeRepo.Resolve(ctx, challenge.ID, winnerDiscordID); err != nil {
		return nil, err
	}

	loserDiscordID := challenge.Loser(winnerDiscordID)

	winnerDelta := &entities.AccountDelta{
		IsMayor: entities.BoolPtr(true),
		IsFool:  entities.BoolPtr(false),
	}
	if err := s.accountRepo.ApplyDelta(ctx, winnerDiscordID, winnerDelta); err != nil {
		return nil, fmt.Errorf("failed to promote new mayor: %w", err)
	}
	loserDelta := &entities.AccountDelta{
		IsMayor: entities.BoolPtr(false),
		IsFool:  entities.BoolPtr(true),
	}
	if err := s.accountRepo.ApplyDelta(ctx, loserDiscordID, loserDelta); err != nil {
		return nil, fmt.Errorf("failed to demote loser: %w", err)
	}

	result := &entities.ChallengeResult{
		Challenge:  challenge,
		NewMayorID: winnerDiscordID,
		NewFoolID:  loserDiscordID,
	}

	for _, bet := range bets {
		if bet.BackedDiscordID == winnerDiscordID {
			if err := s.payWinningBet(ctx, challenge, bet); err != nil {
				return nil, err
			}
			result.WinningBets = append(result.WinningBets, bet)
			result.TotalPaidOut += *bet.PayoutAmount
		} else {
			bet.Won = entities.BoolPtr(false)
			bet.PayoutAmount = entities.Int64Ptr(0)
			if err := s.challengeRepo.SettleBet(ctx, bet); err != nil {
				return nil, fmt.Errorf("failed to settle losing bet: %w", err)
			}
			result.LosingBets = append(result.LosingBets, bet)
		}
	}

	now := time.Now().UTC()
	challenge.IsActive = false
	challenge.WinnerDiscordID = &winnerDiscordID
	challenge.ResolvedAt = &now

	event := events.MayorChangedEvent{
		GuildID:    challenge.GuildID,
		NewMayorID: winnerDiscordID,
		NewFoolID:  loserDiscordID,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish mayor changed event")
	}

	return result, nil
}

// payWinningBet credits a bettor who backed the winner with twice their
// stake and bumps their challenge metrics.
func (s *challengeService) payWinningBet(ctx context.Context, challenge *entities.Challenge, bet *entities.ChallengeBet) error {
	payout := bet.Amount * 2

	newBalance, err := s.accountRepo.AdjustBalance(ctx, bet.DiscordID, payout)
	if err != nil {
		return err
	}

	history := &entities.BalanceHistory{
		DiscordID:       bet.DiscordID,
		BalanceBefore:   newBalance - payout,
		BalanceAfter:    newBalance,
		ChangeAmount:    payout,
		TransactionType: entities.TransactionTypeChallengeBetWin,
		TransactionMetadata: map[string]any{
			"challenge_id": challenge.ID,
			"bet_amount":   bet.Amount,
			"backed":       bet.BackedDiscordID,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return fmt.Errorf("failed to record bet payout: %w", err)
	}

	metricsDelta := &entities.AccountDelta{
		ChallengeWinsInc: 1,
		TotalWonInc:      payout,
	}
	if err := s.accountRepo.ApplyDelta(ctx, bet.DiscordID, metricsDelta); err != nil {
		return fmt.Errorf("failed to update challenge metrics: %w", err)
	}

	bet.Won = entities.BoolPtr(true)
	bet.PayoutAmount = entities.Int64Ptr(payout)
	bet.BalanceHistoryID = &history.ID
	if err := s.challengeRepo.SettleBet(ctx, bet); err != nil {
		return fmt.Errorf("failed to settle winning bet: %w", err)
	}
	return nil
}
