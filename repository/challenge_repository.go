package repository

import (
	"context"
	"errors"
	"fmt"

	"billybot/database"
	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"

	"github.com/jackc/pgx/v5"
)

// ChallengeRepository implements the ChallengeRepository interface
type ChallengeRepository struct {
	q       Queryable
	guildID int64
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *database.DB) *ChallengeRepository {
	return &ChallengeRepository{q: db.Pool}
}

// newChallengeRepository creates a new challenge repository with a transaction and guild scope
func newChallengeRepository(tx Queryable, guildID int64) *ChallengeRepository {
	return &ChallengeRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Create creates a new challenge. A partial unique index on (guild_id)
// WHERE is_active limits each guild to one open challenge.
func (r *ChallengeRepository) Create(ctx context.Context, challenge *entities.Challenge) error {
	query := `
		INSERT INTO challenges (guild_id, mayor_discord_id, challenger_discord_id, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query, r.guildID, challenge.MayorDiscordID, challenge.ChallengerDiscordID).
		Scan(&challenge.ID, &challenge.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.Conflict("a challenge is already active")
		}
		return fmt.Errorf("failed to create challenge in guild %d: %w", r.guildID, err)
	}

	challenge.GuildID = r.guildID
	challenge.IsActive = true
	return nil
}

// GetActive returns the single active challenge, nil when there is none
func (r *ChallengeRepository) GetActive(ctx context.Context) (*entities.Challenge, error) {
	query := `
		SELECT id, guild_id, mayor_discord_id, challenger_discord_id,
			is_active, winner_discord_id, created_at, resolved_at
		FROM challenges
		WHERE guild_id = $1 AND is_active
	`

	var challenge entities.Challenge
	err := r.q.QueryRow(ctx, query, r.guildID).Scan(
		&challenge.ID,
		&challenge.GuildID,
		&challenge.MayorDiscordID,
		&challenge.ChallengerDiscordID,
		&challenge.IsActive,
		&challenge.WinnerDiscordID,
		&challenge.CreatedAt,
		&challenge.ResolvedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active challenge in guild %d: %w", r.guildID, err)
	}
	return &challenge, nil
}

// Resolve marks the challenge resolved conditionally on it still being
// active. A racing resolver loses here before any payout happens.
func (r *ChallengeRepository) Resolve(ctx context.Context, challengeID, winnerDiscordID int64) error {
	query := `
		UPDATE challenges
		SET is_active = FALSE, winner_discord_id = $2, resolved_at = NOW()
		WHERE id = $1 AND is_active
	`
	result, err := r.q.Exec(ctx, query, challengeID, winnerDiscordID)
	if err != nil {
		return fmt.Errorf("failed to resolve challenge %d: %w", challengeID, err)
	}
	if result.RowsAffected() == 0 {
		return domainerrors.InvalidState("challenge was already resolved")
	}
	return nil
}

// GetBets returns all side-bets placed on a challenge
func (r *ChallengeRepository) GetBets(ctx context.Context, challengeID int64) ([]*entities.ChallengeBet, error) {
	query := `
		SELECT id, challenge_id, guild_id, discord_id, backed_discord_id,
			amount, won, payout_amount, balance_history_id, created_at
		FROM challenge_bets
		WHERE challenge_id = $1 AND guild_id = $2
		ORDER BY id
	`
	rows, err := r.q.Query(ctx, query, challengeID, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for challenge %d: %w", challengeID, err)
	}
	defer rows.Close()

	var bets []*entities.ChallengeBet
	for rows.Next() {
		var bet entities.ChallengeBet
		err := rows.Scan(
			&bet.ID,
			&bet.ChallengeID,
			&bet.GuildID,
			&bet.DiscordID,
			&bet.BackedDiscordID,
			&bet.Amount,
			&bet.Won,
			&bet.PayoutAmount,
			&bet.BalanceHistoryID,
			&bet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge bet: %w", err)
		}
		bets = append(bets, &bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate challenge bets: %w", err)
	}
	return bets, nil
}

// CreateBet records a side-bet. One bet per user per challenge.
func (r *ChallengeRepository) CreateBet(ctx context.Context, bet *entities.ChallengeBet) error {
	query := `
		INSERT INTO challenge_bets (challenge_id, guild_id, discord_id, backed_discord_id, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		bet.ChallengeID,
		r.guildID,
		bet.DiscordID,
		bet.BackedDiscordID,
		bet.Amount,
	).Scan(&bet.ID, &bet.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.Conflict("a bet was already placed on this challenge")
		}
		return fmt.Errorf("failed to create challenge bet for discord ID %d: %w", bet.DiscordID, err)
	}

	bet.GuildID = r.guildID
	return nil
}

// SettleBet records the outcome of a side-bet after resolution
func (r *ChallengeRepository) SettleBet(ctx context.Context, bet *entities.ChallengeBet) error {
	query := `
		UPDATE challenge_bets
		SET won = $2, payout_amount = $3, balance_history_id = $4
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query, bet.ID, bet.Won, bet.PayoutAmount, bet.BalanceHistoryID)
	if err != nil {
		return fmt.Errorf("failed to settle challenge bet %d: %w", bet.ID, err)
	}
	if result.RowsAffected() == 0 {
		return domainerrors.NotFound("challenge bet %d not found", bet.ID)
	}
	return nil
}
