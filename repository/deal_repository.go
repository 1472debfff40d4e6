package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"billybot/database"
	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"

	"github.com/jackc/pgx/v5"
)

// DealRepository implements the DealRepository interface. The case layout is
// stored as JSONB so unopened values never leak into a typed column.
type DealRepository struct {
	q       Queryable
	guildID int64
}

// NewDealRepository creates a new deal repository
func NewDealRepository(db *database.DB) *DealRepository {
	return &DealRepository{q: db.Pool}
}

// newDealRepository creates a new deal repository with a transaction and guild scope
func newDealRepository(tx Queryable, guildID int64) *DealRepository {
	return &DealRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Create persists a freshly created game. The partial unique index on
// (discord_id, guild_id) WHERE NOT is_complete makes a concurrent second
// start a conflict.
func (r *DealRepository) Create(ctx context.Context, game *entities.DealGame) error {
	cases, err := json.Marshal(game.Cases)
	if err != nil {
		return fmt.Errorf("failed to marshal cases: %w", err)
	}

	query := `
		INSERT INTO deal_games (
			discord_id, guild_id, cases, selected_case, to_open,
			offer, is_complete, accepted, payout
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err = r.q.QueryRow(ctx, query,
		game.DiscordID,
		r.guildID,
		cases,
		game.SelectedCase,
		game.ToOpen,
		game.Offer,
		game.IsComplete,
		game.Accepted,
		game.Payout,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.Conflict("a deal or no deal game is already in progress")
		}
		return fmt.Errorf("failed to create deal game for discord ID %d in guild %d: %w", game.DiscordID, r.guildID, err)
	}

	game.GuildID = r.guildID
	return nil
}

// GetActiveByUser returns the single incomplete game for an account, nil when
// there is none.
func (r *DealRepository) GetActiveByUser(ctx context.Context, discordID int64) (*entities.DealGame, error) {
	query := `
		SELECT id, discord_id, guild_id, cases, selected_case, to_open,
			offer, is_complete, accepted, payout, created_at, updated_at
		FROM deal_games
		WHERE discord_id = $1 AND guild_id = $2 AND NOT is_complete
	`

	var game entities.DealGame
	var cases []byte
	err := r.q.QueryRow(ctx, query, discordID, r.guildID).Scan(
		&game.ID,
		&game.DiscordID,
		&game.GuildID,
		&cases,
		&game.SelectedCase,
		&game.ToOpen,
		&game.Offer,
		&game.IsComplete,
		&game.Accepted,
		&game.Payout,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active deal game for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}

	if err := json.Unmarshal(cases, &game.Cases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cases: %w", err)
	}
	return &game, nil
}

// Update persists a state transition conditionally on the stored game still
// being incomplete.
func (r *DealRepository) Update(ctx context.Context, game *entities.DealGame) error {
	cases, err := json.Marshal(game.Cases)
	if err != nil {
		return fmt.Errorf("failed to marshal cases: %w", err)
	}

	query := `
		UPDATE deal_games
		SET cases = $2, selected_case = $3, to_open = $4, offer = $5,
			is_complete = $6, accepted = $7, payout = $8, updated_at = NOW()
		WHERE id = $1 AND NOT is_complete
	`
	result, err := r.q.Exec(ctx, query,
		game.ID,
		cases,
		game.SelectedCase,
		game.ToOpen,
		game.Offer,
		game.IsComplete,
		game.Accepted,
		game.Payout,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal game %d: %w", game.ID, err)
	}
	if result.RowsAffected() == 0 {
		return domainerrors.InvalidState("deal game was already finalized")
	}
	return nil
}
