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

// BlackjackRepository implements the BlackjackRepository interface.
// Card state is stored as JSONB; the store only ever sees opaque hands.
type BlackjackRepository struct {
	q       Queryable
	guildID int64
}

// NewBlackjackRepository creates a new blackjack repository
func NewBlackjackRepository(db *database.DB) *BlackjackRepository {
	return &BlackjackRepository{q: db.Pool}
}

// newBlackjackRepository creates a new blackjack repository with a transaction and guild scope
func newBlackjackRepository(tx Queryable, guildID int64) *BlackjackRepository {
	return &BlackjackRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Create persists a freshly dealt game. A partial unique index on
// (discord_id, guild_id) WHERE NOT is_complete enforces the single active
// game rule, so a concurrent second deal surfaces as a conflict here.
func (r *BlackjackRepository) Create(ctx context.Context, game *entities.BlackjackGame) error {
	deck, playerHand, dealerHand, err := marshalBlackjackState(game)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO blackjack_games (
			discord_id, guild_id, wager, deck, player_hand, dealer_hand,
			turn, doubled_down, is_complete, outcome, payout
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err = r.q.QueryRow(ctx, query,
		game.DiscordID,
		r.guildID,
		game.Wager,
		deck,
		playerHand,
		dealerHand,
		game.Turn,
		game.DoubledDown,
		game.IsComplete,
		string(game.Outcome),
		game.Payout,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.Conflict("a blackjack game is already in progress")
		}
		return fmt.Errorf("failed to create blackjack game for discord ID %d in guild %d: %w", game.DiscordID, r.guildID, err)
	}

	game.GuildID = r.guildID
	return nil
}

// GetActiveByUser returns the single incomplete game for an account, nil when
// there is none.
func (r *BlackjackRepository) GetActiveByUser(ctx context.Context, discordID int64) (*entities.BlackjackGame, error) {
	query := `
		SELECT id, discord_id, guild_id, wager, deck, player_hand, dealer_hand,
			turn, doubled_down, is_complete, outcome, payout, created_at, updated_at
		FROM blackjack_games
		WHERE discord_id = $1 AND guild_id = $2 AND NOT is_complete
	`

	var game entities.BlackjackGame
	var deck, playerHand, dealerHand []byte
	var outcome string
	err := r.q.QueryRow(ctx, query, discordID, r.guildID).Scan(
		&game.ID,
		&game.DiscordID,
		&game.GuildID,
		&game.Wager,
		&deck,
		&playerHand,
		&dealerHand,
		&game.Turn,
		&game.DoubledDown,
		&game.IsComplete,
		&outcome,
		&game.Payout,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active blackjack game for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}

	game.Outcome = entities.BlackjackOutcome(outcome)
	if err := unmarshalCards(deck, &game.Deck); err != nil {
		return nil, err
	}
	if err := unmarshalCards(playerHand, &game.PlayerHand); err != nil {
		return nil, err
	}
	if err := unmarshalCards(dealerHand, &game.DealerHand); err != nil {
		return nil, err
	}
	return &game, nil
}

// Update persists a state transition conditionally on the stored game still
// being incomplete. A lost race against another finalizing move surfaces as
// an invalid-state error instead of a double settlement.
func (r *BlackjackRepository) Update(ctx context.Context, game *entities.BlackjackGame) error {
	deck, playerHand, dealerHand, err := marshalBlackjackState(game)
	if err != nil {
		return err
	}

	query := `
		UPDATE blackjack_games
		SET wager = $2, deck = $3, player_hand = $4, dealer_hand = $5,
			turn = $6, doubled_down = $7, is_complete = $8, outcome = $9,
			payout = $10, updated_at = NOW()
		WHERE id = $1 AND NOT is_complete
	`
	result, err := r.q.Exec(ctx, query,
		game.ID,
		game.Wager,
		deck,
		playerHand,
		dealerHand,
		game.Turn,
		game.DoubledDown,
		game.IsComplete,
		string(game.Outcome),
		game.Payout,
	)
	if err != nil {
		return fmt.Errorf("failed to update blackjack game %d: %w", game.ID, err)
	}
	if result.RowsAffected() == 0 {
		return domainerrors.InvalidState("blackjack game was already finalized")
	}
	return nil
}

func marshalBlackjackState(game *entities.BlackjackGame) (deck, playerHand, dealerHand []byte, err error) {
	if deck, err = json.Marshal(game.Deck); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal deck: %w", err)
	}
	if playerHand, err = json.Marshal(game.PlayerHand); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal player hand: %w", err)
	}
	if dealerHand, err = json.Marshal(game.DealerHand); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal dealer hand: %w", err)
	}
	return deck, playerHand, dealerHand, nil
}

func unmarshalCards(data []byte, cards *[]entities.Card) error {
	if err := json.Unmarshal(data, cards); err != nil {
		return fmt.Errorf("failed to unmarshal cards: %w", err)
	}
	return nil
}
