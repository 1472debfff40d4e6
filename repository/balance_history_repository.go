package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"billybot/database"
	"billybot/domain/entities"
)

// BalanceHistoryRepository implements the BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q       Queryable
	guildID int64
}

// NewBalanceHistoryRepository creates a new balance history repository
func NewBalanceHistoryRepository(db *database.DB) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool}
}

// newBalanceHistoryRepository creates a new balance history repository with a transaction and guild scope
func newBalanceHistoryRepository(tx Queryable, guildID int64) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Record creates a new balance history entry. The entry's ID and guild scope
// are filled in on the passed struct.
func (r *BalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	metadata, err := json.Marshal(history.TransactionMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	query := `
		INSERT INTO balance_history (
			discord_id, guild_id, balance_before, balance_after,
			change_amount, transaction_type, transaction_metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err = r.q.QueryRow(ctx, query,
		history.DiscordID,
		r.guildID,
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		string(history.TransactionType),
		metadata,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record balance history for discord ID %d in guild %d: %w", history.DiscordID, r.guildID, err)
	}

	history.GuildID = r.guildID
	return nil
}

// GetByUser returns the most recent balance history entries for an account
func (r *BalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error) {
	query := `
		SELECT id, discord_id, guild_id, balance_before, balance_after,
			change_amount, transaction_type, transaction_metadata, created_at
		FROM balance_history
		WHERE discord_id = $1 AND guild_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	rows, err := r.q.Query(ctx, query, discordID, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}
	defer rows.Close()

	var entries []*entities.BalanceHistory
	for rows.Next() {
		var entry entities.BalanceHistory
		var transactionType string
		var metadata []byte
		err := rows.Scan(
			&entry.ID,
			&entry.DiscordID,
			&entry.GuildID,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&transactionType,
			&metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history entry: %w", err)
		}
		entry.TransactionType = entities.TransactionType(transactionType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance history: %w", err)
	}
	return entries, nil
}
