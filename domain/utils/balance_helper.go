package utils

import (
	"context"
	"fmt"

	"billybot/domain/entities"
	"billybot/domain/events"
	"billybot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a balance history entry and emits the matching
// event. This is the single entry point for all balance changes in the
// system: every atomic increment applied to an account is paired with
// exactly one call here inside the same unit of work.
func RecordBalanceChange(ctx context.Context, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, history *entities.BalanceHistory) error {
	if err := balanceHistoryRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		DiscordID:       history.DiscordID,
		GuildID:         history.GuildID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	}
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	if history.TransactionType == entities.TransactionTypeInitial {
		if username, ok := history.TransactionMetadata["username"].(string); ok {
			created := events.AccountCreatedEvent{
				DiscordID:      history.DiscordID,
				GuildID:        history.GuildID,
				Username:       username,
				InitialBalance: history.BalanceAfter,
			}
			if err := eventPublisher.Publish(created); err != nil {
				log.WithError(err).Error("Failed to publish account created event")
			}
		}
	}

	return nil
}
