package repository

import (
	"context"
	"errors"
	"fmt"

	"billybot/database"
	"billybot/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	guildID                int64
	transactionalPublisher interfaces.TransactionalEventPublisher
	accountRepo            interfaces.AccountRepository
	balanceHistoryRepo     interfaces.BalanceHistoryRepository
	blackjackRepo          interfaces.BlackjackRepository
	dealRepo               interfaces.DealRepository
	challengeRepo          interfaces.ChallengeRepository
}

type unitOfWorkFactory struct {
	db   *database.DB
	sink interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. Events published
// inside each unit of work are forwarded to sink only after commit.
func NewUnitOfWorkFactory(db *database.DB, sink interfaces.EventPublisher) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:   db,
		sink: sink,
	}
}

// CreateForGuild creates a new UnitOfWork scoped to one guild
func (f *unitOfWorkFactory) CreateForGuild(guildID int64) interfaces.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		guildID:                guildID,
		transactionalPublisher: newBufferedPublisher(f.sink),
	}
}

// Begin starts a new transaction and builds the guild-scoped repositories on it
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.accountRepo = newAccountRepository(tx, u.guildID)
	u.balanceHistoryRepo = newBalanceHistoryRepository(tx, u.guildID)
	u.blackjackRepo = newBlackjackRepository(tx, u.guildID)
	u.dealRepo = newDealRepository(tx, u.guildID)
	u.challengeRepo = newChallengeRepository(tx, u.guildID)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	u.transactionalPublisher.Flush(u.ctx)
	return nil
}

// Rollback rolls back the transaction and discards pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	u.tx = nil

	u.transactionalPublisher.Discard()
	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	if u.balanceHistoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.balanceHistoryRepo
}

// BlackjackRepository returns the blackjack repository for this unit of work
func (u *unitOfWork) BlackjackRepository() interfaces.BlackjackRepository {
	if u.blackjackRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.blackjackRepo
}

// DealRepository returns the deal repository for this unit of work
func (u *unitOfWork) DealRepository() interfaces.DealRepository {
	if u.dealRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.dealRepo
}

// ChallengeRepository returns the challenge repository for this unit of work
func (u *unitOfWork) ChallengeRepository() interfaces.ChallengeRepository {
	if u.challengeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.challengeRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalPublisher
}
