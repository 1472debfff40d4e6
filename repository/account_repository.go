package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"billybot/database"
	"billybot/domain/entities"
	domainerrors "billybot/domain/errors"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	id, discord_id, guild_id, username, balance,
	deal_eligible, is_mayor, is_fool, has_lottery_ticket, last_allowance,
	games_played, total_wagered, total_won, challenge_wins,
	created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q       Queryable
	guildID int64
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepository creates a new account repository with a transaction and guild scope
func newAccountRepository(tx Queryable, guildID int64) *AccountRepository {
	return &AccountRepository{
		q:       tx,
		guildID: guildID,
	}
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var a entities.Account
	err := row.Scan(
		&a.ID,
		&a.DiscordID,
		&a.GuildID,
		&a.Username,
		&a.Balance,
		&a.DealEligible,
		&a.IsMayor,
		&a.IsFool,
		&a.HasLotteryTicket,
		&a.LastAllowance,
		&a.GamesPlayed,
		&a.TotalWagered,
		&a.TotalWon,
		&a.ChallengeWins,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByDiscordID retrieves an account by Discord ID in the current guild
func (r *AccountRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE discord_id = $1 AND guild_id = $2
	`
	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID, r.guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}
	return account, nil
}

// Create creates a new account with the initial balance in the current guild
func (r *AccountRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*entities.Account, error) {
	query := `
		INSERT INTO accounts (discord_id, guild_id, username, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + accountColumns + `
	`
	account, err := scanAccount(r.q.QueryRow(ctx, query, discordID, r.guildID, username, initialBalance))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainerrors.Conflict("account already exists for discord ID %d", discordID)
		}
		return nil, fmt.Errorf("failed to create account for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}
	return account, nil
}

// AdjustBalance applies delta as one conditional increment. The WHERE clause
// rejects any debit that would drive the balance negative, so two concurrent
// spends can never both succeed against the same funds.
func (r *AccountRepository) AdjustBalance(ctx context.Context, discordID int64, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE discord_id = $2 AND guild_id = $3 AND balance + $1 >= 0
		RETURNING balance
	`
	var newBalance int64
	err := r.q.QueryRow(ctx, query, delta, discordID, r.guildID).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the account is missing or the debit would overdraw it.
		account, getErr := r.GetByDiscordID(ctx, discordID)
		if getErr != nil {
			return 0, getErr
		}
		if account == nil {
			return 0, domainerrors.NotFound("account not found for discord ID %d", discordID)
		}
		return 0, domainerrors.InsufficientFunds(account.Balance, -delta)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}
	return newBalance, nil
}

// ApplyDelta applies a typed partial update as a single UPDATE statement.
func (r *AccountRepository) ApplyDelta(ctx context.Context, discordID int64, delta *entities.AccountDelta) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{discordID, r.guildID}

	addArg := func(clause string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf(clause, len(args)))
	}

	if delta.BalanceDelta != nil {
		addArg("balance = balance + $%d", *delta.BalanceDelta)
	}
	if delta.DealEligible != nil {
		addArg("deal_eligible = $%d", *delta.DealEligible)
	}
	if delta.IsMayor != nil {
		addArg("is_mayor = $%d", *delta.IsMayor)
	}
	if delta.IsFool != nil {
		addArg("is_fool = $%d", *delta.IsFool)
	}
	if delta.HasLotteryTicket != nil {
		addArg("has_lottery_ticket = $%d", *delta.HasLotteryTicket)
	}
	if delta.LastAllowance != nil {
		addArg("last_allowance = $%d", *delta.LastAllowance)
	}
	if delta.GamesPlayedInc != 0 {
		addArg("games_played = games_played + $%d", delta.GamesPlayedInc)
	}
	if delta.TotalWageredInc != 0 {
		addArg("total_wagered = total_wagered + $%d", delta.TotalWageredInc)
	}
	if delta.TotalWonInc != 0 {
		addArg("total_won = total_won + $%d", delta.TotalWonInc)
	}
	if delta.ChallengeWinsInc != 0 {
		addArg("challenge_wins = challenge_wins + $%d", delta.ChallengeWinsInc)
	}

	query := "UPDATE accounts SET " + strings.Join(sets, ", ") + " WHERE discord_id = $1 AND guild_id = $2"
	result, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to apply delta for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}
	if result.RowsAffected() == 0 {
		return domainerrors.NotFound("account not found for discord ID %d", discordID)
	}
	return nil
}

// StampAllowance advances last_allowance conditionally on its previous value.
// Two concurrent claims both read the same previous stamp; only the first
// UPDATE matches and the loser gets a conflict.
func (r *AccountRepository) StampAllowance(ctx context.Context, discordID int64, previous *time.Time, claimedAt time.Time) error {
	query := `
		UPDATE accounts
		SET last_allowance = $1, updated_at = NOW()
		WHERE discord_id = $2 AND guild_id = $3 AND last_allowance IS NOT DISTINCT FROM $4
	`
	result, err := r.q.Exec(ctx, query, claimedAt, discordID, r.guildID, previous)
	if err != nil {
		return fmt.Errorf("failed to stamp allowance for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}
	if result.RowsAffected() == 0 {
		return domainerrors.Conflict("allowance was already claimed")
	}
	return nil
}

// GetMayor returns the account holding the mayor role in the current guild
func (r *AccountRepository) GetMayor(ctx context.Context) (*entities.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE guild_id = $1 AND is_mayor
	`
	account, err := scanAccount(r.q.QueryRow(ctx, query, r.guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mayor in guild %d: %w", r.guildID, err)
	}
	return account, nil
}

// GetLotteryEntrants returns all accounts holding a lottery ticket in the current guild
func (r *AccountRepository) GetLotteryEntrants(ctx context.Context) ([]*entities.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE guild_id = $1 AND has_lottery_ticket
		ORDER BY discord_id
	`
	return r.queryAccounts(ctx, query, r.guildID)
}

// ClearLotteryTickets clears every ticket in the current guild
func (r *AccountRepository) ClearLotteryTickets(ctx context.Context) (int64, error) {
	query := `
		UPDATE accounts
		SET has_lottery_ticket = FALSE, updated_at = NOW()
		WHERE guild_id = $1 AND has_lottery_ticket
	`
	result, err := r.q.Exec(ctx, query, r.guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear lottery tickets in guild %d: %w", r.guildID, err)
	}
	return result.RowsAffected(), nil
}

// GetAll returns all accounts in the current guild
func (r *AccountRepository) GetAll(ctx context.Context) ([]*entities.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE guild_id = $1
		ORDER BY balance DESC
	`
	return r.queryAccounts(ctx, query, r.guildID)
}

func (r *AccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]*entities.Account, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts in guild %d: %w", r.guildID, err)
	}
	defer rows.Close()

	var accounts []*entities.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}
