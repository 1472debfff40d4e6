package entities

// TransactionType represents the cause of a balance change.
type TransactionType string

// All transaction types supported by the system
const (
	// Game transactions
	TransactionTypeBlackjackWager  TransactionType = "blackjack_wager"
	TransactionTypeBlackjackPayout TransactionType = "blackjack_payout"
	TransactionTypeDealPayout      TransactionType = "deal_payout"
	TransactionTypeRouletteWin     TransactionType = "roulette_win"
	TransactionTypeRouletteLoss    TransactionType = "roulette_loss"

	// Challenge transactions
	TransactionTypeChallengeBet    TransactionType = "challenge_bet"
	TransactionTypeChallengeBetWin TransactionType = "challenge_bet_win"

	// Transfer transactions
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"

	// System transactions
	TransactionTypeInitial    TransactionType = "initial"
	TransactionTypeAllowance  TransactionType = "allowance"
	TransactionTypeLotteryWin TransactionType = "lottery_win"
)

// IsGameRelated returns true if the transaction type belongs to a game
// resolution.
func (tt TransactionType) IsGameRelated() bool {
	switch tt {
	case TransactionTypeBlackjackWager, TransactionTypeBlackjackPayout,
		TransactionTypeDealPayout, TransactionTypeRouletteWin, TransactionTypeRouletteLoss:
		return true
	}
	return false
}

// String returns the string representation of the transaction type.
func (tt TransactionType) String() string {
	return string(tt)
}
