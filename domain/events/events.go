package events

import "billybot/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeGameCompleted  EventType = "game_completed"
	EventTypeLotteryDrawn   EventType = "lottery_drawn"
	EventTypeMayorChanged   EventType = "mayor_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	DiscordID       int64
	GuildID         int64
	OldBalance      int64
	NewBalance      int64
	TransactionType entities.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a new account creation
type AccountCreatedEvent struct {
	DiscordID      int64
	GuildID        int64
	Username       string
	InitialBalance int64
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// GameCompletedEvent represents a game that reached its terminal state
type GameCompletedEvent struct {
	DiscordID int64
	GuildID   int64
	GameKind  string
	Wager     int64
	Payout    int64
	Won       bool
}

func (e GameCompletedEvent) Type() EventType {
	return EventTypeGameCompleted
}

// LotteryDrawnEvent represents a completed lottery draw
type LotteryDrawnEvent struct {
	GuildID  int64
	WinnerID int64
	Jackpot  int64
	Entrants int
}

func (e LotteryDrawnEvent) Type() EventType {
	return EventTypeLotteryDrawn
}

// MayorChangedEvent represents a mayor/fool succession
type MayorChangedEvent struct {
	GuildID    int64
	NewMayorID int64
	NewFoolID  int64
}

func (e MayorChangedEvent) Type() EventType {
	return EventTypeMayorChanged
}
