package entities

import (
	"fmt"

	"billybot/domain/games"
)

// Suit identifies one of the four card suits.
type Suit string

const (
	SuitClubs    Suit = "clubs"
	SuitDiamonds Suit = "diamonds"
	SuitHearts   Suit = "hearts"
	SuitSpades   Suit = "spades"
)

// Card is a single playing card. Rank runs 1 (ace) through 13 (king).
type Card struct {
	Suit Suit `json:"suit" db:"suit"`
	Rank int  `json:"rank" db:"rank"`
}

// Value returns the blackjack hard value of the card: face cards count 10,
// aces count 1.
func (c Card) Value() int {
	if c.Rank >= 10 {
		return 10
	}
	return c.Rank
}

// IsAce reports whether the card is an ace.
func (c Card) IsAce() bool {
	return c.Rank == 1
}

func (c Card) String() string {
	names := map[int]string{1: "A", 11: "J", 12: "Q", 13: "K"}
	if n, ok := names[c.Rank]; ok {
		return fmt.Sprintf("%s of %s", n, c.Suit)
	}
	return fmt.Sprintf("%d of %s", c.Rank, c.Suit)
}

// BuildDeck returns the standard 52-card deck, unshuffled, no jokers.
func BuildDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades} {
		for rank := 1; rank <= 13; rank++ {
			deck = append(deck, Card{Suit: s, Rank: rank})
		}
	}
	return deck
}

// ShuffledDeck returns a fresh deck permuted by rng.
func ShuffledDeck(rng games.Rand) []Card {
	deck := BuildDeck()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// HandCount holds both readings of a blackjack hand.
type HandCount struct {
	Hard int `json:"hard"`
	Soft int `json:"soft"`
	Aces int `json:"aces"`
}

// CountHand totals a hand. Hard counts every ace as 1; soft counts the first
// ace as 11 when any ace is present. Additional aces beyond the first are not
// promoted, matching the long-standing game behavior.
func CountHand(cards []Card) HandCount {
	count := HandCount{}
	for _, c := range cards {
		count.Hard += c.Value()
		if c.IsAce() {
			count.Aces++
		}
	}
	count.Soft = count.Hard
	if count.Aces > 0 {
		count.Soft += 10
	}
	return count
}

// Best returns the count used for comparisons: soft when it does not bust,
// hard otherwise.
func (hc HandCount) Best() int {
	if hc.Soft <= 21 {
		return hc.Soft
	}
	return hc.Hard
}

// IsBlackjack reports a natural 21 reading.
func (hc HandCount) IsBlackjack() bool {
	return hc.Soft == 21
}

// Display renders the count for players: the plain number when both readings
// agree, otherwise "soft N" while the soft reading is playable and "hard N"
// once it busts.
func (hc HandCount) Display() string {
	if hc.Soft == hc.Hard {
		return fmt.Sprintf("%d", hc.Hard)
	}
	if hc.Soft <= 21 {
		return fmt.Sprintf("soft %d", hc.Soft)
	}
	return fmt.Sprintf("hard %d", hc.Hard)
}
