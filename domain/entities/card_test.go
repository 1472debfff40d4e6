package entities

import (
	"testing"

	"billybot/domain/games"

	"github.com/stretchr/testify/assert"
)

func TestBuildDeck(t *testing.T) {
	deck := BuildDeck()
	assert.Len(t, deck, 52)

	seen := make(map[Card]bool)
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
}

func TestShuffledDeckIsPermutation(t *testing.T) {
	deck := ShuffledDeck(games.NewSeededRand(42))
	assert.Len(t, deck, 52)

	seen := make(map[Card]bool)
	for _, c := range deck {
		seen[c] = true
	}
	assert.Len(t, seen, 52)
}

func TestCardValue(t *testing.T) {
	assert.Equal(t, 1, Card{Rank: 1}.Value())
	assert.Equal(t, 9, Card{Rank: 9}.Value())
	assert.Equal(t, 10, Card{Rank: 10}.Value())
	assert.Equal(t, 10, Card{Rank: 11}.Value())
	assert.Equal(t, 10, Card{Rank: 13}.Value())
}

func TestCountHand(t *testing.T) {
	tests := []struct {
		name     string
		cards    []Card
		hard     int
		soft     int
		display  string
		natural  bool
	}{
		{
			name:    "no aces",
			cards:   []Card{{Rank: 10}, {Rank: 9}},
			hard:    19,
			soft:    19,
			display: "19",
		},
		{
			name:    "single ace playable soft",
			cards:   []Card{{Rank: 1}, {Rank: 6}},
			hard:    7,
			soft:    17,
			display: "soft 17",
		},
		{
			name:    "natural",
			cards:   []Card{{Rank: 1}, {Rank: 13}},
			hard:    11,
			soft:    21,
			display: "soft 21",
			natural: true,
		},
		{
			name:    "busted soft falls back to hard",
			cards:   []Card{{Rank: 1}, {Rank: 9}, {Rank: 5}},
			hard:    15,
			soft:    25,
			display: "hard 15",
		},
		{
			// Only the first ace is promoted to 11.
			name:    "two aces promote once",
			cards:   []Card{{Rank: 1}, {Rank: 1}, {Rank: 9}},
			hard:    11,
			soft:    21,
			display: "soft 21",
			natural: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := CountHand(tt.cards)
			assert.Equal(t, tt.hard, count.Hard)
			assert.Equal(t, tt.soft, count.Soft)
			assert.Equal(t, tt.display, count.Display())
			assert.Equal(t, tt.natural, count.IsBlackjack())
		})
	}
}

func TestHandCountBest(t *testing.T) {
	assert.Equal(t, 17, HandCount{Hard: 7, Soft: 17}.Best())
	assert.Equal(t, 15, HandCount{Hard: 15, Soft: 25}.Best())
	assert.Equal(t, 19, HandCount{Hard: 19, Soft: 19}.Best())
}
