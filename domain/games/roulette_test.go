package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fixedRand always lands on the same slot.
type fixedRand struct {
	n int
}

func (r fixedRand) Intn(n int) int                    { return r.n }
func (r fixedRand) Shuffle(n int, swap func(i, j int)) {}

func TestResolveRouletteColors(t *testing.T) {
	tests := []struct {
		slot  int
		color RouletteColor
	}{
		{0, RouletteGreen},
		{1, RouletteGreen},
		{2, RouletteBlack},
		{19, RouletteBlack},
		{20, RouletteRed},
		{37, RouletteRed},
	}

	for _, tt := range tests {
		outcome := ResolveRoulette(fixedRand{tt.slot}, RouletteRed, 100)
		assert.Equal(t, tt.slot, outcome.Slot)
		assert.Equal(t, tt.color, outcome.WinningColor)
	}
}

func TestResolveRoulettePayouts(t *testing.T) {
	// Loss forfeits the stake.
	outcome := ResolveRoulette(fixedRand{0}, RouletteRed, 100)
	assert.False(t, outcome.Won)
	assert.Equal(t, int64(-100), outcome.BalanceDelta)

	// Red or black win nets even money.
	outcome = ResolveRoulette(fixedRand{25}, RouletteRed, 100)
	assert.True(t, outcome.Won)
	assert.Equal(t, int64(100), outcome.BalanceDelta)

	outcome = ResolveRoulette(fixedRand{5}, RouletteBlack, 100)
	assert.True(t, outcome.Won)
	assert.Equal(t, int64(100), outcome.BalanceDelta)

	// Green win nets 17x.
	outcome = ResolveRoulette(fixedRand{1}, RouletteGreen, 100)
	assert.True(t, outcome.Won)
	assert.Equal(t, int64(1700), outcome.BalanceDelta)
}

func TestRouletteColorValid(t *testing.T) {
	assert.True(t, RouletteRed.Valid())
	assert.True(t, RouletteBlack.Valid())
	assert.True(t, RouletteGreen.Valid())
	assert.False(t, RouletteColor("blue").Valid())
	assert.False(t, RouletteColor("").Valid())
}
