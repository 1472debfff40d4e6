package games

// RouletteColor is a wheel color a player can back.
type RouletteColor string

const (
	RouletteGreen RouletteColor = "green"
	RouletteBlack RouletteColor = "black"
	RouletteRed   RouletteColor = "red"
)

// Valid reports whether the color is one of the three backable colors.
func (c RouletteColor) Valid() bool {
	return c == RouletteGreen || c == RouletteBlack || c == RouletteRed
}

// RouletteOutcome is the result of one spin together with the balance delta
// to apply to the bettor.
type RouletteOutcome struct {
	Slot         int           `json:"slot"`
	WinningColor RouletteColor `json:"winning_color"`
	Won          bool          `json:"won"`
	BalanceDelta int64         `json:"balance_delta"`
}

// ResolveRoulette spins a 38-slot wheel: 2 green, 18 black, 18 red. A losing
// bet forfeits the stake, a red or black win nets even money, and a green win
// nets 17 times the stake.
func ResolveRoulette(rng Rand, color RouletteColor, betAmount int64) RouletteOutcome {
	slot := rng.Intn(38)

	var winning RouletteColor
	switch {
	case slot <= 1:
		winning = RouletteGreen
	case slot <= 19:
		winning = RouletteBlack
	default:
		winning = RouletteRed
	}

	out := RouletteOutcome{Slot: slot, WinningColor: winning, Won: winning == color}
	switch {
	case !out.Won:
		out.BalanceDelta = -betAmount
	case winning == RouletteGreen:
		out.BalanceDelta = betAmount * 17
	default:
		out.BalanceDelta = betAmount
	}
	return out
}
