package entities

import (
	"time"

	domainerrors "billybot/domain/errors"
	"billybot/domain/games"
)

// BlackjackOutcome records how a completed game ended.
type BlackjackOutcome string

const (
	BlackjackOutcomeWon  BlackjackOutcome = "won"
	BlackjackOutcomeLost BlackjackOutcome = "lost"
	BlackjackOutcomePush BlackjackOutcome = "push"
)

// BlackjackGame is the full state of one blackjack game. At most one
// incomplete game exists per account; the repository enforces that with a
// partial unique index and conditional updates.
type BlackjackGame struct {
	ID          int64            `db:"id"`
	DiscordID   int64            `db:"discord_id"`
	GuildID     int64            `db:"guild_id"`
	Wager       int64            `db:"wager"`
	Deck        []Card           `db:"deck"`
	PlayerHand  []Card           `db:"player_hand"`
	DealerHand  []Card           `db:"dealer_hand"`
	Turn        int              `db:"turn"`
	DoubledDown bool             `db:"doubled_down"`
	IsComplete  bool             `db:"is_complete"`
	Outcome     BlackjackOutcome `db:"outcome"`
	Payout      int64            `db:"payout"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

// NewBlackjackGame deals a fresh game: two cards each from a shuffled deck.
// If either side holds a natural 21 the game resolves immediately:
// both naturals push, a player natural pays 3:2, a dealer natural loses.
func NewBlackjackGame(discordID, guildID, wager int64, rng games.Rand) *BlackjackGame {
	g := &BlackjackGame{
		DiscordID: discordID,
		GuildID:   guildID,
		Wager:     wager,
		Deck:      ShuffledDeck(rng),
	}
	g.PlayerHand = append(g.PlayerHand, g.draw(), g.draw())
	g.DealerHand = append(g.DealerHand, g.draw(), g.draw())

	playerNatural := CountHand(g.PlayerHand).IsBlackjack()
	dealerNatural := CountHand(g.DealerHand).IsBlackjack()
	switch {
	case playerNatural && dealerNatural:
		g.finish(BlackjackOutcomePush, g.Wager)
	case playerNatural:
		// Stake returned plus a 1.5x bonus, floored.
		g.finish(BlackjackOutcomeWon, g.Wager*5/2)
	case dealerNatural:
		g.finish(BlackjackOutcomeLost, 0)
	}
	return g
}

// Hit draws one card into the player's hand. Double-down is only legal as the
// very first action and doubles the wager along with the draw; the caller is
// responsible for debiting the additional stake before applying it.
func (g *BlackjackGame) Hit(doubleDown bool) error {
	if g.IsComplete {
		return domainerrors.InvalidState("blackjack game is already complete")
	}
	if doubleDown {
		if g.Turn != 0 {
			return domainerrors.InvalidMove("double down is only allowed on your first action")
		}
		g.Wager += g.Wager
		g.DoubledDown = true
	}

	g.PlayerHand = append(g.PlayerHand, g.draw())

	count := CountHand(g.PlayerHand)
	switch {
	case count.Hard > 21:
		g.finish(BlackjackOutcomeLost, 0)
	case count.Hard == 21 || count.Soft == 21 || g.DoubledDown:
		g.resolveAgainstDealer()
	default:
		g.Turn++
	}
	return nil
}

// Stand ends the player's turn and lets the dealer play out.
func (g *BlackjackGame) Stand() error {
	if g.IsComplete {
		return domainerrors.InvalidState("blackjack game is already complete")
	}
	g.resolveAgainstDealer()
	return nil
}

// resolveAgainstDealer runs the fixed dealer rule: keep drawing while the
// soft count is below 17, or while the hard count is below 17 once the soft
// count has busted. The loop is bounded by the physical deck as a termination
// guarantee; normal play cannot exhaust it.
func (g *BlackjackGame) resolveAgainstDealer() {
	dealer := CountHand(g.DealerHand)
	for len(g.Deck) > 0 && (dealer.Soft < 17 || (dealer.Soft > 21 && dealer.Hard < 17)) {
		g.DealerHand = append(g.DealerHand, g.draw())
		dealer = CountHand(g.DealerHand)
	}

	player := CountHand(g.PlayerHand)
	switch {
	case dealer.Hard > 21:
		g.finish(BlackjackOutcomeWon, g.Wager*2)
	case player.Best() > dealer.Best():
		g.finish(BlackjackOutcomeWon, g.Wager*2)
	case player.Best() < dealer.Best():
		g.finish(BlackjackOutcomeLost, 0)
	default:
		g.finish(BlackjackOutcomePush, g.Wager)
	}
}

func (g *BlackjackGame) draw() Card {
	card := g.Deck[0]
	g.Deck = g.Deck[1:]
	return card
}

func (g *BlackjackGame) finish(outcome BlackjackOutcome, payout int64) {
	g.IsComplete = true
	g.Outcome = outcome
	g.Payout = payout
}

// Won reports whether the completed game pays out (wins and pushes both
// credit the payout amount; losses pay zero).
func (g *BlackjackGame) Won() bool {
	return g.IsComplete && g.Payout > 0
}

// BlackjackView is the player-facing snapshot of a game. While the game is
// active the dealer's hole card and the undealt deck are hidden.
type BlackjackView struct {
	GameID      int64            `json:"game_id"`
	Wager       int64            `json:"wager"`
	PlayerHand  []Card           `json:"player_hand"`
	PlayerCount string           `json:"player_count"`
	DealerHand  []Card           `json:"dealer_hand"`
	DealerCount string           `json:"dealer_count,omitempty"`
	Turn        int              `json:"turn"`
	DoubledDown bool             `json:"doubled_down"`
	IsComplete  bool             `json:"is_complete"`
	Outcome     BlackjackOutcome `json:"outcome,omitempty"`
	Payout      int64            `json:"payout"`
}

// View renders the normalized presentation of the game.
func (g *BlackjackGame) View() BlackjackView {
	v := BlackjackView{
		GameID:      g.ID,
		Wager:       g.Wager,
		PlayerHand:  g.PlayerHand,
		PlayerCount: CountHand(g.PlayerHand).Display(),
		Turn:        g.Turn,
		DoubledDown: g.DoubledDown,
		IsComplete:  g.IsComplete,
		Outcome:     g.Outcome,
		Payout:      g.Payout,
	}
	if g.IsComplete {
		v.DealerHand = g.DealerHand
		v.DealerCount = CountHand(g.DealerHand).Display()
	} else if len(g.DealerHand) > 0 {
		// Hide the dealer's last dealt card until the game resolves.
		v.DealerHand = g.DealerHand[:len(g.DealerHand)-1]
	}
	return v
}
