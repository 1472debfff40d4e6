package entities

import (
	"math"
	"time"

	domainerrors "billybot/domain/errors"
	"billybot/domain/games"
)

// DealCaseCount is the number of cases in every game.
const DealCaseCount = 18

// dealCaseValues is the fixed value set bound to case numbers at game
// creation, in shuffled order.
var dealCaseValues = []int64{1, 5, 10, 25, 50, 75, 100, 200, 300, 400, 500, 600, 700, 800, 900, 1000, 2500, 5000}

// DealCase is one briefcase: a hidden value and whether it has been opened.
type DealCase struct {
	Value  int64 `json:"value"`
	IsOpen bool  `json:"is_open"`
}

// DealGame is the state of one deal-or-no-deal game. The selected case is
// kept by the player and can never be opened mid-game.
type DealGame struct {
	ID           int64      `db:"id"`
	DiscordID    int64      `db:"discord_id"`
	GuildID      int64      `db:"guild_id"`
	Cases        []DealCase `db:"cases"` // indexed by case number - 1
	SelectedCase int        `db:"selected_case"`
	ToOpen       int        `db:"to_open"`
	Offer        int64      `db:"offer"`
	IsComplete   bool       `db:"is_complete"`
	Accepted     bool       `db:"accepted"`
	Payout       int64      `db:"payout"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// NewDealGame creates a game with the value set shuffled onto the 18 cases
// and records selectedCase as the player's kept case. The first offer
// checkpoint comes after five openings.
func NewDealGame(discordID, guildID int64, selectedCase int, rng games.Rand) *DealGame {
	values := make([]int64, len(dealCaseValues))
	copy(values, dealCaseValues)
	rng.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})

	cases := make([]DealCase, DealCaseCount)
	for i, v := range values {
		cases[i] = DealCase{Value: v}
	}
	return &DealGame{
		DiscordID:    discordID,
		GuildID:      guildID,
		Cases:        cases,
		SelectedCase: selectedCase,
		ToOpen:       5,
	}
}

// OpenedCount returns how many cases have been opened so far.
func (g *DealGame) OpenedCount() int {
	n := 0
	for _, c := range g.Cases {
		if c.IsOpen {
			n++
		}
	}
	return n
}

// OpenCase opens the numbered case. When an offer is pending (ToOpen == 0)
// the call is a no-op and the caller re-presents the offer. Opening the last
// case of a round computes the bank offer from the average of all cases not
// yet opened.
func (g *DealGame) OpenCase(caseNum int) error {
	if g.IsComplete {
		return domainerrors.InvalidState("deal or no deal game is already complete")
	}
	if g.ToOpen == 0 {
		// Player must respond to the standing offer first.
		return nil
	}
	if caseNum < 1 || caseNum > DealCaseCount {
		return domainerrors.InvalidMove("case number must be between 1 and %d", DealCaseCount)
	}
	if caseNum == g.SelectedCase {
		return domainerrors.InvalidMove("case %d is your own case and stays closed", caseNum)
	}
	if g.Cases[caseNum-1].IsOpen {
		return domainerrors.InvalidMove("case %d has already been opened", caseNum)
	}

	g.Cases[caseNum-1].IsOpen = true
	g.ToOpen--
	if g.ToOpen == 0 {
		g.Offer = g.bankOffer()
	}
	return nil
}

// Respond settles a standing bank offer. Responding mid-round, before the
// offer checkpoint, is rejected. Accepting ends the game at the offer amount.
// Rejecting with two or fewer closed cases forces the final reveal, paying
// out the player's own case; otherwise the next round of openings begins.
func (g *DealGame) Respond(accept bool) error {
	if g.IsComplete {
		return domainerrors.InvalidState("deal or no deal game is already complete")
	}
	if g.ToOpen > 0 {
		return domainerrors.InvalidMove("no offer is pending; open %d more cases first", g.ToOpen)
	}
	if accept {
		g.Payout = g.Offer
		g.Accepted = true
		g.IsComplete = true
		return nil
	}

	if DealCaseCount-g.OpenedCount() <= 2 {
		g.Payout = g.Cases[g.SelectedCase-1].Value
		g.IsComplete = true
		return nil
	}
	g.ToOpen = nextRoundSize(g.OpenedCount())
	return nil
}

// SelectedValue returns the value inside the player's kept case.
func (g *DealGame) SelectedValue() int64 {
	return g.Cases[g.SelectedCase-1].Value
}

// bankOffer is a percentage of the average value over every case not yet
// opened, the selected case included. The percentage grows with the number
// of cases opened.
func (g *DealGame) bankOffer() int64 {
	var sum int64
	var remaining int64
	for _, c := range g.Cases {
		if !c.IsOpen {
			sum += c.Value
			remaining++
		}
	}
	if remaining == 0 {
		return 0
	}
	avg := float64(sum) / float64(remaining)
	return int64(math.Round(avg * offerPercent(g.OpenedCount())))
}

func offerPercent(opened int) float64 {
	switch opened {
	case 5:
		return 0.4
	case 9:
		return 0.5
	case 12:
		return 0.6
	case 14:
		return 0.7
	case 15:
		return 0.8
	case 16:
		return 0.9
	default:
		return 1.0
	}
}

func nextRoundSize(opened int) int {
	switch opened {
	case 5:
		return 4
	case 9:
		return 3
	case 12:
		return 2
	case 14, 15, 16:
		return 1
	default:
		return 0
	}
}

// DealCaseView hides the value of a still-closed case.
type DealCaseView struct {
	Number int    `json:"number"`
	IsOpen bool   `json:"is_open"`
	Value  *int64 `json:"value,omitempty"`
}

// DealGameView is the player-facing snapshot; unopened case values are
// revealed only once the game completes.
type DealGameView struct {
	GameID       int64          `json:"game_id"`
	Cases        []DealCaseView `json:"cases"`
	SelectedCase int            `json:"selected_case"`
	ToOpen       int            `json:"to_open"`
	Offer        int64          `json:"offer,omitempty"`
	OfferPending bool           `json:"offer_pending"`
	IsComplete   bool           `json:"is_complete"`
	Accepted     bool           `json:"accepted"`
	Payout       int64          `json:"payout"`
}

// View renders the normalized presentation of the game.
func (g *DealGame) View() DealGameView {
	v := DealGameView{
		GameID:       g.ID,
		SelectedCase: g.SelectedCase,
		ToOpen:       g.ToOpen,
		Offer:        g.Offer,
		OfferPending: !g.IsComplete && g.ToOpen == 0,
		IsComplete:   g.IsComplete,
		Accepted:     g.Accepted,
		Payout:       g.Payout,
	}
	for i, c := range g.Cases {
		cv := DealCaseView{Number: i + 1, IsOpen: c.IsOpen}
		if c.IsOpen || g.IsComplete {
			value := c.Value
			cv.Value = &value
		}
		v.Cases = append(v.Cases, cv)
	}
	return v
}
