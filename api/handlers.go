package api

import (
	"strconv"

	domainerrors "billybot/domain/errors"
	"billybot/domain/games"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleGetAccount(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	account, err := s.app.GetAccount(c.Context(), guildID, discordID)
	if err != nil {
		return err
	}
	return c.JSON(accountResponse(account))
}

func (s *Server) handleLeaderboard(c *fiber.Ctx) error {
	guildID, err := pathID(c, "serverID")
	if err != nil {
		return err
	}
	accounts, err := s.app.GetLeaderboard(c.Context(), guildID)
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, accountResponse(account))
	}
	return c.JSON(fiber.Map{"accounts": out})
}

func (s *Server) handleBalanceHistory(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		return domainerrors.InvalidMove("limit must be between 1 and 100")
	}
	history, err := s.app.GetBalanceHistory(c.Context(), guildID, discordID, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"history": historyResponse(history)})
}

func (s *Server) handleGetOrCreateAccount(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	var body struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return domainerrors.InvalidMove("invalid request body")
	}
	account, err := s.app.GetOrCreateAccount(c.Context(), guildID, discordID, body.Username)
	if err != nil {
		return err
	}
	return c.JSON(accountResponse(account))
}

func (s *Server) handleTransfer(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	var body struct {
		To     int64 `json:"to"`
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return domainerrors.InvalidMove("invalid request body")
	}
	result, err := s.app.Transfer(c.Context(), guildID, discordID, body.To, body.Amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"amount":       result.Amount,
		"from_balance": result.FromBalance,
		"to_balance":   result.ToBalance,
	})
}

func (s *Server) handleClaimAllowance(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	result, err := s.app.ClaimAllowance(c.Context(), guildID, discordID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"amount":      result.Amount,
		"new_balance": result.NewBalance,
		"claimed_at":  result.ClaimedAt,
	})
}

func (s *Server) handleStartBlackjack(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	var body struct {
		Wager int64 `json:"wager"`
	}
	if err := c.BodyParser(&body); err != nil {
		return domainerrors.InvalidMove("invalid request body")
	}
	view, err := s.app.StartBlackjack(c.Context(), guildID, discordID, body.Wager)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (s *Server) handleHitBlackjack(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	var body struct {
		DoubleDown bool `json:"double_down"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return domainerrors.InvalidMove("invalid request body")
	}
	view, err := s.app.HitBlackjack(c.Context(), guildID, discordID, body.DoubleDown)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (s *Server) handleStandBlackjack(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	view, err := s.app.StandBlackjack(c.Context(), guildID, discordID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (s *Server) handleOpenDealCase(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	var body struct {
		Case int `json:"case"`
	}
	if err := c.BodyParser(&body); err != nil {
		return domainerrors.InvalidMove("invalid request body")
	}
	view, err := s.app.OpenDealCase(c.Context(), guildID, discordID, body.Case)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (s *Server) handleRespondDeal(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	var body struct {
		Accept bool `json:"accept"`
	}
	if err := c.BodyParser(&body); err != nil {
		return domainerrors.InvalidMove("invalid request body")
	}
	view, err := s.app.RespondDeal(c.Context(), guildID, discordID, body.Accept)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (s *Server) handleSpinRoulette(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	var body struct {
		Color  string `json:"color"`
		Amount int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return domainerrors.InvalidMove("invalid request body")
	}
	result, err := s.app.SpinRoulette(c.Context(), guildID, discordID, games.RouletteColor(body.Color), body.Amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"slot":          result.Slot,
		"winning_color": string(result.WinningColor),
		"won":           result.Won,
		"balance_delta": result.BalanceDelta,
		"new_balance":   result.NewBalance,
	})
}

func (s *Server) handleStartChallenge(c *fiber.Ctx) error {
	guildID, err := pathID(c, "serverID")
	if err != nil {
		return err
	}
	var body struct {
		Challenger int64 `json:"challenger"`
	}
	if err := c.BodyParser(&body); err != nil {
		return domainerrors.InvalidMove("invalid request body")
	}
	challenge, err := s.app.StartChallenge(c.Context(), guildID, body.Challenger)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"challenge_id": challenge.ID,
		"mayor_id":     challenge.MayorDiscordID,
		"challenger":   challenge.ChallengerDiscordID,
	})
}

func (s *Server) handlePlaceChallengeBet(c *fiber.Ctx) error {
	guildID, discordID, err := pathIDs(c)
	if err != nil {
		return err
	}
	var body struct {
		Backing int64 `json:"backing"`
		Amount  int64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return domainerrors.InvalidMove("invalid request body")
	}
	bet, err := s.app.PlaceChallengeBet(c.Context(), guildID, discordID, body.Backing, body.Amount)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"bet_id":       bet.ID,
		"challenge_id": bet.ChallengeID,
		"backing":      bet.BackedDiscordID,
		"amount":       bet.Amount,
	})
}

func (s *Server) handleResolveChallenge(c *fiber.Ctx) error {
	guildID, err := pathID(c, "serverID")
	if err != nil {
		return err
	}
	var body struct {
		Winner int64 `json:"winner"`
	}
	if err := c.BodyParser(&body); err != nil {
		return domainerrors.InvalidMove("invalid request body")
	}
	result, err := s.app.ResolveChallenge(c.Context(), guildID, body.Winner)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"new_mayor_id":   result.NewMayorID,
		"new_fool_id":    result.NewFoolID,
		"winning_bets":   len(result.WinningBets),
		"losing_bets":    len(result.LosingBets),
		"total_paid_out": result.TotalPaidOut,
	})
}

func (s *Server) handleDrawLottery(c *fiber.Ctx) error {
	guildID, err := pathID(c, "serverID")
	if err != nil {
		return err
	}
	result, err := s.app.DrawLottery(c.Context(), guildID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"winner_id":   result.WinnerID,
		"jackpot":     result.Jackpot,
		"entrants":    result.Entrants,
		"new_balance": result.NewBalance,
	})
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil {
		return 0, domainerrors.InvalidMove("%s must be a numeric ID", name)
	}
	return id, nil
}

func pathIDs(c *fiber.Ctx) (guildID, discordID int64, err error) {
	if guildID, err = pathID(c, "serverID"); err != nil {
		return 0, 0, err
	}
	if discordID, err = pathID(c, "accountID"); err != nil {
		return 0, 0, err
	}
	return guildID, discordID, nil
}
