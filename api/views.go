package api

import (
	"billybot/domain/entities"

	"github.com/gofiber/fiber/v2"
)

func accountResponse(account *entities.Account) fiber.Map {
	return fiber.Map{
		"discord_id":         account.DiscordID,
		"guild_id":           account.GuildID,
		"username":           account.Username,
		"balance":            account.Balance,
		"deal_eligible":      account.DealEligible,
		"is_mayor":           account.IsMayor,
		"is_fool":            account.IsFool,
		"has_lottery_ticket": account.HasLotteryTicket,
		"last_allowance":     account.LastAllowance,
		"games_played":       account.GamesPlayed,
		"total_wagered":      account.TotalWagered,
		"total_won":          account.TotalWon,
		"challenge_wins":     account.ChallengeWins,
		"created_at":         account.CreatedAt,
	}
}

func historyResponse(entries []*entities.BalanceHistory) []fiber.Map {
	out := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		out = append(out, fiber.Map{
			"id":               e.ID,
			"balance_before":   e.BalanceBefore,
			"balance_after":    e.BalanceAfter,
			"change_amount":    e.ChangeAmount,
			"transaction_type": e.TransactionType,
			"metadata":         e.TransactionMetadata,
			"created_at":       e.CreatedAt,
		})
	}
	return out
}
