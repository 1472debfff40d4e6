package notifier

import (
	"context"
	"fmt"

	"billybot/domain/events"
	"billybot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// DiscordNotifier posts announcements to a Discord channel webhook. It is the
// post-commit sink of the transactional event publisher: by the time an event
// arrives here its transaction is already durable, so delivery failures are
// logged and dropped rather than surfaced.
type DiscordNotifier struct {
	session   *discordgo.Session
	webhookID string
	token     string
}

var _ interfaces.EventPublisher = (*DiscordNotifier)(nil)

// New creates a notifier for the given webhook. An empty webhook ID yields a
// notifier that logs events instead of posting them.
func New(webhookID, token string) (*DiscordNotifier, error) {
	// Webhook execution needs no bot token; the session only carries HTTP state.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &DiscordNotifier{
		session:   session,
		webhookID: webhookID,
		token:     token,
	}, nil
}

// RegisterHandlers subscribes the notifier to every announced event type.
func (n *DiscordNotifier) RegisterHandlers(bus *events.Bus) {
	handler := func(ctx context.Context, event events.Event) {
		if err := n.Publish(event); err != nil {
			log.WithError(err).WithField("event_type", event.Type()).Error("Failed to post announcement")
		}
	}
	bus.Subscribe(events.EventTypeLotteryDrawn, handler)
	bus.Subscribe(events.EventTypeMayorChanged, handler)
	bus.Subscribe(events.EventTypeGameCompleted, handler)
}

// Publish formats and delivers one announcement.
func (n *DiscordNotifier) Publish(event events.Event) error {
	content := formatEvent(event)
	if content == "" {
		return nil
	}

	if n.webhookID == "" {
		log.WithFields(log.Fields{
			"event_type": event.Type(),
			"content":    content,
		}).Info("Announcement (no webhook configured)")
		return nil
	}

	_, err := n.session.WebhookExecute(n.webhookID, n.token, false, &discordgo.WebhookParams{
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("failed to execute webhook: %w", err)
	}
	return nil
}

// formatEvent renders the announcement text for an event, or "" for event
// types that are not announced.
func formatEvent(event events.Event) string {
	switch e := event.(type) {
	case events.LotteryDrawnEvent:
		return fmt.Sprintf("🎟️ The lottery has been drawn! <@%d> wins the %d bit jackpot out of %d entrants.", e.WinnerID, e.Jackpot, e.Entrants)
	case events.MayorChangedEvent:
		return fmt.Sprintf("🏛️ The challenge is settled: <@%d> is the new mayor and <@%d> is the fool.", e.NewMayorID, e.NewFoolID)
	case events.GameCompletedEvent:
		// Only big wins are worth a channel post.
		if e.Won && e.Payout >= 1000 {
			return fmt.Sprintf("💰 <@%d> just won %d bits playing %s!", e.DiscordID, e.Payout, e.GameKind)
		}
		return ""
	default:
		return ""
	}
}
