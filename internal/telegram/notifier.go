// Package telegram pushes triage notifications to an admin chat: new
// high-criticality reports and status changes. It is one-way and
// optional — without a bot token the service runs without it.
package telegram

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tipsy/backend/internal/models"
)

// Notifier sends messages to the configured admin chat.
type Notifier struct {
	BotAPI *tgbotapi.BotAPI
	ChatID int64
}

// NewNotifier authorizes the bot and binds it to the admin chat.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	return &Notifier{BotAPI: bot, ChatID: chatID}, nil
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.ChatID, text)
	if _, err := n.BotAPI.Send(msg); err != nil {
		log.Printf("ERROR: Failed to send telegram notification: %v", err)
	}
}

// NotifyNewReport pings the admin chat about a fresh report. Only
// high-criticality reports are pushed; the rest wait for the
// dashboard.
func (n *Notifier) NotifyNewReport(r models.Report) {
	if r.Criticality != models.CriticalityHigh {
		return
	}
	n.send(fmt.Sprintf("🚨 New High-criticality report %s: %s (by %s)", r.ID, r.Title, r.Submitter))
}

// NotifyStatusChange pings the admin chat about a triage transition.
func (n *Notifier) NotifyStatusChange(reportID string, status models.ReportStatus) {
	n.send(fmt.Sprintf("Report %s moved to %s", reportID, status))
}
