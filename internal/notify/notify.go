// Package notify alerts staff in a Telegram chat when new reports arrive.
package notify

import (
	"context"
	"fmt"
	"strings"

	"grievancedesk/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const queueSize = 64

// Notifier is told about every report created through the API.
type Notifier interface {
	GrievanceCreated(report *models.GrievanceReport)
	SuspiciousCreated(report *models.SuspiciousReport)
}

// Nop discards notifications. It is used when no bot token is configured.
type Nop struct{}

func (Nop) GrievanceCreated(*models.GrievanceReport)   {}
func (Nop) SuspiciousCreated(*models.SuspiciousReport) {}

// Sender is the part of *tgbotapi.BotAPI used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram queues alerts and delivers them from a single goroutine started by Run.
// Alerts are dropped, not blocked on, when the queue is full.
type Telegram struct {
	bot    Sender
	chatID int64
	queue  chan string
}

// NewTelegram authorizes the bot and returns a notifier posting to chatID.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorization failed: %w", err)
	}
	bot.Debug = false
	log.Info().Str("account", bot.Self.UserName).Msg("telegram notifier authorized")
	return NewTelegramWithSender(bot, chatID), nil
}

func NewTelegramWithSender(bot Sender, chatID int64) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		queue:  make(chan string, queueSize),
	}
}

func (t *Telegram) GrievanceCreated(r *models.GrievanceReport) {
	priority := "medium"
	if r.PriorityLevel != nil {
		priority = *r.PriorityLevel
	}
	t.enqueue(fmt.Sprintf("*New grievance* `%s`\n%s\nCategory: %s\nPriority: %s\nLocation: %s\nEvidence files: %d",
		shortID(r.ID), escape(r.Title), escape(r.ComplaintCategory), escape(priority), escape(r.Location), len(r.EvidenceFiles)))
}

func (t *Telegram) SuspiciousCreated(r *models.SuspiciousReport) {
	threat := "unknown"
	if r.ThreatLevel != nil {
		threat = *r.ThreatLevel
	}
	t.enqueue(fmt.Sprintf("*Suspicious %s reported* `%s`\n%s\nThreat level: %s\nEvidence files: %d",
		escape(strings.ReplaceAll(r.EntityType, "_", " ")), shortID(r.ID), escape(r.EntityValue), escape(threat), len(r.EvidenceFiles)))
}

func (t *Telegram) enqueue(text string) {
	select {
	case t.queue <- text:
	default:
		log.Warn().Msg("telegram notification queue full, dropping alert")
	}
}

// Run delivers queued alerts until ctx is cancelled.
func (t *Telegram) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-t.queue:
			msg := tgbotapi.NewMessage(t.chatID, text)
			msg.ParseMode = tgbotapi.ModeMarkdown
			if _, err := t.bot.Send(msg); err != nil {
				log.Error().Err(err).Int64("chat_id", t.chatID).Msg("failed to send telegram alert")
			}
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// escape neutralizes the legacy Markdown markers in user-supplied text.
func escape(s string) string {
	return strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[").Replace(s)
}
