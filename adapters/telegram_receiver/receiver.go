package telegram_receiver

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jdelaire/clipbot/core"
)

const longPollTimeout = 30

// Receiver long-polls Telegram for inbound text messages.
type Receiver struct {
	bot     *tgbotapi.BotAPI
	handler core.MessageHandler
	logger  *slog.Logger
}

// New creates a Telegram receiver.
func New(bot *tgbotapi.BotAPI, handler core.MessageHandler, logger *slog.Logger) *Receiver {
	return &Receiver{
		bot:     bot,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the long-poll loop. Blocks until ctx is cancelled.
func (r *Receiver) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = longPollTimeout
	updates := r.bot.GetUpdatesChan(u)
	defer r.bot.StopReceivingUpdates()

	r.logger.Info("telegram receiver started", "bot", r.bot.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("telegram receiver stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				r.logger.Info("telegram receiver stopped")
				return nil
			}
			msg, ok := toInbound(upd)
			if !ok {
				continue
			}
			r.handler(msg)
		}
	}
}

// toInbound converts an update into an InboundMessage. Updates without a
// text message are skipped.
func toInbound(upd tgbotapi.Update) (core.InboundMessage, bool) {
	m := upd.Message
	if m == nil || m.Text == "" || m.Chat == nil {
		return core.InboundMessage{}, false
	}

	msg := core.InboundMessage{
		UpdateID:  int64(upd.UpdateID),
		MessageID: m.MessageID,
		ChatID:    m.Chat.ID,
		Text:      m.Text,
		Timestamp: time.Unix(int64(m.Date), 0),
	}
	if m.From != nil {
		msg.UserID = m.From.ID
		msg.Username = m.From.UserName
	}
	return msg, true
}
