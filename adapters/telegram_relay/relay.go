package telegram_relay

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jdelaire/clipbot/core"
)

// Relay sends replies, edits, deletions and video uploads through the
// Telegram Bot API. The Bot API client has no context support, so ctx is
// only checked before each request.
type Relay struct {
	bot *tgbotapi.BotAPI
}

// New creates a Telegram relay.
func New(bot *tgbotapi.BotAPI) *Relay {
	return &Relay{bot: bot}
}

func (r *Relay) Send(ctx context.Context, reply core.Reply) (core.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return core.MessageRef{}, err
	}

	msg := tgbotapi.NewMessage(reply.ChatID, reply.Text)
	msg.ReplyToMessageID = reply.ReplyTo
	if reply.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}

	sent, err := r.bot.Send(msg)
	if err != nil {
		return core.MessageRef{}, fmt.Errorf("send message: %w", err)
	}
	return core.MessageRef{ChatID: reply.ChatID, MessageID: sent.MessageID}, nil
}

func (r *Relay) Edit(ctx context.Context, ref core.MessageRef, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	if _, err := r.bot.Request(edit); err != nil {
		return fmt.Errorf("edit message %d: %w", ref.MessageID, err)
	}
	return nil
}

func (r *Relay) Delete(ctx context.Context, ref core.MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := r.bot.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		return fmt.Errorf("delete message %d: %w", ref.MessageID, err)
	}
	return nil
}

func (r *Relay) SendVideo(ctx context.Context, v core.Video) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	video := tgbotapi.NewVideo(v.ChatID, tgbotapi.FilePath(v.Path))
	video.Caption = Caption(v.Title)
	video.ParseMode = tgbotapi.ModeMarkdownV2
	video.ReplyToMessageID = v.ReplyTo
	video.SupportsStreaming = true

	if _, err := r.bot.Send(video); err != nil {
		return fmt.Errorf("send video: %w", err)
	}
	return nil
}

const captionFormat = "🎵 *%s*\n\n✅ Downloaded successfully\\!"

// Caption renders the MarkdownV2 caption for a video titled title. Every
// reserved character of the title is escaped, including inside the bold
// entity, so any title renders literally.
func Caption(title string) string {
	// EscapeText leaves backslashes alone; they must be doubled first.
	title = strings.ReplaceAll(title, `\`, `\\`)
	return fmt.Sprintf(captionFormat, tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, title))
}
