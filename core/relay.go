package core

import "context"

// MessageRef identifies a message the bot has sent, so it can be edited or deleted.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Reply is an outbound text message.
type Reply struct {
	ChatID   int64
	ReplyTo  int
	Text     string
	Markdown bool
}

// Video is an outbound video upload read from a local file. The relay
// renders Title into the caption with whatever escaping its transport needs.
type Video struct {
	ChatID  int64
	ReplyTo int
	Path    string
	Title   string
}

// Relay delivers replies back to the chat a message came from.
type Relay interface {
	Send(ctx context.Context, r Reply) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, text string) error
	Delete(ctx context.Context, ref MessageRef) error
	SendVideo(ctx context.Context, v Video) error
}
