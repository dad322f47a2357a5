package core

import "time"

// InboundMessage represents a text message received from Telegram.
type InboundMessage struct {
	UpdateID  int64
	MessageID int
	ChatID    int64
	UserID    int64
	Username  string
	Text      string
	Timestamp time.Time
}

// MessageHandler processes an inbound message.
type MessageHandler func(msg InboundMessage)
