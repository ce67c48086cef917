// Package chat defines the boundary to the chat transport: the calls the bot makes,
// the events it consumes, and how transport failures are classified.
package chat

import (
	"context"

	"shoplist/internal/model"
)

type Format int

const (
	FormatPlain Format = iota
	FormatMarkdownV2
)

type Button struct {
	Label   string
	Payload string
}

// Message is the full visible content of one chat message.
type Message struct {
	Text    string
	Format  Format
	Buttons [][]Button
}

// Client is the outbound surface of a chat transport.
type Client interface {
	SendMessage(ctx context.Context, chatID model.ChatID, msg Message) (model.MessageID, error)
	EditMessage(ctx context.Context, chatID model.ChatID, messageID model.MessageID, msg Message) error
	DeleteMessage(ctx context.Context, chatID model.ChatID, messageID model.MessageID) error
	AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error
}

// Event is an inbound event: *TextEvent or *CallbackEvent.
type Event interface {
	EventChat() model.ChatID
}

type TextEvent struct {
	ChatID    model.ChatID
	UserID    model.UserID
	UserName  string
	Text      string
	MessageID model.MessageID
}

func (e *TextEvent) EventChat() model.ChatID { return e.ChatID }

type CallbackEvent struct {
	ChatID     model.ChatID
	UserID     model.UserID
	UserName   string
	CallbackID string
	Payload    string
	// MessageID is the message carrying the pressed button, when known.
	MessageID model.MessageID
}

func (e *CallbackEvent) EventChat() model.ChatID { return e.ChatID }

// DisplayName picks how a sender is shown: @username, else first name, else "User".
func DisplayName(username, firstName string) string {
	switch {
	case username != "":
		return "@" + username
	case firstName != "":
		return firstName
	default:
		return "User"
	}
}
