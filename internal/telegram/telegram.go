// Package telegram connects the bot to the Telegram Bot API.
package telegram

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"shoplist/internal/chat"
	"shoplist/internal/model"
)

type Options struct {
	// Timeout bounds each HTTP request. Long polling adds PollTimeout on top.
	Timeout     time.Duration
	PollTimeout time.Duration
	Logger      zerolog.Logger
	Debug       bool
}

// Client implements chat.Client on top of a bot account.
type Client struct {
	bot         *tgbotapi.BotAPI
	log         zerolog.Logger
	pollTimeout time.Duration
}

// New authenticates the bot token (one getMe round trip).
func New(token string, opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 50 * time.Second
	}
	httpc := &http.Client{Timeout: opts.Timeout + opts.PollTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpc)
	if err != nil {
		return nil, classify("auth", err)
	}
	bot.Debug = opts.Debug
	opts.Logger.Info().Str("bot", bot.Self.UserName).Msg("authorized")
	return &Client{bot: bot, log: opts.Logger, pollTimeout: opts.PollTimeout}, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID model.ChatID, msg chat.Message) (model.MessageID, error) {
	if err := ctx.Err(); err != nil {
		return 0, &chat.TransientError{Op: "send", Err: err}
	}
	sent, err := c.bot.Send(messageConfig(chatID, msg))
	if err != nil {
		return 0, classify("send", err)
	}
	return model.MessageID(sent.MessageID), nil
}

func (c *Client) EditMessage(ctx context.Context, chatID model.ChatID, messageID model.MessageID, msg chat.Message) error {
	if err := ctx.Err(); err != nil {
		return &chat.TransientError{Op: "edit", Err: err}
	}
	if _, err := c.bot.Request(editConfig(chatID, messageID, msg)); err != nil {
		return classify("edit", err)
	}
	return nil
}

func (c *Client) DeleteMessage(ctx context.Context, chatID model.ChatID, messageID model.MessageID) error {
	if err := ctx.Err(); err != nil {
		return &chat.TransientError{Op: "delete", Err: err}
	}
	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(int64(chatID), int(messageID))); err != nil {
		return classify("delete", err)
	}
	return nil
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return &chat.TransientError{Op: "answer", Err: err}
	}
	cfg := tgbotapi.NewCallback(callbackID, text)
	cfg.ShowAlert = alert
	if _, err := c.bot.Request(cfg); err != nil {
		return classify("answer", err)
	}
	return nil
}

// Events long-polls for updates and delivers the ones the bot understands, in order.
// The channel closes after ctx is done.
func (c *Client) Events(ctx context.Context) <-chan chat.Event {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(c.pollTimeout / time.Second)
	updates := c.bot.GetUpdatesChan(u)

	out := make(chan chat.Event)
	go func() {
		defer close(out)
		defer c.bot.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := toEvent(upd)
				if !ok {
					c.log.Debug().Int("update_id", upd.UpdateID).Msg("skipping update")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// toEvent maps an update to a chat event. Only plain text messages and button presses
// on bot messages are kept.
func toEvent(u tgbotapi.Update) (chat.Event, bool) {
	switch {
	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.Chat == nil || m.Text == "" {
			return nil, false
		}
		return &chat.TextEvent{
			ChatID:    model.ChatID(m.Chat.ID),
			UserID:    model.UserID(m.From.ID),
			UserName:  chat.DisplayName(m.From.UserName, m.From.FirstName),
			Text:      m.Text,
			MessageID: model.MessageID(m.MessageID),
		}, true
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.From == nil || q.Message == nil || q.Message.Chat == nil {
			return nil, false
		}
		return &chat.CallbackEvent{
			ChatID:     model.ChatID(q.Message.Chat.ID),
			UserID:     model.UserID(q.From.ID),
			UserName:   chat.DisplayName(q.From.UserName, q.From.FirstName),
			CallbackID: q.ID,
			Payload:    q.Data,
			MessageID:  model.MessageID(q.Message.MessageID),
		}, true
	}
	return nil, false
}

func messageConfig(chatID model.ChatID, msg chat.Message) tgbotapi.MessageConfig {
	cfg := tgbotapi.NewMessage(int64(chatID), msg.Text)
	cfg.ParseMode = parseMode(msg.Format)
	if kb := keyboard(msg.Buttons); kb != nil {
		cfg.ReplyMarkup = *kb
	}
	return cfg
}

func editConfig(chatID model.ChatID, messageID model.MessageID, msg chat.Message) tgbotapi.EditMessageTextConfig {
	cfg := tgbotapi.NewEditMessageText(int64(chatID), int(messageID), msg.Text)
	cfg.ParseMode = parseMode(msg.Format)
	cfg.ReplyMarkup = keyboard(msg.Buttons)
	return cfg
}

func parseMode(f chat.Format) string {
	if f == chat.FormatMarkdownV2 {
		return tgbotapi.ModeMarkdownV2
	}
	return ""
}

func keyboard(rows [][]chat.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Payload))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(out...)
	return &kb
}
