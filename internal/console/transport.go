// Package console runs the bot against a local, terminal-based chat so it can be tried
// without a Telegram account. Several users can take turns in the same chat.
package console

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"shoplist/internal/chat"
	"shoplist/internal/model"
)

// ChatID is the id of the single simulated chat.
const ChatID model.ChatID = 1

const botName = "bot"

// User is a simulated chat member.
type User struct {
	ID   model.UserID
	Name string
}

// Entry is one visible message in the transcript.
type Entry struct {
	ID      model.MessageID
	From    string
	Message chat.Message
	Edited  bool
}

// Notice is a callback answer; alerts are modal in a real client.
type Notice struct {
	Text  string
	Alert bool
}

// Transport is an in-memory chat. The bot talks to it through chat.Client; the
// terminal UI posts user messages and button presses, which come out of Events.
type Transport struct {
	mu      sync.Mutex
	nextID  model.MessageID
	order   []model.MessageID
	entries map[model.MessageID]*Entry
	notices []Notice
	notify  func()

	events chan chat.Event
}

func NewTransport() *Transport {
	return &Transport{
		entries: map[model.MessageID]*Entry{},
		events:  make(chan chat.Event, 64),
	}
}

// OnChange registers fn to be called after every bot-side change.
func (t *Transport) OnChange(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notify = fn
}

func (t *Transport) Events() <-chan chat.Event { return t.events }

// Close ends the event stream.
func (t *Transport) Close() { close(t.events) }

func (t *Transport) SendMessage(ctx context.Context, chatID model.ChatID, msg chat.Message) (model.MessageID, error) {
	t.mu.Lock()
	id := t.append(botName, msg)
	t.mu.Unlock()
	t.changed()
	return id, nil
}

func (t *Transport) EditMessage(ctx context.Context, chatID model.ChatID, messageID model.MessageID, msg chat.Message) error {
	t.mu.Lock()
	e, ok := t.entries[messageID]
	switch {
	case !ok:
		t.mu.Unlock()
		return chat.ErrMessageNotFound
	case e.Message.Text == msg.Text && reflect.DeepEqual(e.Message.Buttons, msg.Buttons):
		t.mu.Unlock()
		return chat.ErrNotModified
	}
	e.Message = msg
	e.Edited = true
	t.mu.Unlock()
	t.changed()
	return nil
}

func (t *Transport) DeleteMessage(ctx context.Context, chatID model.ChatID, messageID model.MessageID) error {
	t.mu.Lock()
	if _, ok := t.entries[messageID]; !ok {
		t.mu.Unlock()
		return chat.ErrMessageNotFound
	}
	delete(t.entries, messageID)
	for i, id := range t.order {
		if id == messageID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.mu.Unlock()
	t.changed()
	return nil
}

func (t *Transport) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	if text == "" {
		return nil
	}
	t.mu.Lock()
	t.notices = append(t.notices, Notice{Text: text, Alert: alert})
	t.mu.Unlock()
	t.changed()
	return nil
}

// Post adds a user's text message to the chat and returns the event for it.
func (t *Transport) Post(u User, text string) *chat.TextEvent {
	t.mu.Lock()
	id := t.append(u.Name, chat.Message{Text: text})
	t.mu.Unlock()
	return &chat.TextEvent{ChatID: ChatID, UserID: u.ID, UserName: u.Name, Text: text, MessageID: id}
}

var errNoSuchButton = errors.New("no such button")

// Press presses the n-th button (1-based, counted across rows) of a message.
func (t *Transport) Press(u User, messageID model.MessageID, n int) (*chat.CallbackEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[messageID]
	if !ok {
		return nil, fmt.Errorf("message #%d: %w", messageID, chat.ErrMessageNotFound)
	}
	b, ok := nthButton(e.Message.Buttons, n)
	if !ok {
		return nil, fmt.Errorf("message #%d button %d: %w", messageID, n, errNoSuchButton)
	}
	return &chat.CallbackEvent{
		ChatID:     ChatID,
		UserID:     u.ID,
		UserName:   u.Name,
		CallbackID: uuid.NewString(),
		Payload:    b.Payload,
		MessageID:  messageID,
	}, nil
}

// Emit hands an event to the bot. It blocks while the bot is busy.
func (t *Transport) Emit(ev chat.Event) { t.events <- ev }

// Transcript returns the visible messages, oldest first.
func (t *Transport) Transcript() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.entries[id])
	}
	return out
}

// LastNotice returns the most recent callback answer.
func (t *Transport) LastNotice() (Notice, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.notices) == 0 {
		return Notice{}, false
	}
	return t.notices[len(t.notices)-1], true
}

func (t *Transport) NoticeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.notices)
}

func (t *Transport) append(from string, msg chat.Message) model.MessageID {
	t.nextID++
	id := t.nextID
	t.entries[id] = &Entry{ID: id, From: from, Message: msg}
	t.order = append(t.order, id)
	return id
}

func (t *Transport) changed() {
	t.mu.Lock()
	fn := t.notify
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func nthButton(rows [][]chat.Button, n int) (chat.Button, bool) {
	if n < 1 {
		return chat.Button{}, false
	}
	for _, row := range rows {
		if n <= len(row) {
			return row[n-1], true
		}
		n -= len(row)
	}
	return chat.Button{}, false
}
