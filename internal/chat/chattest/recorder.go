// Package chattest provides an in-memory chat.Client that records every call.
package chattest

import (
	"context"
	"sort"
	"sync"

	"shoplist/internal/chat"
	"shoplist/internal/model"
)

type Op string

const (
	OpSend   Op = "send"
	OpEdit   Op = "edit"
	OpDelete Op = "delete"
	OpAnswer Op = "answer"
)

// Call is one recorded transport call.
type Call struct {
	Op         Op
	ChatID     model.ChatID
	MessageID  model.MessageID
	Message    chat.Message
	CallbackID string
	Text       string
	Alert      bool
	Err        error
}

// Recorder keeps the visible chat transcript in memory. Fail, when set, is consulted
// before each call; a non-nil error fails that call without changing the transcript.
type Recorder struct {
	mu     sync.Mutex
	nextID model.MessageID
	live   map[model.MessageID]chat.Message
	calls  []Call

	Fail func(op Op, messageID model.MessageID) error
}

func New() *Recorder {
	return &Recorder{nextID: 100, live: map[model.MessageID]chat.Message{}}
}

func (r *Recorder) SendMessage(ctx context.Context, chatID model.ChatID, msg chat.Message) (model.MessageID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpSend, 0); err != nil {
		r.calls = append(r.calls, Call{Op: OpSend, ChatID: chatID, Message: msg, Err: err})
		return 0, err
	}
	r.nextID++
	id := r.nextID
	r.live[id] = msg
	r.calls = append(r.calls, Call{Op: OpSend, ChatID: chatID, MessageID: id, Message: msg})
	return id, nil
}

func (r *Recorder) EditMessage(ctx context.Context, chatID model.ChatID, messageID model.MessageID, msg chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.fail(OpEdit, messageID)
	if err == nil {
		if _, ok := r.live[messageID]; !ok {
			err = chat.ErrMessageNotFound
		}
	}
	r.calls = append(r.calls, Call{Op: OpEdit, ChatID: chatID, MessageID: messageID, Message: msg, Err: err})
	if err != nil {
		return err
	}
	r.live[messageID] = msg
	return nil
}

func (r *Recorder) DeleteMessage(ctx context.Context, chatID model.ChatID, messageID model.MessageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.fail(OpDelete, messageID)
	if err == nil {
		if _, ok := r.live[messageID]; !ok {
			err = chat.ErrMessageNotFound
		}
	}
	r.calls = append(r.calls, Call{Op: OpDelete, ChatID: chatID, MessageID: messageID, Err: err})
	if err != nil {
		return err
	}
	delete(r.live, messageID)
	return nil
}

func (r *Recorder) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.fail(OpAnswer, 0)
	r.calls = append(r.calls, Call{Op: OpAnswer, CallbackID: callbackID, Text: text, Alert: alert, Err: err})
	return err
}

// Inject marks messageID as already visible, e.g. a user's own text message.
func (r *Recorder) Inject(messageID model.MessageID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[messageID] = chat.Message{Text: text}
}

func (r *Recorder) fail(op Op, id model.MessageID) error {
	if r.Fail == nil {
		return nil
	}
	return r.Fail(op, id)
}

// Calls returns a copy of every recorded call.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsOf returns the recorded calls of one kind.
func (r *Recorder) CallsOf(op Op) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// LastAnswer returns the most recent callback answer.
func (r *Recorder) LastAnswer() (Call, bool) {
	answers := r.CallsOf(OpAnswer)
	if len(answers) == 0 {
		return Call{}, false
	}
	return answers[len(answers)-1], true
}

// Live returns the message currently visible under id.
func (r *Recorder) Live(id model.MessageID) (chat.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.live[id]
	return m, ok
}

// LiveIDs returns the ids of visible messages in send order.
func (r *Recorder) LiveIDs() []model.MessageID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.MessageID, 0, len(r.live))
	for id := range r.live {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Reset forgets recorded calls but keeps the transcript.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
