// Package capture tracks, per user, what that user's next free-text message answers.
//
// Entries never expire: a user who never replies keeps the entry, and their next text
// message, whatever it says, is taken as the answer.
package capture

import "shoplist/internal/model"

type Mode int

const (
	ModeNone Mode = iota
	ModeComment
	ModeRename
)

func (m Mode) String() string {
	switch m {
	case ModeComment:
		return "comment"
	case ModeRename:
		return "rename"
	default:
		return "none"
	}
}

// Pending is one user's outstanding prompt.
type Pending struct {
	Mode   Mode
	ItemID model.ItemID
}

// Machine holds at most one Pending entry per user. Not safe for concurrent use.
type Machine struct {
	pending map[model.UserID]Pending
	prompts map[model.UserID]model.MessageID
}

func New() *Machine {
	return &Machine{
		pending: map[model.UserID]Pending{},
		prompts: map[model.UserID]model.MessageID{},
	}
}

// Set replaces any entry the user already has. It returns the superseded prompt message,
// if any, so the caller can remove it.
func (m *Machine) Set(user model.UserID, p Pending, prompt model.MessageID) (stale model.MessageID) {
	stale = m.prompts[user]
	m.pending[user] = p
	if prompt != 0 {
		m.prompts[user] = prompt
	} else {
		delete(m.prompts, user)
	}
	return stale
}

// SetPrompt records the prompt message after it has been sent.
func (m *Machine) SetPrompt(user model.UserID, prompt model.MessageID) {
	if _, ok := m.pending[user]; !ok || prompt == 0 {
		return
	}
	m.prompts[user] = prompt
}

func (m *Machine) Get(user model.UserID) (Pending, bool) {
	p, ok := m.pending[user]
	return p, ok
}

// Take removes and returns the user's entry together with its prompt message.
func (m *Machine) Take(user model.UserID) (Pending, model.MessageID, bool) {
	p, ok := m.pending[user]
	if !ok {
		return Pending{}, 0, false
	}
	prompt := m.prompts[user]
	m.Clear(user)
	return p, prompt, true
}

func (m *Machine) Clear(user model.UserID) {
	delete(m.pending, user)
	delete(m.prompts, user)
}

// Len is the number of users with an outstanding prompt.
func (m *Machine) Len() int { return len(m.pending) }
