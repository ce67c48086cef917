package model

import (
	"sort"
	"strconv"
	"time"
)

// ItemID is an opaque, fixed-length lowercase base32 identifier.
// Its alphabet never contains the payload separator '_'.
type ItemID string

// ItemIDLen is the number of characters in every generated ItemID.
const ItemIDLen = 8

// Valid reports whether id has the shape produced by the id generator.
func (id ItemID) Valid() bool {
	if len(id) != ItemIDLen {
		return false
	}
	for _, r := range string(id) {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '2' && r <= '7':
		default:
			return false
		}
	}
	return true
}

type UserID int64

func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

type ChatID int64

func (c ChatID) String() string { return strconv.FormatInt(int64(c), 10) }

// MessageID identifies a message within a chat. Zero means "no message".
type MessageID int

type Item struct {
	ID       ItemID  `json:"id"`
	Name     string  `json:"name"`
	Bought   bool    `json:"bought"`
	Comment  string  `json:"comment,omitempty"`
	// MarkedBy is set iff Bought is true.
	MarkedBy *UserID `json:"markedBy,omitempty"`

	AuthorID   UserID    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`

	// RenderedMessageID is the best-known message currently showing this item.
	RenderedMessageID *MessageID `json:"renderedMessageId,omitempty"`
}

// Author is the sender of the message that created an item.
type Author struct {
	ID   UserID
	Name string
}

// Snapshot is the flat, durable form of the list.
// Order lists item ids in insertion order; Items holds the records.
type Snapshot struct {
	Version int             `json:"version"`
	Order   []ItemID        `json:"order"`
	Items   map[ItemID]Item `json:"items"`
}

// EmptySnapshot returns a snapshot with non-nil collections.
func EmptySnapshot() Snapshot {
	return Snapshot{Version: 1, Order: []ItemID{}, Items: map[ItemID]Item{}}
}

// Ordered returns the snapshot's items in insertion order. Ids present in Items but
// missing from Order are appended in creation order so nothing is silently dropped.
func (s Snapshot) Ordered() []Item {
	out := make([]Item, 0, len(s.Items))
	seen := make(map[ItemID]bool, len(s.Items))
	for _, id := range s.Order {
		it, ok := s.Items[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, it)
	}
	var rest []Item
	for id, it := range s.Items {
		if !seen[id] {
			rest = append(rest, it)
		}
	}
	sortByCreated(rest)
	return append(out, rest...)
}

func sortByCreated(xs []Item) {
	sort.Slice(xs, func(i, j int) bool {
		if !xs[i].CreatedAt.Equal(xs[j].CreatedAt) {
			return xs[i].CreatedAt.Before(xs[j].CreatedAt)
		}
		return xs[i].ID < xs[j].ID
	})
}

func UserPtr(u UserID) *UserID { return &u }

func MessagePtr(m MessageID) *MessageID { return &m }
