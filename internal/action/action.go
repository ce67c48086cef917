// Package action encodes and decodes button payloads.
//
// Per-item payloads are "<action>_<item-id>"; global payloads are bare words. Item ids
// never contain '_', so the last separator always splits action from id.
package action

import (
	"errors"
	"fmt"
	"strings"

	"shoplist/internal/model"
)

const separator = "_"

var ErrMalformedPayload = errors.New("malformed button payload")

type Kind int

const (
	KindUnknown Kind = iota
	// Per-item actions.
	KindBuy
	KindComment
	KindDeleteComment
	KindEdit
	KindDelete
	// Global actions.
	KindSummary
	KindPreserve
	KindClearAll
)

var wireNames = map[Kind]string{
	KindBuy:           "buy",
	KindComment:       "comment",
	KindDeleteComment: "delcom",
	KindEdit:          "edit",
	KindDelete:        "delete",
	KindSummary:       "summary",
	KindPreserve:      "preserve",
	KindClearAll:      "clear_all",
}

func (k Kind) String() string {
	if s, ok := wireNames[k]; ok {
		return s
	}
	return "unknown"
}

// Global reports whether k carries no item id.
func (k Kind) Global() bool {
	return k == KindSummary || k == KindPreserve || k == KindClearAll
}

type Action struct {
	Kind   Kind
	ItemID model.ItemID
}

// String returns the wire payload.
func (a Action) String() string {
	if a.Kind.Global() {
		return a.Kind.String()
	}
	return a.Kind.String() + separator + string(a.ItemID)
}

func Item(kind Kind, id model.ItemID) Action { return Action{Kind: kind, ItemID: id} }

func Global(kind Kind) Action { return Action{Kind: kind} }

// Parse decodes a wire payload. An id that is well-formed but unknown is not an error
// here; callers resolve it against the list.
func Parse(payload string) (Action, error) {
	payload = strings.TrimSpace(payload)
	for _, k := range []Kind{KindSummary, KindPreserve, KindClearAll} {
		if payload == wireNames[k] {
			return Global(k), nil
		}
	}
	i := strings.LastIndex(payload, separator)
	if i <= 0 || i == len(payload)-1 {
		return Action{}, fmt.Errorf("%w: %q", ErrMalformedPayload, payload)
	}
	name, id := payload[:i], payload[i+1:]
	for k, w := range wireNames {
		if w == name && !k.Global() {
			return Item(k, model.ItemID(id)), nil
		}
	}
	return Action{}, fmt.Errorf("%w: unknown action %q", ErrMalformedPayload, name)
}
