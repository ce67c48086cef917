package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shoplist/internal/model"
)

// legacyItem is one record of the original name-keyed products.json.
type legacyItem struct {
	Bought     bool   `json:"bought"`
	Comment    string `json:"comment"`
	MarkedBy   *int64 `json:"marked_by"`
	MessageID  *int   `json:"message_id"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
}

// looksLegacy reports whether b is a name-keyed document rather than a Snapshot.
func looksLegacy(b []byte) bool {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil || len(top) == 0 {
		return false
	}
	for _, k := range []string{"version", "order", "items"} {
		if _, ok := top[k]; ok {
			return false
		}
	}
	for _, raw := range top {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return false
		}
		if _, ok := probe["author_id"]; !ok {
			return false
		}
	}
	return true
}

// ParseLegacy converts the original products.json (item name -> record) into a Snapshot,
// keeping the file's key order and assigning fresh ids.
func ParseLegacy(b []byte) (model.Snapshot, error) {
	snap := model.EmptySnapshot()
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("legacy: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return model.Snapshot{}, fmt.Errorf("legacy: expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("legacy: %w", err)
		}
		name, _ := tok.(string)
		var rec legacyItem
		if err := dec.Decode(&rec); err != nil {
			return model.Snapshot{}, fmt.Errorf("legacy %q: %w", name, err)
		}
		name = strings.TrimSpace(name)
		if name == "" || nameTaken(snap, name) {
			continue
		}
		id, err := NewUniqueItemID(func(id model.ItemID) bool {
			_, ok := snap.Items[id]
			return ok
		})
		if err != nil {
			return model.Snapshot{}, err
		}
		it := model.Item{
			ID:         id,
			Name:       name,
			Bought:     rec.Bought,
			Comment:    rec.Comment,
			AuthorID:   model.UserID(rec.AuthorID),
			AuthorName: unescapeMarkdown(rec.AuthorName),
		}
		if t, err := time.Parse(time.RFC3339Nano, rec.CreatedAt); err == nil {
			it.CreatedAt = t.UTC()
		}
		if it.Bought && rec.MarkedBy != nil {
			it.MarkedBy = model.UserPtr(model.UserID(*rec.MarkedBy))
		} else {
			it.Bought = false
		}
		if rec.MessageID != nil && *rec.MessageID != 0 {
			it.RenderedMessageID = model.MessagePtr(model.MessageID(*rec.MessageID))
		}
		snap.Items[id] = it
		snap.Order = append(snap.Order, id)
	}
	return snap, nil
}

func nameTaken(snap model.Snapshot, name string) bool {
	for _, it := range snap.Items {
		if it.Name == name {
			return true
		}
	}
	return false
}

// unescapeMarkdown drops the backslashes the original stored in author names.
func unescapeMarkdown(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
