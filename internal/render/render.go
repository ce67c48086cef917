// Package render turns list state into chat messages. Everything here is a pure
// function of its inputs.
package render

import (
	"strings"
	"time"

	"shoplist/internal/action"
	"shoplist/internal/chat"
	"shoplist/internal/model"
)

const (
	glyphBought   = "✅"
	glyphUnbought = "⬜️"

	dateTimeLayout = "02.01.2006 15:04"
)

// Formatter renders in a fixed time zone so output doesn't depend on the host.
type Formatter struct {
	Location *time.Location
}

func New(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.Local
	}
	return Formatter{Location: loc}
}

// markdownV2Special lists the characters Telegram MarkdownV2 treats as markup.
const markdownV2Special = "_*[]()~`>#+-=|{}.!\\"

// Escape backslash-escapes every MarkdownV2 metacharacter in s.
func Escape(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(markdownV2Special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (f Formatter) DateTime(t time.Time) string {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateTimeLayout)
}

func statusGlyph(bought bool) string {
	if bought {
		return glyphBought
	}
	return glyphUnbought
}

// Item renders the standalone message for one item.
func (f Formatter) Item(it model.Item) chat.Message {
	var b strings.Builder
	b.WriteString(statusGlyph(it.Bought))
	b.WriteString(" *")
	b.WriteString(Escape(it.Name))
	b.WriteString("*")
	if it.Comment != "" {
		b.WriteString("\n💬 _")
		b.WriteString(Escape(it.Comment))
		b.WriteString("_")
	}
	b.WriteString("\n_👤 ")
	b.WriteString(Escape(it.AuthorName))
	b.WriteString("  🕓 ")
	b.WriteString(Escape(f.DateTime(it.CreatedAt)))
	b.WriteString("_")
	return chat.Message{Text: b.String(), Format: chat.FormatMarkdownV2, Buttons: Keyboard(it)}
}

// Keyboard returns the item's buttons. Bought items only offer the toggle.
func Keyboard(it model.Item) [][]chat.Button {
	if it.Bought {
		return [][]chat.Button{
			{{Label: "✅ Bought", Payload: action.Item(action.KindBuy, it.ID).String()}},
		}
	}
	return [][]chat.Button{
		{{Label: "🛒 Buy", Payload: action.Item(action.KindBuy, it.ID).String()}},
		{{Label: "💬 Comment", Payload: action.Item(action.KindComment, it.ID).String()}},
		{
			{Label: "✏️ Edit", Payload: action.Item(action.KindEdit, it.ID).String()},
			{Label: "🗑 Delete", Payload: action.Item(action.KindDelete, it.ID).String()},
			{Label: "❌ Comment", Payload: action.Item(action.KindDeleteComment, it.ID).String()},
		},
	}
}

// Footer is the standing "list actions" message.
func Footer() chat.Message {
	return chat.Message{
		Text:    "⚙️ List actions",
		Buttons: [][]chat.Button{{{Label: "📋 Summarize", Payload: action.Global(action.KindSummary).String()}}},
	}
}

// Summary renders the whole list as one text block with the bulk actions.
func Summary(items []model.Item) chat.Message {
	var b strings.Builder
	b.WriteString(Escape("📦 Current list:"))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString("\n")
		b.WriteString(Escape("(empty)"))
	}
	for _, it := range items {
		b.WriteString("\n")
		b.WriteString(statusGlyph(it.Bought))
		b.WriteString(" ")
		b.WriteString(Escape(it.Name))
		if it.Comment != "" {
			b.WriteString(" ")
			b.WriteString(Escape("(" + it.Comment + ")"))
		}
	}
	return chat.Message{
		Text:   b.String(),
		Format: chat.FormatMarkdownV2,
		Buttons: [][]chat.Button{
			{{Label: "🔁 Carry forward unbought", Payload: action.Global(action.KindPreserve).String()}},
			{{Label: "🗑 Clear everything", Payload: action.Global(action.KindClearAll).String()}},
		},
	}
}

func EmptyList() chat.Message {
	return chat.Message{Text: "📝 The list is empty."}
}

// Duplicate answers a free-text message naming an item that is already listed.
func Duplicate(it model.Item) chat.Message {
	return chat.Message{
		Text:    Escape("\"" + it.Name + "\" is already in the list."),
		Format:  chat.FormatMarkdownV2,
		Buttons: Keyboard(it),
	}
}

func CommentPrompt(it model.Item) chat.Message {
	return chat.Message{Text: Escape("✏️ Write a comment for \"" + it.Name + "\":"), Format: chat.FormatMarkdownV2}
}

func RenamePrompt(it model.Item) chat.Message {
	return chat.Message{Text: Escape("✏️ Enter a new name for \"" + it.Name + "\":"), Format: chat.FormatMarkdownV2}
}
