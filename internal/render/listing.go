package render

import (
	"fmt"
	"strings"

	"shoplist/internal/model"
)

// Listing is the stored list as printed by the command line.
type Listing struct {
	Items  []model.Item `json:"items"`
	Total  int          `json:"total"`
	Bought int          `json:"bought"`

	fmt Formatter
}

func (f Formatter) Listing(items []model.Item) Listing {
	l := Listing{Items: items, Total: len(items), fmt: f}
	if l.Items == nil {
		l.Items = []model.Item{}
	}
	for _, it := range items {
		if it.Bought {
			l.Bought++
		}
	}
	return l
}

var commonMarkEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`, "|", `\|`,
)

// Markdown renders the listing as CommonMark.
func (l Listing) Markdown() string {
	var b strings.Builder
	b.WriteString("# Shopping list\n\n")
	if l.Total == 0 {
		b.WriteString("_The list is empty._\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d of %d bought\n\n", l.Bought, l.Total)
	for _, it := range l.Items {
		b.WriteString("- ")
		b.WriteString(statusGlyph(it.Bought))
		b.WriteString(" **")
		b.WriteString(commonMarkEscaper.Replace(it.Name))
		b.WriteString("**")
		if it.Comment != "" {
			b.WriteString(" (")
			b.WriteString(commonMarkEscaper.Replace(it.Comment))
			b.WriteString(")")
		}
		fmt.Fprintf(&b, " · _%s, %s_\n",
			commonMarkEscaper.Replace(it.AuthorName),
			l.fmt.DateTime(it.CreatedAt))
	}
	return b.String()
}
