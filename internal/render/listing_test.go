package render

import (
	"strings"
	"testing"
	"time"

	"shoplist/internal/model"
)

func TestListing(t *testing.T) {
	f := New(time.UTC)
	created := time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)
	l := f.Listing([]model.Item{
		{ID: "aaaaaaaa", Name: "Milk_2%", Comment: "*fresh*", AuthorName: "@alice", CreatedAt: created},
		{ID: "bbbbbbbb", Name: "Eggs", Bought: true, MarkedBy: model.UserPtr(2), AuthorName: "Bob", CreatedAt: created},
	})
	if l.Total != 2 || l.Bought != 1 {
		t.Fatalf("unexpected counts %+v", l)
	}
	md := l.Markdown()
	for _, want := range []string{
		"1 of 2 bought",
		`- ⬜️ **Milk\_2%** (\*fresh\*) · _@alice, 01.03.2025 09:05_`,
		"- ✅ **Eggs** · _Bob, 01.03.2025 09:05_",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}

	empty := f.Listing(nil)
	if empty.Items == nil || !strings.Contains(empty.Markdown(), "empty") {
		t.Fatalf("expected empty listing, got %+v", empty)
	}
}
