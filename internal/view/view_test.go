package view

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"shoplist/internal/chat"
	"shoplist/internal/chat/chattest"
	"shoplist/internal/list"
	"shoplist/internal/model"
	"shoplist/internal/render"
	"shoplist/internal/store"
)

const testChat model.ChatID = -100

func newFixture(t *testing.T) (*Synchronizer, *list.List, *chattest.Recorder) {
	t.Helper()
	l, err := list.Load(context.Background(), store.JSONFile{Path: filepath.Join(t.TempDir(), "products.json")})
	if err != nil {
		t.Fatalf("list.Load: %v", err)
	}
	rec := chattest.New()
	s := New(rec, l, Options{Formatter: render.New(time.UTC), Pacer: NoDelay, Logger: zerolog.Nop()})
	return s, l, rec
}

func mustCreate(t *testing.T, l *list.List, name string) model.Item {
	t.Helper()
	it, err := l.Create(context.Background(), name, model.Author{ID: 1, Name: "@alice"})
	if err != nil {
		t.Fatalf("Create %s: %v", name, err)
	}
	return it
}

func TestRenderItem_SendsThenEditsInPlace(t *testing.T) {
	ctx := context.Background()
	s, l, rec := newFixture(t)
	milk := mustCreate(t, l, "Milk")

	s.RenderItem(ctx, testChat, milk.ID)
	sends := rec.CallsOf(chattest.OpSend)
	if len(sends) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sends))
	}
	got, _ := l.Get(milk.ID)
	if got.RenderedMessageID == nil || *got.RenderedMessageID != sends[0].MessageID {
		t.Fatalf("expected rendered ref %d, got %v", sends[0].MessageID, got.RenderedMessageID)
	}

	// Rendering twice with no change edits the same message with identical content.
	s.RenderItem(ctx, testChat, milk.ID)
	s.RenderItem(ctx, testChat, milk.ID)
	edits := rec.CallsOf(chattest.OpEdit)
	if len(edits) != 2 {
		t.Fatalf("expected 2 edits, got %d", len(edits))
	}
	if edits[0].Message.Text != edits[1].Message.Text || edits[0].MessageID != sends[0].MessageID {
		t.Fatalf("expected identical in-place edits, got %+v", edits)
	}
	if len(rec.CallsOf(chattest.OpSend)) != 1 {
		t.Fatalf("expected no extra sends")
	}
}

func TestRenderItem_HealsWhenMessageIsGone(t *testing.T) {
	ctx := context.Background()
	s, l, rec := newFixture(t)
	milk := mustCreate(t, l, "Milk")
	if err := l.SetRendered(ctx, milk.ID, 9999); err != nil {
		t.Fatalf("SetRendered: %v", err)
	}

	s.RenderItem(ctx, testChat, milk.ID)

	edits := rec.CallsOf(chattest.OpEdit)
	if len(edits) != 1 || !errors.Is(edits[0].Err, chat.ErrMessageNotFound) {
		t.Fatalf("expected a failed edit, got %+v", edits)
	}
	sends := rec.CallsOf(chattest.OpSend)
	if len(sends) != 1 {
		t.Fatalf("expected a fresh send, got %d", len(sends))
	}
	got, _ := l.Get(milk.ID)
	if *got.RenderedMessageID != sends[0].MessageID {
		t.Fatalf("expected ref moved to %d, got %d", sends[0].MessageID, *got.RenderedMessageID)
	}
}

func TestRenderItem_SendFailureLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	s, l, rec := newFixture(t)
	milk := mustCreate(t, l, "Milk")
	rec.Fail = func(op chattest.Op, _ model.MessageID) error {
		if op == chattest.OpSend {
			return &chat.TransientError{Op: "send", Err: context.DeadlineExceeded}
		}
		return nil
	}

	s.RenderItem(ctx, testChat, milk.ID)

	got, ok := l.Get(milk.ID)
	if !ok || got.RenderedMessageID != nil {
		t.Fatalf("expected item kept without ref, got %+v ok=%v", got, ok)
	}
}

func TestRenderFullList_EmptyShowsNotice(t *testing.T) {
	s, _, rec := newFixture(t)

	s.RenderFullList(context.Background(), testChat)

	sends := rec.CallsOf(chattest.OpSend)
	if len(sends) != 1 || sends[0].Message.Text != render.EmptyList().Text {
		t.Fatalf("expected only the empty-list notice, got %+v", sends)
	}
	if s.Footer() != 0 {
		t.Fatalf("expected no footer for an empty list")
	}
}

func TestRenderFullList_SendsEachItemThenOneFooter(t *testing.T) {
	ctx := context.Background()
	s, l, rec := newFixture(t)
	mustCreate(t, l, "Milk")
	mustCreate(t, l, "Eggs")

	s.RenderFullList(ctx, testChat)
	first := s.Footer()
	if first == 0 {
		t.Fatalf("expected footer")
	}
	s.RenderFullList(ctx, testChat)

	sends := rec.CallsOf(chattest.OpSend)
	if len(sends) != 6 {
		t.Fatalf("expected 2x(2 items + footer) sends, got %d", len(sends))
	}
	if !strings.Contains(sends[0].Message.Text, "Milk") || !strings.Contains(sends[1].Message.Text, "Eggs") {
		t.Fatalf("expected insertion order, got %q then %q", sends[0].Message.Text, sends[1].Message.Text)
	}
	if len(rec.CallsOf(chattest.OpEdit)) != 0 {
		t.Fatalf("full render must never edit")
	}
	deletes := rec.CallsOf(chattest.OpDelete)
	if len(deletes) != 1 || deletes[0].MessageID != first {
		t.Fatalf("expected previous footer %d deleted, got %+v", first, deletes)
	}
	for _, it := range l.Items() {
		if it.RenderedMessageID == nil {
			t.Fatalf("expected ref recorded for %s", it.Name)
		}
	}
}

func TestCollapseToSummary(t *testing.T) {
	ctx := context.Background()
	s, l, rec := newFixture(t)
	milk := mustCreate(t, l, "Milk")
	mustCreate(t, l, "Eggs")
	s.RenderFullList(ctx, testChat)
	rec.Reset()

	s.CollapseToSummary(ctx, testChat)

	if got := len(rec.CallsOf(chattest.OpDelete)); got != 3 {
		t.Fatalf("expected 2 item messages + footer deleted, got %d", got)
	}
	for _, it := range l.Items() {
		if it.RenderedMessageID != nil {
			t.Fatalf("expected refs cleared, %s still has %d", it.Name, *it.RenderedMessageID)
		}
	}
	if s.Footer() != 0 {
		t.Fatalf("expected footer marker cleared")
	}
	sends := rec.CallsOf(chattest.OpSend)
	if len(sends) != 1 || !strings.Contains(sends[0].Message.Text, "Milk") {
		t.Fatalf("expected one summary message, got %+v", sends)
	}
	if live := rec.LiveIDs(); len(live) != 1 {
		t.Fatalf("expected only the summary visible, got %v", live)
	}
	if _, ok := l.Get(milk.ID); !ok {
		t.Fatalf("summary must not remove items")
	}
}

func TestCollapseToSummary_DeleteFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	s, l, rec := newFixture(t)
	mustCreate(t, l, "Milk")
	s.RenderFullList(ctx, testChat)
	rec.Fail = func(op chattest.Op, _ model.MessageID) error {
		if op == chattest.OpDelete {
			return errors.New("boom")
		}
		return nil
	}

	s.CollapseToSummary(ctx, testChat)

	if len(rec.CallsOf(chattest.OpSend)) != 3 {
		t.Fatalf("expected summary to be sent despite delete failures")
	}
}

func TestRatePacer(t *testing.T) {
	ctx := context.Background()
	p := NewRatePacer(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if time.Since(start) > time.Second {
		t.Fatalf("zero delay pacer should not block")
	}

	p = NewRatePacer(30 * time.Millisecond)
	start = time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if got := time.Since(start); got < 50*time.Millisecond {
		t.Fatalf("expected ~60ms of pacing for 3 sends, got %s", got)
	}

	p = NewRatePacer(time.Hour)
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first wait should not block: %v", err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := p.Wait(cancelled); err == nil {
		t.Fatalf("expected cancelled wait to fail")
	}
}
