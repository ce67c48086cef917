package list

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"shoplist/internal/model"
	"shoplist/internal/store"
)

type memGateway struct {
	snap  model.Snapshot
	saves int
	fail  bool
}

func (m *memGateway) Load(context.Context) (model.Snapshot, error) {
	if m.snap.Items == nil {
		return model.EmptySnapshot(), nil
	}
	return m.snap, nil
}

func (m *memGateway) Save(_ context.Context, snap model.Snapshot) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.saves++
	m.snap = snap
	return nil
}

func seqIDs() Option {
	n := 0
	return WithIDs(func(taken func(model.ItemID) bool) (model.ItemID, error) {
		for {
			n++
			id := model.ItemID(fmt.Sprintf("item%04d", n))
			if !taken(id) {
				return id, nil
			}
		}
	})
}

func newTestList(t *testing.T, gw *memGateway) *List {
	t.Helper()
	l, err := Load(context.Background(), gw, seqIDs(), WithClock(func() time.Time {
		return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return l
}

var alice = model.Author{ID: 1, Name: "@alice"}

func TestCreate_RejectsDuplicateNameAmongLiveItems(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	l := newTestList(t, gw)

	eggs, err := l.Create(ctx, "Eggs", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = l.Create(ctx, "Eggs", model.Author{ID: 2, Name: "Bob"})
	var dup DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}
	if dup.ExistingID != eggs.ID {
		t.Fatalf("expected duplicate to point at %s, got %s", eggs.ID, dup.ExistingID)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", l.Len())
	}

	// Case-sensitive: "eggs" is a different name.
	if _, err := l.Create(ctx, "eggs", alice); err != nil {
		t.Fatalf("expected case-distinct name to be accepted: %v", err)
	}
}

func TestCreate_DeletedNameCanBeReused(t *testing.T) {
	ctx := context.Background()
	l := newTestList(t, &memGateway{})

	milk, err := l.Create(ctx, "Milk", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := l.Delete(ctx, milk.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	again, err := l.Create(ctx, "Milk", alice)
	if err != nil {
		t.Fatalf("re-create: %v", err)
	}
	if again.ID == milk.ID {
		t.Fatalf("expected a fresh id, got reused %s", again.ID)
	}
}

func TestCreate_PersistsAndSetsAuthorship(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	l := newTestList(t, gw)

	it, err := l.Create(ctx, "  Bread  ", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if it.Name != "Bread" || it.Bought || it.MarkedBy != nil || it.AuthorID != 1 || it.AuthorName != "@alice" {
		t.Fatalf("unexpected item %+v", it)
	}
	if gw.saves != 1 {
		t.Fatalf("expected 1 save, got %d", gw.saves)
	}
	if _, ok := gw.snap.Items[it.ID]; !ok {
		t.Fatalf("expected snapshot to contain %s", it.ID)
	}
}

func TestMutate_KeepsIdentityAndMarkedByInvariant(t *testing.T) {
	ctx := context.Background()
	l := newTestList(t, &memGateway{})
	it, _ := l.Create(ctx, "Milk", alice)

	got, err := l.Mutate(ctx, it.ID, func(x *model.Item) error {
		x.Bought = true
		x.MarkedBy = model.UserPtr(2)
		x.AuthorID = 99
		x.ID = "hijacked"
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if got.ID != it.ID || got.AuthorID != 1 {
		t.Fatalf("identity/authorship changed: %+v", got)
	}

	got, err = l.Mutate(ctx, it.ID, func(x *model.Item) error {
		x.Bought = false
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if got.MarkedBy != nil {
		t.Fatalf("expected markedBy cleared when unbought, got %v", *got.MarkedBy)
	}
}

func TestMutate_RenameCollisionIsRejected(t *testing.T) {
	ctx := context.Background()
	l := newTestList(t, &memGateway{})
	milk, _ := l.Create(ctx, "Milk", alice)
	l.Create(ctx, "Eggs", alice)

	_, err := l.Mutate(ctx, milk.ID, func(x *model.Item) error {
		x.Name = "Eggs"
		return nil
	})
	var dup DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}
	if got, _ := l.Get(milk.ID); got.Name != "Milk" {
		t.Fatalf("expected name unchanged, got %q", got.Name)
	}
}

func TestMutate_NotFound(t *testing.T) {
	l := newTestList(t, &memGateway{})
	_, err := l.Mutate(context.Background(), "missing0", func(*model.Item) error { return nil })
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.ID != "missing0" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := l.Delete(context.Background(), "missing0"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError from Delete, got %v", err)
	}
}

func TestRetainUnbought_KeepsOnlyUnboughtAndResetsThem(t *testing.T) {
	ctx := context.Background()
	l := newTestList(t, &memGateway{})
	a, _ := l.Create(ctx, "A", alice)
	b, _ := l.Create(ctx, "B", alice)
	l.Mutate(ctx, a.ID, func(x *model.Item) error {
		x.Bought = true
		x.MarkedBy = model.UserPtr(2)
		return nil
	})
	l.SetRendered(ctx, b.ID, 42)

	removed, err := l.RetainUnbought(ctx)
	if err != nil {
		t.Fatalf("RetainUnbought: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	items := l.Items()
	if len(items) != 1 || items[0].ID != b.ID {
		t.Fatalf("expected only B, got %+v", items)
	}
	if items[0].Bought || items[0].MarkedBy != nil || items[0].RenderedMessageID != nil {
		t.Fatalf("expected B reset, got %+v", items[0])
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	l := newTestList(t, gw)
	l.Create(ctx, "A", alice)
	l.Create(ctx, "B", alice)

	if err := l.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if l.Len() != 0 || len(gw.snap.Items) != 0 {
		t.Fatalf("expected empty list and snapshot, got %d / %d", l.Len(), len(gw.snap.Items))
	}
}

func TestFailedSaveRollsBack(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	l := newTestList(t, gw)
	milk, _ := l.Create(ctx, "Milk", alice)
	l.Create(ctx, "Eggs", alice)

	gw.fail = true
	var pe PersistError

	if _, err := l.Create(ctx, "Bread", alice); !errors.As(err, &pe) {
		t.Fatalf("expected PersistError from Create, got %v", err)
	}
	if _, ok := l.FindByName("Bread"); ok {
		t.Fatalf("expected failed create to be rolled back")
	}

	if _, err := l.Mutate(ctx, milk.ID, func(x *model.Item) error { x.Comment = "2l"; return nil }); !errors.As(err, &pe) {
		t.Fatalf("expected PersistError from Mutate, got %v", err)
	}
	if got, _ := l.Get(milk.ID); got.Comment != "" {
		t.Fatalf("expected comment rolled back, got %q", got.Comment)
	}

	if _, err := l.Delete(ctx, milk.ID); !errors.As(err, &pe) {
		t.Fatalf("expected PersistError from Delete, got %v", err)
	}
	if err := l.ClearAll(ctx); !errors.As(err, &pe) {
		t.Fatalf("expected PersistError from ClearAll, got %v", err)
	}
	items := l.Items()
	if len(items) != 2 || items[0].Name != "Milk" || items[1].Name != "Eggs" {
		t.Fatalf("expected original list intact and ordered, got %+v", items)
	}
}

func TestLoad_RestoresOrderFromSnapshot(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	l := newTestList(t, gw)
	l.Create(ctx, "First", alice)
	l.Create(ctx, "Second", alice)

	reloaded, err := Load(ctx, gw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	items := reloaded.Items()
	if len(items) != 2 || items[0].Name != "First" || items[1].Name != "Second" {
		t.Fatalf("unexpected reload order %+v", items)
	}
}

func TestLoad_WithJSONFileGateway(t *testing.T) {
	ctx := context.Background()
	gw := store.JSONFile{Path: t.TempDir() + "/products.json"}
	l, err := Load(ctx, gw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty list on first run, got %d", l.Len())
	}
	if _, err := l.Create(ctx, "Milk", alice); err != nil {
		t.Fatalf("Create: %v", err)
	}
	again, err := Load(ctx, gw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := again.FindByName("Milk"); !ok {
		t.Fatalf("expected Milk to survive reload")
	}
}
