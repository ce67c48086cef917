package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shoplist/internal/model"
)

func sampleSnapshot(now time.Time) model.Snapshot {
	snap := model.EmptySnapshot()
	milk := model.Item{ID: "aaaaaaaa", Name: "Milk", AuthorID: 1, AuthorName: "@alice", CreatedAt: now}
	eggs := model.Item{ID: "bbbbbbbb", Name: "Eggs", Bought: true, MarkedBy: model.UserPtr(2), AuthorID: 1, AuthorName: "@alice", CreatedAt: now, Comment: "a dozen"}
	// Insert in reverse id order so ordering can't come from map iteration.
	snap.Items[eggs.ID] = eggs
	snap.Items[milk.ID] = milk
	snap.Order = []model.ItemID{eggs.ID, milk.ID}
	return snap
}

func TestJSONFile_MissingFileIsEmptyList(t *testing.T) {
	f := JSONFile{Path: filepath.Join(t.TempDir(), "products.json")}
	snap, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Items) != 0 || len(snap.Order) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestJSONFile_SaveLoad_RoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	f := JSONFile{Path: filepath.Join(t.TempDir(), "nested", "products.json")}
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	if err := f.Save(ctx, sampleSnapshot(now)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	items := got.Ordered()
	if len(items) != 2 || items[0].Name != "Eggs" || items[1].Name != "Milk" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if items[0].MarkedBy == nil || *items[0].MarkedBy != 2 {
		t.Fatalf("expected markedBy=2, got %v", items[0].MarkedBy)
	}
	if !items[0].CreatedAt.Equal(now) {
		t.Fatalf("expected createdAt %v, got %v", now, items[0].CreatedAt)
	}
}

func TestJSONFile_LoadsLegacyProductsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	legacy := `{
  "Milk": {"bought": false, "comment": "", "marked_by": null, "message_id": 10, "author_id": 1, "author_name": "@alice\\_b", "created_at": "2025-03-01T10:30:00.000Z"},
  "Bread": {"bought": true, "comment": "rye", "marked_by": 2, "message_id": null, "author_id": 1, "author_name": "Alice", "created_at": "2025-03-01T10:31:00.000Z"}
}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	snap, err := JSONFile{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	items := snap.Ordered()
	if len(items) != 2 || items[0].Name != "Milk" || items[1].Name != "Bread" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].AuthorName != "@alice_b" {
		t.Fatalf("expected unescaped author name, got %q", items[0].AuthorName)
	}
	if items[0].RenderedMessageID == nil || *items[0].RenderedMessageID != 10 {
		t.Fatalf("expected message id 10, got %v", items[0].RenderedMessageID)
	}
	if !items[1].Bought || items[1].MarkedBy == nil || *items[1].MarkedBy != 2 {
		t.Fatalf("expected Bread bought by 2, got %+v", items[1])
	}
	if !items[0].ID.Valid() || !items[1].ID.Valid() {
		t.Fatalf("expected generated ids, got %q %q", items[0].ID, items[1].ID)
	}
}

func TestParseLegacy_BoughtWithoutClaimantIsReset(t *testing.T) {
	snap, err := ParseLegacy([]byte(`{"Tea": {"bought": true, "marked_by": null, "author_id": 3, "author_name": "x", "created_at": ""}}`))
	if err != nil {
		t.Fatalf("ParseLegacy: %v", err)
	}
	it := snap.Ordered()[0]
	if it.Bought || it.MarkedBy != nil {
		t.Fatalf("expected unbought item without claimant, got %+v", it)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{in: "", want: BackendJSON},
		{in: "JSON", want: BackendJSON},
		{in: " sqlite ", want: BackendSQLite},
		{in: "pebble", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseBackend(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseBackend(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}
