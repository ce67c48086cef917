package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLite_SaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := SQLite{Path: filepath.Join(t.TempDir(), "shoplist.sqlite")}
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	if err := s.Save(ctx, sampleSnapshot(now)); err != nil {
		t.Fatalf("save sqlite: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load sqlite: %v", err)
	}
	items := got.Ordered()
	if len(items) != 2 || items[0].Name != "Eggs" || items[1].Name != "Milk" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].Comment != "a dozen" {
		t.Fatalf("expected comment to survive, got %q", items[0].Comment)
	}

	// Replace-all: saving a smaller snapshot drops the missing rows.
	smaller := sampleSnapshot(now)
	delete(smaller.Items, "bbbbbbbb")
	if err := s.Save(ctx, smaller); err != nil {
		t.Fatalf("save sqlite: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("load sqlite: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item after replace, got %d", len(got.Items))
	}
}

func TestSQLite_ImportsJSONOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "products.json")
	if err := (JSONFile{Path: jsonPath}).Save(ctx, sampleSnapshot(time.Now().UTC())); err != nil {
		t.Fatalf("save json: %v", err)
	}

	s := SQLite{Path: filepath.Join(dir, "shoplist.sqlite"), ImportJSON: jsonPath}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load sqlite (import): %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected imported items, got %+v", got.Items)
	}

	// Once the table has rows, the JSON file is no longer consulted.
	if err := os.WriteFile(jsonPath, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := s.Load(ctx); err != nil {
		t.Fatalf("expected second load to ignore json file: %v", err)
	}
}
