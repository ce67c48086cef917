package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"shoplist/internal/model"
)

// Gateway loads and saves list snapshots. It holds no list logic.
type Gateway interface {
	Load(ctx context.Context) (model.Snapshot, error)
	Save(ctx context.Context, snap model.Snapshot) error
}

type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// ParseBackend accepts "json" and "sqlite" (case-insensitive).
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendJSON:
		return BackendJSON, nil
	case BackendSQLite:
		return BackendSQLite, nil
	default:
		return "", fmt.Errorf("unknown backend: %s", s)
	}
}

type Options struct {
	Backend Backend
	Path    string
	// ImportJSON is read once by the SQLite backend when its database is empty.
	ImportJSON string
}

// Open returns the gateway described by opts.
func Open(opts Options) (Gateway, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, errors.New("store: missing data path")
	}
	switch opts.Backend {
	case BackendJSON, "":
		return JSONFile{Path: path}, nil
	case BackendSQLite:
		return SQLite{Path: path, ImportJSON: strings.TrimSpace(opts.ImportJSON)}, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", opts.Backend)
	}
}

// JSONFile keeps the snapshot in a single pretty-printed JSON document.
type JSONFile struct {
	Path string
}

func (f JSONFile) Load(ctx context.Context) (model.Snapshot, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return model.EmptySnapshot(), nil
	}
	if err != nil {
		return model.Snapshot{}, err
	}
	return DecodeSnapshot(b)
}

func (f JSONFile) Save(ctx context.Context, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap = normalize(snap)
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(f.Path, append(b, '\n'))
}

// DecodeSnapshot reads either the current snapshot document or the legacy name-keyed
// products file.
func DecodeSnapshot(b []byte) (model.Snapshot, error) {
	if len(strings.TrimSpace(string(b))) == 0 {
		return model.EmptySnapshot(), nil
	}
	var snap model.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Items == nil && looksLegacy(b) {
		return ParseLegacy(b)
	}
	return normalize(snap), nil
}

// normalize fills nil collections, drops order entries without a record and keys every
// record by its own id.
func normalize(snap model.Snapshot) model.Snapshot {
	if snap.Version == 0 {
		snap.Version = 1
	}
	items := make(map[model.ItemID]model.Item, len(snap.Items))
	for id, it := range snap.Items {
		if it.ID == "" {
			it.ID = id
		}
		items[it.ID] = it
	}
	ordered := model.Snapshot{Order: snap.Order, Items: items}.Ordered()
	snap.Items = items
	snap.Order = make([]model.ItemID, 0, len(ordered))
	for _, it := range ordered {
		snap.Order = append(snap.Order, it.ID)
	}
	return snap
}
