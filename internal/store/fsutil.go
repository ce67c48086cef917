package store

import (
	"errors"
	"os"
	"path/filepath"
)

// writeFileAtomic writes data next to dest and renames it into place, so readers never
// observe a half-written snapshot.
func writeFileAtomic(dest string, data []byte) error {
	dest = filepath.Clean(dest)
	if dest == "" || dest == "." {
		return errors.New("write file: missing dest")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}
