package list

import (
	"fmt"

	"shoplist/internal/model"
)

type NotFoundError struct {
	ID model.ItemID
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("item not found: %s", e.ID)
}

// DuplicateNameError carries the live item that already uses the name.
type DuplicateNameError struct {
	Name       string
	ExistingID model.ItemID
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("item %q already in list (%s)", e.Name, e.ExistingID)
}

// PersistError means the snapshot could not be written; the mutation was rolled back.
type PersistError struct {
	Op  string
	Err error
}

func (e PersistError) Error() string {
	return fmt.Sprintf("%s: persist: %v", e.Op, e.Err)
}

func (e PersistError) Unwrap() error { return e.Err }
