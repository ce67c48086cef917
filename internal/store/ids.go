package store

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"shoplist/internal/model"
)

// NewItemID returns 8 chars of lowercase base32 (no padding).
// 8 chars base32 ~= 40 bits (~1 trillion) of space.
func NewItemID() (model.ItemID, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return model.ItemID(strings.ToLower(enc.EncodeToString(b[:]))), nil
}

// NewUniqueItemID draws ids until one is not already taken.
func NewUniqueItemID(taken func(model.ItemID) bool) (model.ItemID, error) {
	for {
		id, err := NewItemID()
		if err != nil {
			return "", err
		}
		if taken == nil || !taken(id) {
			return id, nil
		}
	}
}
