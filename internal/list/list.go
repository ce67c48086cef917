// Package list owns the authoritative shopping list. It is the only place item records
// change, and every change is saved before the call returns; if the save fails the
// change is undone, so memory is never ahead of disk.
//
// A List is not safe for concurrent use; the router serializes access.
package list

import (
	"context"
	"errors"
	"strings"
	"time"

	"shoplist/internal/model"
	"shoplist/internal/store"
)

type List struct {
	gw    store.Gateway
	order []model.ItemID
	items map[model.ItemID]*model.Item

	now   func() time.Time
	newID func(taken func(model.ItemID) bool) (model.ItemID, error)
}

type Option func(*List)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *List) { l.now = now }
}

// WithIDs overrides item id generation.
func WithIDs(newID func(taken func(model.ItemID) bool) (model.ItemID, error)) Option {
	return func(l *List) { l.newID = newID }
}

// Load reads the snapshot once and returns a list bound to gw.
func Load(ctx context.Context, gw store.Gateway, opts ...Option) (*List, error) {
	if gw == nil {
		return nil, errors.New("list: nil gateway")
	}
	snap, err := gw.Load(ctx)
	if err != nil {
		return nil, err
	}
	l := &List{
		gw:    gw,
		items: map[model.ItemID]*model.Item{},
		now:   func() time.Time { return time.Now().UTC() },
		newID: store.NewUniqueItemID,
	}
	for _, o := range opts {
		o(l)
	}
	for _, it := range snap.Ordered() {
		it := it
		if !it.Bought {
			it.MarkedBy = nil
		}
		l.items[it.ID] = &it
		l.order = append(l.order, it.ID)
	}
	return l, nil
}

func (l *List) Len() int { return len(l.order) }

// Get returns a copy of the item.
func (l *List) Get(id model.ItemID) (model.Item, bool) {
	it, ok := l.items[id]
	if !ok {
		return model.Item{}, false
	}
	return *it, true
}

// FindByName matches names exactly (case-sensitive) among live items.
func (l *List) FindByName(name string) (model.ItemID, bool) {
	for _, id := range l.order {
		if l.items[id].Name == name {
			return id, true
		}
	}
	return "", false
}

// Items returns copies of every item in insertion order.
func (l *List) Items() []model.Item {
	out := make([]model.Item, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.items[id])
	}
	return out
}

func (l *List) Snapshot() model.Snapshot {
	snap := model.EmptySnapshot()
	for _, id := range l.order {
		snap.Order = append(snap.Order, id)
		snap.Items[id] = *l.items[id]
	}
	return snap
}

// Create adds a new unbought item.
func (l *List) Create(ctx context.Context, name string, author model.Author) (model.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Item{}, errors.New("list: empty item name")
	}
	if existing, ok := l.FindByName(name); ok {
		return model.Item{}, DuplicateNameError{Name: name, ExistingID: existing}
	}
	id, err := l.newID(func(id model.ItemID) bool {
		_, ok := l.items[id]
		return ok
	})
	if err != nil {
		return model.Item{}, err
	}
	it := &model.Item{
		ID:         id,
		Name:       name,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		CreatedAt:  l.now(),
	}
	l.items[id] = it
	l.order = append(l.order, id)
	if err := l.persist(ctx, "create"); err != nil {
		delete(l.items, id)
		l.order = l.order[:len(l.order)-1]
		return model.Item{}, err
	}
	return *it, nil
}

// Mutate applies fn to a copy of the item and commits the result. Identity and authorship
// can't be changed, a rename can't collide with another live item, and MarkedBy is cleared
// whenever the item is not bought. If fn returns an error nothing changes.
func (l *List) Mutate(ctx context.Context, id model.ItemID, fn func(*model.Item) error) (model.Item, error) {
	cur, ok := l.items[id]
	if !ok {
		return model.Item{}, NotFoundError{ID: id}
	}
	next := *cur
	if err := fn(&next); err != nil {
		return model.Item{}, err
	}
	next.ID, next.AuthorID, next.AuthorName, next.CreatedAt = cur.ID, cur.AuthorID, cur.AuthorName, cur.CreatedAt
	next.Name = strings.TrimSpace(next.Name)
	if next.Name == "" {
		return model.Item{}, errors.New("list: empty item name")
	}
	if next.Name != cur.Name {
		if other, ok := l.FindByName(next.Name); ok && other != id {
			return model.Item{}, DuplicateNameError{Name: next.Name, ExistingID: other}
		}
	}
	if !next.Bought {
		next.MarkedBy = nil
	}

	prev := *cur
	*cur = next
	if err := l.persist(ctx, "mutate"); err != nil {
		*cur = prev
		return model.Item{}, err
	}
	return next, nil
}

// Delete removes the item and returns its last state.
func (l *List) Delete(ctx context.Context, id model.ItemID) (model.Item, error) {
	it, ok := l.items[id]
	if !ok {
		return model.Item{}, NotFoundError{ID: id}
	}
	idx := l.index(id)
	prevOrder := append([]model.ItemID(nil), l.order...)
	delete(l.items, id)
	l.order = append(l.order[:idx:idx], l.order[idx+1:]...)
	if err := l.persist(ctx, "delete"); err != nil {
		l.items[id] = it
		l.order = prevOrder
		return model.Item{}, err
	}
	return *it, nil
}

// ClearAll removes every item.
func (l *List) ClearAll(ctx context.Context) error {
	prevItems, prevOrder := l.items, l.order
	l.items, l.order = map[model.ItemID]*model.Item{}, nil
	if err := l.persist(ctx, "clear"); err != nil {
		l.items, l.order = prevItems, prevOrder
		return err
	}
	return nil
}

// RetainUnbought drops bought items and resets the survivors' purchase and render
// state, carrying them into a fresh list.
func (l *List) RetainUnbought(ctx context.Context) (removed int, err error) {
	prevItems, prevOrder := l.items, l.order
	items := map[model.ItemID]*model.Item{}
	var order []model.ItemID
	for _, id := range prevOrder {
		it := *prevItems[id]
		if it.Bought {
			removed++
			continue
		}
		it.Bought = false
		it.MarkedBy = nil
		it.RenderedMessageID = nil
		items[id] = &it
		order = append(order, id)
	}
	l.items, l.order = items, order
	if err := l.persist(ctx, "retain-unbought"); err != nil {
		l.items, l.order = prevItems, prevOrder
		return 0, err
	}
	return removed, nil
}

// SetRendered records (or clears, with 0) the message currently showing the item.
func (l *List) SetRendered(ctx context.Context, id model.ItemID, msg model.MessageID) error {
	_, err := l.Mutate(ctx, id, func(it *model.Item) error {
		if msg == 0 {
			it.RenderedMessageID = nil
		} else {
			it.RenderedMessageID = model.MessagePtr(msg)
		}
		return nil
	})
	return err
}

// ClearRendered forgets every item's rendered message.
func (l *List) ClearRendered(ctx context.Context) error {
	changed := make(map[model.ItemID]*model.MessageID)
	for id, it := range l.items {
		if it.RenderedMessageID != nil {
			changed[id] = it.RenderedMessageID
			it.RenderedMessageID = nil
		}
	}
	if len(changed) == 0 {
		return nil
	}
	if err := l.persist(ctx, "clear-rendered"); err != nil {
		for id, ref := range changed {
			l.items[id].RenderedMessageID = ref
		}
		return err
	}
	return nil
}

func (l *List) index(id model.ItemID) int {
	for i, x := range l.order {
		if x == id {
			return i
		}
	}
	return -1
}

func (l *List) persist(ctx context.Context, op string) error {
	if err := l.gw.Save(ctx, l.Snapshot()); err != nil {
		return PersistError{Op: op, Err: err}
	}
	return nil
}
