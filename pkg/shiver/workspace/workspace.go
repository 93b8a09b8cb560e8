// Package workspace owns the in-memory list of content items and the
// review selection. All lifecycle rules are enforced here, so callers can
// only move an item forward.
package workspace

import (
	"fmt"
	"sync"
	"time"

	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/internalerr"
	"github.com/cognicore/shiver/pkg/shiver/records"
)

// Patch lists the fields an update may change. Nil fields are left alone.
type Patch struct {
	Status      *content.Status
	Parsed      *content.ParsedData
	Confidence  *float64
	Suggestions []string
	Mapped      records.Record
	SavedID     *int64
	Blob        *content.BlobRef
	Annotation  *string
}

// Workspace is safe for concurrent use. Items handed in or out are copies.
type Workspace struct {
	mu       sync.RWMutex
	now      func() time.Time
	order    []string
	items    map[string]*content.Item
	selected map[string]struct{}
}

// New creates an empty workspace; a nil clock uses time.Now.
func New(now func() time.Time) *Workspace {
	if now == nil {
		now = time.Now
	}
	return &Workspace{
		now:      now,
		items:    make(map[string]*content.Item),
		selected: make(map[string]struct{}),
	}
}

// AddItem appends a new item. Its fields must already match its status.
func (w *Workspace) AddItem(it *content.Item) error {
	if it == nil {
		return fmt.Errorf("%w: nil item", internalerr.ErrInvalidInput)
	}
	c := it.Clone()
	if c.Status == 0 {
		c.Status = content.StatusUploaded
	}
	if err := c.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.items[c.ID]; ok {
		return fmt.Errorf("%w: item %s", internalerr.ErrDuplicate, c.ID)
	}
	now := w.now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	w.items[c.ID] = c
	w.order = append(w.order, c.ID)
	return nil
}

// UpdateItem applies p to the item with the given id and returns the
// result. The update is rejected as a whole when it would move the status
// backward, touch a saved item, or leave the item inconsistent.
func (w *Workspace) UpdateItem(id string, p Patch) (*content.Item, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cur, ok := w.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", internalerr.ErrNotFound, id)
	}
	if cur.Status == content.StatusSaved {
		return nil, fmt.Errorf("%w: %s", internalerr.ErrImmutable, id)
	}

	next := cur.Clone()
	if p.Status != nil {
		if *p.Status < cur.Status {
			return nil, fmt.Errorf("%w: %s from %s to %s", internalerr.ErrStatusRegression, id, cur.Status, *p.Status)
		}
		next.Status = *p.Status
	}
	if p.Parsed != nil {
		pd := *p.Parsed
		next.Parsed = &pd
	}
	if p.Confidence != nil {
		c := *p.Confidence
		next.Confidence = &c
	}
	if p.Suggestions != nil {
		next.Suggestions = append([]string(nil), p.Suggestions...)
	}
	if p.Mapped != nil {
		next.Mapped = p.Mapped.Clone()
	}
	if p.SavedID != nil {
		next.SavedID = *p.SavedID
	}
	if p.Blob != nil {
		b := *p.Blob
		next.Blob = &b
	}
	if p.Annotation != nil {
		next.Annotation = *p.Annotation
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	next.UpdatedAt = w.now().UTC()
	w.items[id] = next
	if next.Status == content.StatusSaved {
		delete(w.selected, id)
	}
	return next.Clone(), nil
}

// EditDraft lets the operator change a mapped draft before it is saved.
// fn receives a copy; the copy is stored only when fn returns nil.
func (w *Workspace) EditDraft(id string, fn func(records.Record) error) (*content.Item, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cur, ok := w.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", internalerr.ErrNotFound, id)
	}
	switch cur.Status {
	case content.StatusSaved:
		return nil, fmt.Errorf("%w: %s", internalerr.ErrImmutable, id)
	case content.StatusMapped, content.StatusReviewed:
	default:
		return nil, fmt.Errorf("%w: %s is %s, draft editing needs mapped", internalerr.ErrWrongStage, id, cur.Status)
	}

	draft := cur.Mapped.Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}
	next := cur.Clone()
	next.Mapped = draft
	next.UpdatedAt = w.now().UTC()
	w.items[id] = next
	return next.Clone(), nil
}

// RemoveItem drops an item and its selection.
func (w *Workspace) RemoveItem(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.items[id]; !ok {
		return fmt.Errorf("%w: item %s", internalerr.ErrNotFound, id)
	}
	delete(w.items, id)
	delete(w.selected, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of one item.
func (w *Workspace) Get(id string) (*content.Item, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	it, ok := w.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", internalerr.ErrNotFound, id)
	}
	return it.Clone(), nil
}

// List returns copies of every item in insertion order.
func (w *Workspace) List() []*content.Item {
	return w.filter(func(*content.Item) bool { return true })
}

// ByStatus returns the items currently in status s.
func (w *Workspace) ByStatus(s content.Status) []*content.Item {
	return w.filter(func(it *content.Item) bool { return it.Status == s })
}

// IDs returns the ids of items in status s, in insertion order.
func (w *Workspace) IDs(s content.Status) []string {
	items := w.ByStatus(s)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// Len reports how many items the workspace holds.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

func (w *Workspace) filter(keep func(*content.Item) bool) []*content.Item {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*content.Item, 0, len(w.order))
	for _, id := range w.order {
		if it := w.items[id]; keep(it) {
			out = append(out, it.Clone())
		}
	}
	return out
}
