package workspace

import (
	"fmt"

	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

// Selectable reports whether an item can be picked in the review list.
func Selectable(it *content.Item) bool {
	return it.Status == content.StatusMapped || it.Status == content.StatusReviewed
}

// Select adds id to the selection.
func (w *Workspace) Select(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	it, ok := w.items[id]
	if !ok {
		return fmt.Errorf("%w: item %s", internalerr.ErrNotFound, id)
	}
	if !Selectable(it) {
		return fmt.Errorf("%w: %s is %s", internalerr.ErrWrongStage, id, it.Status)
	}
	w.selected[id] = struct{}{}
	return nil
}

// Deselect removes id from the selection. Unknown ids are ignored.
func (w *Workspace) Deselect(id string) {
	w.mu.Lock()
	delete(w.selected, id)
	w.mu.Unlock()
}

// Toggle flips the selection of id and reports whether it is now selected.
func (w *Workspace) Toggle(id string) (bool, error) {
	w.mu.Lock()
	_, on := w.selected[id]
	w.mu.Unlock()

	if on {
		w.Deselect(id)
		return false, nil
	}
	if err := w.Select(id); err != nil {
		return false, err
	}
	return true, nil
}

// SelectAll selects every selectable item, or clears the selection when
// all of them are already selected. It returns the new selection size.
func (w *Workspace) SelectAll() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	var all []string
	for _, id := range w.order {
		if Selectable(w.items[id]) {
			all = append(all, id)
		}
	}

	allOn := len(all) > 0
	for _, id := range all {
		if _, ok := w.selected[id]; !ok {
			allOn = false
			break
		}
	}

	w.selected = make(map[string]struct{}, len(all))
	if allOn {
		return 0
	}
	for _, id := range all {
		w.selected[id] = struct{}{}
	}
	return len(all)
}

// Selected returns the selected ids in insertion order.
func (w *Workspace) Selected() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, 0, len(w.selected))
	for _, id := range w.order {
		if _, ok := w.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// IsSelected reports whether id is selected.
func (w *Workspace) IsSelected(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.selected[id]
	return ok
}

// ClearSelection empties the selection.
func (w *Workspace) ClearSelection() {
	w.mu.Lock()
	w.selected = make(map[string]struct{})
	w.mu.Unlock()
}
