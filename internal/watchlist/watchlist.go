// Package watchlist implements the in-memory watchlist: add, edit, complete, and delete items by id.
//
// Items are not persisted and the list is not safe for concurrent use; it is owned by a single view.
package watchlist

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/streamlist/internal/models"
	"github.com/desertthunder/streamlist/internal/shared"
)

// List is an ordered watchlist with an optional item in edit mode.
type List struct {
	items   []models.ListItem
	editing string
	input   string
}

// New creates an empty list.
func New() *List {
	return &List{items: []models.ListItem{}}
}

// Items returns a copy of the items in display order.
func (l *List) Items() []models.ListItem {
	return slices.Clone(l.items)
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.items)
}

// Editing returns the id of the item being edited, if any.
func (l *List) Editing() (string, bool) {
	return l.editing, l.editing != ""
}

// Input returns the text loaded by the last [List.Edit], cleared on submit or cancel.
func (l *List) Input() string {
	return l.input
}

// Submit adds input as a new item, or replaces the text of the item in edit mode.
//
// Blank input is ignored and reports false.
func (l *List) Submit(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}

	if l.editing != "" {
		if i := l.index(l.editing); i >= 0 {
			l.items[i].Text = input
		}
		l.CancelEdit()
		return true
	}

	l.items = append(l.items, models.ListItem{ID: shared.GenerateID(), Text: input})
	l.input = ""
	return true
}

// Edit puts the item with id into edit mode and loads its text as the input.
func (l *List) Edit(id string) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}

	l.editing = id
	l.input = l.items[i].Text
	return nil
}

// CancelEdit leaves edit mode without changes.
func (l *List) CancelEdit() {
	l.editing = ""
	l.input = ""
}

// Delete removes the item with id. Deleting the item in edit mode cancels the edit.
func (l *List) Delete(id string) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}

	l.items = slices.Delete(l.items, i, i+1)
	if l.editing == id {
		l.CancelEdit()
	}
	return nil
}

// Toggle flips the completed flag of the item with id.
func (l *List) Toggle(id string) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}

	l.items[i].Completed = !l.items[i].Completed
	return nil
}

func (l *List) index(id string) int {
	return slices.IndexFunc(l.items, func(item models.ListItem) bool { return item.ID == id })
}
