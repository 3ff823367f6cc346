package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/streamlist/internal/models"
)

var (
	_ list.Item = watchItem{}
	_ list.Item = movieItem{}
)

// watchItem wraps [models.ListItem] to implement [list.Item].
type watchItem struct {
	item models.ListItem
}

func (i watchItem) FilterValue() string { return i.item.Text }
func (i watchItem) Title() string {
	if i.item.Completed {
		return "✓ " + styles.done.Render(i.item.Text)
	}
	return "  " + i.item.Text
}
func (i watchItem) Description() string {
	if i.item.Completed {
		return "watched"
	}
	return "to watch"
}

// movieItem wraps [models.SearchResult] to implement [list.Item].
type movieItem struct {
	result   models.SearchResult
	favorite bool
	poster   string
}

func (i movieItem) FilterValue() string { return i.result.Title }
func (i movieItem) Title() string {
	if i.favorite {
		return "★ " + i.result.Title
	}
	return "  " + i.result.Title
}
func (i movieItem) Description() string {
	poster := i.poster
	if poster == "" {
		poster = "No image"
	}
	return fmt.Sprintf("%s • %s", i.result.DisplayDate(), poster)
}

func watchItems(items []models.ListItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = watchItem{item: item}
	}
	return out
}

func movieItems(results []models.SearchResult, isFavorite func(int) bool, imageBase string) []list.Item {
	out := make([]list.Item, len(results))
	for i, r := range results {
		out[i] = movieItem{result: r, favorite: isFavorite(r.ID), poster: r.PosterURL(imageBase)}
	}
	return out
}

func newList(items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}
