package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/streamlist/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgHydrated MsgKind = iota
	MsgSearchDone
	MsgPageDone
	MsgProgressUpdate
)

// hydratedMsg is the constructor for [MsgHydrated]
func hydratedMsg() Msg {
	return Msg{kind: MsgHydrated}
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(err error) Msg {
	return Msg{kind: MsgSearchDone, data: err}
}

// pageDoneMsg is the constructor for [MsgPageDone]
func pageDoneMsg(changed bool, err error) Msg {
	return Msg{
		kind: MsgPageDone,
		data: struct {
			changed bool
			err     error
		}{changed, err},
	}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}
