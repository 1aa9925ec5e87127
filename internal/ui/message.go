package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
//
// Registry changes do not travel as messages: the model's registry listener rebuilds the lists synchronously.
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSaved MsgKind = iota
)

// savedMsg is the constructor for [MsgSaved]
func savedMsg(err error) Msg {
	return Msg{kind: MsgSaved, data: err}
}
