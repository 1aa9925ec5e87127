// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views over a [registry.Registry]:
//  1. [PersonListView] : Browse persons with their total owed and most overdue loan
//  2. [LoanListView] : Inspect the visible loans of one person
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern. It never holds its own copy of
// the persons: it subscribes to the registry and rebuilds its list items whenever an event is published.
//
// While the loans of a person are on screen the registry is locked, so sort, order and filter keys report the
// locked message instead of reordering the list underneath the open person.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s/o/f, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
