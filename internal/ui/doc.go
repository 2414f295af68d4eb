// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a two-view catalog browser:
//  1. [MovieListView] : Browse the popular feed with pagination
//  2. [DetailView] : Full movie record with watchlist toggling
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Session transitions surface in the status line, so an external logout observed
// by the session watcher is reflected without restarting the browser.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, h/l for pages,
// w for watchlist, q to quit) with contextual help via charmbracelet/bubbles/help.
package ui
