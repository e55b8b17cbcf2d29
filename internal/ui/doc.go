// Package ui provides the brokerdesk terminal console.
//
// # Architecture Overview
//
// The console is a Bubble Tea program. Model holds all state and is updated
// only from Update; network work runs in tea.Cmd functions that report back
// with messages.
//
//   - app.go: Model, Options, the Update loop, and Run
//   - commands.go: message types, commands, and the in-flight load tracker
//   - login.go: the sign-in form shown whenever there is no session
//   - table.go: the generic table screen, selection, search, and filters
//   - dialogs.go: create/edit forms, confirmations, and the filter editor
//   - activity.go: a level-filtered tail of the console's own log file
//   - header.go, detail.go, help.go, modal.go: rendering
//
// # Data Flow
//
//  1. Entering a screen starts a cancellable load through the Loader, which
//     writes the screen's rows into state.Store.
//  2. A background poller (see internal/app) refreshes the active screen.
//  3. Every tick the model copies the active screen's snapshot out of the
//     store. A snapshot older than the one on display is ignored.
//  4. Filtering, search, and pagination run in tableview on each render.
//     The raw rows are never modified.
//
// # Sessions
//
// The model subscribes to the session.Manager. When a request is rejected as
// unauthorized the manager invalidates the session and the console returns
// to the login form with every per-session state dropped. Other failures stay
// on screen with a retry hint.
package ui
