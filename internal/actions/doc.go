// Package actions implements create, update, delete, and workflow actions on
// list rows.
//
// A Dialog tracks one form or confirmation through
// Closed -> Open -> Submitting -> Closed, returning to Open with the error
// when the backend refuses. Submit refuses while a request is in flight.
//
// The Dispatcher is split so the console can run the network call off the UI
// loop: Dialog.Submit on the loop, Dispatcher.Execute in a command, then
// Dialog.Resolve and Dispatcher.Finish when the result arrives. Save runs all
// three in sequence for callers without an event loop.
package actions
