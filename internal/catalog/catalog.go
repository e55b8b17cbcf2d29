// Package catalog defines the console's list screens and which roles may
// open them.
package catalog

import (
	"slices"

	"github.com/five82/brokerdesk/internal/actions"
	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/session"
	"github.com/five82/brokerdesk/internal/tableview"
)

// Column is one table column.
type Column struct {
	Title string
	Width int // preferred width; the table shrinks wide columns to fit
	Value func(brokerapi.Record) string
}

// RowAction is a confirm-style workflow action bound to a key.
type RowAction struct {
	Name    string // sent as the last path segment, e.g. "approve"
	Label   string
	Key     string
	Confirm string // prompt; %s is replaced with the row title
}

// Screen describes one list screen end to end: where its rows come from, how
// they are shown and filtered, and which row actions it offers.
type Screen struct {
	ID    string
	Title string
	Path  string // collection endpoint
	Key   string // envelope field holding the rows

	Roles   []session.Role // who may open the screen
	Editors []session.Role // who may create, edit, or delete; empty means nobody

	Columns  []Column
	Filter   tableview.Filter[brokerapi.Record]
	PageSize tableview.PageSize
	RowTitle func(brokerapi.Record) string

	CanCreate bool
	CanEdit   bool
	CanDelete bool
	Custom    []RowAction
	Form      []actions.FormField

	Receipt bool // rows are sales encodings with a printable receipt
}

// Allows reports whether role may open the screen.
func (s Screen) Allows(role session.Role) bool {
	return slices.Contains(s.Roles, role)
}

// Editable reports whether role may run mutations on the screen.
func (s Screen) Editable(role session.Role) bool {
	return slices.Contains(s.Editors, role)
}

// Target is the action target for the screen.
func (s Screen) Target() actions.Target {
	return actions.Target{ID: s.ID, Title: s.Title, Path: s.Path, Fields: s.Form}
}

// Title of a row for prompts and the detail pane.
func (s Screen) TitleOf(r brokerapi.Record) string {
	if s.RowTitle != nil {
		if t := s.RowTitle(r); t != "" {
			return t
		}
	}
	return "#" + r.ID()
}

// CustomAction finds a workflow action by key.
func (s Screen) CustomAction(key string) (RowAction, bool) {
	for _, a := range s.Custom {
		if a.Key == key {
			return a, true
		}
	}
	return RowAction{}, false
}

// Apply runs the table pipeline for this screen.
func (s Screen) Apply(raw []brokerapi.Record, state tableview.State) tableview.Result[brokerapi.Record] {
	return tableview.Apply(raw, s.Filter, state)
}

// All returns every screen in display order.
func All() []Screen {
	return screens()
}

// ForRole returns the screens role may open, in display order.
func ForRole(role session.Role) []Screen {
	var out []Screen
	for _, s := range screens() {
		if s.Allows(role) {
			out = append(out, s)
		}
	}
	return out
}

// Lookup finds a screen by ID.
func Lookup(id string) (Screen, bool) {
	for _, s := range screens() {
		if s.ID == id {
			return s, true
		}
	}
	return Screen{}, false
}
