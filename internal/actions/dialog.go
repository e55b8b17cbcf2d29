package actions

import (
	"errors"
	"strings"

	"github.com/five82/brokerdesk/internal/brokerapi"
)

// Phase is the lifecycle state of a Dialog.
type Phase int

const (
	Closed Phase = iota
	Open
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Mode says what a dialog will do when submitted.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
	ModeConfirm // delete or a workflow action such as approve
)

// ActionDelete is the confirm action that removes a record.
const ActionDelete = "delete"

var (
	ErrNotOpen  = errors.New("dialog is not open")
	ErrInFlight = errors.New("request already in flight")
	ErrInvalid  = errors.New("form has errors")
)

// Dialog is the create/edit/confirm state machine shared by every screen:
// Closed -> Open -> Submitting -> Closed on success, or back to Open with the
// error on failure. It never reaches a terminal state.
type Dialog struct {
	phase    Phase
	mode     Mode
	action   string
	recordID string
	title    string
	fields   []FormField
	values   map[string]string
	errs     map[string]string
	err      string
}

// OpenForm opens a create form, or an edit form prefilled from record.
func (d *Dialog) OpenForm(mode Mode, fields []FormField, record brokerapi.Record) error {
	if d.phase == Submitting {
		return ErrInFlight
	}
	d.reset()
	d.phase = Open
	d.mode = mode
	d.fields = fields
	d.values = make(map[string]string, len(fields))
	if mode == ModeEdit {
		d.recordID = record.ID()
		for _, f := range fields {
			if f.Kind == FieldFile {
				continue
			}
			d.values[f.Name] = record.String(f.source())
		}
	}
	return nil
}

// OpenConfirm opens a yes/no prompt for action on record id.
func (d *Dialog) OpenConfirm(action, id, title string) error {
	if d.phase == Submitting {
		return ErrInFlight
	}
	d.reset()
	d.phase = Open
	d.mode = ModeConfirm
	d.action = action
	d.recordID = id
	d.title = title
	return nil
}

// Set updates one form value while the dialog is open.
func (d *Dialog) Set(name, value string) {
	if d.phase != Open {
		return
	}
	if d.values == nil {
		d.values = make(map[string]string)
	}
	d.values[name] = value
	delete(d.errs, name)
}

// Submit validates the form and moves to Submitting. It refuses a second
// submission while one is in flight.
func (d *Dialog) Submit() (Request, error) {
	switch d.phase {
	case Closed:
		return Request{}, ErrNotOpen
	case Submitting:
		return Request{}, ErrInFlight
	}
	if d.mode != ModeConfirm {
		d.errs = Validate(d.fields, d.values)
		if len(d.errs) > 0 {
			return Request{}, ErrInvalid
		}
	}
	d.err = ""
	d.phase = Submitting
	return Request{
		Mode:   d.mode,
		Action: d.action,
		ID:     d.recordID,
		Values: d.Values(),
	}, nil
}

// Resolve finishes a submission. Success closes the dialog; failure reopens it
// with the error so the user may retry.
func (d *Dialog) Resolve(err error) {
	if d.phase != Submitting {
		return
	}
	if err == nil {
		d.reset()
		return
	}
	d.phase = Open
	d.err = brokerapi.Message(err)
}

// Close dismisses the dialog. A dialog with a request in flight stays open.
func (d *Dialog) Close() bool {
	if d.phase == Submitting {
		return false
	}
	d.reset()
	return true
}

func (d *Dialog) reset() {
	*d = Dialog{}
}

// Accessors for rendering.

func (d *Dialog) Phase() Phase { return d.phase }
func (d *Dialog) Mode() Mode { return d.mode }
func (d *Dialog) Action() string { return d.action }
func (d *Dialog) RecordID() string { return d.recordID }
func (d *Dialog) Title() string { return d.title }
func (d *Dialog) Fields() []FormField { return d.fields }
func (d *Dialog) Err() string { return d.err }
func (d *Dialog) Value(name string) string {
	return d.values[name]
}

// FieldError returns the inline message for name, if any.
func (d *Dialog) FieldError(name string) string {
	return d.errs[name]
}

// Values returns a copy of the current form values.
func (d *Dialog) Values() map[string]string {
	out := make(map[string]string, len(d.values))
	for k, v := range d.values {
		out[k] = strings.TrimSpace(v)
	}
	return out
}
