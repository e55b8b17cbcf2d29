package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/session"
)

// Target is the collection a row action applies to.
type Target struct {
	ID     string // screen id, passed back to Refetch
	Title  string
	Path   string
	Fields []FormField
}

// Request is a submitted dialog, detached from the dialog so it can run on
// another goroutine.
type Request struct {
	Mode   Mode
	Action string
	ID     string
	Values map[string]string
}

// Result is the outcome of one dispatched request.
type Result struct {
	Target  string
	Request Request
	Message string
	Err     error
}

// Dispatcher sends row actions to the backend and refreshes the affected
// collection on success.
type Dispatcher struct {
	Backend brokerapi.Backend
	Session *session.Manager
	Refetch func(ctx context.Context, targetID string) error
	Logger  *zap.Logger
	Now     func() time.Time
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d *Dispatcher) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// Save submits dialog, runs the request, resolves the dialog, and returns the
// toast to show. Validation failures keep the dialog open and return a zero
// toast with the fields' inline errors set.
func (d *Dispatcher) Save(ctx context.Context, target Target, dialog *Dialog) (Toast, error) {
	req, err := dialog.Submit()
	if err != nil {
		return Toast{}, err
	}
	res := d.Execute(ctx, target, req)
	dialog.Resolve(res.Err)
	return d.Finish(ctx, res), res.Err
}

// Delete confirms and removes record id.
func (d *Dispatcher) Delete(ctx context.Context, target Target, id string) (Toast, error) {
	return d.Custom(ctx, target, ActionDelete, id)
}

// Custom runs a confirm-style action such as approve or reject on record id.
func (d *Dispatcher) Custom(ctx context.Context, target Target, action, id string) (Toast, error) {
	var dialog Dialog
	if err := dialog.OpenConfirm(action, id, ""); err != nil {
		return Toast{}, err
	}
	return d.Save(ctx, target, &dialog)
}

// Execute performs req against the backend. Unauthorized failures end the
// session; every other failure is returned for the caller to show.
func (d *Dispatcher) Execute(ctx context.Context, target Target, req Request) Result {
	res := Result{Target: target.ID, Request: req}
	if d.Backend == nil || d.Session == nil {
		res.Err = fmt.Errorf("dispatcher is not configured")
		return res
	}
	token := d.Session.Token()
	if token == "" {
		res.Err = ErrSignedOut
		return res
	}

	switch req.Mode {
	case ModeCreate, ModeEdit:
		payload, err := BuildPayload(target.Fields, req.Values)
		if err != nil {
			res.Err = err
			return res
		}
		if req.Mode == ModeCreate {
			res.Message, res.Err = d.Backend.Create(ctx, token, target.Path, payload)
		} else {
			res.Message, res.Err = d.Backend.Update(ctx, token, target.Path, req.ID, payload)
		}
	case ModeConfirm:
		if req.Action == ActionDelete {
			res.Message, res.Err = d.Backend.Delete(ctx, token, target.Path, req.ID)
		} else {
			res.Message, res.Err = d.Backend.Action(ctx, token, target.Path, req.ID, req.Action)
		}
	default:
		res.Err = fmt.Errorf("unknown dialog mode %d", req.Mode)
	}

	log := d.logger().With(
		zap.String("screen", target.ID),
		zap.String("action", req.verb()),
		zap.String("record_id", req.ID))
	if res.Err != nil {
		log.Warn("row action failed", zap.Error(res.Err))
		if brokerapi.IsUnauthorized(res.Err) {
			if err := d.Session.Invalidate("session rejected during " + req.verb()); err != nil {
				log.Warn("clear session", zap.Error(err))
			}
		}
		return res
	}
	log.Info("row action succeeded", zap.String("message", res.Message))
	return res
}

// Finish turns a result into a toast and refetches the collection after a
// successful mutation.
func (d *Dispatcher) Finish(ctx context.Context, res Result) Toast {
	now := d.now()
	if res.Err != nil {
		return NewToast(LevelError, brokerapi.Message(res.Err), now, DefaultToastTTL)
	}
	if d.Refetch != nil {
		if err := d.Refetch(ctx, res.Target); err != nil && !errors.Is(err, context.Canceled) {
			d.logger().Warn("refetch after mutation failed",
				zap.String("screen", res.Target),
				zap.Error(err))
		}
	}
	text := strings.TrimSpace(res.Message)
	if text == "" {
		text = res.Request.successText()
	}
	return NewToast(LevelSuccess, text, now, DefaultToastTTL)
}

// ErrSignedOut is returned when an action runs without a session.
var ErrSignedOut = errors.New("not signed in")

func (r Request) verb() string {
	switch r.Mode {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "update"
	default:
		return r.Action
	}
}

func (r Request) successText() string {
	switch r.Mode {
	case ModeCreate:
		return "Created"
	case ModeEdit:
		return "Saved"
	}
	switch r.Action {
	case ActionDelete:
		return "Deleted"
	case "":
		return "Done"
	}
	past := r.Action + "ed"
	if strings.HasSuffix(r.Action, "e") {
		past = r.Action + "d"
	}
	return strings.ToUpper(past[:1]) + past[1:]
}

// BuildPayload converts form values into a request body. Empty optional
// fields are omitted; file fields are read from disk.
func BuildPayload(fields []FormField, values map[string]string) (brokerapi.Payload, error) {
	payload := brokerapi.Payload{Fields: make(map[string]any, len(fields))}
	for _, f := range fields {
		value := strings.TrimSpace(values[f.Name])
		if value == "" {
			continue
		}
		switch f.Kind {
		case FieldFile:
			path, err := expandPath(value)
			if err != nil {
				return brokerapi.Payload{}, err
			}
			if err := payload.AttachFile(f.Name, path); err != nil {
				return brokerapi.Payload{}, err
			}
		case FieldNumber:
			n, err := ParseNumber(value)
			if err != nil {
				return brokerapi.Payload{}, fmt.Errorf("%s: %w", f.label(), err)
			}
			payload.Fields[f.Name] = n
		case FieldChoice:
			if opt, ok := matchOption(f.Options, value); ok {
				value = opt
			}
			payload.Fields[f.Name] = value
		default:
			payload.Fields[f.Name] = value
		}
	}
	return payload, nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}
