package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/brokerdesk/internal/actions"
	"github.com/five82/brokerdesk/internal/logtail"
	"github.com/five82/brokerdesk/internal/session"
)

// Message types

type tickMsg time.Time

type loadedMsg struct {
	screen string
	seq    uint64
	err    error
}

type loginMsg struct {
	session session.Session
	err     error
}

type actionMsg struct {
	result actions.Result
	toast  actions.Toast
}

type sessionEndedMsg struct {
	reason string
}

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForSessionEnd delivers the next session invalidation. It returns nil
// when ctx ends first.
func waitForSessionEnd(ctx context.Context, ended <-chan string) tea.Cmd {
	if ended == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case reason := <-ended:
			return sessionEndedMsg{reason: reason}
		case <-ctx.Done():
			return nil
		}
	}
}

func loginCmd(ctx context.Context, loader Loader, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, LoginTimeout)
		defer cancel()
		s, err := loader.Login(ctx, email, password)
		return loginMsg{session: s, err: err}
	}
}

// executeCmd runs a submitted dialog off the UI goroutine. The refetch that
// follows a successful mutation runs here too.
func executeCmd(ctx context.Context, d *actions.Dispatcher, target actions.Target, req actions.Request) tea.Cmd {
	return func() tea.Msg {
		res := d.Execute(ctx, target, req)
		return actionMsg{result: res, toast: d.Finish(ctx, res)}
	}
}

func readActivityCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, ActivityLineLimit)
		return activityMsg{entries: entries, err: err}
	}
}

// loadTracker owns the cancel functions of in-flight screen loads. It is only
// touched from Update, so it needs no locking.
type loadTracker struct {
	seq      uint64
	inflight map[string]inflightLoad
}

type inflightLoad struct {
	seq    uint64
	cancel context.CancelFunc
}

func newLoadTracker() *loadTracker {
	return &loadTracker{inflight: make(map[string]inflightLoad)}
}

// start cancels any load of screen still running and returns the context and
// sequence number of a new one.
func (t *loadTracker) start(parent context.Context, screen string) (context.Context, uint64) {
	t.cancel(screen)
	ctx, cancel := context.WithCancel(parent)
	t.seq++
	t.inflight[screen] = inflightLoad{seq: t.seq, cancel: cancel}
	return ctx, t.seq
}

// finish releases the load and reports whether it was still the current one
// for its screen.
func (t *loadTracker) finish(screen string, seq uint64) bool {
	load, ok := t.inflight[screen]
	if !ok || load.seq != seq {
		return false
	}
	load.cancel()
	delete(t.inflight, screen)
	return true
}

func (t *loadTracker) cancel(screen string) {
	if load, ok := t.inflight[screen]; ok {
		load.cancel()
		delete(t.inflight, screen)
	}
}

func (t *loadTracker) cancelAll() {
	for screen := range t.inflight {
		t.cancel(screen)
	}
}

func (t *loadTracker) busy(screen string) bool {
	_, ok := t.inflight[screen]
	return ok
}
