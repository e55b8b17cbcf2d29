package ui

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/brokerdesk/internal/actions"
	"github.com/five82/brokerdesk/internal/catalog"
	"github.com/five82/brokerdesk/internal/logging"
	"github.com/five82/brokerdesk/internal/prefs"
	"github.com/five82/brokerdesk/internal/session"
	"github.com/five82/brokerdesk/internal/state"
	"github.com/five82/brokerdesk/internal/tableview"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewTable
	ViewActivity
)

// Loader fetches screen collections into the store and manages sign-in.
type Loader interface {
	Load(ctx context.Context, screen catalog.Screen) error
	Login(ctx context.Context, email, password string) (session.Session, error)
	Logout() error
}

// Active tracks the screen on display so a background poller can follow it.
// The zero value has no screen.
type Active struct {
	mu     sync.RWMutex
	screen catalog.Screen
	ok     bool
}

// Set records screen as the one on display.
func (a *Active) Set(screen catalog.Screen) {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.screen, a.ok = screen, true
	a.mu.Unlock()
}

// Clear records that no screen is on display.
func (a *Active) Clear() {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.screen, a.ok = catalog.Screen{}, false
	a.mu.Unlock()
}

// Get returns the screen on display.
func (a *Active) Get() (catalog.Screen, bool) {
	if a == nil {
		return catalog.Screen{}, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.screen, a.ok
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Loader     Loader
	Store      *state.Store
	Session    *session.Manager
	Dispatcher *actions.Dispatcher
	Prefs      prefs.Prefs
	PrefsPath  string
	LogPath    string
	PageSize   tableview.PageSize // default for screens that paginate
	PollTick   time.Duration
	Active     *Active
	Logger     *zap.Logger
}

// tableState is the per-screen filter state and selection. It lives until
// the session ends.
type tableState struct {
	view       tableview.State
	selected   int
	selectedID string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	loader      Loader
	store       *state.Store
	sessions    *session.Manager
	dispatcher  *actions.Dispatcher
	logger      *zap.Logger
	prefs       prefs.Prefs
	prefsPath   string
	logPath     string
	pageSize    tableview.PageSize
	pollTick    time.Duration
	active      *Active
	ended       chan string
	unsubscribe func()
	now         func() time.Time
	keys        keyMap

	// UI state
	theme    Theme
	view     View
	width    int
	height   int
	ready    bool
	showHelp bool
	spinner  spinner.Model

	// Session state
	session session.Session
	screens []catalog.Screen
	current int
	tables  map[string]*tableState
	loads   *loadTracker

	// Data state
	snapshot       state.Snapshot
	snapshotScreen string

	// Search
	searching bool
	search    textinput.Model

	// Overlays
	login    loginForm
	dialog   *actions.Dialog
	form     formState
	filters  filterModal
	activity activityState
	toast    actions.Toast
}

// New creates a new Bubble Tea model. A valid session in opts.Session opens
// the role's home screen; otherwise the login form is shown.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "Search..."
	search.CharLimit = 100

	m := Model{
		ctx:        ctx,
		loader:     opts.Loader,
		store:      opts.Store,
		sessions:   opts.Session,
		dispatcher: opts.Dispatcher,
		logger:     logging.OrNop(opts.Logger),
		prefs:      opts.Prefs,
		prefsPath:  prefsPath,
		logPath:    opts.LogPath,
		pageSize:   opts.PageSize,
		pollTick:   pollTick,
		active:     opts.Active,
		now:        time.Now,
		keys:       DefaultKeyMap(),
		theme:      GetTheme(opts.Prefs.Theme),
		view:       ViewLogin,
		spinner:    sp,
		tables:     make(map[string]*tableState),
		loads:      newLoadTracker(),
		search:     search,
		login:      newLoginForm(),
		dialog:     &actions.Dialog{},
		activity:   newActivityState(),
	}

	if opts.Session != nil {
		ended := make(chan string, 1)
		m.ended = ended
		m.unsubscribe = opts.Session.Subscribe(func(reason string) {
			select {
			case ended <- reason:
			default:
			}
		})
		if s := opts.Session.Current(); s.Valid() {
			m.enterSession(s)
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		m.spinner.Tick,
		waitForSessionEnd(m.ctx, m.ended),
	}
	if screen, ok := m.currentScreen(); ok {
		cmds = append(cmds, m.loadScreen(screen))
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeActivity()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		return m.handleLoaded(msg)

	case loginMsg:
		return m.handleLogin(msg)

	case actionMsg:
		return m.handleAction(msg)

	case sessionEndedMsg:
		return m.handleSessionEnded(msg)

	case activityMsg:
		m.handleActivity(msg)
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.view == ViewLogin {
		return m.renderLogin()
	}
	if m.dialog.Phase() != actions.Closed {
		return m.renderDialog()
	}
	if m.filters.open {
		return m.renderFilters()
	}
	return m.renderMain()
}

// handleKey processes keyboard input. Overlays take keys before the views.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case m.view == ViewLogin:
		return m.handleLoginKey(msg)
	case m.dialog.Phase() != actions.Closed:
		return m.handleDialogKey(msg)
	case m.filters.open:
		return m.handleFiltersKey(msg)
	case m.searching:
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.NextScreen):
		return m.switchScreen(1)

	case key.Matches(msg, m.keys.PrevScreen):
		return m.switchScreen(-1)

	case key.Matches(msg, m.keys.Logout):
		return m.logout()

	case key.Matches(msg, m.keys.Activity):
		if m.view == ViewActivity {
			m.view = ViewTable
			m.syncSnapshot()
			return m, nil
		}
		m.view = ViewActivity
		return m, readActivityCmd(m.logPath)
	}

	switch m.view {
	case ViewActivity:
		return m.handleActivityKey(msg)
	default:
		return m.handleTableKey(msg)
	}
}

// handleTick refreshes the view from the store and schedules the next tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	switch m.view {
	case ViewTable:
		m.syncSnapshot()
	case ViewActivity:
		if m.activity.follow {
			cmds = append(cmds, readActivityCmd(m.logPath))
		}
	}
	return m, tea.Batch(cmds...)
}

// handleLoaded folds a finished load into the view. Superseded and cancelled
// loads change nothing.
func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if !m.loads.finish(msg.screen, msg.seq) {
		return m, nil
	}
	if errors.Is(msg.err, context.Canceled) {
		return m, nil
	}
	m.syncSnapshot()
	return m, nil
}

// handleAction resolves the open dialog with a dispatched result.
func (m Model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	m.dialog.Resolve(msg.result.Err)
	m.toast = msg.toast
	if m.dialog.Phase() == actions.Closed {
		m.form = formState{}
	}
	if msg.result.Err == nil {
		m.syncSnapshot()
	}
	return m, nil
}

// handleSessionEnded returns to the login form after the session was
// invalidated, by logout or by a rejected token.
func (m Model) handleSessionEnded(msg sessionEndedMsg) (tea.Model, tea.Cmd) {
	next := waitForSessionEnd(m.ctx, m.ended)
	if m.view == ViewLogin && !m.session.Valid() {
		return m, next
	}
	m.leaveSession()
	m.notify(actions.LevelError, msg.reason)
	m.login.err = "Your session has ended. Please log in again."
	cmd := m.login.focus(0)
	return m, tea.Batch(next, cmd)
}

// logout ends the session on request.
func (m Model) logout() (tea.Model, tea.Cmd) {
	if m.loader != nil {
		if err := m.loader.Logout(); err != nil {
			m.logger.Warn("logout", zap.Error(err))
		}
	}
	m.leaveSession()
	m.notify(actions.LevelInfo, "Signed out")
	cmd := m.login.focus(0)
	return m, cmd
}

// enterSession opens the role's screens at its home screen.
func (m *Model) enterSession(s session.Session) {
	m.session = s
	m.screens = catalog.ForRole(s.Role)
	if len(m.screens) == 0 {
		return
	}
	m.current = 0
	home := catalog.Route(s, catalog.LoginRoute)
	for i, screen := range m.screens {
		if screen.ID == home {
			m.current = i
		}
	}
	m.tables = make(map[string]*tableState, len(m.screens))
	m.snapshot = state.Snapshot{}
	m.snapshotScreen = ""
	m.view = ViewTable
	m.active.Set(m.screens[m.current])
}

// leaveSession drops everything that belonged to the session.
func (m *Model) leaveSession() {
	m.loads.cancelAll()
	m.active.Clear()
	m.session = session.Session{}
	m.screens = nil
	m.current = 0
	m.tables = make(map[string]*tableState)
	m.snapshot = state.Snapshot{}
	m.snapshotScreen = ""
	m.dialog = &actions.Dialog{}
	m.form = formState{}
	m.filters = filterModal{}
	m.searching = false
	m.search.Blur()
	m.view = ViewLogin
	m.login.reset()
}

// currentScreen returns the screen on display.
func (m Model) currentScreen() (catalog.Screen, bool) {
	if m.current < 0 || m.current >= len(m.screens) {
		return catalog.Screen{}, false
	}
	return m.screens[m.current], true
}

// switchScreen moves delta screens along the role's screen list, cancels the
// load of the screen being left, and fetches the new one.
func (m Model) switchScreen(delta int) (tea.Model, tea.Cmd) {
	if len(m.screens) == 0 {
		return m, nil
	}
	if prev, ok := m.currentScreen(); ok {
		m.loads.cancel(prev.ID)
	}
	m.current = (m.current + delta + len(m.screens)) % len(m.screens)
	m.view = ViewTable
	screen := m.screens[m.current]
	m.active.Set(screen)
	m.syncSnapshot()
	return m, m.loadScreen(screen)
}

// loadScreen starts a cancellable fetch of screen, replacing any fetch of the
// same screen still in flight.
func (m Model) loadScreen(screen catalog.Screen) tea.Cmd {
	if m.loader == nil {
		return nil
	}
	ctx, seq := m.loads.start(m.ctx, screen.ID)
	loader := m.loader
	return func() tea.Msg {
		return loadedMsg{screen: screen.ID, seq: seq, err: loader.Load(ctx, screen)}
	}
}

// syncSnapshot copies the current screen's snapshot out of the store. A
// snapshot older than the one on display is ignored.
func (m *Model) syncSnapshot() {
	screen, ok := m.currentScreen()
	if !ok || m.store == nil {
		return
	}
	snap := m.store.Snapshot(screen.ID)
	if screen.ID == m.snapshotScreen && snap.Generation < m.snapshot.Generation {
		return
	}
	m.snapshot = snap
	m.snapshotScreen = screen.ID
	m.clampSelection()
}

// table returns the state of screen, creating it on first use.
func (m *Model) table(screen catalog.Screen) *tableState {
	if ts, ok := m.tables[screen.ID]; ok {
		return ts
	}
	ts := &tableState{view: tableview.NewState(m.initialPageSize(screen))}
	m.tables[screen.ID] = ts
	return ts
}

// initialPageSize picks the remembered size, then the configured default,
// then the screen's own default. Screens that show everything keep doing so
// unless the user chose otherwise.
func (m Model) initialPageSize(screen catalog.Screen) tableview.PageSize {
	fallback := screen.PageSize
	if m.pageSize != 0 && !screen.PageSize.IsAll() {
		fallback = m.pageSize
	}
	return m.prefs.PageSize(screen.ID, fallback)
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save preferences", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

// notify replaces the toast.
func (m *Model) notify(level actions.Level, text string) {
	m.toast = actions.NewToast(level, text, m.now(), actions.DefaultToastTTL)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	if m.unsubscribe != nil {
		defer m.unsubscribe()
	}
	defer m.loads.cancelAll()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
