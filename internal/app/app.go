// Package app wires the session, the notification store, and the views
// into the root Bubble Tea model. The poller's lifetime is bound to the
// session here: it is created at login and stopped at logout, never by
// a view's mount state.
package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raccoon129/xires-notify/internal/keys"
	"github.com/raccoon129/xires-notify/internal/model"
	"github.com/raccoon129/xires-notify/internal/notify"
	"github.com/raccoon129/xires-notify/internal/session"
	"github.com/raccoon129/xires-notify/internal/theme"
	"github.com/raccoon129/xires-notify/internal/ui/login"
	"github.com/raccoon129/xires-notify/internal/ui/notifpanel"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewPanel
)

// teardownTimeout bounds the cache cleanup performed at logout.
const teardownTimeout = 5 * time.Second

// Model is the root Bubble Tea model.
type Model struct {
	currentView ViewState
	session     *session.Resolver
	store       *notify.Store
	poller      *notify.Poller
	interval    time.Duration
	keys        *keys.KeyMap

	panel     notifpanel.Model
	loginView login.Model

	identity  model.Identity
	statusMsg string
	width     int
	height    int
}

// Options carries the collaborators the root model needs.
type Options struct {
	Session      *session.Resolver
	Store        *notify.Store
	Login        login.Model
	PollInterval time.Duration
	SummaryLimit int
}

// New creates the root application model. If a persisted token resolves
// to an authenticated identity, the app starts directly on the panel.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	identity := opts.Session.Resolve()

	m := Model{
		currentView: ViewLogin,
		session:     opts.Session,
		store:       opts.Store,
		interval:    opts.PollInterval,
		keys:        k,
		panel:       notifpanel.New(opts.Store, k, opts.SummaryLimit, 80, 24),
		loginView:   opts.Login,
		identity:    identity,
	}

	if identity.Authenticated {
		m.currentView = ViewPanel
	}

	return m
}

// Init starts the login form, or the session poller when a valid token
// was already persisted.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewPanel {
		return m.startSession(m.identity)
	}
	return m.loginView.Init()
}

// startSession primes the store for the identity, creates a fresh
// poller, and subscribes to its updates.
func (m *Model) startSession(id model.Identity) tea.Cmd {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	m.identity = id
	m.store.StartSession(ctx, id)
	m.poller = notify.NewPoller(m.store, m.interval)

	var cmd tea.Cmd
	m.panel, cmd = m.panel.SetSnapshot(m.store.Snapshot())

	return tea.Batch(cmd, m.poller.Start())
}

// endSession stops the poller, clears the store and the persisted
// token, and returns to the login view.
func (m *Model) endSession() tea.Cmd {
	if m.poller != nil {
		m.poller.Stop()
		m.poller = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	m.store.Reset(ctx)
	if err := m.session.Clear(); err != nil {
		m.statusMsg = fmt.Sprintf("logout: %v", err)
	}

	m.identity = model.Anonymous
	m.currentView = ViewLogin

	var cmd tea.Cmd
	m.panel, cmd = m.panel.SetSnapshot(m.store.Snapshot())
	return tea.Batch(cmd, m.loginView.Init())
}

// Update handles messages for the root model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.panel.SetSize(msg.Width, msg.Height-2)
		var cmd tea.Cmd
		m.loginView, cmd = m.loginView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.currentView == ViewPanel {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		} else if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case notify.UpdatedMsg:
		var cmd tea.Cmd
		m.panel, cmd = m.panel.SetSnapshot(msg.Snapshot)
		if m.poller != nil {
			return m, tea.Batch(cmd, m.poller.WaitForNextResult())
		}
		return m, cmd

	case login.ResultMsg:
		if msg.Err != nil {
			var cmd tea.Cmd
			m.loginView, cmd = m.loginView.Update(msg)
			return m, cmd
		}
		m.currentView = ViewPanel
		m.statusMsg = ""
		return m, m.startSession(msg.Identity)

	case notifpanel.RefreshRequestMsg:
		if m.poller != nil {
			m.poller.Refresh()
		}
		return m, nil

	case notifpanel.LogoutRequestMsg:
		return m, m.endSession()

	case notifpanel.NavigateMsg:
		m.statusMsg = "→ " + msg.Target
		return m, nil
	}

	return m.updateActiveView(msg)
}

// updateActiveView routes a message to whichever view is showing.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewPanel:
		m.panel, cmd = m.panel.Update(msg)
	}
	return m, cmd
}

// View renders the active view with the shared header and status bar.
func (m Model) View() string {
	if m.currentView == ViewLogin {
		return m.loginView.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.panel.View(),
		m.renderStatusBar(),
	)
}

// renderHeader draws the application title, the signed-in user, and the
// unread badge.
func (m Model) renderHeader() string {
	title := theme.HeaderStyle.Render("Axotl Xires")

	who := m.identity.DisplayName
	if who == "" {
		who = m.identity.UserID
	}
	user := theme.HelpStyle.Render(" " + who)

	snap := m.store.Snapshot()
	badge := ""
	if snap.UnreadCount > 0 {
		badge = " " + theme.UnreadBadgeStyle.Render(
			fmt.Sprintf("%d unread", snap.UnreadCount),
		)
	}

	return title + user + badge
}

// renderStatusBar draws the bottom bar with the last status message and
// key hints.
func (m Model) renderStatusBar() string {
	hints := theme.HelpStyle.Render(
		"enter open · m read · a all read · r refresh · tab list · L logout · q quit",
	)
	if m.statusMsg == "" {
		return hints
	}
	return theme.StatusBarStyle.Render(m.statusMsg) + " " + hints
}
