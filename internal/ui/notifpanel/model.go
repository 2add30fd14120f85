package notifpanel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raccoon129/xires-notify/internal/keys"
	"github.com/raccoon129/xires-notify/internal/model"
	"github.com/raccoon129/xires-notify/internal/notify"
	"github.com/raccoon129/xires-notify/internal/present"
	"github.com/raccoon129/xires-notify/internal/theme"
)

// NavigateMsg is sent when an activated notification carries a deep
// link. Navigation is dispatched immediately; it never waits on the
// read mutation.
type NavigateMsg struct {
	Target string
}

// RefreshRequestMsg asks the session owner for an immediate full refresh.
type RefreshRequestMsg struct{}

// LogoutRequestMsg asks the session owner to tear the session down.
type LogoutRequestMsg struct{}

// opTimeout bounds the mutation requests dispatched from the panel.
const opTimeout = 10 * time.Second

// Model is the notification panel view. It renders either a compact
// summary (the most recent few plus an "and K more" line) or the full
// scrollable list.
type Model struct {
	list     list.Model
	store    *notify.Store
	keys     *keys.KeyMap
	help     help.Model
	snapshot notify.Snapshot

	// summary switches between the compact panel and the full list.
	summary bool

	// summaryLimit is how many items the compact panel shows.
	summaryLimit int

	width  int
	height int
}

// New creates a new notification panel over the given store.
func New(s *notify.Store, k *keys.KeyMap, summaryLimit, width, height int) Model {
	if summaryLimit <= 0 {
		summaryLimit = 4
	}

	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:         l,
		store:        s,
		keys:         k,
		help:         help.New(),
		summary:      true,
		summaryLimit: summaryLimit,
		width:        width,
		height:       height,
	}
}

// SetSnapshot replaces the rendered state with a fresh store snapshot.
func (m Model) SetSnapshot(snap notify.Snapshot) (Model, tea.Cmd) {
	m.snapshot = snap

	sorted, _ := present.Summarize(snap.Notifications, 0)
	items := make([]list.Item, len(sorted))
	for i, n := range sorted {
		items[i] = NotificationItem{Notification: n}
	}
	cmd := m.list.SetItems(items)
	return m, cmd
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeys processes key input for the panel.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(NotificationItem)
		if !ok {
			return m, nil
		}
		return m, m.activate(item.Notification)

	case key.Matches(msg, m.keys.MarkRead):
		item, ok := m.list.SelectedItem().(NotificationItem)
		if !ok {
			return m, nil
		}
		return m, m.markRead(item.Notification.ID)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.markAllRead()

	case key.Matches(msg, m.keys.Refresh):
		return m, func() tea.Msg { return RefreshRequestMsg{} }

	case key.Matches(msg, m.keys.ToggleSummary):
		m.summary = !m.summary
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		return m, func() tea.Msg { return LogoutRequestMsg{} }

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// activate runs the notification click flow: the read mutation is
// dispatched in its own command while the navigation message is emitted
// right away, so a slow mutation can never hold navigation hostage.
func (m Model) activate(n model.Notification) tea.Cmd {
	cmds := []tea.Cmd{}

	if !n.Read {
		cmds = append(cmds, m.markRead(n.ID))
	}

	if n.Target != "" {
		target := n.Target
		cmds = append(cmds, func() tea.Msg {
			return NavigateMsg{Target: target}
		})
	}

	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// markRead returns a command that applies the optimistic read flip and
// reports the resulting snapshot.
func (m Model) markRead(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		s.MarkRead(ctx, id)
		return notify.UpdatedMsg{Snapshot: s.Snapshot()}
	}
}

// markAllRead returns a command that flips everything to read and
// reports the resulting snapshot.
func (m Model) markAllRead() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		s.MarkAllRead(ctx)
		return notify.UpdatedMsg{Snapshot: s.Snapshot()}
	}
}

// View renders the panel.
func (m Model) View() string {
	if m.summary {
		return m.renderSummary()
	}

	sections := []string{}
	if m.snapshot.Err != nil {
		sections = append(sections, m.renderError())
	}

	if len(m.list.Items()) == 0 {
		sections = append(sections, m.renderEmptyState())
	} else {
		sections = append(sections, m.list.View())
	}

	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSummary draws the compact panel: the most recent items plus an
// "and K more" line when the collection is longer.
func (m Model) renderSummary() string {
	visible, more := present.Summarize(m.snapshot.Notifications, m.summaryLimit)

	var b strings.Builder

	if m.snapshot.Err != nil {
		b.WriteString(m.renderError())
		b.WriteString("\n")
	}

	if len(visible) == 0 {
		b.WriteString(theme.HelpStyle.Render("No notifications yet."))
		return theme.BorderStyle.Width(m.width - 2).Render(b.String())
	}

	for i, n := range visible {
		b.WriteString(renderLine(n, i == m.list.Index()))
		b.WriteString("\n")
	}

	if label := present.MoreLabel(more); label != "" {
		b.WriteString(theme.HelpStyle.Render(label))
	}

	return theme.BorderStyle.Width(m.width - 2).Render(
		strings.TrimRight(b.String(), "\n"),
	)
}

// renderError shows the inline failure message with its retry hint.
// It never replaces the collection below it.
func (m Model) renderError() string {
	return theme.ErrorStyle.Render(
		fmt.Sprintf("%v — press r to retry", m.snapshot.Err),
	)
}

// renderEmptyState shows guidance text when no notifications exist.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.snapshot.Loading {
		return style.Render("Loading notifications...")
	}
	return style.Render("No notifications yet.")
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.list.SetSize(width, height-2)
}
