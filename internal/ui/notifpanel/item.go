package notifpanel

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/raccoon129/xires-notify/internal/model"
	"github.com/raccoon129/xires-notify/internal/present"
	"github.com/raccoon129/xires-notify/internal/theme"
)

// NotificationItem wraps a model.Notification so it can be used in a
// bubbles/list.
type NotificationItem struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i NotificationItem) FilterValue() string {
	return i.Notification.Message
}

// Title returns the notification message for the list.
func (i NotificationItem) Title() string {
	return i.Notification.Message
}

// Description returns a short summary line for the list.
func (i NotificationItem) Description() string {
	d := present.Classify(i.Notification, time.Now())
	return fmt.Sprintf("%s %s", string(i.Notification.Kind), d.TimeLabel)
}

// ItemDelegate implements list.ItemDelegate for rendering notifications.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(NotificationItem)
	if !ok {
		return
	}

	fmt.Fprint(w, renderLine(ni.Notification, index == m.Index()))
}

// renderLine formats one notification with its kind badge, read marker,
// and relative time.
func renderLine(n model.Notification, selected bool) string {
	display := present.Classify(n, time.Now())

	kindBadge := theme.KindStyle(n.Kind).Render(display.Icon)

	marker := "●"
	message := n.Message
	if n.Read {
		marker = " "
		message = theme.ReadItemStyle.Render(message)
	} else {
		message = theme.UnreadItemStyle.Render(message)
	}

	timeLabel := theme.HelpStyle.Render(display.TimeLabel)

	line := fmt.Sprintf("%s %s %s  %s", marker, kindBadge, message, timeLabel)

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
