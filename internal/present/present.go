// Package present maps raw notifications to display-ready attributes:
// an icon per kind, a human-readable relative time, and the summary
// truncation for the compact panel. Everything here is pure; state
// transitions stay in the notify package.
package present

import (
	"fmt"
	"sort"
	"time"

	"github.com/raccoon129/xires-notify/internal/model"
)

// UnknownDateLabel is shown when the server sent an unparseable
// creation timestamp.
const UnknownDateLabel = "unknown date"

// absoluteDateLayout formats notifications older than a week.
const absoluteDateLayout = "Jan 2, 2006"

// Display holds the render-ready attributes of one notification.
type Display struct {
	Icon      string
	TimeLabel string
	Target    string
}

// Classify derives display attributes for a notification relative to
// now. Unknown kinds already collapsed to the system kind at the API
// boundary, so every notification gets an icon.
func Classify(n model.Notification, now time.Time) Display {
	return Display{
		Icon:      KindIcon(n.Kind),
		TimeLabel: RelativeTime(n.CreatedAt, now),
		Target:    n.Target,
	}
}

// KindIcon returns the panel glyph for a notification kind.
func KindIcon(kind model.Kind) string {
	switch kind {
	case model.KindComment:
		return "✎"
	case model.KindFavorite:
		return "★"
	case model.KindFollow:
		return "➕"
	default:
		return "ℹ"
	}
}

// RelativeTime buckets the age of createdAt into a human-readable
// label. A zero createdAt yields the unknown-date sentinel; anything
// a week old or older shows an absolute short date instead.
func RelativeTime(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return UnknownDateLabel
	}

	age := now.Sub(createdAt)
	if age < time.Minute {
		return "just now"
	}

	minutes := int(age.Minutes())
	if minutes == 1 {
		return "1 minute ago"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d minutes ago", minutes)
	}

	hours := int(age.Hours())
	if hours == 1 {
		return "1 hour ago"
	}
	if hours < 24 {
		return fmt.Sprintf("%d hours ago", hours)
	}

	days := hours / 24
	if days == 1 {
		return "yesterday"
	}
	if days < 7 {
		return fmt.Sprintf("%d days ago", days)
	}

	return createdAt.Format(absoluteDateLayout)
}

// Summarize returns the limit most recent notifications plus the count
// of everything truncated away ("and K more"). The input is not
// mutated.
func Summarize(
	ns []model.Notification,
	limit int,
) ([]model.Notification, int) {
	if limit <= 0 || len(ns) <= limit {
		out := make([]model.Notification, len(ns))
		copy(out, ns)
		sortNewestFirst(out)
		return out, 0
	}

	out := make([]model.Notification, len(ns))
	copy(out, ns)
	sortNewestFirst(out)

	return out[:limit], len(ns) - limit
}

// MoreLabel formats the truncation remainder for the summary panel.
// A zero remainder renders as the empty string.
func MoreLabel(more int) string {
	if more <= 0 {
		return ""
	}
	return fmt.Sprintf("and %d more", more)
}

// sortNewestFirst orders notifications by creation time descending,
// with ties broken by id for stable rendering.
func sortNewestFirst(ns []model.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		if !ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].CreatedAt.After(ns[j].CreatedAt)
		}
		return ns[i].ID > ns[j].ID
	})
}
