package model

import "time"

// Kind classifies what platform event produced a notification.
type Kind string

const (
	KindComment  Kind = "comment"
	KindFavorite Kind = "favorite"
	KindFollow   Kind = "follow"
	KindSystem   Kind = "system"
)

// ParseKind maps a raw kind tag to a known Kind. Unrecognized or empty
// tags fall back to KindSystem so a new server-side kind never breaks
// the client.
func ParseKind(raw string) Kind {
	switch Kind(raw) {
	case KindComment, KindFavorite, KindFollow, KindSystem:
		return Kind(raw)
	default:
		return KindSystem
	}
}

// Notification represents a server-originated event relevant to the
// signed-in user (a comment on their publication, a new favorite, a new
// follower, or a system message).
type Notification struct {
	// ID is the unique, stable identifier assigned by the server.
	ID string `json:"id"`

	// Kind classifies the originating event.
	Kind Kind `json:"kind"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Read indicates whether the user has seen this notification.
	// It only ever transitions false -> true.
	Read bool `json:"read"`

	// CreatedAt is when the server generated the notification. A zero
	// value means the server sent an unparseable timestamp.
	CreatedAt time.Time `json:"created_at"`

	// Target is an optional deep link into the platform (e.g. the
	// publication the comment landed on).
	Target string `json:"target,omitempty"`

	// OriginID optionally references the entity that triggered the
	// notification, such as a publication id.
	OriginID string `json:"origin_id,omitempty"`
}

// CountUnread returns the number of notifications not yet read.
func CountUnread(ns []Notification) int {
	count := 0
	for _, n := range ns {
		if !n.Read {
			count++
		}
	}
	return count
}
