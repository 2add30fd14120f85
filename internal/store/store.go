package store

import (
	"context"

	"github.com/raccoon129/xires-notify/internal/model"
)

// Cache is the local persistence interface for notifications. It is a
// write-through cache of the server's collection: populated on each
// successful full fetch, consulted only once at startup so the panel
// can show last-known data before the first fetch lands, and cleared
// for a user on logout.
type Cache interface {
	// ReplaceNotifications overwrites the cached collection for userID.
	ReplaceNotifications(
		ctx context.Context, userID string, ns []model.Notification,
	) error

	// Notifications returns the cached collection for userID, newest
	// first.
	Notifications(ctx context.Context, userID string) ([]model.Notification, error)

	// MarkNotificationRead flips a single cached notification to read.
	MarkNotificationRead(ctx context.Context, userID, id string) error

	// MarkAllNotificationsRead flips every cached notification for
	// userID to read.
	MarkAllNotificationsRead(ctx context.Context, userID string) error

	// ClearUser removes all cached notifications for userID.
	ClearUser(ctx context.Context, userID string) error
}
