// Package api talks to the Axotl Xires platform API over HTTP. It owns
// the wire schema; callers only ever see typed model values or errors.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/raccoon129/xires-notify/internal/model"
)

// NotificationPage is the result of a full notification fetch.
type NotificationPage struct {
	Notifications []model.Notification

	// UnreadCount is the server-supplied counter when present. When
	// nil the caller derives the count from the collection.
	UnreadCount *int
}

// Notifications fetches the full notification collection for userID.
func (c *Client) Notifications(
	ctx context.Context,
	userID string,
) (*NotificationPage, error) {
	var envelope notificationsEnvelope
	path := fmt.Sprintf("/notifications/%s", userID)
	if err := c.Get(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}

	if envelope.Data == nil {
		return nil, &DecodeError{
			Op:  "GET " + path,
			Err: errors.New("response has no data field"),
		}
	}

	notifications := make(
		[]model.Notification, 0, len(envelope.Data.Notifications),
	)
	for _, raw := range envelope.Data.Notifications {
		notifications = append(notifications, raw.toModel())
	}

	return &NotificationPage{
		Notifications: notifications,
		UnreadCount:   envelope.Data.UnreadCount,
	}, nil
}

// UnreadCount fetches only the unread counter for userID.
func (c *Client) UnreadCount(
	ctx context.Context,
	userID string,
) (int, error) {
	var envelope unreadCountEnvelope
	path := fmt.Sprintf("/notifications/%s/unread-count", userID)
	if err := c.Get(ctx, path, &envelope); err != nil {
		return 0, fmt.Errorf("fetching unread count: %w", err)
	}

	if envelope.Data == nil {
		return 0, &DecodeError{
			Op:  "GET " + path,
			Err: errors.New("response has no data field"),
		}
	}

	return envelope.Data.UnreadCount, nil
}

// MarkRead marks a single notification as read on the server.
func (c *Client) MarkRead(
	ctx context.Context,
	userID string,
	notificationID string,
) error {
	path := fmt.Sprintf("/notifications/%s/%s", userID, notificationID)
	if err := c.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking notification %s read: %w", notificationID, err)
	}
	return nil
}

// MarkAllRead marks every notification for userID as read on the server.
func (c *Client) MarkAllRead(ctx context.Context, userID string) error {
	path := fmt.Sprintf("/notifications/%s/all/read", userID)
	if err := c.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}
