package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccoon129/xires-notify/internal/model"
	"github.com/raccoon129/xires-notify/tests/testutil"
)

func sampleNotifications() []model.Notification {
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	return []model.Notification{
		{
			ID:        "1",
			Kind:      model.KindComment,
			Message:   "New comment on your publication",
			Read:      false,
			CreatedAt: base.Add(2 * time.Hour),
			Target:    "/publications/7",
			OriginID:  "7",
		},
		{
			ID:        "2",
			Kind:      model.KindFollow,
			Message:   "Someone followed you",
			Read:      true,
			CreatedAt: base,
		},
	}
}

func TestReplaceAndQueryNotifications(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceNotifications(ctx, "42", sampleNotifications()))

	got, err := s.Notifications(ctx, "42")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, model.KindComment, got[0].Kind)
	assert.False(t, got[0].Read)
	assert.Equal(t, "/publications/7", got[0].Target)
	assert.Equal(t, "7", got[0].OriginID)
	assert.Equal(t, "2", got[1].ID)
	assert.True(t, got[1].Read)

	// Replacement overwrites, never appends.
	require.NoError(t, s.ReplaceNotifications(ctx, "42", sampleNotifications()[:1]))
	got, err = s.Notifications(ctx, "42")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNotificationsAreScopedPerUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceNotifications(ctx, "42", sampleNotifications()))

	got, err := s.Notifications(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMarkNotificationRead(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceNotifications(ctx, "42", sampleNotifications()))
	require.NoError(t, s.MarkNotificationRead(ctx, "42", "1"))

	got, err := s.Notifications(ctx, "42")
	require.NoError(t, err)
	assert.True(t, got[0].Read)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceNotifications(ctx, "42", sampleNotifications()))
	require.NoError(t, s.MarkAllNotificationsRead(ctx, "42"))

	got, err := s.Notifications(ctx, "42")
	require.NoError(t, err)
	for _, n := range got {
		assert.True(t, n.Read)
	}
}

func TestClearUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceNotifications(ctx, "42", sampleNotifications()))
	require.NoError(t, s.ReplaceNotifications(ctx, "other", sampleNotifications()))

	require.NoError(t, s.ClearUser(ctx, "42"))

	got, err := s.Notifications(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, got)

	kept, err := s.Notifications(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, kept, 2)
}

func TestUnknownCachedKindFallsBack(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ns := sampleNotifications()
	ns[0].Kind = model.Kind("future-kind")
	require.NoError(t, s.ReplaceNotifications(ctx, "42", ns))

	got, err := s.Notifications(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, model.KindSystem, got[0].Kind)
}
