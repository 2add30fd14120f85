package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccoon129/xires-notify/internal/model"
)

func staticToken(token string) TokenFunc {
	return func() string { return token }
}

func TestNotificationsDecodesTolerantly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/notifications/42", r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

			w.Header().Set("Content-Type", "application/json")
			// Mixed id and read-flag representations, an unknown
			// kind, and an unparseable timestamp.
			w.Write([]byte(`{
				"status": "success",
				"data": {
					"notifications": [
						{"id": 1, "kind": "comment", "message": "a", "read": 0,
						 "created_at": "2026-08-29T10:00:00Z", "origin_id": 7},
						{"id": "2", "kind": "applause", "message": "b", "read": true,
						 "created_at": "garbage", "target": "/publications/7"}
					],
					"unreadCount": 1
				}
			}`))
		},
	))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	page, err := c.Notifications(context.Background(), "42")
	require.NoError(t, err)

	require.Len(t, page.Notifications, 2)
	require.NotNil(t, page.UnreadCount)
	assert.Equal(t, 1, *page.UnreadCount)

	first := page.Notifications[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, model.KindComment, first.Kind)
	assert.False(t, first.Read)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, "7", first.OriginID)

	second := page.Notifications[1]
	assert.Equal(t, "2", second.ID)
	assert.Equal(t, model.KindSystem, second.Kind, "unknown kind falls back to system")
	assert.True(t, second.Read)
	assert.True(t, second.CreatedAt.IsZero(), "unparseable timestamp becomes zero time")
	assert.Equal(t, "/publications/7", second.Target)
}

func TestNotificationsWithoutServerCounter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"success","data":{"notifications":[]}}`))
		},
	))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	page, err := c.Notifications(context.Background(), "42")
	require.NoError(t, err)

	assert.Nil(t, page.UnreadCount)
}

func TestMissingTokenShortCircuits(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		},
	))
	defer server.Close()

	c := NewClient(server.URL, staticToken(""))

	_, err := c.Notifications(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = c.UnreadCount(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNoToken)

	err = c.MarkRead(context.Background(), "42", "1")
	assert.ErrorIs(t, err, ErrNoToken)

	err = c.MarkAllRead(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNoToken)

	assert.Zero(t, requests.Load(), "no unauthenticated request may reach the wire")
}

func TestUnauthorizedBecomesAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	))
	defer server.Close()

	c := NewClient(server.URL, staticToken("stale"))
	_, err := c.Notifications(context.Background(), "42")

	assert.True(t, IsAuthError(err))
}

func TestMalformedBodyBecomesDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>definitely not json</html>`))
		},
	))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	_, err := c.Notifications(context.Background(), "42")

	assert.True(t, IsDecodeError(err))
}

func TestMissingDataFieldBecomesDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"success"}`))
		},
	))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))

	_, err := c.Notifications(context.Background(), "42")
	assert.True(t, IsDecodeError(err))

	_, err = c.UnreadCount(context.Background(), "42")
	assert.True(t, IsDecodeError(err))
}

func TestMarkReadTargetsOneNotification(t *testing.T) {
	var path atomic.Value
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			path.Store(r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		},
	))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))

	require.NoError(t, c.MarkRead(context.Background(), "42", "9"))
	assert.Equal(t, "/notifications/42/9", path.Load())

	require.NoError(t, c.MarkAllRead(context.Background(), "42"))
	assert.Equal(t, "/notifications/42/all/read", path.Load())
}

func TestRetryOn429(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"status":"success","data":{"unreadCount":3}}`))
		},
	))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	count, err := c.UnreadCount(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, 3, count)
	assert.Equal(t, int64(2), attempts.Load())
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/auth/login", r.URL.Path)
			assert.Empty(t, r.Header.Get("Authorization"))
			w.Write([]byte(`{"status":"success","data":{"token":"issued-token"}}`))
		},
	))
	defer server.Close()

	c := NewClient(server.URL, staticToken(""))
	token, err := c.Login(context.Background(), "dana@example.com", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "issued-token", token)
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	))
	defer server.Close()

	c := NewClient(server.URL, staticToken(""))
	_, err := c.Login(context.Background(), "dana@example.com", "wrong")

	assert.True(t, IsAuthError(err))
}
