package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccoon129/xires-notify/internal/api"
)

// requestLog records which endpoints a fake server has seen.
type requestLog struct {
	mu    sync.Mutex
	paths []string
}

func (l *requestLog) add(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, path)
}

func (l *requestLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out
}

func (l *requestLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.paths)
}

func newPolledStore(t *testing.T, log *requestLog) *Store {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			log.add(r.URL.Path)
			if r.URL.Path == "/notifications/42/unread-count" {
				w.Write([]byte(`{"status":"success","data":{"unreadCount":1}}`))
				return
			}
			w.Write([]byte(notificationsBody("1", item("1", false))))
		},
	))
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, func() string { return "tok" })
	return NewStore(client, nil)
}

func TestPollerFullFetchThenCountOnlyTicks(t *testing.T) {
	log := &requestLog{}
	s := newPolledStore(t, log)
	s.StartSession(context.Background(), testIdentity)

	p := NewPoller(s, 30*time.Millisecond)
	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool {
		return log.count() >= 3
	}, 2*time.Second, 10*time.Millisecond)

	paths := log.snapshot()
	assert.Equal(t, "/notifications/42", paths[0],
		"the session starts with one full fetch")
	for _, path := range paths[1:] {
		assert.Equal(t, "/notifications/42/unread-count", path,
			"ticks refresh only the counter")
	}
}

func TestPollerManualRefreshIsFullFetch(t *testing.T) {
	log := &requestLog{}
	s := newPolledStore(t, log)
	s.StartSession(context.Background(), testIdentity)

	p := NewPoller(s, time.Hour)
	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool {
		return log.count() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	p.Refresh()

	require.Eventually(t, func() bool {
		return log.count() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	paths := log.snapshot()
	assert.Equal(t, "/notifications/42", paths[1])
}

func TestPollerStopCeasesAllRequests(t *testing.T) {
	log := &requestLog{}
	s := newPolledStore(t, log)
	s.StartSession(context.Background(), testIdentity)

	interval := 20 * time.Millisecond
	p := NewPoller(s, interval)
	p.Start()

	require.Eventually(t, func() bool {
		return log.count() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	p.Stop()
	s.Reset(context.Background())

	// Give any already-dispatched tick a moment to drain, then verify
	// silence for several polling intervals.
	time.Sleep(2 * interval)
	settled := log.count()

	time.Sleep(5 * interval)
	assert.Equal(t, settled, log.count(),
		"no network calls may happen after logout")

	snap := s.Snapshot()
	assert.Empty(t, snap.Notifications)
	assert.Zero(t, snap.UnreadCount)
}

func TestPollerStopIsIdempotent(t *testing.T) {
	s := newPolledStore(t, &requestLog{})
	p := NewPoller(s, time.Hour)

	p.Start()
	p.Stop()
	p.Stop()
}

func TestPollerDefaultsInterval(t *testing.T) {
	s := newPolledStore(t, &requestLog{})

	p := NewPoller(s, 0)

	assert.Equal(t, 120*time.Second, p.interval)
}
