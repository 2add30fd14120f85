// Package notify owns the local copy of the signed-in user's
// notifications: the collection, the unread counter, and the background
// refresh loop that keeps both approximately fresh.
package notify

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/raccoon129/xires-notify/internal/api"
	"github.com/raccoon129/xires-notify/internal/model"
	"github.com/raccoon129/xires-notify/internal/store"
)

// Snapshot is a point-in-time copy of the store's state, safe for the
// UI to render without holding any lock.
type Snapshot struct {
	Identity      model.Identity
	Notifications []model.Notification
	UnreadCount   int
	Loading       bool

	// Err is the last user-facing refresh failure. It never clears
	// existing data; the panel renders it alongside the last-known
	// collection with a retry affordance.
	Err error
}

// Store holds the authoritative local copy of notifications for the
// current session. Presentation code never mutates the collection
// directly; every transition goes through a Store method.
type Store struct {
	client *api.Client
	cache  store.Cache

	mu            sync.Mutex
	identity      model.Identity
	notifications []model.Notification
	unreadCount   int
	loading       bool
	lastErr       error

	// loaded reports whether a full fetch has succeeded this session.
	// A malformed response only wipes state while it is false.
	loaded bool

	// generation is bumped on every session transition. Async work
	// captures it before the network call and re-checks it before
	// applying results, so a response that lands after logout (or
	// after the next login) is discarded instead of mutating state
	// that belongs to a different session.
	generation uint64
}

// NewStore creates a notification store. The cache may be nil, in which
// case the store works purely in memory.
func NewStore(client *api.Client, cache store.Cache) *Store {
	return &Store{client: client, cache: cache}
}

// StartSession binds the store to an authenticated identity and primes
// the collection from the offline cache, so the panel has last-known
// data before the first fetch lands. A non-authenticated identity is
// ignored.
func (s *Store) StartSession(ctx context.Context, id model.Identity) {
	if !id.Authenticated {
		return
	}

	s.mu.Lock()
	s.generation++
	s.identity = id
	s.notifications = nil
	s.unreadCount = 0
	s.loading = true
	s.lastErr = nil
	s.loaded = false
	s.mu.Unlock()

	if s.cache == nil {
		return
	}

	cached, err := s.cache.Notifications(ctx, id.UserID)
	if err != nil {
		log.Printf("notify: loading cached notifications: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity.UserID != id.UserID {
		return
	}
	s.notifications = cached
	s.unreadCount = model.CountUnread(cached)
}

// Reset tears the session down: the collection, counter, loading flag,
// and error are all cleared, and the generation is bumped so any
// in-flight fetch result is discarded on arrival. The offline cache for
// the departing user is cleared as well.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	departing := s.identity
	s.generation++
	s.identity = model.Anonymous
	s.notifications = nil
	s.unreadCount = 0
	s.loading = false
	s.lastErr = nil
	s.loaded = false
	s.mu.Unlock()

	if s.cache != nil && departing.Authenticated {
		if err := s.cache.ClearUser(ctx, departing.UserID); err != nil {
			log.Printf("notify: clearing cache on logout: %v", err)
		}
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	notifications := make([]model.Notification, len(s.notifications))
	copy(notifications, s.notifications)

	return Snapshot{
		Identity:      s.identity,
		Notifications: notifications,
		UnreadCount:   s.unreadCount,
		Loading:       s.loading,
		Err:           s.lastErr,
	}
}

// Refresh performs a full fetch and replaces the entire local
// collection. It is a no-op when the session is not authenticated. On
// transport failure the last-known collection is preserved and the
// error surfaces to the panel; on a malformed response the state is
// only wiped when nothing was loaded yet.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	id := s.identity
	gen := s.generation
	if !id.Authenticated {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()

	page, err := s.client.Notifications(ctx, id.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// Session changed while the request was in flight.
		return
	}
	s.loading = false

	if err != nil {
		if errors.Is(err, api.ErrNoToken) {
			return
		}
		if api.IsDecodeError(err) {
			log.Printf("notify: malformed notifications response: %v", err)
			if !s.loaded {
				s.notifications = nil
				s.unreadCount = 0
			}
			return
		}
		s.lastErr = errors.New("could not refresh notifications")
		log.Printf("notify: refresh failed: %v", err)
		return
	}

	s.notifications = page.Notifications
	if page.UnreadCount != nil {
		s.unreadCount = *page.UnreadCount
	} else {
		s.unreadCount = model.CountUnread(page.Notifications)
	}
	s.lastErr = nil
	s.loaded = true

	if s.cache != nil {
		err := s.cache.ReplaceNotifications(ctx, id.UserID, page.Notifications)
		if err != nil {
			log.Printf("notify: caching notifications: %v", err)
		}
	}
}

// RefreshCount performs the lightweight counter-only refresh. It never
// touches the collection and fails silently: a background poll tick
// must not produce user-visible noise.
func (s *Store) RefreshCount(ctx context.Context) {
	s.mu.Lock()
	id := s.identity
	gen := s.generation
	s.mu.Unlock()

	if !id.Authenticated {
		return
	}

	count, err := s.client.UnreadCount(ctx, id.UserID)
	if err != nil {
		log.Printf("notify: unread count poll failed: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.unreadCount = count
}

// MarkRead optimistically flips one notification to read and decrements
// the unread counter, floored at zero, then tells the server. The local
// flip is not rolled back when the request fails; the discrepancy
// self-heals on the next full refresh. Marking an already-read (or
// unknown) notification is a no-op.
func (s *Store) MarkRead(ctx context.Context, id string) {
	s.mu.Lock()
	identity := s.identity

	flipped := false
	for i := range s.notifications {
		if s.notifications[i].ID != id {
			continue
		}
		if !s.notifications[i].Read {
			s.notifications[i].Read = true
			if s.unreadCount > 0 {
				s.unreadCount--
			}
			flipped = true
		}
		break
	}
	s.mu.Unlock()

	if !flipped || !identity.Authenticated {
		return
	}

	if s.cache != nil {
		err := s.cache.MarkNotificationRead(ctx, identity.UserID, id)
		if err != nil {
			log.Printf("notify: caching read state: %v", err)
		}
	}

	if err := s.client.MarkRead(ctx, identity.UserID, id); err != nil {
		// Accepted staleness: no rollback, the next full refresh
		// reconciles.
		log.Printf("notify: mark-read request failed: %v", err)
	}
}

// MarkAllRead optimistically flips every notification to read and
// zeroes the counter, then issues one bulk request. As with MarkRead,
// a failed request is not rolled back.
func (s *Store) MarkAllRead(ctx context.Context) {
	s.mu.Lock()
	identity := s.identity
	changed := false
	for i := range s.notifications {
		if !s.notifications[i].Read {
			s.notifications[i].Read = true
			changed = true
		}
	}
	s.unreadCount = 0
	s.mu.Unlock()

	if !identity.Authenticated {
		return
	}

	if changed && s.cache != nil {
		err := s.cache.MarkAllNotificationsRead(ctx, identity.UserID)
		if err != nil {
			log.Printf("notify: caching read state: %v", err)
		}
	}

	if err := s.client.MarkAllRead(ctx, identity.UserID); err != nil {
		log.Printf("notify: mark-all-read request failed: %v", err)
	}
}
