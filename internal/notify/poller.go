package notify

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// UpdatedMsg is a tea.Msg sent whenever the poller has changed the
// store's state. The panel re-renders from the carried snapshot.
type UpdatedMsg struct {
	Snapshot Snapshot
}

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// Poller keeps the store approximately fresh for the lifetime of one
// authenticated session. It runs one goroutine: a full refresh on
// start, then a counter-only refresh on every tick. A Poller is created
// at login and stopped at logout; cancellation is owned by the session
// lifecycle, never by a view's mount state.
type Poller struct {
	store    *Store
	interval time.Duration

	resultCh  chan UpdatedMsg
	triggerCh chan struct{}
	stopCh    chan struct{}

	mu      sync.Mutex
	running bool
}

// NewPoller creates a poller over the given store. A non-positive
// interval falls back to the two-minute default.
func NewPoller(s *Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	return &Poller{
		store:     s,
		interval:  interval,
		resultCh:  make(chan UpdatedMsg, 16),
		triggerCh: make(chan struct{}, 16),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a subscription
// command that delivers UpdatedMsg messages to the Bubble Tea runtime.
// Starting an already-running poller returns a fresh subscription only.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return p.waitForResult()
	}
	p.running = true
	p.mu.Unlock()

	go p.run()

	return p.waitForResult()
}

// Stop halts the polling goroutine. Any fetch already in flight is
// discarded by the store's generation check, so no state mutation can
// happen after Stop plus Store.Reset.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh requests an immediate full refresh without blocking.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already queued; skip to avoid blocking.
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next update.
// Call it after processing an UpdatedMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}

// run is the polling loop: an initial full fetch, then counter-only
// refreshes on the ticker and full refreshes on explicit triggers.
func (p *Poller) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fullRefresh()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.countRefresh()
		case <-p.triggerCh:
			p.fullRefresh()
		}
	}
}

// fullRefresh replaces the collection and publishes the new state.
func (p *Poller) fullRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	p.store.Refresh(ctx)
	p.publish()
}

// countRefresh updates only the unread counter and publishes.
func (p *Poller) countRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	p.store.RefreshCount(ctx)
	p.publish()
}

// publish sends the current snapshot without blocking the loop.
func (p *Poller) publish() {
	select {
	case p.resultCh <- UpdatedMsg{Snapshot: p.store.Snapshot()}:
	default:
		// Drop if the channel is full; the next update carries a
		// fresher snapshot anyway.
	}
}

// waitForResult returns a tea.Cmd that waits for the next update from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-p.resultCh:
			return msg
		case <-p.stopCh:
			return nil
		}
	}
}
