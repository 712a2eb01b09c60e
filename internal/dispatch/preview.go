// README: Debounced, token-guarded route preview coordinator (the form's live map overlay).
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fleetops/internal/routing"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// preview request is issued.
const DefaultDebounce = 1200 * time.Millisecond

// minFieldLen is the shortest origin/destination text worth routing.
const minFieldLen = 3

// Renderer owns the single visible route overlay. Implementations must
// not call back into the coordinator.
type Renderer interface {
	RenderRoute(route routing.Route)
	ClearRoute()
	Notice(message string)
}

type PreviewState int

const (
	StateIdle PreviewState = iota
	StatePending
	StateRequesting
	StateRendered
)

func (s PreviewState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateRequesting:
		return "requesting"
	case StateRendered:
		return "rendered"
	}
	return "unknown"
}

// PreviewCoordinator turns origin/destination edits into at most one
// visible route overlay. It owns a single debounce timer and a monotonic
// request token; only the response for the latest token may render, so
// out-of-order provider replies can never show a superseded route.
// In-flight requests are not aborted at the transport level — their
// results are discarded on arrival.
type PreviewCoordinator struct {
	provider routing.Provider
	renderer Renderer
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	timer       *time.Timer
	gen         uint64
	token       uint64
	state       PreviewState
	origin      string
	destination string
}

func NewPreviewCoordinator(provider routing.Provider, renderer Renderer, debounce time.Duration) *PreviewCoordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PreviewCoordinator{
		provider: provider,
		renderer: renderer,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetOrigin records an origin edit and re-arms the debounce timer.
func (p *PreviewCoordinator) SetOrigin(text string) {
	p.edit(func() { p.origin = text })
}

// SetDestination records a destination edit and re-arms the debounce timer.
func (p *PreviewCoordinator) SetDestination(text string) {
	p.edit(func() { p.destination = text })
}

func (p *PreviewCoordinator) edit(apply func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	apply()
	if p.timer != nil {
		p.timer.Stop()
	}
	// Stop does not guarantee the old callback has not already started;
	// the generation check in fire makes the loser a no-op.
	p.gen++
	gen := p.gen
	p.state = StatePending
	p.timer = time.AfterFunc(p.debounce, func() { p.fire(gen) })
}

// PreviewNow bypasses the debounce: used when previewing an existing
// trip's route from the list. It takes a fresh token like any request.
func (p *PreviewCoordinator) PreviewNow(origin, destination string) {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.origin, p.destination = origin, destination
	p.gen++
	p.token++
	tok := p.token
	p.state = StateRequesting
	p.mu.Unlock()

	go p.request(tok, origin, destination)
}

// State reports the coordinator's current phase.
func (p *PreviewCoordinator) State() PreviewState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Close invalidates outstanding work. Late responses are discarded.
func (p *PreviewCoordinator) Close() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	p.token++
	p.state = StateIdle
	p.mu.Unlock()
	p.cancel()
}

// fire runs when the debounce timer elapses. A callback carrying a stale
// generation lost a Stop race against a newer edit and does nothing.
func (p *PreviewCoordinator) fire(gen uint64) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	if len(p.origin) < minFieldLen || len(p.destination) < minFieldLen {
		// Invalidate any in-flight request so its late reply is dropped.
		p.token++
		p.state = StateIdle
		p.renderer.ClearRoute()
		p.mu.Unlock()
		return
	}
	p.token++
	tok := p.token
	origin, destination := p.origin, p.destination
	p.state = StateRequesting
	p.mu.Unlock()

	go p.request(tok, origin, destination)
}

func (p *PreviewCoordinator) request(tok uint64, origin, destination string) {
	route, err := p.provider.Route(p.ctx, origin, destination)

	// Render under the lock: the token check and the overlay update must
	// be atomic, or a reply racing a newer request could still draw.
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok != p.token {
		return
	}
	if err != nil {
		p.state = StateIdle
		p.renderer.ClearRoute()
		p.renderer.Notice(noticeFor(err))
		return
	}
	p.state = StateRendered
	p.renderer.RenderRoute(route)
}

func noticeFor(err error) string {
	var se *routing.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("Route preview failed (%s). Mission dispatch is not affected.", se.Status)
	}
	return "Route preview unavailable. Mission dispatch is not affected."
}
