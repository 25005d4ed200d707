package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"trip-dashboard/internal/geo"
	"trip-dashboard/internal/trip"
)

// State of a player.
type State string

const (
	StateEmpty    State = "empty"
	StateIdle     State = "idle"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// Reason tells subscribers what produced a frame.
type Reason string

const (
	ReasonTick    Reason = "tick"
	ReasonControl Reason = "control"
	ReasonData    Reason = "data"
)

var ErrAlreadyRunning = errors.New("player loop already running")

// subscriberBuffer is the per-subscriber frame backlog before frames drop.
const subscriberBuffer = 16

// Ticker is the part of time.Ticker the player needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker { return stdTicker{time.NewTicker(d)} }

// Player animates a cursor through the positions of one trip under the
// panel's controls. All timer work happens on the goroutine running Run;
// at most one ticker exists at a time.
type Player struct {
	newTicker func(time.Duration) Ticker

	mu        sync.Mutex
	trip      trip.Trip
	memo      trip.Memo
	positions []trip.Position
	index     int
	controls  Controls
	seq       uint64
	gen       uint64 // bumped on every input change; stale ticks are ignored

	subsMu sync.Mutex
	subs   map[int]chan Frame
	nextID int

	rearm   chan struct{}
	running atomic.Bool
}

type Option func(*Player)

// WithTicker replaces the ticker factory, mainly for tests.
func WithTicker(f func(time.Duration) Ticker) Option {
	return func(p *Player) { p.newTicker = f }
}

func NewPlayer(opts ...Option) *Player {
	p := &Player{
		newTicker: newStdTicker,
		controls:  Controls{Speed: DefaultSpeed},
		subs:      make(map[int]chan Frame),
		rearm:     make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Apply installs new controls from the panel. When playback starts while the
// cursor already sits on the last position, the cursor rewinds to 0. Controls
// equal to the current ones are ignored.
func (p *Player) Apply(c Controls) {
	p.mu.Lock()
	n := len(p.positions)
	if !p.controls.Playing && c.Playing && n > 0 && p.index >= n-1 {
		p.index = 0
	}
	if p.controls == c {
		// same inputs: keep the running ticker and its phase
		p.mu.Unlock()
		return
	}
	p.controls = c
	p.gen++
	f := p.frameLocked(ReasonControl)
	p.mu.Unlock()

	p.publish(f)
	p.signal()
}

// SetTrip installs a loaded trip. The cursor is clamped into the new range.
func (p *Player) SetTrip(t trip.Trip) {
	p.mu.Lock()
	p.trip = t
	p.positions = p.memo.Positions(t)
	p.index = clamp(p.index, len(p.positions))
	p.gen++
	f := p.frameLocked(ReasonData)
	p.mu.Unlock()

	p.publish(f)
	p.signal()
}

// Trip returns the installed trip.
func (p *Player) Trip() trip.Trip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trip
}

// Positions returns the filtered positions of the installed trip. The slice
// is shared and must not be modified.
func (p *Player) Positions() []trip.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positions
}

// Snapshot returns the current frame without emitting it.
func (p *Player) Snapshot() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameLocked("")
}

// Subscribe returns a channel of frames and a function to cancel the
// subscription. Frames are dropped for subscribers that fall behind.
func (p *Player) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, subscriberBuffer)
	p.subsMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	p.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.subsMu.Lock()
			delete(p.subs, id)
			p.subsMu.Unlock()
			close(ch)
		})
	}
}

// Run drives the ticker until ctx is cancelled. Only one Run may be active.
func (p *Player) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	for {
		tk, gen, period := p.arm()
		if tk != nil {
			log.Debug().Dur("period", period).Msg("playback timer armed")
		}
		again := p.wait(ctx, tk, gen)
		if tk != nil {
			tk.Stop()
		}
		if !again {
			return nil
		}
	}
}

// arm creates a ticker when the player should be advancing.
func (p *Player) arm() (Ticker, uint64, time.Duration) {
	p.mu.Lock()
	active := p.animatingLocked()
	period := Period(p.controls.Speed)
	gen := p.gen
	p.mu.Unlock()
	if !active {
		return nil, gen, 0
	}
	return p.newTicker(period), gen, period
}

// wait serves ticks until inputs change (true) or ctx ends (false).
func (p *Player) wait(ctx context.Context, tk Ticker, gen uint64) bool {
	var tickC <-chan time.Time
	if tk != nil {
		tickC = tk.C()
	}
	for {
		select {
		case <-ctx.Done():
			return false
		case <-p.rearm:
			return true
		case <-tickC:
			if !p.advance(gen) {
				tk.Stop()
				tickC = nil
			}
		}
	}
}

// advance performs one tick. It returns false once the ticker should halt.
func (p *Player) advance(gen uint64) bool {
	p.mu.Lock()
	if gen != p.gen {
		// inputs changed; a rearm is pending
		p.mu.Unlock()
		return true
	}
	n := len(p.positions)
	if !p.controls.Playing || n == 0 {
		p.mu.Unlock()
		return false
	}
	if p.index >= n-1 {
		p.mu.Unlock()
		return false
	}
	p.index++
	f := p.frameLocked(ReasonTick)
	more := p.index < n-1
	p.mu.Unlock()

	p.publish(f)
	return more
}

func (p *Player) animatingLocked() bool {
	n := len(p.positions)
	return p.controls.Playing && n > 0 && p.index < n-1
}

func (p *Player) stateLocked() State {
	n := len(p.positions)
	switch {
	case n == 0:
		return StateEmpty
	case !p.controls.Playing:
		return StateIdle
	case p.index >= n-1:
		return StateFinished
	default:
		return StatePlaying
	}
}

func (p *Player) frameLocked(reason Reason) Frame {
	if reason != "" {
		p.seq++
	}
	n := len(p.positions)
	f := Frame{
		Seq:      p.seq,
		Reason:   reason,
		Index:    p.index,
		Total:    n,
		Playing:  p.controls.Playing,
		Speed:    p.controls.Speed,
		PeriodMs: Period(p.controls.Speed).Milliseconds(),
		State:    p.stateLocked(),
		At:       time.Now().UTC(),
	}
	if n == 0 {
		return f
	}
	pos := p.positions[p.index]
	f.Position = &pos
	if n > 1 {
		f.Progress = float64(p.index) / float64(n-1)
		a, b := p.index, p.index+1
		if b >= n {
			a, b = n-2, n-1
		}
		f.Bearing = geo.Bearing(p.positions[a].Lat, p.positions[a].Lng, p.positions[b].Lat, p.positions[b].Lng)
	}
	return f
}

func (p *Player) publish(f Frame) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- f:
		default:
		}
	}
}

func (p *Player) signal() {
	select {
	case p.rearm <- struct{}{}:
	default:
	}
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
