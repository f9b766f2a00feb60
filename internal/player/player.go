// Package player steps through leaderboard frames at a fixed pace.
package player

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the time between frames.
const DefaultInterval = time.Second

// ErrNoFrames is returned by Run when there is nothing to play.
var ErrNoFrames = errors.New("no frames to play")

// ErrRunning is returned by Run when the player is already playing.
var ErrRunning = errors.New("player already running")

// FrameFunc is called with the index of every new frame. Returning an
// error stops playback.
type FrameFunc func(ctx context.Context, index int) error

// Player advances a frame index (i+1) % n on every tick.
type Player struct {
	mu      sync.Mutex
	n       int
	index   int
	max     int
	cancel  context.CancelFunc
	limiter *rate.Limiter
	onFrame FrameFunc
	l       *slog.Logger
}

// Option configures a Player.
type Option func(*Player)

// WithInterval sets the time between frames.
func WithInterval(d time.Duration) Option {
	return func(p *Player) {
		p.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithStart sets the initial frame index.
func WithStart(i int) Option {
	return func(p *Player) {
		p.index = i
	}
}

// WithMaxFrames stops Run after n frames. Zero plays until paused.
func WithMaxFrames(n int) Option {
	return func(p *Player) {
		p.max = n
	}
}

// New creates a paused player over n frames.
func New(n int, onFrame FrameFunc, opts ...Option) *Player {
	p := &Player{
		n:       n,
		limiter: rate.NewLimiter(rate.Every(DefaultInterval), 1),
		onFrame: onFrame,
		l:       slog.Default().With(slog.String("module", "player")),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.index = p.wrap(p.index)
	return p
}

func (p *Player) wrap(i int) int {
	if p.n == 0 {
		return 0
	}
	return ((i % p.n) + p.n) % p.n
}

// Index returns the current frame index.
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Seek jumps to frame i, wrapped into range.
func (p *Player) Seek(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = p.wrap(i)
}

// Playing reports whether Run is active.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Run plays until ctx is done, Pause is called, the frame limit is reached
// or the frame callback fails. Pausing is not an error.
func (p *Player) Run(ctx context.Context) error {
	ctx, err := p.start(ctx)
	if err != nil {
		return err
	}
	return p.loop(ctx)
}

func (p *Player) start(ctx context.Context) (context.Context, error) {
	if p.n == 0 {
		return nil, ErrNoFrames
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil, ErrRunning
	}
	ctx, p.cancel = context.WithCancel(ctx)
	return ctx, nil
}

func (p *Player) loop(ctx context.Context) error {
	defer func() {
		p.mu.Lock()
		p.cancel()
		p.cancel = nil
		p.mu.Unlock()
	}()

	// The first frame comes one interval after starting.
	p.limiter.Allow()
	for played := 0; p.max == 0 || played < p.max; played++ {
		if err := p.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		p.mu.Lock()
		p.index = (p.index + 1) % p.n
		i := p.index
		p.mu.Unlock()

		p.l.Debug("frame", slog.Int("index", i))
		if err := p.onFrame(ctx, i); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

// Pause stops a running Run immediately. It is a no-op when paused.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Toggle pauses a running player or starts it in the background. It
// returns whether the player is now playing.
func (p *Player) Toggle(ctx context.Context) bool {
	if p.Playing() {
		p.Pause()
		return false
	}
	ctx, err := p.start(ctx)
	if err != nil {
		return errors.Is(err, ErrRunning)
	}
	go func() {
		if err := p.loop(ctx); err != nil {
			p.l.Warn("playback stopped", slog.String("error", err.Error()))
		}
	}()
	return true
}
