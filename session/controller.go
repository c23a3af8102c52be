// Package session runs a game on a fixed tick.
//
// A Controller is the single owner of its game.GameState. Input from any
// goroutine reaches it as messages on an inbox channel and is applied between
// ticks; everything that wants to look at the game gets a game.Snapshot.
package session

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/snekpad/game"
	"github.com/brensch/snekpad/rules"
)

const inboxSize = 64

// Recorder receives every published snapshot, tagged with the session it
// belongs to. Record is called from the tick goroutine and must not block.
type Recorder interface {
	Record(sessionID string, snap game.Snapshot)
}

type Option func(*Controller)

// WithRand sets the source used for food placement.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.rec = r }
}

// WithAutoRestart starts a fresh session as soon as one ends.
func WithAutoRestart(on bool) Option {
	return func(c *Controller) { c.autoRestart = on }
}

type requestKind uint8

const (
	requestDirection requestKind = iota
	requestReset
)

type request struct {
	kind requestKind
	dir  game.Direction
}

type Controller struct {
	cfg         game.Config
	rng         *rand.Rand
	log         *slog.Logger
	rec         Recorder
	autoRestart bool

	inbox chan request

	// Owned by the Run goroutine once it starts.
	state     *game.GameState
	sessionID string

	latest atomic.Pointer[game.Snapshot]

	subMu   sync.Mutex
	subs    map[int]chan game.Snapshot
	nextSub int
}

// New validates cfg and prepares the first session. Nothing ticks until Run.
func New(cfg game.Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		log:   slog.Default(),
		inbox: make(chan request, inboxSize),
		subs:  make(map[int]chan game.Snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.state = game.NewGameState(cfg, c.rng)
	c.sessionID = uuid.NewString()
	c.publish()
	return c, nil
}

func (c *Controller) Config() game.Config { return c.cfg }

// RequestDirection asks for a new heading. Safe from any goroutine.
func (c *Controller) RequestDirection(d game.Direction) {
	c.send(request{kind: requestDirection, dir: d})
}

// Reset starts a new session. Safe from any goroutine.
func (c *Controller) Reset() {
	c.send(request{kind: requestReset})
}

func (c *Controller) send(req request) {
	select {
	case c.inbox <- req:
	default:
		c.log.Debug("inbox full, dropping request", "kind", req.kind, "dir", req.dir)
	}
}

// Snapshot returns the most recently published state.
func (c *Controller) Snapshot() game.Snapshot {
	return *c.latest.Load()
}

// Subscribe returns a channel that always holds the newest snapshot not yet
// read. Slow readers skip intermediate states. The channel is primed with the
// current snapshot. Call cancel to stop receiving; it closes the channel.
func (c *Controller) Subscribe() (<-chan game.Snapshot, func()) {
	ch := make(chan game.Snapshot, 1)

	c.subMu.Lock()
	ch <- c.Snapshot()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			close(ch)
			c.subMu.Unlock()
		})
	}
	return ch, cancel
}

// Run drives the game until ctx is cancelled. While a session is over no
// ticks are processed; a Reset (or auto restart) resumes ticking.
// Run must only be called once.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.Tick)
	defer ticker.Stop()

	c.log.Info("session started", "session", c.sessionID, "cols", c.cfg.Cols, "rows", c.cfg.Rows, "tick", c.cfg.Tick)

	for {
		var tick <-chan time.Time
		if c.state.Alive {
			tick = ticker.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-c.inbox:
			switch req.kind {
			case requestDirection:
				if !rules.RequestDirection(c.state, req.dir) {
					c.log.Debug("direction rejected", "session", c.sessionID, "dir", req.dir, "heading", c.state.Heading)
				}
			case requestReset:
				c.reset()
				ticker.Reset(c.cfg.Tick)
			}
		case <-tick:
			if c.step() && c.autoRestart {
				c.reset()
				ticker.Reset(c.cfg.Tick)
			}
		}
	}
}

// step advances one tick and reports whether the session just ended.
func (c *Controller) step() bool {
	out := rules.Step(c.state, c.cfg, c.rng)
	c.publish()

	switch {
	case out == rules.OutcomeAte:
		c.log.Debug("food eaten", "session", c.sessionID, "score", c.state.Score, "length", len(c.state.Body))
	case out.Over():
		c.log.Info("session over",
			"session", c.sessionID,
			"score", c.state.Score,
			"turns", c.state.Turn,
			"length", len(c.state.Body),
			"cause", c.state.Cause,
		)
		return true
	}
	return false
}

func (c *Controller) reset() {
	prev := c.sessionID
	c.state.Reset(c.cfg, c.rng)
	c.sessionID = uuid.NewString()
	c.publish()
	c.log.Info("session reset", "previous", prev, "session", c.sessionID)
}

func (c *Controller) publish() {
	snap := c.state.Snapshot(c.cfg)
	c.latest.Store(&snap)

	if c.rec != nil {
		c.rec.Record(c.sessionID, snap)
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale snapshot the reader has not picked up yet.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
