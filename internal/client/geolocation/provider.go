// Package geolocation holds the user's position for one session. It reads
// the platform locator, honors the server-driven debug mode and keeps the
// position fresh while the user stays on the page.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/pkg/logging"
)

// Position error codes as reported by platform locators.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// PositionError is a failed locator read.
type PositionError struct {
	Code    int
	Message string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("geolocation error %d: %s", e.Code, e.Message)
}

// ReadOptions tune a single locator read.
type ReadOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

var DefaultReadOptions = ReadOptions{EnableHighAccuracy: false, Timeout: 10 * time.Second, MaximumAge: 0}

// Locator reads the current device position.
type Locator interface {
	CurrentPosition(ctx context.Context, opts ReadOptions) (domain.Coordinate, error)
}

type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionPrompt  PermissionState = "prompt"
	PermissionDenied  PermissionState = "denied"
)

// PermissionQuerier reports whether the user already granted location access
// without prompting them.
type PermissionQuerier interface {
	QueryGeolocation(ctx context.Context) (PermissionState, error)
}

// DebugModeSource reports the active debug geolocation mode.
type DebugModeSource interface {
	DebugMode(ctx context.Context) (domain.GeoMode, error)
}

// State is a snapshot handed to subscribers. Position is never mutated after
// it is published.
type State struct {
	Position         *domain.Coordinate
	Loading          bool
	Error            bool
	PermissionDenied bool
	InitialCheckDone bool
	DebugMode        domain.GeoMode
}

type Options struct {
	Locator     Locator
	Permissions PermissionQuerier // optional
	DebugModes  DebugModeSource   // optional
	Logger      *slog.Logger

	ReadOptions     ReadOptions
	InParkInterval  time.Duration
	DefaultInterval time.Duration
}

type Provider struct {
	opts Options
	log  *slog.Logger

	mu         sync.Mutex
	state      State
	inPark     bool
	generation uint64
	timer      *time.Timer
	scheduled  scheduleInputs
	subs       map[int]func(State)
	nextSub    int
	closed     bool
}

func NewProvider(opts Options) (*Provider, error) {
	if opts.Locator == nil {
		return nil, errors.New("geolocation: locator is required")
	}
	if opts.ReadOptions == (ReadOptions{}) {
		opts.ReadOptions = DefaultReadOptions
	}
	if opts.InParkInterval <= 0 {
		opts.InParkInterval = 60 * time.Second
	}
	if opts.DefaultInterval <= 0 {
		opts.DefaultInterval = 5 * time.Minute
	}
	return &Provider{
		opts:  opts,
		log:   logging.Component(opts.Logger, "geolocation"),
		state: State{DebugMode: domain.GeoModeReal},
		subs:  make(map[int]func(State)),
	}, nil
}

// State returns the current snapshot.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers fn for every state change. The returned func
// unsubscribes.
func (p *Provider) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Start runs the mount sequence: fetch the debug mode, then read the
// position only when permission was already granted. The initial check is
// marked done whatever the outcome.
func (p *Provider) Start(ctx context.Context) {
	_ = p.syncDebugMode(ctx)

	if p.opts.Permissions != nil {
		st, err := p.opts.Permissions.QueryGeolocation(ctx)
		switch {
		case err != nil:
			p.log.Debug("permission query failed", "error", err)
		case st == PermissionGranted:
			_ = p.Refresh(ctx)
		}
	}

	p.update(func(s *State) { s.InitialCheckDone = true })
}

// OnFocus refetches the debug mode and applies it if it changed.
func (p *Provider) OnFocus(ctx context.Context) {
	_ = p.syncDebugMode(ctx)
}

func (p *Provider) syncDebugMode(ctx context.Context) error {
	if p.opts.DebugModes == nil {
		return nil
	}
	mode, err := p.opts.DebugModes.DebugMode(ctx)
	if err != nil {
		p.log.Debug("debug mode fetch failed", "error", err)
		return err
	}
	p.SetDebugMode(mode)
	return nil
}

// SetDebugMode switches the position source. A debug preset is applied at
// once; leaving debug mode clears the preset position. Any locator read
// still in flight is discarded.
func (p *Provider) SetDebugMode(mode domain.GeoMode) {
	p.mu.Lock()
	if p.closed || mode == p.state.DebugMode {
		p.mu.Unlock()
		return
	}
	prev := p.state.DebugMode
	p.state.DebugMode = mode
	p.generation++

	if coord := domain.ResolveDebugCoordinate(mode); coord != nil {
		p.state.Position = coord
		p.state.Loading = false
		p.state.Error = false
		p.state.PermissionDenied = false
	} else if domain.ResolveDebugCoordinate(prev) != nil {
		p.state.Position = nil
		p.state.Loading = false
	}
	p.maybeRescheduleLocked()
	snap, subs := p.snapshotLocked()
	p.mu.Unlock()

	p.log.Info("debug mode changed", "from", prev, "to", mode)
	notify(subs, snap)
}

// SetInPark switches the auto-refresh cadence.
func (p *Provider) SetInPark(inPark bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.inPark == inPark {
		return
	}
	p.inPark = inPark
	p.maybeRescheduleLocked()
}

// Refresh reads the position once. With a debug mode active the preset is
// applied without touching the locator. Results of reads overtaken by a mode
// switch are dropped.
func (p *Provider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	if coord := domain.ResolveDebugCoordinate(p.state.DebugMode); coord != nil {
		p.state.Position = coord
		p.state.Loading = false
		p.state.Error = false
		p.state.PermissionDenied = false
		p.maybeRescheduleLocked()
		snap, subs := p.snapshotLocked()
		p.mu.Unlock()
		notify(subs, snap)
		return nil
	}
	gen := p.generation
	p.state.Loading = true
	snap, subs := p.snapshotLocked()
	p.mu.Unlock()
	notify(subs, snap)

	readOpts := p.opts.ReadOptions
	readCtx, cancel := context.WithTimeout(ctx, readOpts.Timeout)
	pos, err := p.opts.Locator.CurrentPosition(readCtx, readOpts)
	cancel()
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = &PositionError{Code: CodeTimeout, Message: "timed out reading position"}
	}

	p.mu.Lock()
	if p.closed || gen != p.generation {
		p.mu.Unlock()
		p.log.Debug("discarding stale position read", "generation", gen)
		return nil
	}
	p.state.Loading = false
	if err != nil {
		p.state.Error = true
		var perr *PositionError
		if errors.As(err, &perr) && perr.Code == CodePermissionDenied {
			p.state.PermissionDenied = true
		} else {
			p.log.Warn("position read failed", "error", err)
		}
	} else {
		c := pos
		p.state.Position = &c
		p.state.Error = false
		p.state.PermissionDenied = false
	}
	p.maybeRescheduleLocked()
	snap, subs = p.snapshotLocked()
	p.mu.Unlock()

	notify(subs, snap)
	return err
}

// Close stops the refresh timer and drops subscribers. In-flight reads are
// discarded.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.subs = map[int]func(State){}
}

func (p *Provider) update(fn func(*State)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	fn(&p.state)
	p.maybeRescheduleLocked()
	snap, subs := p.snapshotLocked()
	p.mu.Unlock()
	notify(subs, snap)
}

// scheduleInputs are the fields that shape the auto-refresh countdown.
// Position is compared by pointer since every reading is a new value.
type scheduleInputs struct {
	position *domain.Coordinate
	denied   bool
	inPark   bool
}

func (p *Provider) inputsLocked() scheduleInputs {
	return scheduleInputs{position: p.state.Position, denied: p.state.PermissionDenied, inPark: p.inPark}
}

// maybeRescheduleLocked restarts the countdown when one of its inputs
// changed or the previous timer already fired. Other state changes leave a
// running countdown alone.
func (p *Provider) maybeRescheduleLocked() {
	if p.timer != nil && p.inputsLocked() == p.scheduled {
		return
	}
	p.rescheduleLocked()
}

// rescheduleLocked arms the auto-refresh timer once a position is known and
// permission was not denied.
func (p *Provider) rescheduleLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.scheduled = p.inputsLocked()
	if p.closed || p.state.Position == nil || p.state.PermissionDenied {
		return
	}
	interval := p.opts.DefaultInterval
	if p.inPark {
		interval = p.opts.InParkInterval
	}
	var t *time.Timer
	t = time.AfterFunc(interval, func() {
		p.mu.Lock()
		if p.timer == t {
			p.timer = nil
		}
		p.mu.Unlock()
		_ = p.Refresh(context.Background())
	})
	p.timer = t
}

func (p *Provider) snapshotLocked() (State, []func(State)) {
	subs := make([]func(State), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	return p.state, subs
}

func notify(subs []func(State), s State) {
	for _, fn := range subs {
		fn(s)
	}
}

// StaticLocator always answers with the same position, or a position
// unavailable error when none is set. Command line tools use it for
// --lat/--lng.
type StaticLocator struct {
	Coordinate *domain.Coordinate
}

func (l StaticLocator) CurrentPosition(ctx context.Context, _ ReadOptions) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	if l.Coordinate == nil {
		return domain.Coordinate{}, &PositionError{Code: CodePositionUnavailable, Message: "no position available"}
	}
	return *l.Coordinate, nil
}
