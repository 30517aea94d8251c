package playback

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/kidbox/internal/app/input"
	"github.com/osa030/kidbox/internal/app/navigator"
	"github.com/osa030/kidbox/internal/domain/button"
	"github.com/osa030/kidbox/internal/domain/track"
)

// Errors
var (
	ErrClosed = errors.New("controller closed")
)

// DefaultExtension is the file extension used in item ids when none is configured.
const DefaultExtension = "mp3"

// Sampler reads buttons and volume once per chunk.
type Sampler interface {
	Sample() (input.Volume, button.Set)
}

// Config holds controller configuration.
type Config struct {
	Extension string // Item file extension, without the dot

	// After FailureLimit consecutive failed items the loop waits RetryDelay
	// before the next attempt. Zero disables the wait.
	FailureLimit int
	RetryDelay   time.Duration
}

// Cycle describes one playback attempt and the decision taken after it.
type Cycle struct {
	Request track.Request     // Item that was requested
	ID      string            // Item request identifier passed to the engine
	Outcome navigator.Outcome // How playback ended
	Presses button.Set        // Press events that stopped playback
	Next    track.Request     // Item requested by the next cycle
}

// Controller runs the play / sample / decide loop.
// Run and RunCycle must be called from a single goroutine.
type Controller struct {
	mu sync.RWMutex

	sampler   Sampler
	navigator *navigator.Navigator
	engine    Engine

	// Current playback state
	state   State
	current track.Request
	volume  input.Volume
	hasVol  bool

	// Consecutive failed items, owned by the Run goroutine
	failures int

	// Configuration
	config Config

	// Events
	eventCh chan Event
	closed  bool

	// Context
	ctx    context.Context
	cancel context.CancelFunc

	log zerolog.Logger
}

// NewController creates a new playback controller.
func NewController(config Config, sampler Sampler, nav *navigator.Navigator, engine Engine) *Controller {
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		sampler:   sampler,
		navigator: nav,
		engine:    engine,
		state:     StateIdle,
		current:   nav.Current(),
		config:    config,
		eventCh:   make(chan Event, 16),
		ctx:       ctx,
		cancel:    cancel,
		log:       zlog.With().Str("boot", uuid.NewString()).Logger(),
	}
}

// Events returns the event channel.
// Events are dropped when the channel is full.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// GetState returns the current playback state.
func (c *Controller) GetState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// GetCurrent returns the item being played, or about to be played.
func (c *Controller) GetCurrent() track.Request {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// GetVolume returns the last sampled volume.
func (c *Controller) GetVolume() input.Volume {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.volume
}

// Run plays items until ctx is cancelled or the controller is closed.
// Both end the loop without error.
func (c *Controller) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	c.log.Info().Msgf("playback: starting at %s", c.navigator.Current())
	for {
		cycle, err := c.RunCycle(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrClosed) {
				c.log.Info().Msg("playback: stopped")
				return nil
			}
			return err
		}
		c.log.Debug().Msgf("playback: cycle done: item=%s outcome=%s presses=%s next=%s",
			cycle.ID, cycle.Outcome, cycle.Presses, cycle.Next)
	}
}

// RunCycle plays the navigator's current item once and applies the outcome.
// The only errors returned are ctx errors and ErrClosed; playback failures
// are handled by the navigator.
func (c *Controller) RunCycle(ctx context.Context) (Cycle, error) {
	if c.isClosed() {
		return Cycle{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return Cycle{}, err
	}

	req := c.navigator.Current()
	cycle := Cycle{
		Request: req,
		ID:      req.ID(c.config.Extension),
	}

	outcome, presses, err := c.play(ctx, req, cycle.ID)
	if err != nil {
		return cycle, err
	}
	cycle.Outcome = outcome
	cycle.Presses = presses
	cycle.Next = c.navigator.DecideNext(outcome, presses)

	c.mu.Lock()
	c.current = cycle.Next
	c.mu.Unlock()

	if err := c.backoff(ctx, outcome); err != nil {
		return cycle, err
	}
	return cycle, nil
}

// backoff counts consecutive failed items and waits once the limit is reached.
func (c *Controller) backoff(ctx context.Context, outcome navigator.Outcome) error {
	if outcome != navigator.OutcomeError {
		c.failures = 0
		return nil
	}
	c.failures++
	if c.config.FailureLimit <= 0 || c.config.RetryDelay <= 0 || c.failures < c.config.FailureLimit {
		return nil
	}

	c.log.Warn().Msgf("playback: no playable item found, retrying: failures=%d delay=%s", c.failures, c.config.RetryDelay)
	c.failures = 0

	timer := time.NewTimer(c.config.RetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// play opens the item and feeds it chunk by chunk, sampling input before each chunk.
func (c *Controller) play(ctx context.Context, req track.Request, id string) (navigator.Outcome, button.Set, error) {
	c.mu.Lock()
	c.current = req
	c.mu.Unlock()

	stream, err := c.engine.Open(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return navigator.OutcomeError, 0, ctxErr
		}
		c.log.Warn().Err(err).Msgf("playback: failed to open item: item=%s", id)
		c.sendEvent(Event{Type: EventTrackFailed, Request: req, Volume: c.GetVolume(), Err: err})
		return navigator.OutcomeError, 0, nil
	}
	defer func() {
		if err := stream.Close(); err != nil {
			c.log.Debug().Err(err).Msgf("playback: failed to close item: item=%s", id)
		}
	}()

	c.setState(StatePlaying)
	defer c.setState(StateIdle)

	c.log.Info().Msgf("playback: playing item=%s", id)
	c.sendEvent(Event{Type: EventTrackStarted, Request: req, Volume: c.GetVolume()})

	for {
		if err := ctx.Err(); err != nil {
			return navigator.OutcomeFinished, 0, err
		}

		volume, presses := c.sampler.Sample()
		c.updateVolume(req, volume)

		if !presses.Empty() {
			c.log.Debug().Msgf("playback: item stopped by press: item=%s presses=%s", id, presses)
			c.sendEvent(Event{Type: EventTrackSkipped, Request: req, Volume: volume, Presses: presses})
			return navigator.OutcomeFinished, presses, nil
		}

		if err := stream.Next(volume); err != nil {
			if errors.Is(err, io.EOF) {
				c.sendEvent(Event{Type: EventTrackEnded, Request: req, Volume: volume})
				return navigator.OutcomeFinished, 0, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return navigator.OutcomeFinished, 0, ctxErr
			}
			c.log.Warn().Err(err).Msgf("playback: item failed during playback: item=%s", id)
			c.sendEvent(Event{Type: EventTrackFailed, Request: req, Volume: volume, Err: err})
			return navigator.OutcomeError, 0, nil
		}
	}
}

// Close stops a running loop and closes the event channel.
func (c *Controller) Close() {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.eventCh)
}

func (c *Controller) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// updateVolume records the sampled volume and reports changes.
func (c *Controller) updateVolume(req track.Request, v input.Volume) {
	c.mu.Lock()
	changed := !c.hasVol || c.volume != v
	c.volume = v
	c.hasVol = true
	c.mu.Unlock()

	if changed {
		c.log.Debug().Msgf("playback: volume changed: volume=%d", v)
		c.sendEvent(Event{Type: EventVolumeChanged, Request: req, Volume: v})
	}
}

// sendEvent sends an event without blocking.
func (c *Controller) sendEvent(e Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.eventCh <- e:
		// Successfully sent
	case <-c.ctx.Done():
		// Controller closing, don't send
	default:
		// Channel full, drop event
	}
}
