package playback

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/reelgrid/reelgrid/internal/source"
)

// maxQueuedCommands bounds the page-bound queue for sessions whose page has
// stopped draining. Oldest commands are dropped first.
const maxQueuedCommands = 64

// commandQueue is the bounded page-bound command buffer of one session.
type commandQueue struct {
	mu    sync.Mutex
	items []Command
}

func (q *commandQueue) Send(c Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= maxQueuedCommands {
		q.items = q.items[1:]
	}
	q.items = append(q.items, c)
}

// Drain returns and clears all queued commands.
func (q *commandQueue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Session is one open player view. It owns the resolved source, the active
// adapter, the state, the controls timer, and the command queue. All entry
// points are safe for concurrent use; the session mutex serializes adapter
// replacement against everything else.
type Session struct {
	ID     string
	Device Device

	mu       sync.Mutex
	src      source.Source
	opts     source.Options
	host     *stateHost
	adapter  Adapter
	bridge   *SampleBridge
	controls *controlsTimer
	queue    *commandQueue

	createdAt time.Time
	lastSeen  time.Time
	closed    bool
}

// Device is coarse client classification attached at session creation, used
// to degrade gracefully where custom controls do not work.
type Device struct {
	Browser string `json:"browser"`
	Mobile  bool   `json:"mobile"`
	// NativeControlsOnly marks clients (iOS Safari in practice) where inline
	// scripted playback is unreliable and the element's own controls are used.
	NativeControlsOnly bool `json:"nativeControlsOnly"`
}

// NewSession resolves raw and builds the session around the matching adapter.
// Resolution never aborts session creation: an unresolvable source comes up
// as a passive external session already carrying the unresolvable error.
func NewSession(raw, hint string, opts source.Options, device Device) *Session {
	src, resolveErr := source.ResolveWithOptions(raw, source.Platform(hint), opts)

	s := &Session{
		ID:        newSessionID(),
		Device:    device,
		src:       src,
		opts:      opts,
		host:      newStateHost(),
		bridge:    &SampleBridge{},
		queue:     &commandQueue{},
		createdAt: time.Now(),
		lastSeen:  time.Now(),
	}
	s.controls = newControlsTimer(s.host, controlsHideDelay)
	// The hide countdown runs from the start and re-arms whenever playback
	// (re)enters playing, so an autoplay session the user never touches still
	// hides its controls.
	s.host.onPlaying = s.controls.Activity
	s.adapter = newAdapter(src, s.host, s.queue, s.bridge)
	s.controls.Activity()

	if resolveErr != nil && errors.Is(resolveErr, source.ErrUnresolvable) {
		s.host.fail(&Error{
			Kind:               ErrUnresolvableSource,
			Message:            "no playable resource id in video url",
			CanFallbackToEmbed: true,
		})
	}
	return s
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails when the platform entropy source is broken.
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(b)
}

// SetOnChange registers the state change callback. Called with a snapshot
// after every applied mutation.
func (s *Session) SetOnChange(fn func(State)) {
	s.host.mu.Lock()
	s.host.onChange = fn
	s.host.mu.Unlock()
}

// SetOnError registers the error callback.
func (s *Session) SetOnError(fn func(*Error)) {
	s.host.mu.Lock()
	s.host.onError = fn
	s.host.mu.Unlock()
}

// Source returns the currently loaded source descriptor.
func (s *Session) Source() source.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src
}

// State returns a snapshot of the current playback state.
func (s *Session) State() State {
	return s.host.snapshot()
}

// Replace swaps the session onto a new raw source. The old adapter is
// disposed before the new one attaches so its timers and pollers cannot touch
// the state afterwards. Position resets; volume, mute, and rate carry over.
func (s *Session) Replace(raw, hint string) error {
	src, resolveErr := source.ResolveWithOptions(raw, source.Platform(hint), s.opts)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("playback: session closed")
	}
	s.adapter.Dispose()
	s.src = src
	s.bridge = &SampleBridge{}
	s.adapter = newAdapter(src, s.host, s.queue, s.bridge)
	s.mu.Unlock()

	s.host.apply(func(st *State) {
		st.Status = StatusIdle
		st.CurrentTime = 0
		st.Duration = 0
		st.LastError = nil
		st.ControlsVisible = true
	})
	s.queue.Send(Command{Name: cmdSwapSource, URL: src.PlaybackURL})

	if resolveErr != nil && errors.Is(resolveErr, source.ErrUnresolvable) {
		s.host.fail(&Error{
			Kind:               ErrUnresolvableSource,
			Message:            "no playable resource id in video url",
			CanFallbackToEmbed: true,
		})
	}
	return nil
}

// FallbackToEmbed re-renders the current source as a passive iframe. This is
// the recovery path for terminal errors that carry CanFallbackToEmbed.
func (s *Session) FallbackToEmbed() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.adapter.Dispose()
	raw := s.src.Raw
	s.src = source.Source{
		Raw:         raw,
		Platform:    source.PlatformExternal,
		PlaybackURL: raw,
	}
	s.adapter = newPassiveAdapter(s.host)
	s.mu.Unlock()

	s.host.apply(func(st *State) { st.LastError = nil })
	s.queue.Send(Command{Name: cmdSwapSource, URL: raw})
}

// HandleEvent folds one relayed player event into the session. Position
// samples feed the iframe bridge instead of the adapter.
func (s *Session) HandleEvent(ev Event) {
	s.Touch()
	if ev.Kind == EventPlayerSample {
		s.mu.Lock()
		bridge := s.bridge
		s.mu.Unlock()
		bridge.SetSample(ev.Time, ev.Duration)
		return
	}
	s.mu.Lock()
	a := s.adapter
	s.mu.Unlock()
	a.HandleEvent(ev)
}

// Command names accepted by Dispatch.
const (
	CommandPlay              = "play"
	CommandPause             = "pause"
	CommandToggle            = "toggle"
	CommandSeek              = "seek"
	CommandSetVolume         = "set_volume"
	CommandMute              = "mute"
	CommandUnmute            = "unmute"
	CommandSetRate           = "set_rate"
	CommandRequestFullscreen = "request_fullscreen"
	CommandExitFullscreen    = "exit_fullscreen"
	CommandFallbackToEmbed   = "fallback_to_embed"
)

// Dispatch routes a named control command to the active adapter. Unknown
// names are an error; commands on passive sessions are accepted and ignored,
// keeping the control surface uniform. A dispatched command is user
// interaction, so it also resets the controls hide timer.
func (s *Session) Dispatch(name string, value float64) error {
	s.Touch()
	s.controls.Activity()
	s.mu.Lock()
	a := s.adapter
	s.mu.Unlock()

	switch name {
	case CommandPlay:
		a.Play()
	case CommandPause:
		a.Pause()
	case CommandToggle:
		if s.host.status() == StatusPlaying {
			a.Pause()
		} else {
			a.Play()
		}
	case CommandSeek:
		a.Seek(value)
	case CommandSetVolume:
		a.SetVolume(value)
	case CommandMute:
		a.SetMuted(true)
	case CommandUnmute:
		a.SetMuted(false)
	case CommandSetRate:
		a.SetRate(value)
	case CommandRequestFullscreen:
		a.RequestFullscreen()
	case CommandExitFullscreen:
		a.ExitFullscreen()
	case CommandFallbackToEmbed:
		s.FallbackToEmbed()
	default:
		return errors.New("playback: unknown command " + name)
	}
	return nil
}

// Activity records user interaction for the controls timer.
func (s *Session) Activity() {
	s.Touch()
	s.controls.Activity()
}

// DrainCommands returns the queued page-bound commands and clears the queue.
func (s *Session) DrainCommands() []Command {
	s.Touch()
	return s.queue.Drain()
}

// Touch updates the liveness timestamp used for idle expiry.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last client contact.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close disposes the adapter and stops the controls timer. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	a := s.adapter
	s.mu.Unlock()

	a.Dispose()
	s.controls.Stop()
}
