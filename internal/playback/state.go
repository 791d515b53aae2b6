// Package playback implements the unified playback-control engine: one
// session per open player view, an adapter per delivery technology, and a
// single state vocabulary regardless of what is actually rendering the video.
//
// The engine is server-authoritative. Player pages relay raw events (native
// media element events, YouTube player callbacks, fullscreen changes) into
// their session; adapters translate them into State transitions and push
// commands back to the page through a queue. All state mutation funnels
// through one locked update path per session.
package playback

import (
	"fmt"
	"sync"
)

// Status is the unified playback status shared by every adapter kind.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusPlaying   Status = "playing"
	StatusPaused    Status = "paused"
	StatusBuffering Status = "buffering"
	StatusEnded     Status = "ended"
	StatusError     Status = "error"
)

// ErrorKind classifies every failure the engine can surface. Adapter and
// resolver failures all reduce to this taxonomy and are delivered through the
// session's error callback, never by panicking across a boundary.
type ErrorKind string

const (
	ErrUnresolvableSource ErrorKind = "unresolvable_source"
	ErrPlaybackAborted    ErrorKind = "playback_aborted"
	ErrNetwork            ErrorKind = "network_error"
	ErrDecode             ErrorKind = "decode_error"
	ErrFormatUnsupported  ErrorKind = "format_unsupported"
	ErrAutoplayBlocked    ErrorKind = "autoplay_blocked"
	ErrRetriesExhausted   ErrorKind = "retries_exhausted"
)

// Error is the payload delivered to error callbacks. Terminal errors carry
// CanFallbackToEmbed when re-resolving the source as a passive iframe is a
// sensible recovery path.
type Error struct {
	Kind               ErrorKind `json:"kind"`
	Message            string    `json:"message"`
	CanFallbackToEmbed bool      `json:"canFallbackToEmbed,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("playback: %s: %s", e.Kind, e.Message)
}

// Terminal reports whether the engine stops driving the current adapter for
// this error. Terminal errors need an explicit recovery action from the UI.
func (e *Error) Terminal() bool {
	return e.Kind == ErrUnresolvableSource || e.Kind == ErrRetriesExhausted
}

// State is the playback state snapshot a UI binds to. One instance lives per
// session and is owned by it exclusively.
type State struct {
	Status          Status  `json:"status"`
	CurrentTime     float64 `json:"currentTime"`
	Duration        float64 `json:"duration"`
	Volume          float64 `json:"volume"`
	Muted           bool    `json:"muted"`
	Rate            float64 `json:"rate"`
	Fullscreen      bool    `json:"fullscreen"`
	ControlsVisible bool    `json:"controlsVisible"`
	LastError       *Error  `json:"lastError,omitempty"`
}

func newState() State {
	return State{
		Status:          StatusIdle,
		Volume:          1,
		Rate:            1,
		ControlsVisible: true,
	}
}

// stateHost is the single serialized mutation path for one session's State.
// Adapters, the retry engine, and the controls timer all mutate through apply
// so polling ticks and relayed events can never interleave mid-update.
type stateHost struct {
	mu       sync.Mutex
	state    State
	onChange func(State)
	onError  func(*Error)

	// onPlaying fires after a transition into playing. Set once at session
	// construction; the controls timer uses it to arm the hide countdown.
	onPlaying func()
}

func newStateHost() *stateHost {
	return &stateHost{state: newState()}
}

// apply runs fn under the host lock, re-establishes the state invariants, and
// notifies the change callback with a snapshot.
func (h *stateHost) apply(fn func(*State)) {
	h.mu.Lock()
	prev := h.state.Status
	fn(&h.state)
	if h.state.Duration > 0 && h.state.CurrentTime > h.state.Duration {
		h.state.CurrentTime = h.state.Duration
	}
	if h.state.CurrentTime < 0 {
		h.state.CurrentTime = 0
	}
	snap := h.state
	notify := h.onChange
	startedPlaying := prev != StatusPlaying && h.state.Status == StatusPlaying
	onPlaying := h.onPlaying
	h.mu.Unlock()

	if startedPlaying && onPlaying != nil {
		onPlaying()
	}
	if notify != nil {
		notify(snap)
	}
}

// fail transitions to the error status with the given payload and notifies
// both callbacks. status==error always implies a non-nil LastError.
func (h *stateHost) fail(err *Error) {
	h.apply(func(s *State) {
		s.Status = StatusError
		s.LastError = err
	})

	h.mu.Lock()
	notify := h.onError
	h.mu.Unlock()
	if notify != nil {
		notify(err)
	}
}

func (h *stateHost) snapshot() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *stateHost) status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Status
}
