package playback

import (
	"github.com/reelgrid/reelgrid/internal/source"
)

// EventKind names a raw player event relayed from the rendering page.
type EventKind string

const (
	// Native media element events.
	EventLoadedMetadata EventKind = "loadedmetadata"
	EventTimeUpdate     EventKind = "timeupdate"
	EventDurationChange EventKind = "durationchange"
	EventPlay           EventKind = "play"
	EventPlaying        EventKind = "playing"
	EventPause          EventKind = "pause"
	EventWaiting        EventKind = "waiting"
	EventEnded          EventKind = "ended"
	EventVolumeChange   EventKind = "volumechange"
	EventRateChange     EventKind = "ratechange"
	EventMediaError     EventKind = "mediaerror"

	// Autoplay rejection is reported separately from media errors because the
	// engine recovers from it rather than surfacing it immediately.
	EventAutoplayBlocked EventKind = "autoplayblocked"

	// Fullscreen transitions apply to every adapter kind.
	EventFullscreenChange EventKind = "fullscreenchange"

	// Iframe API events. Position samples are relayed separately because the
	// iframe API pushes no continuous time event of its own.
	EventPlayerReady  EventKind = "playerready"
	EventPlayerState  EventKind = "playerstate"
	EventPlayerError  EventKind = "playererror"
	EventPlayerSample EventKind = "playersample"
)

// Event is one relayed player event. Fields beyond Kind are populated only
// where the event carries them.
type Event struct {
	Kind       EventKind `json:"kind"`
	Time       float64   `json:"time,omitempty"`
	Duration   float64   `json:"duration,omitempty"`
	Code       int       `json:"code,omitempty"`
	Volume     float64   `json:"volume,omitempty"`
	Muted      bool      `json:"muted,omitempty"`
	Rate       float64   `json:"rate,omitempty"`
	Fullscreen bool      `json:"fullscreen,omitempty"`
}

// Command is an instruction queued for the rendering page to execute against
// its concrete player.
type Command struct {
	Name  string  `json:"name"`
	Value float64 `json:"value,omitempty"`
	URL   string  `json:"url,omitempty"`
}

const (
	cmdPlay            = "play"
	cmdPause           = "pause"
	cmdSeek            = "seek"
	cmdSetVolume       = "set_volume"
	cmdSetMuted        = "set_muted"
	cmdSetUnmuted      = "set_unmuted"
	cmdSetRate         = "set_rate"
	cmdEnterFullscreen = "enter_fullscreen"
	cmdExitFullscreen  = "exit_fullscreen"
	cmdSwapSource      = "swap_source"
)

// CommandSink receives commands bound for the rendering page.
type CommandSink interface {
	Send(Command)
}

// Adapter drives one delivery technology behind the unified control surface.
// Control methods are intent: they queue commands for the page and optimistic
// transitions where the technology reports no acknowledgement. HandleEvent
// folds relayed events into the session state.
type Adapter interface {
	Play()
	Pause()
	Seek(seconds float64)
	SetVolume(v float64)
	SetMuted(muted bool)
	SetRate(rate float64)
	RequestFullscreen()
	ExitFullscreen()
	HandleEvent(ev Event)
	Dispose()
}

// newAdapter selects the adapter for a resolved source. Direct files and Mux
// streams share the native media adapter, with the retry engine layered on
// top for Mux. YouTube gets the polling iframe adapter. Everything else is a
// passive embed: visible but not controllable.
func newAdapter(src source.Source, host *stateHost, sink CommandSink, bridge PlayerBridge) Adapter {
	switch src.Platform {
	case source.PlatformDirect:
		return newNativeAdapter(host, sink)
	case source.PlatformMux:
		return newRetryAdapter(src, host, sink, defaultMaxAttempts)
	case source.PlatformYouTube:
		return newYouTubeAdapter(host, sink, bridge)
	default:
		return newPassiveAdapter(host)
	}
}
