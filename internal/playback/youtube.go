package playback

import (
	"sync"
	"time"
)

// youtubePollInterval is how often the current position is sampled. The
// iframe API has no continuous time event, so position advances by polling.
const youtubePollInterval = 500 * time.Millisecond

// PlayerBridge exposes the position readout of an iframe player. The
// production bridge is fed by position samples the page relays; tests
// substitute a fake.
type PlayerBridge interface {
	// CurrentTime returns the last known position. ok is false until the
	// player has reported at least once.
	CurrentTime() (seconds float64, ok bool)
	Duration() float64
}

// SampleBridge is a PlayerBridge fed by relayed position samples.
type SampleBridge struct {
	mu       sync.Mutex
	time     float64
	duration float64
	seen     bool
}

func (b *SampleBridge) SetSample(seconds, duration float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.time = seconds
	if duration > 0 {
		b.duration = duration
	}
	b.seen = true
}

func (b *SampleBridge) CurrentTime() (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.time, b.seen
}

func (b *SampleBridge) Duration() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duration
}

// YouTube iframe API state codes.
const (
	ytStateUnstarted = -1
	ytStateEnded     = 0
	ytStatePlaying   = 1
	ytStatePaused    = 2
	ytStateBuffering = 3
	ytStateCued      = 5
)

// youtubeAdapter drives the YouTube iframe player. Commands are queued like
// the native adapter's, but position updates come from a 500ms poll of the
// bridge because the iframe API only pushes discrete state changes.
type youtubeAdapter struct {
	host   *stateHost
	sink   CommandSink
	bridge PlayerBridge

	pollInterval time.Duration
	startPoll    sync.Once
	done         chan struct{}
}

func newYouTubeAdapter(host *stateHost, sink CommandSink, bridge PlayerBridge) *youtubeAdapter {
	if bridge == nil {
		bridge = &SampleBridge{}
	}
	return &youtubeAdapter{
		host:         host,
		sink:         sink,
		bridge:       bridge,
		pollInterval: youtubePollInterval,
		done:         make(chan struct{}),
	}
}

func (a *youtubeAdapter) Play() {
	a.host.apply(func(s *State) {
		if s.Status == StatusIdle || s.Status == StatusEnded {
			s.Status = StatusLoading
		}
	})
	a.sink.Send(Command{Name: cmdPlay})
}

func (a *youtubeAdapter) Pause() {
	a.sink.Send(Command{Name: cmdPause})
}

func (a *youtubeAdapter) Seek(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	a.host.apply(func(s *State) {
		if s.Duration > 0 && seconds > s.Duration {
			seconds = s.Duration
		}
		s.CurrentTime = seconds
	})
	a.sink.Send(Command{Name: cmdSeek, Value: seconds})
}

func (a *youtubeAdapter) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	a.host.apply(func(s *State) { s.Volume = v })
	// The iframe API takes 0-100.
	a.sink.Send(Command{Name: cmdSetVolume, Value: v * 100})
}

func (a *youtubeAdapter) SetMuted(muted bool) {
	a.host.apply(func(s *State) { s.Muted = muted })
	if muted {
		a.sink.Send(Command{Name: cmdSetMuted})
		return
	}
	a.sink.Send(Command{Name: cmdSetUnmuted})
}

func (a *youtubeAdapter) SetRate(rate float64) {
	if rate <= 0 {
		rate = 1
	}
	a.host.apply(func(s *State) { s.Rate = rate })
	a.sink.Send(Command{Name: cmdSetRate, Value: rate})
}

func (a *youtubeAdapter) RequestFullscreen() {
	a.sink.Send(Command{Name: cmdEnterFullscreen})
}

func (a *youtubeAdapter) ExitFullscreen() {
	a.sink.Send(Command{Name: cmdExitFullscreen})
}

func (a *youtubeAdapter) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventPlayerReady:
		a.host.apply(func(s *State) {
			if d := a.bridge.Duration(); d > 0 {
				s.Duration = d
			}
			if s.Status == StatusIdle {
				s.Status = StatusLoading
			}
		})
		// The ready callback can fire more than once across iframe reloads;
		// only the first one starts the poll loop.
		a.startPoll.Do(func() { go a.poll() })
	case EventPlayerState:
		a.handleStateChange(ev.Code)
	case EventPlayerError:
		a.handlePlayerError(ev.Code)
	case EventFullscreenChange:
		a.host.apply(func(s *State) { s.Fullscreen = ev.Fullscreen })
	case EventVolumeChange:
		a.host.apply(func(s *State) {
			s.Volume = ev.Volume
			s.Muted = ev.Muted
		})
	}
}

func (a *youtubeAdapter) handleStateChange(code int) {
	switch code {
	case ytStatePlaying:
		a.host.apply(func(s *State) {
			s.Status = StatusPlaying
			s.LastError = nil
			if d := a.bridge.Duration(); d > 0 {
				s.Duration = d
			}
		})
	case ytStatePaused:
		a.host.apply(func(s *State) {
			if s.Status == StatusPlaying || s.Status == StatusBuffering {
				s.Status = StatusPaused
			}
		})
	case ytStateBuffering:
		a.host.apply(func(s *State) { s.Status = StatusBuffering })
	case ytStateEnded:
		a.host.apply(func(s *State) {
			s.Status = StatusEnded
			if s.Duration > 0 {
				s.CurrentTime = s.Duration
			}
		})
		// Ended restarts from zero. The iframe shows suggested videos over a
		// finished player; continuous replay keeps our chrome on screen
		// instead, without relying on the playlist loop parameter.
		a.Seek(0)
		a.Play()
	case ytStateUnstarted, ytStateCued:
		a.host.apply(func(s *State) {
			if s.Status == StatusPlaying || s.Status == StatusBuffering {
				s.Status = StatusLoading
			}
		})
	}
}

func (a *youtubeAdapter) handlePlayerError(code int) {
	var err *Error
	switch code {
	case 5:
		err = &Error{Kind: ErrDecode, Message: "player could not play the video"}
	case 101, 150:
		err = &Error{Kind: ErrUnresolvableSource, Message: "embedding disabled by the video owner"}
	default:
		// 2 (bad id) and 100 (removed or private).
		err = &Error{Kind: ErrUnresolvableSource, Message: "video not found or not playable"}
	}
	a.host.fail(err)
}

// poll advances CurrentTime from the bridge while playing. Stopped by
// Dispose.
func (a *youtubeAdapter) poll() {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			if a.host.status() != StatusPlaying {
				continue
			}
			t, ok := a.bridge.CurrentTime()
			if !ok {
				continue
			}
			a.host.apply(func(s *State) {
				s.CurrentTime = t
				if d := a.bridge.Duration(); d > 0 {
					s.Duration = d
				}
			})
		}
	}
}

func (a *youtubeAdapter) Dispose() {
	select {
	case <-a.done:
	default:
		close(a.done)
	}
}
