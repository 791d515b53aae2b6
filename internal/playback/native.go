package playback

// nativeAdapter drives a native media element. Event coverage is one-to-one:
// every transition the element reports maps onto a unified status, so the
// adapter holds almost no derived state of its own.
type nativeAdapter struct {
	host *stateHost
	sink CommandSink

	// retriedMuted marks that an autoplay rejection was already answered with
	// one muted retry, so the next rejection surfaces as an error.
	retriedMuted bool

	// onError lets the retry engine intercept media failures before they
	// surface. Nil outside the retry path.
	onError func(*Error) bool
}

func newNativeAdapter(host *stateHost, sink CommandSink) *nativeAdapter {
	return &nativeAdapter{host: host, sink: sink}
}

func (a *nativeAdapter) Play() {
	a.host.apply(func(s *State) {
		if s.Status == StatusIdle || s.Status == StatusEnded {
			s.Status = StatusLoading
		}
	})
	a.sink.Send(Command{Name: cmdPlay})
}

func (a *nativeAdapter) Pause() {
	a.sink.Send(Command{Name: cmdPause})
}

func (a *nativeAdapter) Seek(seconds float64) {
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

func (a *nativeAdapter) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	a.host.apply(func(s *State) { s.Volume = v })
	a.sink.Send(Command{Name: cmdSetVolume, Value: v})
}

func (a *nativeAdapter) SetMuted(muted bool) {
	a.host.apply(func(s *State) { s.Muted = muted })
	if muted {
		a.sink.Send(Command{Name: cmdSetMuted})
		return
	}
	a.sink.Send(Command{Name: cmdSetUnmuted})
}

func (a *nativeAdapter) SetRate(rate float64) {
	if rate <= 0 {
		rate = 1
	}
	a.host.apply(func(s *State) { s.Rate = rate })
	a.sink.Send(Command{Name: cmdSetRate, Value: rate})
}

func (a *nativeAdapter) RequestFullscreen() {
	a.sink.Send(Command{Name: cmdEnterFullscreen})
}

func (a *nativeAdapter) ExitFullscreen() {
	a.sink.Send(Command{Name: cmdExitFullscreen})
}

func (a *nativeAdapter) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventLoadedMetadata:
		a.host.apply(func(s *State) {
			s.Duration = ev.Duration
			if s.Status == StatusIdle {
				s.Status = StatusLoading
			}
		})
	case EventDurationChange:
		a.host.apply(func(s *State) { s.Duration = ev.Duration })
	case EventTimeUpdate:
		a.host.apply(func(s *State) { s.CurrentTime = ev.Time })
	case EventPlay, EventPlaying:
		a.host.apply(func(s *State) {
			s.Status = StatusPlaying
			s.LastError = nil
		})
	case EventPause:
		a.host.apply(func(s *State) {
			if s.Status == StatusPlaying || s.Status == StatusBuffering {
				s.Status = StatusPaused
			}
		})
	case EventWaiting:
		a.host.apply(func(s *State) {
			if s.Status == StatusPlaying {
				s.Status = StatusBuffering
			}
		})
	case EventEnded:
		a.host.apply(func(s *State) {
			s.Status = StatusEnded
			if s.Duration > 0 {
				s.CurrentTime = s.Duration
			}
		})
	case EventVolumeChange:
		a.host.apply(func(s *State) {
			s.Volume = ev.Volume
			s.Muted = ev.Muted
		})
	case EventRateChange:
		a.host.apply(func(s *State) { s.Rate = ev.Rate })
	case EventFullscreenChange:
		a.host.apply(func(s *State) { s.Fullscreen = ev.Fullscreen })
	case EventAutoplayBlocked:
		a.handleAutoplayBlocked()
	case EventMediaError:
		a.handleMediaError(ev.Code)
	}
}

// handleAutoplayBlocked answers the first rejection with one muted retry, the
// standard way around autoplay policies. A second rejection surfaces.
func (a *nativeAdapter) handleAutoplayBlocked() {
	if !a.retriedMuted {
		a.retriedMuted = true
		a.SetMuted(true)
		a.sink.Send(Command{Name: cmdPlay})
		return
	}
	a.fail(&Error{Kind: ErrAutoplayBlocked, Message: "autoplay rejected even when muted"})
}

// handleMediaError maps the four MediaError codes onto the error taxonomy.
func (a *nativeAdapter) handleMediaError(code int) {
	var err *Error
	switch code {
	case 1:
		err = &Error{Kind: ErrPlaybackAborted, Message: "media fetch aborted"}
	case 2:
		err = &Error{Kind: ErrNetwork, Message: "network error while fetching media"}
	case 3:
		err = &Error{Kind: ErrDecode, Message: "media could not be decoded"}
	default:
		err = &Error{Kind: ErrFormatUnsupported, Message: "media source not supported"}
	}
	a.fail(err)
}

func (a *nativeAdapter) fail(err *Error) {
	if a.onError != nil && a.onError(err) {
		return
	}
	a.host.fail(err)
}

func (a *nativeAdapter) Dispose() {}
