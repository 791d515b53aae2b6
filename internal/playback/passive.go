package playback

// passiveAdapter backs embeds without a control channel: Vimeo, DailyMotion,
// pasted iframes, and unrecognized URLs rendered as-is. Commands are silently
// absorbed so the control surface stays uniform, and the status is pinned to
// playing so the page behaves as if content is active.
type passiveAdapter struct {
	host *stateHost
}

func newPassiveAdapter(host *stateHost) *passiveAdapter {
	a := &passiveAdapter{host: host}
	a.host.apply(func(s *State) { s.Status = StatusPlaying })
	return a
}

func (a *passiveAdapter) Play()              {}
func (a *passiveAdapter) Pause()             {}
func (a *passiveAdapter) Seek(float64)       {}
func (a *passiveAdapter) SetVolume(float64)  {}
func (a *passiveAdapter) SetMuted(bool)      {}
func (a *passiveAdapter) SetRate(float64)    {}
func (a *passiveAdapter) RequestFullscreen() {}
func (a *passiveAdapter) ExitFullscreen()    {}

// HandleEvent tracks the few events a plain iframe container still produces.
func (a *passiveAdapter) HandleEvent(ev Event) {
	if ev.Kind == EventFullscreenChange {
		a.host.apply(func(s *State) { s.Fullscreen = ev.Fullscreen })
	}
}

func (a *passiveAdapter) Dispose() {}
