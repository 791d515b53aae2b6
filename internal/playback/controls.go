package playback

import (
	"sync"
	"time"
)

// controlsHideDelay is how long after the last user activity the custom
// controls hide. Hiding only happens while playing; paused, buffering, and
// error states keep the controls up.
const controlsHideDelay = 3 * time.Second

// controlsTimer owns the ControlsVisible flag of one session. Every activity
// ping shows the controls and re-arms the hide timer; an expiry that lands in
// a non-playing state is a no-op, and the next activity re-arms as usual.
type controlsTimer struct {
	mu    sync.Mutex
	host  *stateHost
	delay time.Duration
	timer *time.Timer
	done  bool
}

func newControlsTimer(host *stateHost, delay time.Duration) *controlsTimer {
	if delay <= 0 {
		delay = controlsHideDelay
	}
	return &controlsTimer{host: host, delay: delay}
}

// Activity marks user interaction: show the controls and restart the clock.
// Also called when playback enters playing and once at session creation, so
// the countdown runs without waiting for a first interaction.
func (t *controlsTimer) Activity() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	if !t.host.snapshot().ControlsVisible {
		t.host.apply(func(s *State) { s.ControlsVisible = true })
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.delay, t.expire)
}

func (t *controlsTimer) expire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	if t.host.status() != StatusPlaying {
		return
	}
	t.host.apply(func(s *State) { s.ControlsVisible = false })
}

// Stop cancels any pending hide and leaves the controls in their current
// visibility. Used on session close.
func (t *controlsTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
