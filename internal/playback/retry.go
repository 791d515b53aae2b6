package playback

import (
	"fmt"

	"github.com/reelgrid/reelgrid/internal/source"
)

// Mux assets are reachable as an HLS manifest and as a progressive MP4; when
// one fails the other often still plays. Order matters: HLS first.
var muxFormats = []string{".m3u8", ".mp4"}

const defaultMaxAttempts = 2

// retryAdapter layers format fallback over the native adapter for Mux
// streams. Media failures are intercepted before they surface: while attempts
// remain and an untried format exists, the page is told to swap the element's
// source and play again. Only when both run out does a terminal error reach
// the session.
type retryAdapter struct {
	*nativeAdapter

	src         source.Source
	sink        CommandSink
	maxAttempts int
	attempt     int
	tried       map[string]bool
}

func newRetryAdapter(src source.Source, host *stateHost, sink CommandSink, maxAttempts int) *retryAdapter {
	a := &retryAdapter{
		nativeAdapter: newNativeAdapter(host, sink),
		src:           src,
		sink:          sink,
		maxAttempts:   maxAttempts,
		tried:         map[string]bool{},
	}
	if len(muxFormats) > 0 {
		// The playback URL already carries the first format.
		a.tried[muxFormats[0]] = true
	}
	a.nativeAdapter.onError = a.interceptError
	return a
}

// interceptError consumes retryable media failures and schedules the next
// format. Returns false for errors the retry path does not own, letting them
// surface unchanged.
func (a *retryAdapter) interceptError(err *Error) bool {
	// Aborted fetches ride the same fallback: a deliberate teardown never
	// reaches here because the page stops relaying first, so an abort on a
	// live session means the fetch died and another rendition may still play.
	switch err.Kind {
	case ErrPlaybackAborted, ErrNetwork, ErrDecode, ErrFormatUnsupported:
	default:
		return false
	}

	if a.attempt >= a.maxAttempts {
		a.exhausted()
		return true
	}
	a.attempt++

	next := a.nextFormat()
	if next == "" {
		a.exhausted()
		return true
	}
	a.tried[next] = true

	a.host.apply(func(s *State) {
		s.Status = StatusLoading
		s.CurrentTime = 0
	})
	a.sink.Send(Command{Name: cmdSwapSource, URL: source.MuxFormatURL(a.src.ID, next)})
	a.sink.Send(Command{Name: cmdPlay})
	return true
}

func (a *retryAdapter) nextFormat() string {
	for _, f := range muxFormats {
		if !a.tried[f] {
			return f
		}
	}
	return ""
}

func (a *retryAdapter) exhausted() {
	a.host.fail(&Error{
		Kind:               ErrRetriesExhausted,
		Message:            fmt.Sprintf("stream failed after %d attempts", a.attempt),
		CanFallbackToEmbed: true,
	})
}
