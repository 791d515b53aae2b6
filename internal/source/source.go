// Package source resolves the free-form video URL field of a content record
// into a playable source descriptor. A raw value may be a full platform URL,
// a bare platform id, a direct media file URL, or a pasted iframe snippet;
// classification, id extraction, and embed URL construction are pure functions
// composed by Resolve.
package source

import "errors"

// Platform identifies the delivery mechanism behind a raw video URL.
type Platform string

const (
	PlatformYouTube     Platform = "youtube"
	PlatformVimeo       Platform = "vimeo"
	PlatformDailymotion Platform = "dailymotion"
	PlatformMux         Platform = "mux"
	PlatformDirect      Platform = "direct"
	PlatformEmbed       Platform = "embed"
	PlatformExternal    Platform = "external"
)

// ErrUnresolvable is returned when a platform was recognized but no resource
// id could be extracted, so no playback URL can be built for that platform.
var ErrUnresolvable = errors.New("source: could not extract a resource id")

// Source is the immutable result of resolving one raw input. A new record
// (for example a quality switch) produces a new Source; it is never mutated.
type Source struct {
	Raw         string   `json:"raw"`
	Platform    Platform `json:"platform"`
	ID          string   `json:"id"`
	PlaybackURL string   `json:"playbackUrl"`
	// Controllable is true only when a programmatic control channel exists:
	// a native media element (direct, mux) or the YouTube player API.
	Controllable bool `json:"controllable"`
}

// Options tunes the embed URL parameter profile.
type Options struct {
	Autoplay bool
	Muted    bool
	Loop     bool
	// Controls toggles the platform's own chrome. Pages driving a native
	// adapter render their own controls and pass false.
	Controls bool
	Color    string
}

// DefaultOptions is the parameter profile every player page uses: autoplay on,
// platform chrome suppressed because the page renders its own controls.
var DefaultOptions = Options{Autoplay: true}

// ValidPlatform reports whether s names a known platform tag. Used to check
// stored platform hints before trusting them over classification.
func ValidPlatform(s string) bool {
	switch Platform(s) {
	case PlatformYouTube, PlatformVimeo, PlatformDailymotion, PlatformMux,
		PlatformDirect, PlatformEmbed, PlatformExternal:
		return true
	}
	return false
}

// Controllable reports whether the platform exposes a control channel the
// playback engine can drive.
func (p Platform) Controllable() bool {
	switch p {
	case PlatformDirect, PlatformMux, PlatformYouTube:
		return true
	}
	return false
}

// Native reports whether the platform plays through a native media element
// rather than an iframe.
func (p Platform) Native() bool {
	return p == PlatformDirect || p == PlatformMux || p == PlatformExternal
}

// RequiresID reports whether an empty resource id makes the source
// unresolvable for this platform.
func (p Platform) RequiresID() bool {
	switch p {
	case PlatformYouTube, PlatformVimeo, PlatformDailymotion, PlatformMux:
		return true
	}
	return false
}
