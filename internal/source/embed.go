package source

import (
	"net/url"
	"regexp"
	"strings"
)

var iframeSrcPattern = regexp.MustCompile(`(?i)src\s*=\s*["']([^"']+)["']`)

// BuildPlaybackURL constructs the canonical embeddable URL for a resolved id.
// The parameter profile is the same on every player page: branding suppressed
// and recommendation surfaces disabled wherever the platform allows it.
//
// Platforms that require an id (youtube, vimeo, dailymotion, mux) yield ""
// when id is empty; the resolver surfaces that as an unresolvable source
// instead of emitting a broken URL.
func BuildPlaybackURL(id string, platform Platform, raw string, opts Options) string {
	switch platform {
	case PlatformYouTube:
		if id == "" {
			return ""
		}
		q := url.Values{}
		q.Set("rel", "0")
		q.Set("modestbranding", "1")
		q.Set("playsinline", "1")
		q.Set("iv_load_policy", "3")
		q.Set("fs", "0")
		q.Set("disablekb", "1")
		q.Set("enablejsapi", "1")
		q.Set("controls", boolParam(opts.Controls))
		if opts.Autoplay {
			q.Set("autoplay", "1")
		}
		if opts.Muted {
			q.Set("mute", "1")
		}
		if opts.Loop {
			q.Set("loop", "1")
			q.Set("playlist", id)
		}
		return "https://www.youtube.com/embed/" + id + "?" + q.Encode()

	case PlatformVimeo:
		if id == "" {
			return ""
		}
		q := url.Values{}
		q.Set("title", "0")
		q.Set("byline", "0")
		q.Set("portrait", "0")
		q.Set("badge", "0")
		if opts.Autoplay {
			q.Set("autoplay", "1")
		}
		if opts.Muted {
			q.Set("muted", "1")
		}
		if opts.Loop {
			q.Set("loop", "1")
		}
		if opts.Color != "" {
			q.Set("color", strings.TrimPrefix(opts.Color, "#"))
		}
		return "https://player.vimeo.com/video/" + id + "?" + q.Encode()

	case PlatformDailymotion:
		if id == "" {
			return ""
		}
		q := url.Values{}
		q.Set("queue-autoplay-next", "0")
		q.Set("sharing-enable", "0")
		q.Set("ui-logo", "0")
		if opts.Autoplay {
			q.Set("autoplay", "1")
		}
		if opts.Muted {
			q.Set("mute", "1")
		}
		return "https://www.dailymotion.com/embed/video/" + id + "?" + q.Encode()

	case PlatformMux:
		if id == "" {
			return ""
		}
		// Native-playable HLS manifest, not an iframe.
		return "https://stream.mux.com/" + id + ".m3u8"

	case PlatformEmbed:
		if m := iframeSrcPattern.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
		return raw

	case PlatformDirect, PlatformExternal:
		return raw
	}
	return raw
}

// MuxFormatURL builds the playback URL for an alternate container format of a
// Mux playback id. The retry engine walks these when the manifest fails.
func MuxFormatURL(id, ext string) string {
	return "https://stream.mux.com/" + id + ext
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
