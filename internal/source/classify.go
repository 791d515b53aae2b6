package source

import (
	"regexp"
	"strings"
)

// Direct media extensions, matched case-insensitively against the URL path.
var directExtensions = []string{
	".mp4", ".webm", ".mkv", ".avi", ".mov", ".m3u8", ".mpd", ".m4v",
	".wmv", ".flv", ".ogg", ".ogv", ".ts", ".3gp",
}

var (
	bareVimeoID   = regexp.MustCompile(`^[0-9]{5,}$`)
	bareYouTubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	bareToken     = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// Classify maps an arbitrary raw value to a Platform. It is deterministic and
// total: any input, including empty, yields a tag, and the rules are ordered
// because the patterns overlap (a bare 11-char token would also satisfy the
// mux shape). PlatformExternal is the catch-all; classification never fails.
func Classify(raw string) Platform {
	s := strings.TrimSpace(raw)
	if s == "" {
		return PlatformExternal
	}
	lower := strings.ToLower(s)

	switch {
	case strings.Contains(lower, "youtube.com"), strings.Contains(lower, "youtu.be"):
		return PlatformYouTube
	case strings.Contains(lower, "vimeo.com"):
		return PlatformVimeo
	case strings.Contains(lower, "dailymotion.com"), strings.Contains(lower, "dai.ly"):
		return PlatformDailymotion
	case strings.Contains(lower, "mux.com"):
		return PlatformMux
	}

	if hasDirectExtension(lower) {
		return PlatformDirect
	}

	if strings.Contains(lower, "<iframe") || strings.Contains(lower, "embed") {
		return PlatformEmbed
	}

	// Bare tokens carry no scheme or host to go on, so fall back to shape
	// rules in a fixed priority: numeric ids are Vimeo, 11 url-safe chars are
	// YouTube, any other plain token is treated as a Mux playback id. Mux and
	// DailyMotion ids genuinely overlap here; records created through the API
	// carry a stored platform hint that bypasses this branch entirely.
	if !strings.Contains(s, "/") && !strings.Contains(s, " ") {
		switch {
		case bareVimeoID.MatchString(s):
			return PlatformVimeo
		case bareYouTubeID.MatchString(s):
			return PlatformYouTube
		case bareToken.MatchString(s):
			return PlatformMux
		}
	}

	return PlatformExternal
}

func hasDirectExtension(lower string) bool {
	// Ignore query string and fragment when checking the extension.
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range directExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
