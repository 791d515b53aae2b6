package source

import (
	"regexp"
	"strings"
)

// Per-platform pattern lists, ordered from most to least specific. The first
// capture group of the first matching pattern wins.
var (
	youtubePatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/watch\?(?:[^#]*&)?v=([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/live/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/v/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`^([A-Za-z0-9_-]{11})$`),
	}

	vimeoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`player\.vimeo\.com/video/([0-9]+)`),
		regexp.MustCompile(`vimeo\.com/groups/[^/]+/videos/([0-9]+)`),
		regexp.MustCompile(`vimeo\.com/channels/[^/]+/([0-9]+)`),
		regexp.MustCompile(`vimeo\.com/(?:video/)?([0-9]+)`),
		regexp.MustCompile(`^([0-9]{5,})$`),
	}

	dailymotionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`dailymotion\.com/embed/video/([A-Za-z0-9]+)`),
		regexp.MustCompile(`dailymotion\.com/video/([A-Za-z0-9]+)`),
		regexp.MustCompile(`dai\.ly/([A-Za-z0-9]+)`),
		regexp.MustCompile(`^([A-Za-z0-9]+)$`),
	}

	muxPatterns = []*regexp.Regexp{
		regexp.MustCompile(`stream\.mux\.com/([A-Za-z0-9]+)`),
		regexp.MustCompile(`mux\.com/([A-Za-z0-9]+)`),
		regexp.MustCompile(`^([A-Za-z0-9]+)$`),
	}
)

// ExtractID pulls the canonical resource id for the given platform out of a
// raw value. It returns "" when no pattern matches; callers treat that as
// "cannot resolve" and fall back to the external/raw URL path.
func ExtractID(raw string, platform Platform) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	switch platform {
	case PlatformYouTube:
		return firstMatch(s, youtubePatterns)
	case PlatformVimeo:
		return firstMatch(s, vimeoPatterns)
	case PlatformDailymotion:
		// DailyMotion slugs are suffixed with "_title-tokens" and may carry
		// query parameters; strip both before matching so the bare slug
		// pattern cannot swallow the suffix.
		return firstMatch(stripTitleSuffix(stripQueryAndFragment(s)), dailymotionPatterns)
	case PlatformMux:
		return firstMatch(stripQueryAndFragment(s), muxPatterns)
	}
	return ""
}

func firstMatch(s string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

func stripQueryAndFragment(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}

// stripTitleSuffix removes a DailyMotion "_seo-title" suffix from the last
// path segment so the slug patterns capture only the id.
func stripTitleSuffix(s string) string {
	slash := strings.LastIndexByte(s, '/')
	if under := strings.IndexByte(s[slash+1:], '_'); under > 0 {
		return s[:slash+1+under]
	}
	return s
}
