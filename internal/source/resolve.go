package source

import "strings"

// Resolve classifies a raw value, extracts its resource id, and builds the
// playback URL. It never fails closed: when an id-requiring platform yields no
// id, the returned Source falls back to external passthrough and the error
// reports the unresolvable classification so callers can offer a recovery
// path.
func Resolve(raw string) (Source, error) {
	return ResolveWithHint(raw, "")
}

// ResolveWithHint resolves with a previously stored platform classification.
// Records classified at creation time keep that tag so re-resolution on every
// page render cannot disagree with what was persisted; an empty or unknown
// hint falls back to classification.
func ResolveWithHint(raw string, hint Platform) (Source, error) {
	return resolve(raw, hint, DefaultOptions)
}

// ResolveWithOptions is ResolveWithHint with an explicit embed parameter
// profile, for pages that need chrome enabled or autoplay off.
func ResolveWithOptions(raw string, hint Platform, opts Options) (Source, error) {
	return resolve(raw, hint, opts)
}

func resolve(raw string, hint Platform, opts Options) (Source, error) {
	trimmed := strings.TrimSpace(raw)

	platform := hint
	if platform == "" || !ValidPlatform(string(platform)) {
		platform = Classify(trimmed)
	}

	id := ExtractID(trimmed, platform)
	if id == "" && platform.RequiresID() {
		// Recognized platform, unusable id. Degrade to a passthrough
		// external source so the caller still has something renderable.
		return Source{
			Raw:         raw,
			Platform:    PlatformExternal,
			PlaybackURL: trimmed,
		}, ErrUnresolvable
	}

	return Source{
		Raw:          raw,
		Platform:     platform,
		ID:           id,
		PlaybackURL:  BuildPlaybackURL(id, platform, trimmed, opts),
		Controllable: platform.Controllable(),
	}, nil
}
