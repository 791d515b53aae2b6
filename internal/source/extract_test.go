package source

import "testing"

func TestExtractIDYouTube(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch URL extra params", "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ&t=10s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with timestamp", "https://youtu.be/dQw4w9WgXcQ?t=30", "dQw4w9WgXcQ"},
		{"embed link", "https://www.youtube.com/embed/dQw4w9WgXcQ?rel=0", "dQw4w9WgXcQ"},
		{"shorts link", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"legacy v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no match", "https://www.youtube.com/channel/UCabc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractID(tt.raw, PlatformYouTube); got != tt.want {
				t.Errorf("ExtractID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractIDVimeo(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"canonical", "https://vimeo.com/76979871", "76979871"},
		{"with query", "https://vimeo.com/76979871?autoplay=1", "76979871"},
		{"player link", "https://player.vimeo.com/video/76979871", "76979871"},
		{"channel form", "https://vimeo.com/channels/staffpicks/76979871", "76979871"},
		{"group form", "https://vimeo.com/groups/shortfilms/videos/76979871", "76979871"},
		{"bare numeric id", "1234567890", "1234567890"},
		{"no match", "https://vimeo.com/about", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractID(tt.raw, PlatformVimeo); got != tt.want {
				t.Errorf("ExtractID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractIDDailymotion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"video with title suffix", "https://www.dailymotion.com/video/x8j1z1a_trailer", "x8j1z1a"},
		{"video with long suffix", "https://www.dailymotion.com/video/x8j1z1a_some-movie-trailer-2024_shortfilms", "x8j1z1a"},
		{"video plain", "https://www.dailymotion.com/video/x8j1z1a", "x8j1z1a"},
		{"short link", "https://dai.ly/x8j1z1a", "x8j1z1a"},
		{"embed form", "https://www.dailymotion.com/embed/video/x8j1z1a", "x8j1z1a"},
		{"query stripped before match", "https://www.dailymotion.com/video/x8j1z1a?playlist=x5zhzj", "x8j1z1a"},
		{"bare slug", "x8j1z1a", "x8j1z1a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractID(tt.raw, PlatformDailymotion); got != tt.want {
				t.Errorf("ExtractID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractIDMux(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"stream URL", "https://stream.mux.com/DS00Spx1CV902MCtPj5WknGlR102V5HFkDe.m3u8", "DS00Spx1CV902MCtPj5WknGlR102V5HFkDe"},
		{"stream URL mp4", "https://stream.mux.com/DS00Spx1CV902MCtPj5WknGlR102V5HFkDe.mp4", "DS00Spx1CV902MCtPj5WknGlR102V5HFkDe"},
		{"bare playback id", "DS00Spx1CV902MCtPj5WknGlR102V5HFkDe", "DS00Spx1CV902MCtPj5WknGlR102V5HFkDe"},
		{"no match", "https://mux.com/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractID(tt.raw, PlatformMux); got != tt.want {
				t.Errorf("ExtractID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractIDNonIDPlatforms(t *testing.T) {
	for _, p := range []Platform{PlatformDirect, PlatformEmbed, PlatformExternal} {
		if got := ExtractID("https://cdn.example.com/a.mp4", p); got != "" {
			t.Errorf("ExtractID for %q should be empty, got %q", p, got)
		}
	}
}
