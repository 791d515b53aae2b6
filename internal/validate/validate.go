package validate

import "fmt"

// Text field length limits — single source of truth for backend and frontend.
const (
	MaxTitleLength       = 300
	MaxDescriptionLength = 5000
	MaxVideoURLLength    = 2000
	MaxAuthorNameLength  = 100
	MaxCommentBodyLength = 2000
	MaxSearchQueryLength = 200
)

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func Title(s string) string        { return checkLen(s, MaxTitleLength, "title") }
func Description(s string) string  { return checkLen(s, MaxDescriptionLength, "description") }
func VideoURL(s string) string     { return checkLen(s, MaxVideoURLLength, "video URL") }
func DownloadLink(s string) string { return checkLen(s, MaxVideoURLLength, "download link") }
func AuthorName(s string) string   { return checkLen(s, MaxAuthorNameLength, "name") }
func CommentBody(s string) string  { return checkLen(s, MaxCommentBodyLength, "comment") }
func SearchQuery(s string) string  { return checkLen(s, MaxSearchQueryLength, "search query") }

// Kind validates the content kind enum.
func Kind(s string) string {
	switch s {
	case "movie", "episode":
		return ""
	}
	return "kind must be movie or episode"
}

// Year validates a release year. Zero means unknown.
func Year(n int) string {
	if n != 0 && (n < 1888 || n > 2100) {
		return "year must be between 1888 and 2100"
	}
	return ""
}

// FieldLimits returns a map of field names to max lengths for the /api/limits endpoint.
func FieldLimits() map[string]int {
	return map[string]int{
		"title":       MaxTitleLength,
		"description": MaxDescriptionLength,
		"videoUrl":    MaxVideoURLLength,
		"authorName":  MaxAuthorNameLength,
		"commentBody": MaxCommentBodyLength,
		"searchQuery": MaxSearchQueryLength,
	}
}
