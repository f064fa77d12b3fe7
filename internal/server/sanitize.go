package server

import "regexp"

var (
	illegalChars    = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespace      = regexp.MustCompile(`\s+`)
	edgeUnderscores = regexp.MustCompile(`^_+|_+$`)
)

// sanitizeTitle turns a video title into a filesystem-safe display name:
// illegal filename characters are stripped, whitespace runs collapse to a
// single underscore, and leading/trailing underscores are trimmed. The
// result can be empty; the caller substitutes a unique name then.
func sanitizeTitle(title string) string {
	clean := illegalChars.ReplaceAllString(title, "")
	clean = whitespace.ReplaceAllString(clean, "_")
	return edgeUnderscores.ReplaceAllString(clean, "")
}
