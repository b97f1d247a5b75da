// Package links pulls URLs and the close-topic command out of chat text.
package links

import (
	"regexp"
	"strings"
)

// closeCommand is matched anywhere in the text, ignoring case.
const closeCommand = "topic closed"

// urlRegex matches http(s) URLs up to whitespace or a bracket/quote character.
// \s in RE2 is ASCII-only, so Unicode separators are listed explicitly.
var urlRegex = regexp.MustCompile(`https?://[^\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}"'<>()\[\]{}]+`)

// trailingPunct is stripped from the end of every match.
const trailingPunct = ".,)"

// Extract returns every URL in text, in order of appearance.
// Duplicates are kept; the daily link set removes them.
func Extract(text string) []string {
	if text == "" {
		return []string{}
	}

	matches := urlRegex.FindAllString(text, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, strings.TrimRight(m, trailingPunct))
	}
	return links
}

// IsCloseCommand reports whether text contains "topic closed" in any case.
func IsCloseCommand(text string) bool {
	return strings.Contains(strings.ToLower(text), closeCommand)
}
