package narrative

import (
	"regexp"
	"strings"
)

// The upstream text generator is not guaranteed to honor "plain text
// only" instructions, so sanitation is mandatory before any narrative
// is persisted.

var (
	codeFenceRe = regexp.MustCompile("(?s)```.*?```")
	spaceRunRe  = regexp.MustCompile(` +`)
	blankRunRe  = regexp.MustCompile(`\n\s+`)
)

// Sanitize strips markdown artifacts from generated text: bold/italic
// markers, heading markers, runs of spaces, leading whitespace per
// line, and fenced code blocks.
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		for _, marker := range []string{"### ", "## ", "# "} {
			if strings.HasPrefix(line, marker) {
				line = strings.TrimPrefix(line, marker)
				break
			}
		}
		lines[i] = line
	}
	text = strings.Join(lines, "\n")

	text = spaceRunRe.ReplaceAllString(text, " ")
	text = codeFenceRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}
