package loader

import "regexp"

var (
	closingRef = regexp.MustCompile(`(?i)(?:fix(?:es|ed)?|close(?:s|d)?|resolve(?:s|d)?)\s*#(\d+)`)
	anyRef     = regexp.MustCompile(`#(\d+)`)
)

// ExtractReference finds the issue number a pull request points at. The last
// closing-keyword reference ("fixes #12") wins, since PR templates put examples
// first; otherwise the first bare "#N" is used. Returns "" when there is none.
func ExtractReference(text string) string {
	if m := closingRef.FindAllStringSubmatch(text, -1); len(m) > 0 {
		return m[len(m)-1][1]
	}
	if m := anyRef.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
