package pdf

import (
	"regexp"
	"strings"
)

var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.?\s+[A-Z]`),                  // numbered headings
	regexp.MustCompile(`^[A-Z][A-Z\s]+$`),                  // all caps
	regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*$`), // title case
	regexp.MustCompile(`^#{1,6}\s+`),                       // markdown-style
	regexp.MustCompile(`^[A-Z][a-z]+:$`),                   // colon endings
}

func extractHeadings(text string) []string {
	var headings []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if isHeading(line) {
			headings = append(headings, line)
		}
	}
	return headings
}

func isHeading(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, pattern := range headingPatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}
