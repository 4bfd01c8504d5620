package scanner

import (
	"regexp"
	"strings"
)

var (
	scenarioPattern = regexp.MustCompile(`^\s*Scenario:\s*(.+)$`)
	tagPattern      = regexp.MustCompile(`@(\w+)`)
)

// IsTagLine reports whether the line holds tags only, e.g. "  @Smoke @C12".
func IsTagLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "@")
}

// ParseTags returns every "@word" token on the line, in order.
func ParseTags(line string) []string {
	matches := tagPattern.FindAllStringSubmatch(line, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, "@"+m[1])
	}
	return tags
}

// MatchScenario returns the trimmed title of a "Scenario:" line.
func MatchScenario(line string) (string, bool) {
	m := scenarioPattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(m[1])
	if title == "" {
		return "", false
	}
	return title, true
}

// IsNeutralLine is a blank or comment line; it keeps tags collected above it.
func IsNeutralLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}
