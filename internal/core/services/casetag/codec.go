// Package casetag encodes and decodes the "@C<id>" tag that links a scenario to its TestRail case.
package casetag

import (
	"regexp"
	"strconv"
	"strings"
)

// Marker prefixes the numeric case id in a tag.
const Marker = "@C"

var caseIDPattern = regexp.MustCompile(`^@C(\d+)$`)

// HasKnownCaseID reports whether any tag is a case-id marker. Markers whose id is
// unusable (zero, overflowing) still count: the scenario is mapped.
func HasKnownCaseID(tags []string) bool {
	for _, tag := range tags {
		if caseIDPattern.MatchString(strings.TrimSpace(tag)) {
			return true
		}
	}
	return false
}

// ExtractCaseID returns the id of the first usable case-id marker in tags.
func ExtractCaseID(tags []string) (int64, bool) {
	for _, tag := range tags {
		if id, ok := parse(tag); ok {
			return id, true
		}
	}
	return 0, false
}

// FormatCaseIDTag renders the marker tag for id.
func FormatCaseIDTag(id int64) string {
	return Marker + strconv.FormatInt(id, 10)
}

// IsSmoke reports whether the scenario carries the smoke tag, in any letter case.
func IsSmoke(tags []string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, "@smoke") {
			return true
		}
	}
	return false
}

func parse(tag string) (int64, bool) {
	m := caseIDPattern.FindStringSubmatch(strings.TrimSpace(tag))
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
