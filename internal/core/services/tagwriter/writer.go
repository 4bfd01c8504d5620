// Package tagwriter writes case-id tags produced by a synchronization pass back
// into the feature documents they belong to.
package tagwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/services/casetag"
	"gitlab.com/casesync.net/internal/core/services/scanner"
	"gitlab.com/casesync.net/internal/domain"
)

type Writer struct {
	logger primary.Logger
}

func New(logger primary.Logger) *Writer {
	return &Writer{logger: logger}
}

// Apply edits every document referenced by actions and returns the ids of the
// actions that are now reflected in the corpus, including ones that were already
// tagged. Actions whose scenario cannot be found are left pending.
func (w *Writer) Apply(actions []domain.TagAction) ([]uuid.UUID, error) {
	byPath := make(map[string][]domain.TagAction)
	var paths []string
	for _, a := range actions {
		if !a.Pending() {
			continue
		}
		if _, ok := byPath[a.SourcePath]; !ok {
			paths = append(paths, a.SourcePath)
		}
		byPath[a.SourcePath] = append(byPath[a.SourcePath], a)
	}
	sort.Strings(paths)

	var applied []uuid.UUID
	var failed []string
	for _, path := range paths {
		ids, err := w.applyFile(path, byPath[path])
		if err != nil {
			w.logger.Error("Failed to write tags", "path", path, "error", err)
			failed = append(failed, path)
			continue
		}
		applied = append(applied, ids...)
	}

	if len(failed) > 0 {
		return applied, fmt.Errorf("failed to write tags to %d file(s): %s", len(failed), strings.Join(failed, ", "))
	}
	return applied, nil
}

func (w *Writer) applyFile(path string, actions []domain.TagAction) ([]uuid.UUID, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")

	targets := w.placeActions(path, lines, actions)
	// bottom-up so inserted lines never shift a scenario still to be processed
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].idx > targets[j].idx })

	var applied []uuid.UUID
	changed := false
	for _, t := range targets {
		a := t.action
		if tags := blockTags(lines, t.idx); casetag.HasKnownCaseID(tags) {
			existing, ok := casetag.ExtractCaseID(tags)
			if !ok || existing != a.CaseID {
				w.logger.Warn("Scenario already mapped to another case, tag left pending",
					"path", path, "title", a.Title, "existing", existing, "tag", a.Tag)
				continue
			}
			applied = append(applied, a.ID)
			continue
		}

		lines = insertTag(lines, t.idx, a.Tag)
		changed = true
		applied = append(applied, a.ID)
		w.logger.Info("Tagged scenario", "path", path, "title", a.Title, "tag", a.Tag)
	}

	if changed {
		if err := writeAtomic(path, []byte(strings.Join(lines, "\n")), info.Mode().Perm()); err != nil {
			return nil, err
		}
	}
	return applied, nil
}

type placement struct {
	action domain.TagAction
	idx    int
}

// placeActions gives every action its own scenario line. An action keeps its
// recorded line when that scenario still has the title and is free; the others,
// in recorded order, take the first free scenario with the same title, so repeated
// titles in a shifted document keep their relative order.
func (w *Writer) placeActions(path string, lines []string, actions []domain.TagAction) []placement {
	sorted := slices.Clone(actions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Line < sorted[j].Line })

	claimed := make(map[int]bool)
	var placed []placement
	var moved []domain.TagAction
	for _, a := range sorted {
		if i := a.Line - 1; i >= 0 && i < len(lines) && hasTitle(lines[i], a.Title) && free(lines, i, a.CaseID) && !claimed[i] {
			claimed[i] = true
			placed = append(placed, placement{action: a, idx: i})
			continue
		}
		moved = append(moved, a)
	}

	for _, a := range moved {
		idx := findByTitle(lines, a, claimed)
		if idx < 0 {
			w.logger.Warn("Scenario not found, tag left pending", "path", path, "title", a.Title, "tag", a.Tag)
			continue
		}
		claimed[idx] = true
		placed = append(placed, placement{action: a, idx: idx})
	}
	return placed
}

// findByTitle prefers a scenario already carrying the action's own marker, then
// the first untagged one.
func findByTitle(lines []string, a domain.TagAction, claimed map[int]bool) int {
	untagged := -1
	for i, line := range lines {
		if claimed[i] || !hasTitle(line, a.Title) {
			continue
		}
		tags := blockTags(lines, i)
		if !casetag.HasKnownCaseID(tags) {
			if untagged < 0 {
				untagged = i
			}
			continue
		}
		if id, ok := casetag.ExtractCaseID(tags); ok && id == a.CaseID {
			return i
		}
	}
	return untagged
}

func hasTitle(line, title string) bool {
	got, ok := scanner.MatchScenario(line)
	return ok && got == title
}

// free reports whether the scenario at idx has no case marker or exactly caseID.
func free(lines []string, idx int, caseID int64) bool {
	tags := blockTags(lines, idx)
	if !casetag.HasKnownCaseID(tags) {
		return true
	}
	id, ok := casetag.ExtractCaseID(tags)
	return ok && id == caseID
}

func blockTags(lines []string, idx int) []string {
	return collectTags(lines[tagBlockStart(lines, idx):idx])
}

// tagBlockStart walks up from the scenario through tag, blank and comment lines,
// the same lines the scanner attributes to the scenario.
func tagBlockStart(lines []string, idx int) int {
	start := idx
	for i := idx - 1; i >= 0; i-- {
		if !scanner.IsTagLine(lines[i]) && !scanner.IsNeutralLine(lines[i]) {
			break
		}
		start = i
	}
	return start
}

func collectTags(lines []string) []string {
	var tags []string
	for _, line := range lines {
		if scanner.IsTagLine(line) {
			tags = append(tags, scanner.ParseTags(line)...)
		}
	}
	return tags
}

// insertTag appends to the tag line right above the scenario, or adds a new tag
// line with the scenario's indentation.
func insertTag(lines []string, idx int, tag string) []string {
	if idx > 0 && scanner.IsTagLine(lines[idx-1]) {
		line := lines[idx-1]
		cr := strings.HasSuffix(line, "\r")
		line = strings.TrimRight(line, " \t\r") + " " + tag
		if cr {
			line += "\r"
		}
		lines[idx-1] = line
		return lines
	}

	scenarioLine := lines[idx]
	indent := scenarioLine[:len(scenarioLine)-len(strings.TrimLeft(scenarioLine, " \t"))]
	newLine := indent + tag
	if strings.HasSuffix(scenarioLine, "\r") {
		newLine += "\r"
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:idx]...)
	out = append(out, newLine)
	return append(out, lines[idx:]...)
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
