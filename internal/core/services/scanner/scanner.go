// Package scanner walks a tree of feature documents and yields their scenarios.
package scanner

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/domain"
)

// FeatureExt is the extension of documents the scanner reads.
const FeatureExt = ".feature"

const maxLineSize = 1024 * 1024

type Scanner struct {
	root   string
	logger primary.Logger
}

func New(root string, logger primary.Logger) *Scanner {
	return &Scanner{
		root:   root,
		logger: logger,
	}
}

// Scenarios returns a lazy sequence over every scenario under the root. Each range
// over the sequence walks the tree again. Unreadable files and directories are
// logged and skipped.
func (s *Scanner) Scenarios(ctx context.Context) iter.Seq[domain.Scenario] {
	return func(yield func(domain.Scenario) bool) {
		stopped := false
		err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Warn("Skipping unreadable path", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), FeatureExt) {
				return nil
			}
			if !s.scanFile(path, yield) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			s.logger.Warn("Feature walk ended early", "root", s.root, "error", err)
		}
	}
}

// scanFile yields the scenarios of one document; false means the consumer stopped.
func (s *Scanner) scanFile(path string, yield func(domain.Scenario) bool) bool {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Warn("Skipping unreadable feature file", "path", path, "error", err)
		return true
	}
	defer f.Close()

	s.logger.Debug("Processing feature file", "path", path)

	lines := bufio.NewScanner(f)
	lines.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var tags []string
	lineNo := 0
	for lines.Scan() {
		lineNo++
		line := lines.Text()

		if IsTagLine(line) {
			tags = append(tags, ParseTags(line)...)
			continue
		}

		if title, ok := MatchScenario(line); ok {
			scenario := domain.Scenario{
				Title: title,
				Tags:  dedupe(tags),
				Path:  path,
				Line:  lineNo,
			}
			tags = nil
			if !yield(scenario) {
				return false
			}
			continue
		}

		if !IsNeutralLine(line) {
			tags = nil
		}
	}

	if err := lines.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			s.logger.Warn("Feature file has an oversized line, remaining scenarios skipped", "path", path)
		} else {
			s.logger.Warn("Failed to read feature file", "path", path, "error", err)
		}
	}
	return true
}

// dedupe keeps the first occurrence of each tag and preserves order.
func dedupe(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
