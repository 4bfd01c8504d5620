// Package yamlreport keeps tag actions in a YAML file next to the corpus, for
// runs without a database.
package yamlreport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/domain"
)

var _ secondary.TagActionRepository = &Store{}

type document struct {
	GeneratedAt time.Time          `yaml:"generated_at"`
	Actions     []domain.TagAction `yaml:"actions"`
}

type Store struct {
	path   string
	logger primary.Logger
	mu     sync.Mutex
	now    func() time.Time
}

func NewStore(path string, logger primary.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Path() string {
	return s.path
}

// SaveActions merges actions into the file; existing entries keep their state.
func (s *Store) SaveActions(ctx context.Context, actions []domain.TagAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	known := make(map[uuid.UUID]struct{}, len(doc.Actions))
	for _, a := range doc.Actions {
		known[a.ID] = struct{}{}
	}
	added := 0
	for _, a := range actions {
		if _, ok := known[a.ID]; ok {
			continue
		}
		doc.Actions = append(doc.Actions, a)
		known[a.ID] = struct{}{}
		added++
	}

	if err := s.save(doc); err != nil {
		return err
	}
	s.logger.Info("Tag actions written to report", "path", s.path, "added", added, "total", len(doc.Actions))
	return nil
}

func (s *Store) PendingActions(ctx context.Context) ([]domain.TagAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	var pending []domain.TagAction
	for _, a := range doc.Actions {
		if a.Pending() {
			pending = append(pending, a)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].SourcePath != pending[j].SourcePath {
			return pending[i].SourcePath < pending[j].SourcePath
		}
		return pending[i].Line < pending[j].Line
	})
	return pending, nil
}

func (s *Store) MarkApplied(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	now := s.now()
	for i := range doc.Actions {
		if _, ok := wanted[doc.Actions[i].ID]; ok && doc.Actions[i].Pending() {
			applied := now
			doc.Actions[i].AppliedAt = &applied
		}
	}
	return s.save(doc)
}

func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &document{}, nil
		}
		return nil, fmt.Errorf("failed to read report %s: %w", s.path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		s.logger.Error("Failed to parse report", "path", s.path, "error", err)
		return nil, fmt.Errorf("failed to parse report %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	doc.GeneratedAt = s.now()
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", s.path, err)
	}
	return nil
}
