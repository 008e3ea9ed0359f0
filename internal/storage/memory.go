package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/zulandar/atelier/internal/models"
)

// MemStore is an in-memory Store for tests and ephemeral servers. Loads
// and saves deep-copy, so callers can never alias the stored model.
type MemStore struct {
	mu       sync.Mutex
	projects map[string]*models.Project

	// Loads counts Load calls per project id, letting tests assert the
	// coordinator's single-load guarantee.
	loads map[string]int
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		projects: make(map[string]*models.Project),
		loads:    make(map[string]int),
	}
}

// Load implements Store.
func (s *MemStore) Load(ctx context.Context, projectID string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads[projectID]++
	p, ok := s.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("storage: load %s: %w", projectID, ErrNotFound)
	}
	return p.Clone(), nil
}

// Save implements Store.
func (s *MemStore) Save(ctx context.Context, project *models.Project) error {
	if project == nil || project.ID == "" {
		return fmt.Errorf("storage: save: project id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = project.Clone()
	return nil
}

// LoadCount returns how many times Load was called for a project id.
func (s *MemStore) LoadCount(projectID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads[projectID]
}
