// Package storage persists project models. The sync core only depends on
// the Store interface; the GORM implementation backs production and the
// memory implementation backs tests.
package storage

import (
	"context"
	"errors"

	"github.com/zulandar/atelier/internal/models"
)

// ErrNotFound is returned by Load when no project exists for the id.
// A first-ever join treats this as "start from an empty project".
var ErrNotFound = errors.New("storage: project not found")

// Store loads and saves whole projects by id.
type Store interface {
	Load(ctx context.Context, projectID string) (*models.Project, error)
	Save(ctx context.Context, project *models.Project) error
}
