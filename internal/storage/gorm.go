package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zulandar/atelier/internal/models"
)

// ProjectRecord is the persisted form of a project: the full model
// serialized as JSON, plus columns worth querying on.
type ProjectRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:255"`
	Version   string `gorm:"size:32"`
	Data      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the table name stable across GORM naming strategies.
func (ProjectRecord) TableName() string { return "projects" }

// OpenOpts selects and configures the database backend.
type OpenOpts struct {
	Driver   string // "sqlite" or "mysql"
	Path     string // sqlite file path
	Host     string // mysql
	Port     int    // mysql
	Database string // mysql
	User     string // mysql, defaults to root
}

// DSN builds a MySQL DSN from the options.
func (o OpenOpts) DSN() string {
	user := o.User
	if user == "" {
		user = "root"
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", user, o.Host, o.Port, o.Database)
}

// Open connects to the configured database and migrates the schema.
func Open(opts OpenOpts) (*GormStore, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "sqlite", "":
		path := opts.Path
		if path == "" {
			path = "atelier.db"
		}
		dialector = sqlite.Open(path)
	case "mysql":
		dialector = mysql.Open(opts.DSN())
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", opts.Driver, err)
	}
	return NewGormStore(db)
}

// GormStore persists projects through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an existing GORM connection and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("storage: db is required")
	}
	if err := db.AutoMigrate(&ProjectRecord{}); err != nil {
		return nil, fmt.Errorf("storage: auto-migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Load implements Store.
func (s *GormStore) Load(ctx context.Context, projectID string) (*models.Project, error) {
	var rec ProjectRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("storage: load %s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", projectID, err)
	}

	var p models.Project
	if err := json.Unmarshal([]byte(rec.Data), &p); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", projectID, err)
	}
	return &p, nil
}

// Save implements Store. Saves are whole-model upserts.
func (s *GormStore) Save(ctx context.Context, project *models.Project) error {
	if project == nil || project.ID == "" {
		return fmt.Errorf("storage: save: project id is required")
	}
	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", project.ID, err)
	}

	rec := ProjectRecord{
		ID:      project.ID,
		Name:    project.Name,
		Version: project.Version,
		Data:    string(data),
	}
	err = s.db.WithContext(ctx).Save(&rec).Error
	if err != nil {
		return fmt.Errorf("storage: save %s: %w", project.ID, err)
	}
	return nil
}
