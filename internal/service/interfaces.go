// Package service defines the interfaces between commands and the adapters
// that persist or publish datasets.
package service

import (
	"context"
	"time"

	"github.com/EdvardGK/reduzer-summary/internal/model"
)

// NewProject is the input for saving a dataset as a project.
type NewProject struct {
	Name        string
	Description string
	SourceFile  string
	Items       []model.LineItem
}

// ProjectFilter pages project listings.
type ProjectFilter struct {
	Status model.ProjectStatus
	Limit  int
	Offset int
}

// ProjectStore defines the contract for project persistence.
type ProjectStore interface {
	SaveProject(ctx context.Context, p NewProject) (*model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	LoadProject(ctx context.Context, id string) (*model.Project, []model.LineItem, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error)
	UpdateProjectRow(ctx context.Context, id string, item model.LineItem) error
	UpdateProjectRows(ctx context.Context, id string, items []model.LineItem) error
	UpdateProjectMetadata(ctx context.Context, id string, update model.ProjectMetadataUpdate) error
	RefreshProjectStatistics(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string) error

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
