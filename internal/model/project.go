package model

import "time"

// ProjectStatus tracks where a saved dataset is in the review workflow.
type ProjectStatus string

// Project status constants.
const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusReviewed  ProjectStatus = "reviewed"
	ProjectStatusFinalized ProjectStatus = "finalized"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusReviewed, ProjectStatusFinalized:
		return true
	}
	return false
}

// Project is the metadata of a persisted dataset.
type Project struct {
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	SourceFile  string        `json:"source_file,omitempty"`
	Status      ProjectStatus `json:"status"`
	TotalRows   int           `json:"total_rows"`
	MappedRows  int           `json:"mapped_rows"`
	TotalGWP    float64       `json:"total_gwp"`
}

// ProjectMetadataUpdate changes a project's descriptive fields.
// Nil fields are left unchanged.
type ProjectMetadataUpdate struct {
	Name        *string
	Description *string
	Status      *ProjectStatus
}
