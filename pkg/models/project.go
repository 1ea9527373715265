package models

// ProjectStatus is the lifecycle state of a project. Projects are never
// hard-deleted; they are archived instead.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectInactive ProjectStatus = "inactive"
	ProjectArchived ProjectStatus = "archived"
)

// Valid reports whether s is a recognized project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectInactive, ProjectArchived:
		return true
	}
	return false
}

// ProjectSettings holds per-project model selection and chunking
// parameters consumed by the (external) ingestion and chat pipelines.
type ProjectSettings struct {
	Model              string `json:"model,omitempty"`
	EmbeddingModel     string `json:"embeddingModel,omitempty"`
	DataClassification string `json:"dataClassification,omitempty"`
	ChunkSize          int    `json:"chunkSize,omitempty"`
	ChunkOverlap       int    `json:"chunkOverlap,omitempty"`
}

// Project is the project-family entity. Its partition key is
// /tenantId/projectId/entityType.
type Project struct {
	Entity

	// ProjectID duplicates ID; both are kept so the partition key can be
	// reconstructed from the record's own fields.
	ProjectID  string          `json:"projectId"`
	EntityType string          `json:"entityType"`
	Name       string          `json:"name"`
	Status     ProjectStatus   `json:"status"`
	Owner      string          `json:"owner"`
	Settings   ProjectSettings `json:"settings"`
	Features   map[string]bool `json:"features,omitempty"`
}

// CreateProjectRequest contains the caller-supplied fields for a new
// project. ID, timestamps and version are stamped by the repository.
type CreateProjectRequest struct {
	TenantID  string          `json:"tenantId"`
	ProjectID string          `json:"projectId"`
	Name      string          `json:"name"`
	Owner     string          `json:"owner"`
	Settings  ProjectSettings `json:"settings"`
	Features  map[string]bool `json:"features,omitempty"`
}

// UpdateProjectRequest carries a partial project mutation. Nil fields are
// left unchanged.
type UpdateProjectRequest struct {
	Name     *string          `json:"name,omitempty"`
	Status   *ProjectStatus   `json:"status,omitempty"`
	Settings *ProjectSettings `json:"settings,omitempty"`
	Features map[string]bool  `json:"features,omitempty"`
}
