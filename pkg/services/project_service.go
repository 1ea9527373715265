package services

import (
	"context"
	"time"

	"github.com/codeready-toolchain/ragstore/pkg/database"
	"github.com/codeready-toolchain/ragstore/pkg/models"
	"github.com/codeready-toolchain/ragstore/pkg/partition"
	"github.com/codeready-toolchain/ragstore/pkg/retry"
	"github.com/codeready-toolchain/ragstore/pkg/store"
)

// ProjectService manages project lifecycle. Projects are archived, never
// hard-deleted.
type ProjectService struct {
	container *database.Container
	retryOpts retry.Options
}

// NewProjectService creates a new ProjectService.
func NewProjectService(client *database.Client) *ProjectService {
	return &ProjectService{
		container: client.Container(database.ContainerProjects),
		retryOpts: client.RetryOptions(),
	}
}

// Create persists a new project in the active state with version 1.
func (s *ProjectService) Create(ctx context.Context, req models.CreateProjectRequest) (*models.Project, store.Metadata, error) {
	if err := requireIdentifier("tenantId", req.TenantID); err != nil {
		return nil, store.Metadata{}, err
	}
	if err := requireIdentifier("projectId", req.ProjectID); err != nil {
		return nil, store.Metadata{}, err
	}
	if req.Name == "" {
		return nil, store.Metadata{}, NewValidationError("name", "required")
	}
	if req.Owner == "" {
		return nil, store.Metadata{}, NewValidationError("owner", "required")
	}

	pk, err := partition.ForProject(req.TenantID, req.ProjectID, partition.ProjectMetadata)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	now := time.Now().UTC()
	project := &models.Project{
		Entity: models.Entity{
			ID:        req.ProjectID,
			TenantID:  req.TenantID,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: req.Owner,
			Version:   1,
		},
		ProjectID:  req.ProjectID,
		EntityType: string(partition.ProjectMetadata),
		Name:       req.Name,
		Status:     models.ProjectActive,
		Owner:      req.Owner,
		Settings:   req.Settings,
		Features:   req.Features,
	}

	item, err := marshalItem(project.ID, pk, now, project)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	created, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Create(ctx, item)
	})
	if err != nil {
		return nil, md, translate(err)
	}

	project.ETag = created.ETag
	return project, md, nil
}

// Get point-reads a project. A missing project is a successful nil result,
// not an error.
func (s *ProjectService) Get(ctx context.Context, tenantID, projectID string) (*models.Project, store.Metadata, error) {
	pk, err := partition.ForProject(tenantID, projectID, partition.ProjectMetadata)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	item, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Read(ctx, projectID, pk)
	})
	if err != nil {
		if translate(err) == ErrNotFound {
			return nil, md, nil
		}
		return nil, md, translate(err)
	}

	var project models.Project
	if err := unmarshalItem(item, &project); err != nil {
		return nil, md, err
	}
	project.ETag = item.ETag
	return &project, md, nil
}

// List returns the tenant's projects ordered by creation time descending.
func (s *ProjectService) List(ctx context.Context, tenantID string, opts models.ListOptions) (*models.Page[models.Project], store.Metadata, error) {
	if err := requireIdentifier("tenantId", tenantID); err != nil {
		return nil, store.Metadata{}, err
	}

	page, md, err := execQuery(ctx, s.retryOpts, func(ctx context.Context) (*store.Page, store.Metadata, error) {
		return s.container.Query(ctx, store.Query{
			PartitionPrefix: "/" + tenantID + "/",
			PageSize:        opts.PageSize,
			Token:           opts.ContinuationToken,
		})
	})
	if err != nil {
		return nil, md, translate(err)
	}

	result := &models.Page[models.Project]{
		Items:             make([]models.Project, 0, len(page.Items)),
		ContinuationToken: page.Token,
	}
	for i := range page.Items {
		var project models.Project
		if err := unmarshalItem(&page.Items[i], &project); err != nil {
			return nil, md, err
		}
		project.ETag = page.Items[i].ETag
		result.Items = append(result.Items, project)
	}
	return result, md, nil
}

// Update applies a partial mutation under optimistic concurrency. A
// concurrent writer surfaces as ErrConcurrentModification; re-reading and
// retrying is the caller's responsibility.
func (s *ProjectService) Update(ctx context.Context, tenantID, projectID string, req models.UpdateProjectRequest) (*models.Project, store.Metadata, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, store.Metadata{}, NewValidationError("status", "unknown project status")
	}

	current, md, err := s.Get(ctx, tenantID, projectID)
	if err != nil {
		return nil, md, err
	}
	if current == nil {
		return nil, md, ErrNotFound
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	if req.Settings != nil {
		current.Settings = *req.Settings
	}
	if req.Features != nil {
		current.Features = req.Features
	}

	return s.replace(ctx, current)
}

// Archive soft-deletes a project by moving it to the archived state.
func (s *ProjectService) Archive(ctx context.Context, tenantID, projectID string) (*models.Project, store.Metadata, error) {
	archived := models.ProjectArchived
	return s.Update(ctx, tenantID, projectID, models.UpdateProjectRequest{Status: &archived})
}

// replace writes back a mutated project conditioned on its etag.
func (s *ProjectService) replace(ctx context.Context, project *models.Project) (*models.Project, store.Metadata, error) {
	pk, err := partition.ForProject(project.TenantID, project.ProjectID, partition.ProjectEntityType(project.EntityType))
	if err != nil {
		return nil, store.Metadata{}, err
	}

	project.Version++
	project.UpdatedAt = time.Now().UTC()

	item, err := marshalItem(project.ID, pk, project.CreatedAt, project)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	etag := project.ETag
	replaced, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Replace(ctx, item, etag)
	})
	if err != nil {
		return nil, md, translate(err)
	}

	project.ETag = replaced.ETag
	return project, md, nil
}

func requireIdentifier(field, value string) error {
	if !partition.ValidIdentifier(value) {
		return NewValidationError(field, "must be a valid identifier")
	}
	return nil
}
