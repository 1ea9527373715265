package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ragstore/pkg/models"
)

func TestProjectService_Create(t *testing.T) {
	service := NewProjectService(newTestClient(t))
	ctx := context.Background()

	t.Run("stamps entity fields", func(t *testing.T) {
		project, md, err := service.Create(ctx, models.CreateProjectRequest{
			TenantID:  "acme",
			ProjectID: "p1",
			Name:      "Support KB",
			Owner:     "u1",
			Settings:  models.ProjectSettings{Model: "gpt-4o", ChunkSize: 512},
		})
		require.NoError(t, err)
		assert.Equal(t, "p1", project.ID)
		assert.Equal(t, "acme", project.TenantID)
		assert.Equal(t, models.ProjectActive, project.Status)
		assert.EqualValues(t, 1, project.Version)
		assert.Equal(t, "u1", project.CreatedBy)
		assert.Equal(t, "metadata", project.EntityType)
		assert.NotEmpty(t, project.ETag)
		assert.NotEmpty(t, md.CorrelationID)
		assert.Equal(t, 1, md.Attempts)
	})

	t.Run("rejects duplicate project", func(t *testing.T) {
		req := models.CreateProjectRequest{TenantID: "acme", ProjectID: "dup", Name: "n", Owner: "u1"}
		_, _, err := service.Create(ctx, req)
		require.NoError(t, err)

		_, _, err = service.Create(ctx, req)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("validates identifiers and required fields", func(t *testing.T) {
		tests := []struct {
			name string
			req  models.CreateProjectRequest
		}{
			{"bad tenant", models.CreateProjectRequest{TenantID: "a/b", ProjectID: "p", Name: "n", Owner: "u"}},
			{"missing project id", models.CreateProjectRequest{TenantID: "acme", Name: "n", Owner: "u"}},
			{"missing name", models.CreateProjectRequest{TenantID: "acme", ProjectID: "p", Owner: "u"}},
			{"missing owner", models.CreateProjectRequest{TenantID: "acme", ProjectID: "p", Name: "n"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := service.Create(ctx, tt.req)
				assert.True(t, IsValidationError(err), "want validation error, got %v", err)
			})
		}
	})
}

func TestProjectService_Get_NotFoundIsNil(t *testing.T) {
	service := NewProjectService(newTestClient(t))

	project, md, err := service.Get(context.Background(), "acme", "missing")
	require.NoError(t, err)
	assert.Nil(t, project)
	assert.NotEmpty(t, md.CorrelationID)
}

func TestProjectService_CreateGetUpdateScenario(t *testing.T) {
	service := NewProjectService(newTestClient(t))
	ctx := context.Background()

	_, _, err := service.Create(ctx, models.CreateProjectRequest{
		TenantID: "acme", ProjectID: "p1", Name: "KB", Owner: "u1",
	})
	require.NoError(t, err)

	got, _, err := service.Get(ctx, "acme", "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.EqualValues(t, 1, got.Version)

	settings := models.ProjectSettings{Model: "claude-sonnet", DataClassification: "confidential"}
	_, _, err = service.Update(ctx, "acme", "p1", models.UpdateProjectRequest{Settings: &settings})
	require.NoError(t, err)

	got, _, err = service.Get(ctx, "acme", "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Version)
	assert.Equal(t, "claude-sonnet", got.Settings.Model)
	assert.Equal(t, "confidential", got.Settings.DataClassification)
}

func TestProjectService_Update_NotFound(t *testing.T) {
	service := NewProjectService(newTestClient(t))

	name := "renamed"
	_, _, err := service.Update(context.Background(), "acme", "ghost", models.UpdateProjectRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectService_Update_RejectsUnknownStatus(t *testing.T) {
	service := NewProjectService(newTestClient(t))

	bogus := models.ProjectStatus("deleted")
	_, _, err := service.Update(context.Background(), "acme", "p1", models.UpdateProjectRequest{Status: &bogus})
	assert.True(t, IsValidationError(err))
}

func TestProjectService_Archive(t *testing.T) {
	service := NewProjectService(newTestClient(t))
	ctx := context.Background()

	_, _, err := service.Create(ctx, models.CreateProjectRequest{
		TenantID: "acme", ProjectID: "p1", Name: "KB", Owner: "u1",
	})
	require.NoError(t, err)

	archived, _, err := service.Archive(ctx, "acme", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.ProjectArchived, archived.Status)
	assert.EqualValues(t, 2, archived.Version)
}

func TestProjectService_List(t *testing.T) {
	service := NewProjectService(newTestClient(t))
	ctx := context.Background()

	for i := range 5 {
		_, _, err := service.Create(ctx, models.CreateProjectRequest{
			TenantID:  "acme",
			ProjectID: fmt.Sprintf("p%d", i),
			Name:      fmt.Sprintf("project %d", i),
			Owner:     "u1",
		})
		require.NoError(t, err)
	}
	// Another tenant's project must not leak into the listing.
	_, _, err := service.Create(ctx, models.CreateProjectRequest{
		TenantID: "globex", ProjectID: "px", Name: "other", Owner: "u9",
	})
	require.NoError(t, err)

	t.Run("partition-scoped", func(t *testing.T) {
		page, _, err := service.List(ctx, "acme", models.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, page.Items, 5)
		for _, p := range page.Items {
			assert.Equal(t, "acme", p.TenantID)
		}
	})

	t.Run("page size clamped not rejected", func(t *testing.T) {
		page, _, err := service.List(ctx, "acme", models.ListOptions{PageSize: 500})
		require.NoError(t, err)
		assert.Len(t, page.Items, 5)

		page, _, err = service.List(ctx, "acme", models.ListOptions{PageSize: -1})
		require.NoError(t, err)
		assert.Len(t, page.Items, 5)
	})

	t.Run("continuation", func(t *testing.T) {
		page, _, err := service.List(ctx, "acme", models.ListOptions{PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		require.NotEmpty(t, page.ContinuationToken)

		rest, _, err := service.List(ctx, "acme", models.ListOptions{PageSize: 100, ContinuationToken: page.ContinuationToken})
		require.NoError(t, err)
		assert.Len(t, rest.Items, 3)
	})
}
