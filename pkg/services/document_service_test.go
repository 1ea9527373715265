package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ragstore/pkg/database"
	"github.com/codeready-toolchain/ragstore/pkg/models"
	"github.com/codeready-toolchain/ragstore/pkg/store/memory"
)

func createDocument(t *testing.T, service *DocumentService, documentID string) *models.Document {
	t.Helper()
	doc, _, err := service.Create(context.Background(), models.CreateDocumentRequest{
		TenantID:   "acme",
		ProjectID:  "p1",
		DocumentID: documentID,
		FileName:   documentID + ".pdf",
		UploadedBy: "u1",
	})
	require.NoError(t, err)
	return doc
}

func TestDocumentService_Create(t *testing.T) {
	service := NewDocumentService(newTestClient(t))

	doc := createDocument(t, service, "d1")
	assert.Equal(t, models.DocumentUploaded, doc.Status)
	assert.EqualValues(t, 1, doc.Version)
	assert.Equal(t, "u1", doc.Metadata.UploadedBy)
	assert.NotEmpty(t, doc.ETag)
}

func TestDocumentService_Get_NotFoundIsNil(t *testing.T) {
	service := NewDocumentService(newTestClient(t))

	doc, _, err := service.Get(context.Background(), "acme", "p1", "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestDocumentService_StatusPipeline(t *testing.T) {
	service := NewDocumentService(newTestClient(t))
	ctx := context.Background()
	createDocument(t, service, "d1")

	_, _, err := service.UpdateStatus(ctx, "acme", "p1", "d1", models.UpdateDocumentStatusRequest{
		Status:          models.DocumentProcessing,
		ProcessingStage: "chunking",
	})
	require.NoError(t, err)

	_, _, err = service.UpdateStatus(ctx, "acme", "p1", "d1", models.UpdateDocumentStatusRequest{
		Status:        models.DocumentIndexed,
		MetadataPatch: &models.DocumentMetadata{ChunkCount: 12, TextLength: 48000},
	})
	require.NoError(t, err)

	doc, _, err := service.Get(ctx, "acme", "p1", "d1")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentIndexed, doc.Status)
	assert.Equal(t, 12, doc.Metadata.ChunkCount)
	assert.Equal(t, 48000, doc.Metadata.TextLength)
	assert.Equal(t, "u1", doc.Metadata.UploadedBy) // patch merges, not replaces
	assert.EqualValues(t, 3, doc.Version)
}

func TestDocumentService_FailureTransition(t *testing.T) {
	service := NewDocumentService(newTestClient(t))
	ctx := context.Background()
	createDocument(t, service, "d1")

	_, _, err := service.UpdateStatus(ctx, "acme", "p1", "d1", models.UpdateDocumentStatusRequest{
		Status: models.DocumentProcessing,
	})
	require.NoError(t, err)

	doc, _, err := service.UpdateStatus(ctx, "acme", "p1", "d1", models.UpdateDocumentStatusRequest{
		Status:       models.DocumentFailed,
		ErrorMessage: "extraction failed: encrypted PDF",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentFailed, doc.Status)
	assert.Equal(t, "extraction failed: encrypted PDF", doc.ErrorMessage)
}

func TestDocumentService_IllegalTransitions(t *testing.T) {
	service := NewDocumentService(newTestClient(t))
	ctx := context.Background()
	createDocument(t, service, "d1")

	tests := []struct {
		name   string
		status models.DocumentStatus
	}{
		{"uploaded to indexed skips processing", models.DocumentIndexed},
		{"uploaded to failed skips processing", models.DocumentFailed},
		{"uploaded to uploaded", models.DocumentUploaded},
		{"unknown status", models.DocumentStatus("archived")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.UpdateStatus(ctx, "acme", "p1", "d1", models.UpdateDocumentStatusRequest{Status: tt.status})
			assert.True(t, IsValidationError(err), "want validation error, got %v", err)
		})
	}

	t.Run("terminal state accepts nothing", func(t *testing.T) {
		_, _, err := service.UpdateStatus(ctx, "acme", "p1", "d1", models.UpdateDocumentStatusRequest{Status: models.DocumentProcessing})
		require.NoError(t, err)
		_, _, err = service.UpdateStatus(ctx, "acme", "p1", "d1", models.UpdateDocumentStatusRequest{Status: models.DocumentIndexed})
		require.NoError(t, err)

		_, _, err = service.UpdateStatus(ctx, "acme", "p1", "d1", models.UpdateDocumentStatusRequest{Status: models.DocumentProcessing})
		assert.True(t, IsValidationError(err))
	})
}

func TestDocumentService_UpdateStatus_NotFound(t *testing.T) {
	service := NewDocumentService(newTestClient(t))

	_, _, err := service.UpdateStatus(context.Background(), "acme", "p1", "ghost", models.UpdateDocumentStatusRequest{
		Status: models.DocumentProcessing,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentService_TransientErrorsAreRetried(t *testing.T) {
	backend := &stubStore{Store: memory.New(database.KnownContainers...), transientReads: 2}
	service := NewDocumentService(newTestClientWith(t, backend))
	ctx := context.Background()
	createDocument(t, service, "d1")

	// Two rate-limited attempts, third succeeds within the attempt budget.
	doc, md, err := service.Get(ctx, "acme", "p1", "d1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 3, md.Attempts)
}

func TestDocumentService_List(t *testing.T) {
	service := NewDocumentService(newTestClient(t))
	ctx := context.Background()

	createDocument(t, service, "d1")
	createDocument(t, service, "d2")

	page, _, err := service.List(ctx, "acme", "p1", models.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}
