package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ragstore/pkg/models"
)

func embeddingRequest(chunkID string) models.CreateEmbeddingRequest {
	return models.CreateEmbeddingRequest{
		TenantID:   "acme",
		ProjectID:  "p1",
		DocumentID: "d1",
		ChunkID:    chunkID,
		Content:    "chunk text for " + chunkID,
		Vector:     []float32{0.1, 0.2, 0.3},
		Metadata:   map[string]any{"page": 1},
	}
}

func TestEmbeddingService_CreateAndGet(t *testing.T) {
	service := NewEmbeddingService(newTestClient(t))
	ctx := context.Background()

	created, _, err := service.Create(ctx, embeddingRequest("c1"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, created.Version)

	got, _, err := service.Get(ctx, "acme", "p1", "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.Content, got.Content)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got.Vector)
}

func TestEmbeddingService_Create_Validation(t *testing.T) {
	service := NewEmbeddingService(newTestClient(t))
	ctx := context.Background()

	req := embeddingRequest("c1")
	req.Vector = nil
	_, _, err := service.Create(ctx, req)
	assert.True(t, IsValidationError(err))

	req = embeddingRequest("bad/chunk")
	_, _, err = service.Create(ctx, req)
	assert.True(t, IsValidationError(err))
}

func TestEmbeddingService_Create_Duplicate(t *testing.T) {
	service := NewEmbeddingService(newTestClient(t))
	ctx := context.Background()

	_, _, err := service.Create(ctx, embeddingRequest("c1"))
	require.NoError(t, err)

	_, _, err = service.Create(ctx, embeddingRequest("c1"))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEmbeddingService_Get_NotFoundIsNil(t *testing.T) {
	service := NewEmbeddingService(newTestClient(t))

	embedding, _, err := service.Get(context.Background(), "acme", "p1", "missing")
	require.NoError(t, err)
	assert.Nil(t, embedding)
}

func TestEmbeddingService_CreateBatch(t *testing.T) {
	service := NewEmbeddingService(newTestClient(t))
	ctx := context.Background()

	t.Run("writes the whole chunk set", func(t *testing.T) {
		reqs := make([]models.CreateEmbeddingRequest, 5)
		for i := range reqs {
			reqs[i] = embeddingRequest(fmt.Sprintf("batch-a-%d", i))
		}

		written, md, err := service.CreateBatch(ctx, reqs)
		require.NoError(t, err)
		assert.Len(t, written, 5)
		assert.Positive(t, md.RequestCharge)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		reqs := []models.CreateEmbeddingRequest{
			embeddingRequest("batch-b-0"),
			embeddingRequest("batch-a-0"), // duplicate from the prior batch
			embeddingRequest("batch-b-2"),
		}

		written, _, err := service.CreateBatch(ctx, reqs)
		assert.ErrorIs(t, err, ErrAlreadyExists)
		assert.Len(t, written, 1)

		// The chunk after the failure was never attempted.
		missing, _, err := service.Get(ctx, "acme", "p1", "batch-b-2")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestEmbeddingService_List(t *testing.T) {
	service := NewEmbeddingService(newTestClient(t))
	ctx := context.Background()

	for i := range 3 {
		_, _, err := service.Create(ctx, embeddingRequest(fmt.Sprintf("c%d", i)))
		require.NoError(t, err)
	}

	page, _, err := service.List(ctx, "acme", "p1", models.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
}
