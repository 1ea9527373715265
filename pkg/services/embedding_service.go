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

// EmbeddingService manages vectorized chunks. Embeddings are written once
// by the processing pipeline and are immutable afterwards; there is no
// update operation.
type EmbeddingService struct {
	container *database.Container
	retryOpts retry.Options
}

// NewEmbeddingService creates a new EmbeddingService.
func NewEmbeddingService(client *database.Client) *EmbeddingService {
	return &EmbeddingService{
		container: client.Container(database.ContainerEmbeddings),
		retryOpts: client.RetryOptions(),
	}
}

// Create persists one chunk.
func (s *EmbeddingService) Create(ctx context.Context, req models.CreateEmbeddingRequest) (*models.Embedding, store.Metadata, error) {
	if err := requireIdentifier("tenantId", req.TenantID); err != nil {
		return nil, store.Metadata{}, err
	}
	if err := requireIdentifier("projectId", req.ProjectID); err != nil {
		return nil, store.Metadata{}, err
	}
	if err := requireIdentifier("documentId", req.DocumentID); err != nil {
		return nil, store.Metadata{}, err
	}
	if err := requireIdentifier("chunkId", req.ChunkID); err != nil {
		return nil, store.Metadata{}, err
	}
	if len(req.Vector) == 0 {
		return nil, store.Metadata{}, NewValidationError("vector", "required")
	}

	pk, err := partition.ForEmbedding(req.TenantID, req.ProjectID, req.ChunkID)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	now := time.Now().UTC()
	embedding := &models.Embedding{
		Entity: models.Entity{
			ID:        req.ChunkID,
			TenantID:  req.TenantID,
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		ProjectID:  req.ProjectID,
		DocumentID: req.DocumentID,
		ChunkID:    req.ChunkID,
		Content:    req.Content,
		Vector:     req.Vector,
		Metadata:   req.Metadata,
	}

	item, err := marshalItem(embedding.ID, pk, now, embedding)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	created, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Create(ctx, item)
	})
	if err != nil {
		return nil, md, translate(err)
	}

	embedding.ETag = created.ETag
	return embedding, md, nil
}

// CreateBatch persists a document's chunk set, stopping at the first
// failure. It returns the embeddings written so far alongside the error.
func (s *EmbeddingService) CreateBatch(ctx context.Context, reqs []models.CreateEmbeddingRequest) ([]*models.Embedding, store.Metadata, error) {
	written := make([]*models.Embedding, 0, len(reqs))
	var total store.Metadata

	for i := range reqs {
		embedding, md, err := s.Create(ctx, reqs[i])
		total.RequestCharge += md.RequestCharge
		total.Latency += md.Latency
		total.LatencyMS = total.Latency.Milliseconds()
		total.Attempts += md.Attempts
		total.CorrelationID = md.CorrelationID
		if err != nil {
			return written, total, err
		}
		written = append(written, embedding)
	}
	return written, total, nil
}

// Get point-reads a chunk; a missing chunk is a successful nil result.
func (s *EmbeddingService) Get(ctx context.Context, tenantID, projectID, chunkID string) (*models.Embedding, store.Metadata, error) {
	pk, err := partition.ForEmbedding(tenantID, projectID, chunkID)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	item, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Read(ctx, chunkID, pk)
	})
	if err != nil {
		if translate(err) == ErrNotFound {
			return nil, md, nil
		}
		return nil, md, translate(err)
	}

	var embedding models.Embedding
	if err := unmarshalItem(item, &embedding); err != nil {
		return nil, md, err
	}
	embedding.ETag = item.ETag
	return &embedding, md, nil
}

// List returns a project's chunks ordered by creation time descending.
func (s *EmbeddingService) List(ctx context.Context, tenantID, projectID string, opts models.ListOptions) (*models.Page[models.Embedding], store.Metadata, error) {
	if err := requireIdentifier("tenantId", tenantID); err != nil {
		return nil, store.Metadata{}, err
	}
	if err := requireIdentifier("projectId", projectID); err != nil {
		return nil, store.Metadata{}, err
	}

	page, md, err := execQuery(ctx, s.retryOpts, func(ctx context.Context) (*store.Page, store.Metadata, error) {
		return s.container.Query(ctx, store.Query{
			PartitionPrefix: "/" + tenantID + "/" + projectID + "/",
			PageSize:        opts.PageSize,
			Token:           opts.ContinuationToken,
		})
	})
	if err != nil {
		return nil, md, translate(err)
	}

	result := &models.Page[models.Embedding]{
		Items:             make([]models.Embedding, 0, len(page.Items)),
		ContinuationToken: page.Token,
	}
	for i := range page.Items {
		var embedding models.Embedding
		if err := unmarshalItem(&page.Items[i], &embedding); err != nil {
			return nil, md, err
		}
		embedding.ETag = page.Items[i].ETag
		result.Items = append(result.Items, embedding)
	}
	return result, md, nil
}
