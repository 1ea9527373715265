package services

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/ragstore/pkg/database"
	"github.com/codeready-toolchain/ragstore/pkg/models"
	"github.com/codeready-toolchain/ragstore/pkg/partition"
	"github.com/codeready-toolchain/ragstore/pkg/retry"
	"github.com/codeready-toolchain/ragstore/pkg/store"
)

// DocumentService manages document records through the external processing
// pipeline's state machine: uploaded → processing → {indexed | failed}.
// Transitions are enforced; an out-of-order callback is a validation
// error rather than a silent acceptance.
type DocumentService struct {
	container *database.Container
	retryOpts retry.Options
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(client *database.Client) *DocumentService {
	return &DocumentService{
		container: client.Container(database.ContainerDocuments),
		retryOpts: client.RetryOptions(),
	}
}

// Create registers an uploaded file in the uploaded state.
func (s *DocumentService) Create(ctx context.Context, req models.CreateDocumentRequest) (*models.Document, store.Metadata, error) {
	if err := requireIdentifier("tenantId", req.TenantID); err != nil {
		return nil, store.Metadata{}, err
	}
	if err := requireIdentifier("projectId", req.ProjectID); err != nil {
		return nil, store.Metadata{}, err
	}
	if err := requireIdentifier("documentId", req.DocumentID); err != nil {
		return nil, store.Metadata{}, err
	}
	if req.FileName == "" {
		return nil, store.Metadata{}, NewValidationError("fileName", "required")
	}

	pk, err := partition.ForDocument(req.TenantID, req.ProjectID, req.DocumentID)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	now := time.Now().UTC()
	doc := &models.Document{
		Entity: models.Entity{
			ID:        req.DocumentID,
			TenantID:  req.TenantID,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: req.UploadedBy,
			Version:   1,
		},
		ProjectID:   req.ProjectID,
		DocumentID:  req.DocumentID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		FileSize:    req.FileSize,
		Status:      models.DocumentUploaded,
		Metadata: models.DocumentMetadata{
			UploadedBy: req.UploadedBy,
			Tags:       req.Tags,
		},
	}

	item, err := marshalItem(doc.ID, pk, now, doc)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	created, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Create(ctx, item)
	})
	if err != nil {
		return nil, md, translate(err)
	}

	doc.ETag = created.ETag
	return doc, md, nil
}

// Get point-reads a document; a missing document is a successful nil
// result.
func (s *DocumentService) Get(ctx context.Context, tenantID, projectID, documentID string) (*models.Document, store.Metadata, error) {
	pk, err := partition.ForDocument(tenantID, projectID, documentID)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	item, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Read(ctx, documentID, pk)
	})
	if err != nil {
		if translate(err) == ErrNotFound {
			return nil, md, nil
		}
		return nil, md, translate(err)
	}

	var doc models.Document
	if err := unmarshalItem(item, &doc); err != nil {
		return nil, md, err
	}
	doc.ETag = item.ETag
	return &doc, md, nil
}

// List returns a project's documents ordered by creation time descending.
func (s *DocumentService) List(ctx context.Context, tenantID, projectID string, opts models.ListOptions) (*models.Page[models.Document], store.Metadata, error) {
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

	result := &models.Page[models.Document]{
		Items:             make([]models.Document, 0, len(page.Items)),
		ContinuationToken: page.Token,
	}
	for i := range page.Items {
		var doc models.Document
		if err := unmarshalItem(&page.Items[i], &doc); err != nil {
			return nil, md, err
		}
		doc.ETag = page.Items[i].ETag
		result.Items = append(result.Items, doc)
	}
	return result, md, nil
}

// UpdateStatus advances a document through the processing state machine
// under optimistic concurrency, merging any pipeline-produced metadata.
func (s *DocumentService) UpdateStatus(ctx context.Context, tenantID, projectID, documentID string, req models.UpdateDocumentStatusRequest) (*models.Document, store.Metadata, error) {
	if !req.Status.Valid() {
		return nil, store.Metadata{}, NewValidationError("status", fmt.Sprintf("unknown document status %q", req.Status))
	}

	doc, md, err := s.Get(ctx, tenantID, projectID, documentID)
	if err != nil {
		return nil, md, err
	}
	if doc == nil {
		return nil, md, ErrNotFound
	}

	if !doc.Status.CanTransitionTo(req.Status) {
		return nil, md, NewValidationError("status",
			fmt.Sprintf("illegal transition %s → %s", doc.Status, req.Status))
	}

	doc.Status = req.Status
	doc.ProcessingStage = req.ProcessingStage
	doc.ErrorMessage = req.ErrorMessage
	if req.MetadataPatch != nil {
		mergeDocumentMetadata(&doc.Metadata, req.MetadataPatch)
	}
	doc.UpdatedAt = time.Now().UTC()
	doc.Version++

	pk, err := partition.ForDocument(tenantID, projectID, documentID)
	if err != nil {
		return nil, md, err
	}
	item, err := marshalItem(doc.ID, pk, doc.CreatedAt, doc)
	if err != nil {
		return nil, md, err
	}

	etag := doc.ETag
	replaced, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Replace(ctx, item, etag)
	})
	if err != nil {
		return nil, md, translate(err)
	}

	doc.ETag = replaced.ETag
	return doc, md, nil
}

// mergeDocumentMetadata copies non-zero patch fields into dst.
func mergeDocumentMetadata(dst, patch *models.DocumentMetadata) {
	if patch.UploadedBy != "" {
		dst.UploadedBy = patch.UploadedBy
	}
	if patch.Tags != nil {
		dst.Tags = patch.Tags
	}
	if patch.PageCount > 0 {
		dst.PageCount = patch.PageCount
	}
	if patch.ChunkCount > 0 {
		dst.ChunkCount = patch.ChunkCount
	}
	if patch.TextLength > 0 {
		dst.TextLength = patch.TextLength
	}
}
