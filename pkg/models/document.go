package models

// DocumentStatus tracks a document through the external processing
// pipeline: uploaded → processing → {indexed | failed}.
type DocumentStatus string

const (
	DocumentUploaded   DocumentStatus = "uploaded"
	DocumentProcessing DocumentStatus = "processing"
	DocumentIndexed    DocumentStatus = "indexed"
	DocumentFailed     DocumentStatus = "failed"
)

// Valid reports whether s is a recognized document status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentUploaded, DocumentProcessing, DocumentIndexed, DocumentFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether the declared state machine permits
// moving from s to next. Terminal states permit nothing.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case DocumentUploaded:
		return next == DocumentProcessing
	case DocumentProcessing:
		return next == DocumentIndexed || next == DocumentFailed
	}
	return false
}

// DocumentMetadata carries uploader attribution, tags and extracted-text
// statistics filled in by the processing pipeline.
type DocumentMetadata struct {
	UploadedBy string   `json:"uploadedBy,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	PageCount  int      `json:"pageCount,omitempty"`
	ChunkCount int      `json:"chunkCount,omitempty"`
	TextLength int      `json:"textLength,omitempty"`
}

// Document is the document-family entity. Its partition key is
// /tenantId/projectId/documentId.
type Document struct {
	Entity

	ProjectID       string           `json:"projectId"`
	DocumentID      string           `json:"documentId"`
	FileName        string           `json:"fileName"`
	ContentType     string           `json:"contentType,omitempty"`
	FileSize        int64            `json:"fileSize,omitempty"`
	Status          DocumentStatus   `json:"status"`
	ProcessingStage string           `json:"processingStage,omitempty"`
	ErrorMessage    string           `json:"errorMessage,omitempty"`
	Metadata        DocumentMetadata `json:"metadata"`
}

// CreateDocumentRequest registers an uploaded file; the record starts in
// the uploaded state.
type CreateDocumentRequest struct {
	TenantID    string   `json:"tenantId"`
	ProjectID   string   `json:"projectId"`
	DocumentID  string   `json:"documentId"`
	FileName    string   `json:"fileName"`
	ContentType string   `json:"contentType,omitempty"`
	FileSize    int64    `json:"fileSize,omitempty"`
	UploadedBy  string   `json:"uploadedBy,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateDocumentStatusRequest advances a document through the processing
// state machine, optionally patching pipeline-produced metadata.
type UpdateDocumentStatusRequest struct {
	Status          DocumentStatus `json:"status"`
	ProcessingStage string         `json:"processingStage,omitempty"`
	ErrorMessage    string         `json:"errorMessage,omitempty"`
	// MetadataPatch merges non-zero fields into the document metadata.
	MetadataPatch *DocumentMetadata `json:"metadataPatch,omitempty"`
}
