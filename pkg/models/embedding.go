package models

// Embedding is one vectorized chunk of a processed document. Its partition
// key is /tenantId/projectId/chunkId. Embeddings are immutable once
// written; cleanup is the document-deletion pipeline's responsibility.
type Embedding struct {
	Entity

	ProjectID  string         `json:"projectId"`
	DocumentID string         `json:"documentId"`
	ChunkID    string         `json:"chunkId"`
	Content    string         `json:"content"`
	Vector     []float32      `json:"vector"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// CreateEmbeddingRequest contains one chunk produced by the processing
// pipeline.
type CreateEmbeddingRequest struct {
	TenantID   string         `json:"tenantId"`
	ProjectID  string         `json:"projectId"`
	DocumentID string         `json:"documentId"`
	ChunkID    string         `json:"chunkId"`
	Content    string         `json:"content"`
	Vector     []float32      `json:"vector"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
