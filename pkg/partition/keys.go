// Package partition builds and parses the hierarchical partition keys that
// route multi-tenant records to storage partitions. Segment order is fixed
// per entity family; reordering silently turns point reads into
// cross-partition scans, so the builders are the only place keys are
// assembled.
package partition

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedKey is returned when a partition key string cannot be parsed.
var ErrMalformedKey = errors.New("malformed partition key")

// ProjectEntityType is the third segment of a project-family partition key.
type ProjectEntityType string

const (
	ProjectMetadata  ProjectEntityType = "metadata"
	ProjectSettings  ProjectEntityType = "settings"
	ProjectUsers     ProjectEntityType = "users"
	ProjectDocuments ProjectEntityType = "documents"
)

// Valid reports whether t is one of the recognized project entity types.
func (t ProjectEntityType) Valid() bool {
	switch t {
	case ProjectMetadata, ProjectSettings, ProjectUsers, ProjectDocuments:
		return true
	}
	return false
}

// identifierPattern accepts the identifier alphabet shared by all entity
// kinds: 1-128 chars of letters, digits, dot, underscore or hyphen. The
// slash is excluded because it is the key delimiter.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// ValidIdentifier reports whether id can appear as a partition key segment.
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

func build(segments ...string) (string, error) {
	for _, s := range segments {
		if !ValidIdentifier(s) {
			return "", fmt.Errorf("%w: invalid segment %q", ErrMalformedKey, s)
		}
	}
	return "/" + strings.Join(segments, "/"), nil
}

// ForProject builds the project-family key /tenantId/projectId/entityType.
func ForProject(tenantID, projectID string, entityType ProjectEntityType) (string, error) {
	if !entityType.Valid() {
		return "", fmt.Errorf("%w: unknown project entity type %q", ErrMalformedKey, entityType)
	}
	return build(tenantID, projectID, string(entityType))
}

// ForSession builds the chat-session-family key /tenantId/userId/sessionId.
func ForSession(tenantID, userID, sessionID string) (string, error) {
	return build(tenantID, userID, sessionID)
}

// ForDocument builds the document-family key /tenantId/projectId/documentId.
func ForDocument(tenantID, projectID, documentID string) (string, error) {
	return build(tenantID, projectID, documentID)
}

// ForEmbedding builds the embedding-family key /tenantId/projectId/chunkId.
func ForEmbedding(tenantID, projectID, chunkID string) (string, error) {
	return build(tenantID, projectID, chunkID)
}

// Key is a parsed three-segment hierarchical partition key. SecondID and
// ThirdID are family-dependent (projectId/userId and
// entityType/sessionId/documentId/chunkId respectively).
type Key struct {
	TenantID string
	SecondID string
	ThirdID  string
}

// String renders the key back to its canonical slash-delimited form.
// Parse(k.String()) round-trips to an identical Key.
func (k Key) String() string {
	return "/" + k.TenantID + "/" + k.SecondID + "/" + k.ThirdID
}

// Parse splits a slash-delimited partition key, discarding empty segments.
// Any segment count other than three is malformed.
func Parse(path string) (Key, error) {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) != 3 {
		return Key{}, fmt.Errorf("%w: expected 3 segments, got %d in %q", ErrMalformedKey, len(segments), path)
	}
	return Key{TenantID: segments[0], SecondID: segments[1], ThirdID: segments[2]}, nil
}
