package partition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders(t *testing.T) {
	tests := []struct {
		name  string
		build func() (string, error)
		want  string
	}{
		{
			name:  "project metadata",
			build: func() (string, error) { return ForProject("acme", "p1", ProjectMetadata) },
			want:  "/acme/p1/metadata",
		},
		{
			name:  "project documents",
			build: func() (string, error) { return ForProject("acme", "p1", ProjectDocuments) },
			want:  "/acme/p1/documents",
		},
		{
			name:  "session",
			build: func() (string, error) { return ForSession("acme", "u1", "s1") },
			want:  "/acme/u1/s1",
		},
		{
			name:  "document",
			build: func() (string, error) { return ForDocument("acme", "p1", "doc-42") },
			want:  "/acme/p1/doc-42",
		},
		{
			name:  "embedding",
			build: func() (string, error) { return ForEmbedding("acme", "p1", "chunk_7") },
			want:  "/acme/p1/chunk_7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuilders_RejectInvalidSegments(t *testing.T) {
	_, err := ForSession("acme", "user/with/slash", "s1")
	assert.ErrorIs(t, err, ErrMalformedKey)

	_, err = ForDocument("", "p1", "d1")
	assert.ErrorIs(t, err, ErrMalformedKey)

	_, err = ForProject("acme", "p1", ProjectEntityType("secrets"))
	assert.ErrorIs(t, err, ErrMalformedKey)
}

func TestParse_RoundTrip(t *testing.T) {
	builders := map[string]func() (string, error){
		"project":   func() (string, error) { return ForProject("tenant-a", "proj.b", ProjectSettings) },
		"session":   func() (string, error) { return ForSession("tenant-a", "user_b", "sess-c") },
		"document":  func() (string, error) { return ForDocument("tenant-a", "proj.b", "doc-c") },
		"embedding": func() (string, error) { return ForEmbedding("tenant-a", "proj.b", "chunk-c") },
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			path, err := build()
			require.NoError(t, err)

			key, err := Parse(path)
			require.NoError(t, err)
			assert.Equal(t, "tenant-a", key.TenantID)

			// Rendering the parsed key must reproduce the built string.
			assert.Equal(t, path, key.String())
		})
	}
}

func TestParse_DiscardsEmptySegments(t *testing.T) {
	key, err := Parse("//acme//p1/d1/")
	require.NoError(t, err)
	assert.Equal(t, Key{TenantID: "acme", SecondID: "p1", ThirdID: "d1"}, key)
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		"",
		"/",
		"/acme",
		"/acme/p1",
		"/acme/p1/d1/extra",
	}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			_, err := Parse(path)
			assert.ErrorIs(t, err, ErrMalformedKey)
		})
	}
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, ValidIdentifier("abc-123_x.y"))
	assert.False(t, ValidIdentifier(""))
	assert.False(t, ValidIdentifier("a/b"))
	assert.False(t, ValidIdentifier(strings.Repeat("x", 129)))
	assert.False(t, ValidIdentifier("has space"))
}
