package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("EXPAND_HOST", "db.internal")
	t.Setenv("EXPAND_PORT", "5432")

	t.Run("expands variables", func(t *testing.T) {
		out := ExpandEnv([]byte("endpoint: {{.EXPAND_HOST}}:{{.EXPAND_PORT}}"))
		assert.Equal(t, "endpoint: db.internal:5432", string(out))
	})

	t.Run("missing variable expands to empty", func(t *testing.T) {
		out := ExpandEnv([]byte("token: {{.EXPAND_NO_SUCH_VAR}}"))
		assert.Equal(t, "token: ", string(out))
	})

	t.Run("dollar signs pass through", func(t *testing.T) {
		in := []byte(`password: "p@ss$word"`)
		assert.Equal(t, string(in), string(ExpandEnv(in)))
	})

	t.Run("malformed template passes through", func(t *testing.T) {
		in := []byte("value: {{.unterminated")
		assert.Equal(t, string(in), string(ExpandEnv(in)))
	})
}
