package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMetaValid(t *testing.T) {
	result, err := ValidateMeta([]byte("name: basic\nversion: v1.2.3-beta.1\ndescription: ok\n"))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)
}

func TestValidateMetaIssues(t *testing.T) {
	tests := map[string]struct {
		yaml string
		path string
	}{
		"missing version": {"name: basic\n", ""},
		"bad name":        {"name: Basic App\nversion: 1.0.0\n", "/name"},
		"bad version":     {"name: basic\nversion: latest\n", "/version"},
		"long icon":       {"name: basic\nversion: 1.0.0\nicon: not-an-icon-at-all\n", "/icon"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := ValidateMeta([]byte(tt.yaml))
			require.NoError(t, err)
			require.False(t, result.Valid)
			require.NotEmpty(t, result.Issues)
			if tt.path != "" {
				assert.Equal(t, tt.path, result.Issues[0].Path)
			}
			assert.NotEmpty(t, result.Error())
		})
	}
}

func TestValidateMetaEmptyDocument(t *testing.T) {
	result, err := ValidateMeta([]byte(""))
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidateMetaBadYAML(t *testing.T) {
	_, err := ValidateMeta([]byte("name: [unterminated"))
	assert.Error(t, err)
}
