package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.1", -1},
		{"v2.0.0", "2.0.0", 0},
		{"1.10.0", "1.9.0", 1},
		{"1.0.0-beta", "1.0.0", -1},
	}
	for _, tt := range tests {
		got, err := CompareVersions(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s vs %s", tt.a, tt.b)
	}

	_, err := CompareVersions("none", "1.0.0")
	assert.Error(t, err)
}

func TestIsNewer(t *testing.T) {
	assert.True(t, IsNewer("1.1.0", "1.0.0"))
	assert.False(t, IsNewer("1.0.0", "1.0.0"))
	assert.False(t, IsNewer("0.9.0", "1.0.0"))
	assert.True(t, IsNewer("1.0.0", "none"))
	assert.False(t, IsNewer("garbage", "1.0.0"))
}
