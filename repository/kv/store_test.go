package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathKey(t *testing.T) {
	paths := []string{"/", "/content/page", "/content/ünïcode name", "/a.b/c:d"}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			key := pathKey(p)
			assert.NotContains(t, key, "/")
			assert.NotContains(t, key, ".")
			got, err := keyPath(key)
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}

	_, err := keyPath("!!not-base64")
	assert.Error(t, err)
}

func TestBucketNames(t *testing.T) {
	assert.Equal(t, "SEMREPO_NODES", BucketNodes)
	assert.Equal(t, "SEMREPO_PATHS", BucketPaths)
}
