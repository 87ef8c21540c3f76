package middleware

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFileHash(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.css")
	require.NoError(t, os.WriteFile(tmpFile, []byte("body { color: red; }"), 0644))

	hash := computeFileHash(tmpFile)
	assert.Len(t, hash, 8)

	assert.Empty(t, computeFileHash("non_existent_file.css"))
}

func TestInitAssetVersions(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "js"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "map.js"), []byte("console.log(1)"), 0644))

	InitAssetVersions(root)
	t.Cleanup(func() { InitAssetVersions(t.TempDir()) })

	ctx := context.Background()
	v := AssetVersion(ctx, "js/map.js")
	assert.Len(t, v, 8)
	assert.Equal(t, "/static/js/map.js?v="+v, AssetURL(ctx, "js/map.js"))

	assert.Equal(t, "1", AssetVersion(ctx, "css/style.css"), "missing files fall back")
	assert.Equal(t, "1", AssetVersion(ctx, "js/unknown.js"))
}
