package middleware

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// StaticAssets are the files under static/ referenced by the pages
var StaticAssets = []string{
	"css/style.css",
	"js/map.js",
	"js/stage.js",
}

var (
	assetVersions   = map[string]string{}
	assetVersionsMu sync.RWMutex
)

// InitAssetVersions computes file hashes for cache busting at startup
func InitAssetVersions(root string) {
	versions := make(map[string]string, len(StaticAssets))
	for _, name := range StaticAssets {
		if v := computeFileHash(filepath.Join(root, filepath.FromSlash(name))); v != "" {
			versions[name] = v
		}
	}

	assetVersionsMu.Lock()
	assetVersions = versions
	assetVersionsMu.Unlock()
	zap.L().Info("asset versions initialized", zap.Int("files", len(versions)))
}

// computeFileHash returns the first 8 characters of the MD5 hash of a file
func computeFileHash(path string) string {
	file, err := os.Open(path)
	if err != nil {
		zap.L().Warn("failed to open file for hashing", zap.String("path", path), zap.Error(err))
		return ""
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		zap.L().Warn("failed to hash file", zap.String("path", path), zap.Error(err))
		return ""
	}

	return hex.EncodeToString(hash.Sum(nil))[:8]
}

// AssetVersion returns the version hash of a static file, "1" when unknown.
// ctx keeps the signature in line with the other component helpers.
func AssetVersion(ctx context.Context, name string) string {
	assetVersionsMu.RLock()
	defer assetVersionsMu.RUnlock()
	if v, ok := assetVersions[name]; ok {
		return v
	}
	return "1"
}

// AssetURL returns the cache-busted URL of a static file
func AssetURL(ctx context.Context, name string) string {
	return "/static/" + name + "?v=" + AssetVersion(ctx, name)
}
