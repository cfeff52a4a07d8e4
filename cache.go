package main

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/phobologic/pqgram/internal/config"
	"github.com/phobologic/pqgram/internal/discover"
)

// cachePrefix starts the first line of a cache file; the fingerprint follows.
const cachePrefix = "# pqgram-cache "

// cacheFingerprint identifies what shapes the report besides file contents:
// the version, the settings and the set of discovered files.
func cacheFingerprint(cfg *config.Config, fileFilter string, files []discover.FileEntry) string {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%+v|file=%s", version, *cfg, fileFilter)
	for _, f := range files {
		_, _ = fmt.Fprintf(h, "|%s", f.Path)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// readCache returns the cached output if it was written with the same
// fingerprint and is newer than every file.
func readCache(cachePath, fingerprint, root string, files []discover.FileEntry) (string, bool) {
	if !cacheIsFresh(cachePath, root, files) {
		return "", false
	}
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return "", false
	}
	header, body, ok := strings.Cut(string(data), "\n")
	if !ok || header != cachePrefix+fingerprint {
		return "", false
	}
	return body, true
}

func cacheIsFresh(cachePath, root string, files []discover.FileEntry) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}
