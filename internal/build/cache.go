package build

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cybercalc/minisat-recipe/formula"
)

// Workspace directory layout:
//
//	workspaceDir/
//	  <name>/                      # package-level dir (cacheDir)
//	    .cache.json                # build cache: maps "version-variant" → buildEntry
//	  <name>@<version>-<hash>/     # package output dir (installDir)
//	    include/
//	    lib/
//	    ...
//	  .tmp/                        # per-invocation scratch dirs
const cacheFile = ".cache.json"

// buildEntry contains metadata about a single successful build.
type buildEntry struct {
	Metadata  string      `json:"metadata"`
	Libs      []string    `json:"libs"`
	SCM       formula.SCM `json:"scm"`
	BuildTime time.Time   `json:"build_time"`
}

// buildCache maps "version-variant" keys to their build entries.
type buildCache struct {
	Cache map[string]*buildEntry `json:"cache"`
}

func cacheKey(version, variant string) string {
	return version + "-" + variant
}

func (c *buildCache) get(version, variant string) (*buildEntry, bool) {
	entry, ok := c.Cache[cacheKey(version, variant)]
	return entry, ok
}

func (c *buildCache) set(version, variant string, entry *buildEntry) {
	if c.Cache == nil {
		c.Cache = make(map[string]*buildEntry)
	}
	c.Cache[cacheKey(version, variant)] = entry
}

// variant identifies a settings/options combination, e.g.
// "linux-amd64-gcc-Release|lto=False,shared=False".
func variant(s formula.Settings, opts formula.Options) string {
	return fmt.Sprintf("%s-%s-%s-%s|%s", s.OS, s.Arch, s.Compiler, s.BuildType, opts)
}

// cacheDir returns the package-level directory for cache storage.
func (b *Builder) cacheDir(name string) string {
	return filepath.Join(b.workspaceDir, name)
}

// installDir returns the package output directory. The variant is hashed so
// the name stays valid on every file system.
func (b *Builder) installDir(name, version, variant string) string {
	sum := sha256.Sum256([]byte(variant))
	return filepath.Join(b.workspaceDir, fmt.Sprintf("%s@%s-%s", name, version, hex.EncodeToString(sum[:])[:12]))
}

// loadCache reads the cache file of a package. A missing file yields an
// empty cache.
func (b *Builder) loadCache(name string) (*buildCache, error) {
	data, err := os.ReadFile(filepath.Join(b.cacheDir(name), cacheFile))
	if os.IsNotExist(err) {
		return &buildCache{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cache buildCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parse %s: %w", cacheFile, err)
	}
	return &cache, nil
}

// saveCache writes the cache file of a package.
func (b *Builder) saveCache(name string, cache *buildCache) error {
	dir := b.cacheDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cacheFile), data, 0o644)
}
