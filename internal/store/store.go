// Package store is the content-addressed artifact store. Every completed
// generation is filed under the request's content hash, so identical
// requests are served from disk instead of re-running the geometry
// pipeline. Entries are published with a stage-then-rename so readers
// never observe a half-written artifact, and concurrent builds of the
// same hash are coalesced into one.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/tracefinity/tracebin/internal/model"
)

const (
	artifactFile = "artifact.json"
	namedDir     = "named"
	stagePrefix  = ".stage-"
)

// BuildFunc produces an artifact's files into the staging directory it is
// given and returns the artifact metadata. The file names it reports must
// exist in the directory when it returns.
type BuildFunc func(dir string) (*model.GeneratedArtifact, error)

// Store is a content-addressed artifact store rooted at one directory.
type Store struct {
	root   string
	group  singleflight.Group
	logger *log.Logger
}

// New opens (creating if needed) a store rooted at dir.
func New(dir string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(filepath.Join(dir, namedDir), 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &Store{root: dir, logger: logger}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// dir returns the entry directory for a content hash, sharded on the
// first two hex digits.
func (s *Store) dir(hash string) string {
	return filepath.Join(s.root, hash[:2], hash)
}

// Lookup returns the stored artifact for a hash, or ok=false when the
// hash has never been published (or its entry is unreadable).
func (s *Store) Lookup(hash string) (*model.GeneratedArtifact, string, bool) {
	dir := s.dir(hash)
	data, err := os.ReadFile(filepath.Join(dir, artifactFile))
	if err != nil {
		return nil, "", false
	}
	var art model.GeneratedArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		s.logger.Warn("corrupt artifact entry, ignoring", "hash", hash, "err", err)
		return nil, "", false
	}
	for _, name := range art.Files {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			s.logger.Warn("artifact entry missing file, ignoring", "hash", hash, "file", name)
			return nil, "", false
		}
	}
	return &art, dir, true
}

// Materialize returns the artifact for a hash, building it first when it
// is not yet stored. Concurrent calls for the same hash share a single
// build. The build writes into a staging directory that is renamed into
// place only after the metadata is on disk.
func (s *Store) Materialize(hash string, build BuildFunc) (*model.GeneratedArtifact, string, error) {
	if art, dir, ok := s.Lookup(hash); ok {
		s.logger.Debug("artifact cache hit", "hash", hash)
		return art, dir, nil
	}

	v, err, _ := s.group.Do(hash, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have landed
		// the entry while this one queued.
		if art, dir, ok := s.Lookup(hash); ok {
			return entry{art, dir}, nil
		}
		art, dir, err := s.build(hash, build)
		if err != nil {
			return nil, err
		}
		return entry{art, dir}, nil
	})
	if err != nil {
		return nil, "", err
	}
	e := v.(entry)
	return e.art, e.dir, nil
}

type entry struct {
	art *model.GeneratedArtifact
	dir string
}

func (s *Store) build(hash string, build BuildFunc) (*model.GeneratedArtifact, string, error) {
	stage, err := os.MkdirTemp(s.root, stagePrefix)
	if err != nil {
		return nil, "", fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(stage)

	start := time.Now()
	art, err := build(stage)
	if err != nil {
		return nil, "", err
	}
	art.Hash = hash

	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode artifact: %w", err)
	}
	if err := os.WriteFile(filepath.Join(stage, artifactFile), data, 0o644); err != nil {
		return nil, "", fmt.Errorf("write artifact metadata: %w", err)
	}

	final := s.dir(hash)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return nil, "", fmt.Errorf("create shard dir: %w", err)
	}
	if err := os.Rename(stage, final); err != nil {
		// A concurrent publisher won the rename; their entry is as good
		// as ours.
		if art2, dir, ok := s.Lookup(hash); ok {
			return art2, dir, nil
		}
		return nil, "", fmt.Errorf("publish artifact: %w", err)
	}
	s.logger.Debug("artifact published", "hash", hash, "files", len(art.Files), "took", time.Since(start))
	return art, final, nil
}

// namedPointer is the on-disk form of a name -> hash binding.
type namedPointer struct {
	Hash      string    `json:"hash"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link binds a bin name to an artifact hash. Rebinding is last-write-wins:
// the pointer is replaced atomically and never merged.
func (s *Store) Link(name, hash string) error {
	data, err := json.Marshal(namedPointer{Hash: hash, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	path := filepath.Join(s.root, namedDir, name+".json")
	tmp, err := os.CreateTemp(filepath.Dir(path), stagePrefix)
	if err != nil {
		return fmt.Errorf("stage pointer: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Resolve returns the artifact hash a bin name currently points to.
func (s *Store) Resolve(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, namedDir, name+".json"))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", name, err)
	}
	var p namedPointer
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("resolve %q: %w", name, err)
	}
	return p.Hash, nil
}

// ExportTo copies an artifact's files into dst, then removes any stale
// part files a previous, larger generation left behind so the directory
// always reflects exactly one artifact.
func (s *Store) ExportTo(dst, hash string) (*model.GeneratedArtifact, error) {
	art, dir, ok := s.Lookup(hash)
	if !ok {
		return nil, fmt.Errorf("artifact %s not in store", hash)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, err
	}
	current := make(map[string]bool, len(art.Files))
	for _, name := range art.Files {
		current[name] = true
		if err := copyFile(filepath.Join(dir, name), filepath.Join(dst, name)); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(dst)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := e.Name()
		if current[name] || e.IsDir() {
			continue
		}
		if strings.HasPrefix(name, "bin_part") && strings.HasSuffix(name, ".stl") {
			if err := os.Remove(filepath.Join(dst, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("remove stale part %s: %w", name, err)
			}
			s.logger.Debug("removed stale part file", "file", name)
		}
	}
	return art, nil
}

// Prune removes store entries older than the given age. Named pointers
// are left alone; a pointer to a pruned entry simply misses on lookup.
func (s *Store) Prune(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	shards, err := os.ReadDir(s.root)
	if err != nil {
		return 0, err
	}
	for _, shard := range shards {
		if !shard.IsDir() || shard.Name() == namedDir || strings.HasPrefix(shard.Name(), stagePrefix) {
			continue
		}
		shardPath := filepath.Join(s.root, shard.Name())
		entries, err := os.ReadDir(shardPath)
		if err != nil {
			continue
		}
		for _, e := range entries {
			info, err := e.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			if err := os.RemoveAll(filepath.Join(shardPath, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
