package store

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracefinity/tracebin/internal/model"
)

const testHash = "ab12cd34ef56ab12cd34ef56ab12cd34"

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func stubBuild(files map[string]string) BuildFunc {
	return func(dir string) (*model.GeneratedArtifact, error) {
		names := make([]string, 0, len(files))
		for name, body := range files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
				return nil, err
			}
			names = append(names, name)
		}
		return &model.GeneratedArtifact{PartCount: 1, Files: names}, nil
	}
}

func TestMaterialize_BuildsOnce(t *testing.T) {
	s := newStore(t)
	var calls atomic.Int32
	build := func(dir string) (*model.GeneratedArtifact, error) {
		calls.Add(1)
		return stubBuild(map[string]string{"bin.stl": "solid"})(dir)
	}

	art, dir, err := s.Materialize(testHash, build)
	require.NoError(t, err)
	assert.Equal(t, testHash, art.Hash)
	assert.FileExists(t, filepath.Join(dir, "bin.stl"))
	assert.FileExists(t, filepath.Join(dir, artifactFile))

	// Second call is a cache hit.
	art2, dir2, err := s.Materialize(testHash, build)
	require.NoError(t, err)
	assert.Equal(t, art.Hash, art2.Hash)
	assert.Equal(t, dir, dir2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMaterialize_CoalescesConcurrentBuilds(t *testing.T) {
	s := newStore(t)
	var calls atomic.Int32
	build := func(dir string) (*model.GeneratedArtifact, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return stubBuild(map[string]string{"bin.stl": "solid"})(dir)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Materialize(testHash, build)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestMaterialize_BuildErrorNotCached(t *testing.T) {
	s := newStore(t)
	failing := func(dir string) (*model.GeneratedArtifact, error) {
		return nil, os.ErrPermission
	}
	_, _, err := s.Materialize(testHash, failing)
	require.Error(t, err)

	// The failure leaves nothing behind; a later build succeeds.
	_, _, ok := s.Lookup(testHash)
	assert.False(t, ok)
	_, _, err = s.Materialize(testHash, stubBuild(map[string]string{"bin.stl": "solid"}))
	require.NoError(t, err)
}

func TestLookup_RejectsMissingFiles(t *testing.T) {
	s := newStore(t)
	_, dir, err := s.Materialize(testHash, stubBuild(map[string]string{"bin.stl": "solid"}))
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "bin.stl")))
	_, _, ok := s.Lookup(testHash)
	assert.False(t, ok)
}

func TestLookup_RejectsCorruptMetadata(t *testing.T) {
	s := newStore(t)
	_, dir, err := s.Materialize(testHash, stubBuild(map[string]string{"bin.stl": "solid"}))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, artifactFile), []byte("{"), 0o644))
	_, _, ok := s.Lookup(testHash)
	assert.False(t, ok)
}

func TestLinkResolve_RoundTrip(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Link("drill-bits", testHash))

	hash, err := s.Resolve("drill-bits")
	require.NoError(t, err)
	assert.Equal(t, testHash, hash)

	// Rebinding is last-write-wins.
	other := "ff12cd34ef56ab12cd34ef56ab12cd34"
	require.NoError(t, s.Link("drill-bits", other))
	hash, err = s.Resolve("drill-bits")
	require.NoError(t, err)
	assert.Equal(t, other, hash)
}

func TestResolve_UnknownName(t *testing.T) {
	s := newStore(t)
	_, err := s.Resolve("nope")
	require.Error(t, err)
}

func TestExportTo_CopiesAndRemovesStaleParts(t *testing.T) {
	s := newStore(t)
	_, _, err := s.Materialize(testHash, stubBuild(map[string]string{
		"bin_part1.stl": "a",
		"bin_part2.stl": "b",
		"bin.3mf":       "c",
	}))
	require.NoError(t, err)

	dst := t.TempDir()
	// Leftovers from a previous, larger generation.
	require.NoError(t, os.WriteFile(filepath.Join(dst, "bin_part3.stl"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "notes.txt"), []byte("keep"), 0o644))

	art, err := s.ExportTo(dst, testHash)
	require.NoError(t, err)
	assert.Len(t, art.Files, 3)

	assert.FileExists(t, filepath.Join(dst, "bin_part1.stl"))
	assert.FileExists(t, filepath.Join(dst, "bin_part2.stl"))
	assert.FileExists(t, filepath.Join(dst, "bin.3mf"))
	assert.NoFileExists(t, filepath.Join(dst, "bin_part3.stl"))
	assert.FileExists(t, filepath.Join(dst, "notes.txt"), "unrelated files stay put")
}

func TestExportTo_UnknownHash(t *testing.T) {
	s := newStore(t)
	_, err := s.ExportTo(t.TempDir(), testHash)
	require.Error(t, err)
}

func TestPrune_RemovesOldEntries(t *testing.T) {
	s := newStore(t)
	_, dir, err := s.Materialize(testHash, stubBuild(map[string]string{"bin.stl": "solid"}))
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(dir, old, old))

	removed, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, _, ok := s.Lookup(testHash)
	assert.False(t, ok)
}

func TestPrune_KeepsRecentEntries(t *testing.T) {
	s := newStore(t)
	_, _, err := s.Materialize(testHash, stubBuild(map[string]string{"bin.stl": "solid"}))
	require.NoError(t, err)

	removed, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
	_, _, ok := s.Lookup(testHash)
	assert.True(t, ok)
}
