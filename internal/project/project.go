package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tracefinity/tracebin/internal/model"
)

// fileVersion guards against loading request files written by an
// incompatible future format.
const fileVersion = 1

// binFile is the on-disk envelope of a saved bin request.
type binFile struct {
	Version int                   `json:"version"`
	Name    string                `json:"name"`
	Saved   time.Time             `json:"saved_at"`
	Request model.GenerateRequest `json:"request"`
}

// SaveRequest writes a bin request to path as JSON, backing up any
// existing file first.
func SaveRequest(path, name string, req model.GenerateRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid request: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		if err := backup(path); err != nil {
			return fmt.Errorf("backup before save: %w", err)
		}
	}
	data, err := json.MarshalIndent(binFile{
		Version: fileVersion,
		Name:    name,
		Saved:   time.Now().UTC(),
		Request: req,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadRequest reads a bin request file and validates its contents.
func LoadRequest(path string) (string, model.GenerateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", model.GenerateRequest{}, err
	}
	var f binFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", model.GenerateRequest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Version > fileVersion {
		return "", model.GenerateRequest{}, fmt.Errorf("%s: unsupported file version %d", path, f.Version)
	}
	if err := f.Request.Validate(); err != nil {
		return "", model.GenerateRequest{}, fmt.Errorf("%s: %w", path, err)
	}
	return f.Name, f.Request, nil
}

// backup copies path aside with a timestamp suffix, keeping the three
// most recent backups.
func backup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	stamp := time.Now().UTC().Format("20060102-150405")
	bak := fmt.Sprintf("%s.%s.bak", path, stamp)
	if err := os.WriteFile(bak, data, 0644); err != nil {
		return err
	}
	return pruneBackups(path, 3)
}

func pruneBackups(path string, keep int) error {
	matches, err := filepath.Glob(path + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) <= keep {
		return nil
	}
	// Glob results are sorted; timestamp suffixes sort oldest first.
	for _, old := range matches[:len(matches)-keep] {
		if err := os.Remove(old); err != nil {
			return err
		}
	}
	return nil
}
