package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reelhire/reelhire/internal/models"
)

const (
	jobsBlobName   = "jobs.json"
	draftsBlobName = "drafts.json"
)

// FileStore persists each collection as a single JSON blob under Dir.
// Writes go to a temp file in the same directory and are renamed into
// place, so readers never observe a torn snapshot.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("localstore: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := s.readBlob(ctx, jobsBlobName, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (s *FileStore) SaveJobs(ctx context.Context, jobs []models.Job) error {
	if jobs == nil {
		jobs = []models.Job{}
	}
	return s.writeBlob(ctx, jobsBlobName, jobs)
}

func (s *FileStore) LoadDrafts(ctx context.Context) ([]models.Draft, error) {
	var drafts []models.Draft
	if err := s.readBlob(ctx, draftsBlobName, &drafts); err != nil {
		return nil, err
	}
	if drafts == nil {
		drafts = []models.Draft{}
	}
	return drafts, nil
}

func (s *FileStore) SaveDrafts(ctx context.Context, drafts []models.Draft) error {
	if drafts == nil {
		drafts = []models.Draft{}
	}
	return s.writeBlob(ctx, draftsBlobName, drafts)
}

func (s *FileStore) readBlob(ctx context.Context, name string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("localstore: read %s: %w", name, err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("localstore: decode %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) writeBlob(ctx context.Context, name string, val any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("localstore: encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("localstore: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("localstore: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("localstore: close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("localstore: replace %s: %w", name, err)
	}
	return nil
}
