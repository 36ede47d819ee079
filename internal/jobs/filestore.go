package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore persists jobs under <root>/<id>/{input.json,status,output}
// per spec's on-disk spawn layout, alongside a job.json holding the
// full Job record (status transitions, timestamps, tool_call_id) that
// the three literal files alone can't carry. Writes go through a
// temp-file-then-rename per field, the same lock-then-rename pattern
// the memory tool and session store use for crash-safe updates.
type FileStore struct {
	mu   sync.Mutex
	root string
	keys []string
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jobs: create root: %w", err)
	}
	fs := &FileStore{root: dir}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("jobs: read root: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			fs.keys = append(fs.keys, e.Name())
		}
	}
	return fs, nil
}

func (s *FileStore) jobDir(id string) string { return filepath.Join(s.root, id) }

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) persist(job *Job) error {
	dir := s.jobDir(job.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	meta, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(dir, "job.json"), meta); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(dir, "status"), []byte(job.Status)); err != nil {
		return err
	}

	output := job.Error
	if job.Result != nil {
		output = job.Result.Content
	}
	return writeFileAtomic(filepath.Join(dir, "output"), []byte(output))
}

// WriteInput records a task's parameters as input.json, before the job
// itself is created; safe to call once per job id.
func (s *FileStore) WriteInput(id string, input any) error {
	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return err
	}
	dir := s.jobDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, "input.json"), data)
}

// Create stores a new job.
func (s *FileStore) Create(ctx context.Context, job *Job) error {
	if job == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, id := range s.keys {
		if id == job.ID {
			found = true
			break
		}
	}
	if !found {
		s.keys = append(s.keys, job.ID)
	}
	return s.persist(job)
}

// Update rewrites an existing job's on-disk record.
func (s *FileStore) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(job)
}

// Get reads a job by id from disk.
func (s *FileStore) Get(ctx context.Context, id string) (*Job, error) {
	data, err := os.ReadFile(filepath.Join(s.jobDir(id), "job.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("jobs: decode %s: %w", id, err)
	}
	return &job, nil
}

// List returns jobs in the order this FileStore registered them: jobs
// already on disk when NewFileStore ran come first, in directory-name
// order, followed by jobs created since, in creation order.
func (s *FileStore) List(ctx context.Context, limit, offset int) ([]*Job, error) {
	s.mu.Lock()
	keys := append([]string(nil), s.keys...)
	s.mu.Unlock()

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > len(keys) {
		limit = len(keys)
	}
	if offset >= len(keys) {
		return nil, nil
	}
	end := offset + limit
	if end > len(keys) {
		end = len(keys)
	}
	result := make([]*Job, 0, end-offset)
	for _, id := range keys[offset:end] {
		job, err := s.Get(ctx, id)
		if err != nil || job == nil {
			continue
		}
		result = append(result, job)
	}
	return result, nil
}

// Prune removes job directories older than olderThan.
func (s *FileStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var pruned int64
	var remaining []string
	for _, id := range s.keys {
		job, err := s.Get(ctx, id)
		if err != nil || job == nil || job.CreatedAt.Before(cutoff) {
			os.RemoveAll(s.jobDir(id))
			pruned++
			continue
		}
		remaining = append(remaining, id)
	}
	s.keys = remaining
	return pruned, nil
}

// Cancel marks a running or queued job as failed; FileStore has no
// in-process goroutine to signal, so it only rewrites job state.
func (s *FileStore) Cancel(ctx context.Context, id string) error {
	job, err := s.Get(ctx, id)
	if err != nil || job == nil {
		return err
	}
	if job.Status != StatusRunning && job.Status != StatusQueued {
		return nil
	}
	job.Status = StatusFailed
	job.Error = "job cancelled"
	job.FinishedAt = time.Now()
	return s.Update(ctx, job)
}
