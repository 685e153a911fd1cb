package subscribers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository stores subscriber IDs as a JSON array in a single file.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("touch file: %w", err)
	}
	_ = f.Close()
	return &FileRepository{path: path}, nil
}

func (r *FileRepository) LoadAll() ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadUnlocked()
}

func (r *FileRepository) Add(userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// A failed read must not reach the truncating save below, or every
	// previously stored subscriber would be lost.
	ids, err := r.loadUnlocked()
	if err != nil {
		return fmt.Errorf("load before add: %w", err)
	}
	for _, id := range ids {
		if id == userID {
			return nil
		}
	}
	ids = append(ids, userID)
	return r.saveUnlocked(ids)
}

func (r *FileRepository) loadUnlocked() ([]int64, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	var ids []int64
	dec := json.NewDecoder(f)
	if err := dec.Decode(&ids); err != nil {
		if err == io.EOF {
			return []int64{}, nil
		}
		// Unreadable file is treated as empty; the next save rewrites it.
		return []int64{}, nil
	}
	return ids, nil
}

func (r *FileRepository) saveUnlocked(ids []int64) error {
	f, err := os.OpenFile(r.path, os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(ids)
}
