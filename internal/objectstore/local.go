package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore is a disk-backed Store, adapted from warren's LocalDriver
// volume backend: files live under a base directory, write-once semantics
// are implemented with a temp-file-then-rename commit.
type LocalStore struct {
	basePath string
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates (if absent) basePath and returns a Store rooted
// there.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("objectstore: local store requires a base path")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("objectstore: create base directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (s *LocalStore) resolve(path string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(path))
}

func (s *LocalStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(s.resolve(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("objectstore: stat %s: %w", path, err)
	}
	return true, nil
}

func (s *LocalStore) Size(ctx context.Context, path string) (int64, error) {
	info, err := os.Stat(s.resolve(path))
	if err != nil {
		return 0, fmt.Errorf("objectstore: stat %s: %w", path, err)
	}
	return info.Size(), nil
}

func (s *LocalStore) Mkdir(ctx context.Context, path string, recursive bool) error {
	full := s.resolve(path)
	if recursive {
		if err := os.MkdirAll(full, 0o755); err != nil {
			return fmt.Errorf("objectstore: mkdir -p %s: %w", path, err)
		}
		return nil
	}
	if err := os.Mkdir(full, 0o755); err != nil {
		return fmt.Errorf("objectstore: mkdir %s: %w", path, err)
	}
	return nil
}

func (s *LocalStore) Rm(ctx context.Context, path string) error {
	if err := os.RemoveAll(s.resolve(path)); err != nil {
		return fmt.Errorf("objectstore: rm %s: %w", path, err)
	}
	return nil
}

func (s *LocalStore) Ls(ctx context.Context, path string) ([]Entry, error) {
	entries, err := os.ReadDir(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("objectstore: ls %s: %w", path, err)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("objectstore: stat entry %s: %w", e.Name(), err)
		}
		out = append(out, Entry{
			Path:  filepath.ToSlash(filepath.Join(path, e.Name())),
			Size:  info.Size(),
			IsDir: e.IsDir(),
		})
	}
	return out, nil
}

func (s *LocalStore) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("objectstore: open %s: %w", path, err)
	}
	return f, nil
}

func (s *LocalStore) Writer(ctx context.Context, path string) (Writer, error) {
	full := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("objectstore: create parent dir for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".trac-upload-*")
	if err != nil {
		return nil, fmt.Errorf("objectstore: create temp file for %s: %w", path, err)
	}
	return &localWriter{tmp: tmp, finalPath: full}, nil
}

type localWriter struct {
	tmp       *os.File
	finalPath string
	done      bool
}

func (w *localWriter) Write(p []byte) (int, error) {
	return w.tmp.Write(p)
}

func (w *localWriter) Commit(ctx context.Context) error {
	if w.done {
		return nil
	}
	w.done = true
	if err := w.tmp.Close(); err != nil {
		return fmt.Errorf("objectstore: close temp file: %w", err)
	}
	if err := os.Rename(w.tmp.Name(), w.finalPath); err != nil {
		return fmt.Errorf("objectstore: commit %s: %w", w.finalPath, err)
	}
	return nil
}

func (w *localWriter) Abort(ctx context.Context) error {
	if w.done {
		return nil
	}
	w.done = true
	w.tmp.Close()
	if err := os.Remove(w.tmp.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("objectstore: abort cleanup: %w", err)
	}
	return nil
}
