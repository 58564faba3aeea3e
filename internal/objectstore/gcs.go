package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore is a Google Cloud Storage-backed Store.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ Store = (*GCSStore)(nil)

// NewGCSStore builds a Store backed by bucket, rooting every path under
// prefix.
func NewGCSStore(client *storage.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *GCSStore) object(path string) *storage.ObjectHandle {
	key := path
	if s.prefix != "" {
		key = s.prefix + "/" + path
	}
	return s.client.Bucket(s.bucket).Object(key)
}

func (s *GCSStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.object(path).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("objectstore: gcs stat %s: %w", path, err)
	}
	return true, nil
}

func (s *GCSStore) Size(ctx context.Context, path string) (int64, error) {
	attrs, err := s.object(path).Attrs(ctx)
	if err != nil {
		return 0, fmt.Errorf("objectstore: gcs stat %s: %w", path, err)
	}
	return attrs.Size, nil
}

// Mkdir is a no-op on GCS: prefixes are not real objects.
func (s *GCSStore) Mkdir(ctx context.Context, path string, recursive bool) error {
	return nil
}

func (s *GCSStore) Rm(ctx context.Context, path string) error {
	if err := s.object(path).Delete(ctx); err != nil {
		return fmt.Errorf("objectstore: gcs delete %s: %w", path, err)
	}
	return nil
}

func (s *GCSStore) Ls(ctx context.Context, path string) ([]Entry, error) {
	prefix := path
	if s.prefix != "" {
		prefix = s.prefix + "/" + path
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	var entries []Entry
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("objectstore: gcs list %s: %w", path, err)
		}
		if attrs.Prefix != "" {
			entries = append(entries, Entry{Path: strings.TrimPrefix(attrs.Prefix, s.prefix+"/"), IsDir: true})
			continue
		}
		entries = append(entries, Entry{Path: strings.TrimPrefix(attrs.Name, s.prefix+"/"), Size: attrs.Size})
	}
	return entries, nil
}

func (s *GCSStore) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := s.object(path).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("objectstore: gcs open %s: %w", path, err)
	}
	return r, nil
}

func (s *GCSStore) Writer(ctx context.Context, path string) (Writer, error) {
	return &gcsWriter{store: s, path: path, w: s.object(path).NewWriter(ctx)}, nil
}

type gcsWriter struct {
	store *GCSStore
	path  string
	w     *storage.Writer
	done  bool
}

func (w *gcsWriter) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

func (w *gcsWriter) Commit(ctx context.Context) error {
	if w.done {
		return nil
	}
	w.done = true
	if err := w.w.Close(); err != nil {
		return fmt.Errorf("objectstore: gcs commit: %w", err)
	}
	return nil
}

func (w *gcsWriter) Abort(ctx context.Context) error {
	if w.done {
		return nil
	}
	w.done = true
	// storage.Writer has no abort primitive; close then delete whatever
	// object it may have already flushed.
	_ = w.w.Close()
	if err := w.store.object(w.path).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("objectstore: gcs abort cleanup %s: %w", w.path, err)
	}
	return nil
}
