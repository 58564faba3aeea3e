package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/Azure/azure-storage-blob-go/azblob"
)

// AzureBlobStore is an Azure Blob Storage-backed Store.
type AzureBlobStore struct {
	container azblob.ContainerURL
	prefix    string
}

var _ Store = (*AzureBlobStore)(nil)

// NewAzureBlobStore builds a Store over an already-authenticated container
// URL, rooting every path under prefix.
func NewAzureBlobStore(container azblob.ContainerURL, prefix string) *AzureBlobStore {
	return &AzureBlobStore{container: container, prefix: strings.Trim(prefix, "/")}
}

func (s *AzureBlobStore) blockBlob(path string) azblob.BlockBlobURL {
	key := path
	if s.prefix != "" {
		key = s.prefix + "/" + path
	}
	return s.container.NewBlockBlobURL(key)
}

func (s *AzureBlobStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.blockBlob(path).GetProperties(ctx, azblob.BlobAccessConditions{}, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		if storageErr, ok := err.(azblob.StorageError); ok && storageErr.ServiceCode() == azblob.ServiceCodeBlobNotFound {
			return false, nil
		}
		return false, fmt.Errorf("objectstore: azure properties %s: %w", path, err)
	}
	return true, nil
}

func (s *AzureBlobStore) Size(ctx context.Context, path string) (int64, error) {
	props, err := s.blockBlob(path).GetProperties(ctx, azblob.BlobAccessConditions{}, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		return 0, fmt.Errorf("objectstore: azure properties %s: %w", path, err)
	}
	return props.ContentLength(), nil
}

// Mkdir is a no-op on Azure blob storage: prefixes are not real objects.
func (s *AzureBlobStore) Mkdir(ctx context.Context, path string, recursive bool) error {
	return nil
}

func (s *AzureBlobStore) Rm(ctx context.Context, path string) error {
	_, err := s.blockBlob(path).Delete(ctx, azblob.DeleteSnapshotsOptionNone, azblob.BlobAccessConditions{})
	if err != nil {
		return fmt.Errorf("objectstore: azure delete %s: %w", path, err)
	}
	return nil
}

func (s *AzureBlobStore) Ls(ctx context.Context, path string) ([]Entry, error) {
	prefix := path
	if s.prefix != "" {
		prefix = s.prefix + "/" + path
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var entries []Entry
	for marker := (azblob.Marker{}); marker.NotDone(); {
		resp, err := s.container.ListBlobsHierarchySegment(ctx, marker, "/", azblob.ListBlobsSegmentOptions{Prefix: prefix})
		if err != nil {
			return nil, fmt.Errorf("objectstore: azure list %s: %w", path, err)
		}
		for _, b := range resp.Segment.BlobItems {
			entries = append(entries, Entry{
				Path: strings.TrimPrefix(b.Name, s.prefix+"/"),
				Size: *b.Properties.ContentLength,
			})
		}
		for _, p := range resp.Segment.BlobPrefixes {
			entries = append(entries, Entry{Path: strings.TrimPrefix(p.Name, s.prefix+"/"), IsDir: true})
		}
		marker = resp.NextMarker
	}
	return entries, nil
}

func (s *AzureBlobStore) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := s.blockBlob(path).Download(ctx, 0, azblob.CountToEnd, azblob.BlobAccessConditions{}, false, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		return nil, fmt.Errorf("objectstore: azure download %s: %w", path, err)
	}
	return resp.Body(azblob.RetryReaderOptions{}), nil
}

func (s *AzureBlobStore) Writer(ctx context.Context, path string) (Writer, error) {
	return &azureWriter{ctx: ctx, store: s, path: path}, nil
}

type azureWriter struct {
	ctx   context.Context
	store *AzureBlobStore
	path  string
	buf   bytes.Buffer
	done  bool
}

func (w *azureWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *azureWriter) Commit(ctx context.Context) error {
	if w.done {
		return nil
	}
	w.done = true
	_, err := azblob.UploadStreamToBlockBlob(ctx, ioutil.NopCloser(bytes.NewReader(w.buf.Bytes())), w.store.blockBlob(w.path), azblob.UploadStreamToBlockBlobOptions{})
	if err != nil {
		return fmt.Errorf("objectstore: azure upload %s: %w", w.path, err)
	}
	return nil
}

func (w *azureWriter) Abort(ctx context.Context) error {
	w.done = true
	w.buf.Reset()
	return nil
}
