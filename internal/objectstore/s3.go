package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Store is an AWS S3-backed Store. Writer buffers the upload in memory
// (s3.PutObject has no append semantics) and commits with a single
// PutObject call; Abort simply discards the buffer since nothing reached
// S3 until Commit.
type S3Store struct {
	client *s3.S3
	bucket string
	prefix string
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds a Store backed by bucket, rooting every path under
// prefix.
func NewS3Store(sess *session.Session, bucket, prefix string) *S3Store {
	return &S3Store{client: s3.New(sess), bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Store) key(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == "NotFound" {
			return false, nil
		}
		return false, fmt.Errorf("objectstore: s3 head %s: %w", path, err)
	}
	return true, nil
}

func (s *S3Store) Size(ctx context.Context, path string) (int64, error) {
	out, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return 0, fmt.Errorf("objectstore: s3 head %s: %w", path, err)
	}
	return aws.Int64Value(out.ContentLength), nil
}

// Mkdir is a no-op on S3: prefixes are not real objects.
func (s *S3Store) Mkdir(ctx context.Context, path string, recursive bool) error {
	return nil
}

func (s *S3Store) Rm(ctx context.Context, path string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return fmt.Errorf("objectstore: s3 delete %s: %w", path, err)
	}
	return nil
}

func (s *S3Store) Ls(ctx context.Context, path string) ([]Entry, error) {
	prefix := s.key(path)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	out, err := s.client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: s3 list %s: %w", path, err)
	}

	var entries []Entry
	for _, obj := range out.Contents {
		entries = append(entries, Entry{
			Path: strings.TrimPrefix(aws.StringValue(obj.Key), s.prefix+"/"),
			Size: aws.Int64Value(obj.Size),
		})
	}
	for _, sub := range out.CommonPrefixes {
		entries = append(entries, Entry{
			Path:  strings.TrimPrefix(aws.StringValue(sub.Prefix), s.prefix+"/"),
			IsDir: true,
		})
	}
	return entries, nil
}

func (s *S3Store) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: s3 get %s: %w", path, err)
	}
	return out.Body, nil
}

func (s *S3Store) Writer(ctx context.Context, path string) (Writer, error) {
	return &s3Writer{ctx: ctx, store: s, path: path}, nil
}

type s3Writer struct {
	ctx   context.Context
	store *S3Store
	path  string
	buf   bytes.Buffer
	done  bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *s3Writer) Commit(ctx context.Context) error {
	if w.done {
		return nil
	}
	w.done = true
	_, err := w.store.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.store.bucket),
		Key:    aws.String(w.store.key(w.path)),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("objectstore: s3 put %s: %w", w.path, err)
	}
	return nil
}

func (w *s3Writer) Abort(ctx context.Context) error {
	w.done = true
	w.buf.Reset()
	return nil
}
