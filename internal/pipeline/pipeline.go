// Package pipeline implements TRAC's streaming upload/download plumbing
// (spec.md §4.D/§4.F): byte-stream source → codec decode → codec re-encode
// → object-store sink for writes, and the mirror chain for reads. Built on
// goroutines, channels and context cancellation per spec.md §9's guidance
// to avoid a reactive framework, using golang.org/x/sync/errgroup for
// fan-out error propagation the way a multi-stage pipeline needs exactly-
// once termination on first error.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/tracplatform/trac/internal/codec"
	"github.com/tracplatform/trac/internal/metadata"
	"github.com/tracplatform/trac/internal/objectstore"
)

// countingReader tallies bytes read so Upload can detect a declared-size
// mismatch without the codec layer knowing about byte counts.
type countingReader struct {
	io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	c.n += int64(n)
	return n, err
}

// countingWriter mirrors countingReader on the sink side, so Download can
// report exactly how many bytes it emitted.
type countingWriter struct {
	io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	c.n += int64(n)
	return n, err
}

// UploadResult carries what a completed Upload produced.
type UploadResult struct {
	BytesRead int64
}

// Upload runs the write-path pipeline (spec.md §4.F step 5): src carries
// the reassembled content frames in srcCodec's wire format; srcSchema
// describes how to decode them; storageCodec/storageSchema describe the
// canonical on-disk re-encoding written to dst. The two codecs' schemas
// may differ only as spec.md's update-compatibility rule allows (field
// additions); incompatible drift surfaces as the codec's own DATA_LOSS.
//
// Decode and re-encode run concurrently, connected by a bounded channel of
// batches, so large uploads never buffer entirely in memory. On any stage
// error the whole group is canceled and dst is aborted exactly once.
//
// declaredSize, if non-nil, is checked against the actual bytes read from
// src before dst is committed (spec.md §4.F step 6): a mismatch aborts the
// write and returns a codec DATA_LOSS error rather than leaving a
// wrong-length object visible to readers.
func Upload(ctx context.Context, src io.Reader, srcCodec codec.Codec, srcSchema *metadata.SchemaDefinition, storageCodec codec.Codec, storageSchema *metadata.SchemaDefinition, dst objectstore.Writer, declaredSize *int64) (UploadResult, error) {
	counted := &countingReader{Reader: src}

	decoder, err := srcCodec.Decoder(counted, srcSchema)
	if err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: open decoder: %w", err)
	}
	defer decoder.Close()

	encoder, err := storageCodec.Encoder(dst, storageSchema)
	if err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: open encoder: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)
	batches := make(chan codec.Batch, 4)

	group.Go(func() error {
		defer close(batches)
		for {
			batch, err := decoder.Next(gctx)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("pipeline: decode: %w", err)
			}
			select {
			case batches <- batch:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	group.Go(func() error {
		for {
			select {
			case batch, ok := <-batches:
				if !ok {
					return nil
				}
				if err := encoder.WriteBatch(gctx, batch); err != nil {
					return fmt.Errorf("pipeline: encode: %w", err)
				}
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	if err := group.Wait(); err != nil {
		_ = dst.Abort(ctx)
		return UploadResult{}, err
	}

	if declaredSize != nil && counted.n != *declaredSize {
		_ = dst.Abort(ctx)
		return UploadResult{}, codec.NewDataLossError("declared size %d does not match received bytes %d", *declaredSize, counted.n)
	}

	if err := encoder.Close(); err != nil {
		_ = dst.Abort(ctx)
		return UploadResult{}, fmt.Errorf("pipeline: close encoder: %w", err)
	}
	if err := dst.Commit(ctx); err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: commit: %w", err)
	}
	return UploadResult{BytesRead: counted.n}, nil
}

// CopyBytes streams src byte-exact into dst, with no codec in between —
// the FILE write path (spec.md §4.F), since a FILE object's payload is
// opaque bytes rather than schema'd rows. declaredSize is checked the same
// way Upload checks it, before dst is committed.
func CopyBytes(ctx context.Context, src io.Reader, dst objectstore.Writer, declaredSize *int64) (int64, error) {
	counted := &countingReader{Reader: src}
	if _, err := io.Copy(dst, counted); err != nil {
		_ = dst.Abort(ctx)
		return 0, fmt.Errorf("pipeline: copy bytes: %w", err)
	}
	if declaredSize != nil && counted.n != *declaredSize {
		_ = dst.Abort(ctx)
		return 0, codec.NewDataLossError("declared size %d does not match received bytes %d", *declaredSize, counted.n)
	}
	if err := dst.Commit(ctx); err != nil {
		return 0, fmt.Errorf("pipeline: commit: %w", err)
	}
	return counted.n, nil
}

// RowFilter narrows a read to an offset/limit row range, applied at batch
// boundaries per spec.md §4.F step 3.
type RowFilter struct {
	Offset int64
	Limit  int64 // 0 means unlimited
}

// apply returns the rows of batch that fall in [Offset, Offset+Limit) of
// the overall row stream, given seen rows already consumed before batch,
// along with the updated seen count and whether the caller should stop
// requesting further batches.
func (f RowFilter) apply(batch codec.Batch, seen, taken int64) (out codec.Batch, newSeen, newTaken int64, done bool) {
	newSeen = seen
	newTaken = taken
	for _, row := range batch {
		newSeen++
		if newSeen <= f.Offset {
			continue
		}
		if f.Limit != 0 && newTaken >= f.Limit {
			return out, newSeen, newTaken, true
		}
		out = append(out, row)
		newTaken++
	}
	done = f.Limit != 0 && newTaken >= f.Limit
	return out, newSeen, newTaken, done
}

// Download runs the read-path pipeline (spec.md §4.F step 3): src is the
// object-store reader at the resolved copy's storage path, decoded in
// storageCodec's format and re-encoded in the client's requested format,
// with filter applied at batch boundaries. Returns the exact byte count
// written to dst.
func Download(ctx context.Context, src io.Reader, storageCodec codec.Codec, storageSchema *metadata.SchemaDefinition, dstCodec codec.Codec, dstSchema *metadata.SchemaDefinition, dst io.Writer, filter RowFilter) (int64, error) {
	counted := &countingWriter{Writer: dst}

	decoder, err := storageCodec.Decoder(src, storageSchema)
	if err != nil {
		return 0, fmt.Errorf("pipeline: open decoder: %w", err)
	}
	defer decoder.Close()

	encoder, err := dstCodec.Encoder(counted, dstSchema)
	if err != nil {
		return 0, fmt.Errorf("pipeline: open encoder: %w", err)
	}

	var seen, taken int64
	for {
		batch, err := decoder.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("pipeline: decode: %w", err)
		}
		filtered, newSeen, newTaken, done := filter.apply(batch, seen, taken)
		seen, taken = newSeen, newTaken
		if len(filtered) > 0 {
			if err := encoder.WriteBatch(ctx, filtered); err != nil {
				return 0, fmt.Errorf("pipeline: encode: %w", err)
			}
		}
		if done {
			break
		}
	}

	if err := encoder.Close(); err != nil {
		return 0, fmt.Errorf("pipeline: close encoder: %w", err)
	}
	return counted.n, nil
}
