package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tracplatform/trac/internal/codec"
	"github.com/tracplatform/trac/internal/metadata"
)

type memWriter struct {
	bytes.Buffer
	aborted   bool
	committed bool
}

func (w *memWriter) Commit(ctx context.Context) error { w.committed = true; return nil }
func (w *memWriter) Abort(ctx context.Context) error   { w.aborted = true; return nil }

func csvSchema() *metadata.SchemaDefinition {
	return &metadata.SchemaDefinition{
		SchemaType: metadata.SchemaTypeTable,
		Table: metadata.TableSchema{
			Fields: []metadata.FieldSchema{
				{FieldName: "id", FieldType: metadata.TypeInteger},
			},
		},
	}
}

func TestUploadDecodesAndReencodesThenCommits(t *testing.T) {
	src := bytes.NewBufferString("id\n1\n2\n3\n")
	schema := csvSchema()
	dst := &memWriter{}

	result, err := Upload(context.Background(), src, codec.CSVCodec{}, schema, codec.JSONCodec{}, schema, dst, nil)
	require.NoError(t, err)
	require.Greater(t, result.BytesRead, int64(0))
	require.True(t, dst.committed)
	require.False(t, dst.aborted)
	require.Contains(t, dst.String(), `"id":1`)
}

func TestUploadAbortsOnDecodeError(t *testing.T) {
	src := bytes.NewBufferString("id\nnot-an-integer\n")
	schema := csvSchema()
	dst := &memWriter{}

	_, err := Upload(context.Background(), src, codec.CSVCodec{}, schema, codec.JSONCodec{}, schema, dst, nil)
	require.Error(t, err)
	require.True(t, dst.aborted)
	require.False(t, dst.committed)
}

func TestUploadAbortsOnDeclaredSizeMismatch(t *testing.T) {
	content := "id\n1\n2\n3\n"
	src := bytes.NewBufferString(content)
	schema := csvSchema()
	dst := &memWriter{}
	wrongSize := int64(len(content)) + 1

	_, err := Upload(context.Background(), src, codec.CSVCodec{}, schema, codec.JSONCodec{}, schema, dst, &wrongSize)
	require.Error(t, err)
	var codecErr *codec.Error
	require.ErrorAs(t, err, &codecErr)
	require.Equal(t, codec.KindDataLoss, codecErr.Kind)
	require.True(t, dst.aborted)
	require.False(t, dst.committed)
}

func TestDownloadAppliesRowFilter(t *testing.T) {
	src := bytes.NewBufferString("id\n1\n2\n3\n4\n5\n")
	schema := csvSchema()
	var dst bytes.Buffer

	n, err := Download(context.Background(), src, codec.CSVCodec{}, schema, codec.CSVCodec{}, schema, &dst, RowFilter{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Greater(t, n, int64(0))
	require.Equal(t, "id\n2\n3\n", dst.String())
}
