package codec

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tracplatform/trac/internal/metadata"
)

func testSchema() *metadata.SchemaDefinition {
	return &metadata.SchemaDefinition{
		SchemaType: metadata.SchemaTypeTable,
		Table: metadata.TableSchema{
			Fields: []metadata.FieldSchema{
				{FieldName: "id", FieldType: metadata.TypeInteger},
				{FieldName: "name", FieldType: metadata.TypeString},
			},
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	schema := testSchema()
	var buf bytes.Buffer

	enc, err := CSVCodec{}.Encoder(&buf, schema)
	require.NoError(t, err)

	id := int64(1)
	name := "alpha"
	batch := Batch{Row{
		{Type: metadata.TypeInteger, Integer: &id},
		{Type: metadata.TypeString, String: &name},
	}}
	require.NoError(t, enc.WriteBatch(context.Background(), batch))
	require.NoError(t, enc.Close())

	dec, err := CSVCodec{}.Decoder(&buf, schema)
	require.NoError(t, err)

	got, err := dec.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(1), *got[0][0].Integer)
	require.Equal(t, "alpha", *got[0][1].String)

	_, err = dec.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestCSVDecoderRejectsUnknownHeaderColumn(t *testing.T) {
	schema := testSchema()
	r := bytes.NewBufferString("id,unknown\n1,x\n")

	_, err := CSVCodec{}.Decoder(r, schema)
	require.Error(t, err)
	var codecErr *Error
	require.ErrorAs(t, err, &codecErr)
	require.Equal(t, KindDataLoss, codecErr.Kind)
}

func TestCSVDecoderTypeMismatchIsDataLoss(t *testing.T) {
	schema := &metadata.SchemaDefinition{
		SchemaType: metadata.SchemaTypeTable,
		Table: metadata.TableSchema{
			Fields: []metadata.FieldSchema{{FieldName: "when", FieldType: metadata.TypeDatetime}},
		},
	}
	r := bytes.NewBufferString("when\nnot-a-datetime\n")

	dec, err := CSVCodec{}.Decoder(r, schema)
	require.NoError(t, err)

	_, err = dec.Next(context.Background())
	require.Error(t, err)
	var codecErr *Error
	require.ErrorAs(t, err, &codecErr)
	require.Equal(t, KindDataLoss, codecErr.Kind)
}

func TestRegistryUnknownMimeTypeIsUnimplemented(t *testing.T) {
	reg := NewRegistry()
	reg.Register(CSVCodec{})

	_, err := reg.Resolve("application/x-unknown")
	require.Error(t, err)
	var codecErr *Error
	require.ErrorAs(t, err, &codecErr)
	require.Equal(t, KindUnimplemented, codecErr.Kind)
}
