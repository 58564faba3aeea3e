package codec

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/parquet-go"

	"github.com/tracplatform/trac/internal/metadata"
)

// ParquetCodec is the optional columnar-file codec named in spec.md §4.E,
// sharing the same exact-schema-match DATA_LOSS semantics as Arrow.
type ParquetCodec struct{}

var _ Codec = ParquetCodec{}

func (ParquetCodec) MimeType() string { return "application/vnd.apache.parquet" }

func parquetNodeFor(t metadata.BasicType, nullable bool) parquet.Node {
	var node parquet.Node
	switch t {
	case metadata.TypeBoolean:
		node = parquet.Leaf(parquet.BooleanType)
	case metadata.TypeInteger:
		node = parquet.Leaf(parquet.Int64Type)
	case metadata.TypeFloat:
		node = parquet.Leaf(parquet.DoubleType)
	case metadata.TypeDecimal, metadata.TypeString:
		node = parquet.String()
	case metadata.TypeDate:
		node = parquet.Date()
	case metadata.TypeDatetime:
		node = parquet.Timestamp(parquet.Microsecond)
	default:
		node = parquet.String()
	}
	if nullable {
		node = parquet.Optional(node)
	}
	return node
}

func parquetSchemaFor(schema *metadata.SchemaDefinition) *parquet.Schema {
	group := parquet.Group{}
	for _, f := range schema.Table.Fields {
		group[f.FieldName] = parquetNodeFor(f.FieldType, f.Nullable)
	}
	return parquet.NewSchema("trac_row", group)
}

func (ParquetCodec) Decoder(r io.Reader, schema *metadata.SchemaDefinition) (BatchSource, error) {
	if schema == nil || schema.SchemaType != metadata.SchemaTypeTable {
		return nil, dataLoss("parquet decoder requires a TABLE schema")
	}
	rs, ok := r.(io.ReaderAt)
	if !ok {
		return nil, fmt.Errorf("codec: parquet decoding requires a ReaderAt source")
	}
	size, err := seekSize(r)
	if err != nil {
		return nil, fmt.Errorf("codec: determine parquet stream size: %w", err)
	}

	pf, err := parquet.OpenFile(rs, size)
	if err != nil {
		return nil, fmt.Errorf("codec: open parquet file: %w", err)
	}
	want := parquetSchemaFor(schema)
	if pf.Schema().String() != want.String() {
		return nil, dataLoss("parquet schema mismatch: want %s, got %s", want, pf.Schema())
	}

	reader := parquet.NewGenericReader[map[string]any](pf)
	return &parquetSource{reader: reader, fields: schema.Table.Fields}, nil
}

func seekSize(r io.Reader) (int64, error) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return 0, fmt.Errorf("parquet source does not support Seek")
	}
	size, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

type parquetSource struct {
	reader *parquet.GenericReader[map[string]any]
	fields []metadata.FieldSchema
}

func (s *parquetSource) Next(ctx context.Context) (Batch, error) {
	const batchSize = 1024
	rows := make([]map[string]any, batchSize)
	n, err := s.reader.Read(rows)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return nil, err
	}
	batch := make(Batch, n)
	for i := 0; i < n; i++ {
		row := make(Row, len(s.fields))
		for j, f := range s.fields {
			native, ok := rows[i][f.FieldName]
			if !ok || native == nil {
				continue
			}
			v, convErr := parquetNativeToValue(f.FieldType, native)
			if convErr != nil {
				return nil, dataLoss("field %q: %v", f.FieldName, convErr)
			}
			row[j] = v
		}
		batch[i] = row
	}
	if err == io.EOF {
		return batch, nil
	}
	return batch, err
}

func parquetNativeToValue(t metadata.BasicType, native any) (*metadata.Value, error) {
	switch t {
	case metadata.TypeBoolean:
		b, ok := native.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", native)
		}
		return metadata.EncodeValue(t, b)
	case metadata.TypeInteger:
		i, ok := native.(int64)
		if !ok {
			return nil, fmt.Errorf("expected int64, got %T", native)
		}
		return metadata.EncodeValue(t, i)
	case metadata.TypeFloat:
		f, ok := native.(float64)
		if !ok {
			return nil, fmt.Errorf("expected float64, got %T", native)
		}
		return metadata.EncodeValue(t, f)
	case metadata.TypeDecimal:
		s, ok := native.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", native)
		}
		return &metadata.Value{Type: t, Decimal: &s}, nil
	case metadata.TypeString:
		s, ok := native.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", native)
		}
		return &metadata.Value{Type: t, String: &s}, nil
	case metadata.TypeDate:
		tm, ok := native.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expected time.Time, got %T", native)
		}
		enc := metadata.EncodeDate(tm)
		return &metadata.Value{Type: t, Date: &enc}, nil
	case metadata.TypeDatetime:
		tm, ok := native.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expected time.Time, got %T", native)
		}
		enc := metadata.EncodeDatetime(tm)
		return &metadata.Value{Type: t, Datetime: &enc}, nil
	default:
		return nil, fmt.Errorf("unsupported field type %q", t)
	}
}

func (s *parquetSource) Close() error {
	return s.reader.Close()
}

func (ParquetCodec) Encoder(w io.Writer, schema *metadata.SchemaDefinition) (BatchSink, error) {
	if schema == nil || schema.SchemaType != metadata.SchemaTypeTable {
		return nil, dataLoss("parquet encoder requires a TABLE schema")
	}
	pschema := parquetSchemaFor(schema)
	writer := parquet.NewGenericWriter[map[string]any](w, pschema)
	return &parquetSink{writer: writer, fields: schema.Table.Fields}, nil
}

type parquetSink struct {
	writer *parquet.GenericWriter[map[string]any]
	fields []metadata.FieldSchema
}

func (s *parquetSink) WriteBatch(ctx context.Context, batch Batch) error {
	rows := make([]map[string]any, len(batch))
	for i, row := range batch {
		record := make(map[string]any, len(s.fields))
		for j, v := range row {
			if v == nil {
				continue
			}
			if v.Type != s.fields[j].FieldType {
				return dataLoss("field %q: expected %s, got %s", s.fields[j].FieldName, s.fields[j].FieldType, v.Type)
			}
			native, err := metadata.DecodeValue(v)
			if err != nil {
				return fmt.Errorf("codec: decode value for field %q: %w", s.fields[j].FieldName, err)
			}
			record[s.fields[j].FieldName] = native
		}
		rows[i] = record
	}
	if _, err := s.writer.Write(rows); err != nil {
		return fmt.Errorf("codec: write parquet rows: %w", err)
	}
	return nil
}

func (s *parquetSink) Close() error {
	return s.writer.Close()
}
