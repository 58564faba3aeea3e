package codec

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/tracplatform/trac/internal/metadata"
)

// ArrowStreamCodec implements spec.md §4.E's Arrow-stream semantics: the
// incoming/outgoing schema must match the declared TRAC schema exactly;
// any drift (added/removed column, different logical type) is DATA_LOSS.
type ArrowStreamCodec struct{}

var _ Codec = ArrowStreamCodec{}

func (ArrowStreamCodec) MimeType() string { return "application/vnd.apache.arrow.stream" }

func arrowTypeFor(t metadata.BasicType) (arrow.DataType, error) {
	switch t {
	case metadata.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case metadata.TypeInteger:
		return arrow.PrimitiveTypes.Int64, nil
	case metadata.TypeFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case metadata.TypeDecimal, metadata.TypeString:
		return arrow.BinaryTypes.String, nil
	case metadata.TypeDate:
		return arrow.FixedWidthTypes.Date32, nil
	case metadata.TypeDatetime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
	default:
		return nil, fmt.Errorf("unsupported field type %q", t)
	}
}

func arrowSchemaFor(schema *metadata.SchemaDefinition) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(schema.Table.Fields))
	for i, f := range schema.Table.Fields {
		dt, err := arrowTypeFor(f.FieldType)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{Name: f.FieldName, Type: dt, Nullable: f.Nullable}
	}
	return arrow.NewSchema(fields, nil), nil
}

// checkSchemaMatch enforces exact-match semantics: same field count, same
// names in the same order, same logical type.
func checkSchemaMatch(want *arrow.Schema, got *arrow.Schema) error {
	if want.NumFields() != got.NumFields() {
		return dataLoss("arrow schema field count mismatch: want %d, got %d", want.NumFields(), got.NumFields())
	}
	for i := 0; i < want.NumFields(); i++ {
		wf, gf := want.Field(i), got.Field(i)
		if wf.Name != gf.Name {
			return dataLoss("arrow schema field %d: want name %q, got %q", i, wf.Name, gf.Name)
		}
		if !arrow.TypeEqual(wf.Type, gf.Type) {
			return dataLoss("arrow schema field %q: want type %s, got %s", wf.Name, wf.Type, gf.Type)
		}
	}
	return nil
}

func (ArrowStreamCodec) Decoder(r io.Reader, schema *metadata.SchemaDefinition) (BatchSource, error) {
	if schema == nil || schema.SchemaType != metadata.SchemaTypeTable {
		return nil, dataLoss("arrow decoder requires a TABLE schema")
	}
	want, err := arrowSchemaFor(schema)
	if err != nil {
		return nil, err
	}
	reader, err := ipc.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("codec: open arrow stream reader: %w", err)
	}
	if err := checkSchemaMatch(want, reader.Schema()); err != nil {
		reader.Release()
		return nil, err
	}
	return &arrowSource{reader: reader, fields: schema.Table.Fields}, nil
}

type arrowSource struct {
	reader *ipc.Reader
	fields []metadata.FieldSchema
}

func (s *arrowSource) Next(ctx context.Context) (Batch, error) {
	if !s.reader.Next() {
		if err := s.reader.Err(); err != nil && err != io.EOF {
			return nil, fmt.Errorf("codec: read arrow record: %w", err)
		}
		return nil, io.EOF
	}
	rec := s.reader.Record()
	return recordToBatch(rec, s.fields)
}

func (s *arrowSource) Close() error {
	s.reader.Release()
	return nil
}

func recordToBatch(rec arrow.Record, fields []metadata.FieldSchema) (Batch, error) {
	n := int(rec.NumRows())
	batch := make(Batch, n)
	for r := 0; r < n; r++ {
		row := make(Row, len(fields))
		for c, f := range fields {
			col := rec.Column(c)
			if col.IsNull(r) {
				row[c] = nil
				continue
			}
			v, err := arrowCellToValue(f.FieldType, col, r)
			if err != nil {
				return nil, dataLoss("field %q row %d: %v", f.FieldName, r, err)
			}
			row[c] = v
		}
		batch[r] = row
	}
	return batch, nil
}

func arrowCellToValue(t metadata.BasicType, col arrow.Array, row int) (*metadata.Value, error) {
	switch t {
	case metadata.TypeBoolean:
		return metadata.EncodeValue(t, col.(*array.Boolean).Value(row))
	case metadata.TypeInteger:
		return metadata.EncodeValue(t, col.(*array.Int64).Value(row))
	case metadata.TypeFloat:
		return metadata.EncodeValue(t, col.(*array.Float64).Value(row))
	case metadata.TypeDecimal:
		s := col.(*array.String).Value(row)
		return &metadata.Value{Type: t, Decimal: &s}, nil
	case metadata.TypeString:
		s := col.(*array.String).Value(row)
		return &metadata.Value{Type: t, String: &s}, nil
	case metadata.TypeDate:
		d := col.(*array.Date32).Value(row)
		enc := metadata.EncodeDate(d.ToTime())
		return &metadata.Value{Type: t, Date: &enc}, nil
	case metadata.TypeDatetime:
		ts := col.(*array.Timestamp).Value(row)
		enc := metadata.EncodeDatetime(ts.ToTime(arrow.Microsecond))
		return &metadata.Value{Type: t, Datetime: &enc}, nil
	default:
		return nil, fmt.Errorf("unsupported field type %q", t)
	}
}

func (ArrowStreamCodec) Encoder(w io.Writer, schema *metadata.SchemaDefinition) (BatchSink, error) {
	if schema == nil || schema.SchemaType != metadata.SchemaTypeTable {
		return nil, dataLoss("arrow encoder requires a TABLE schema")
	}
	arrowSchema, err := arrowSchemaFor(schema)
	if err != nil {
		return nil, err
	}
	writer, err := ipc.NewWriter(w, ipc.WithSchema(arrowSchema))
	if err != nil {
		return nil, fmt.Errorf("codec: open arrow stream writer: %w", err)
	}
	mem := memory.NewGoAllocator()
	return &arrowSink{
		writer: writer,
		schema: arrowSchema,
		fields: schema.Table.Fields,
		mem:    mem,
	}, nil
}

type arrowSink struct {
	writer *ipc.Writer
	schema *arrow.Schema
	fields []metadata.FieldSchema
	mem    memory.Allocator
}

func (s *arrowSink) WriteBatch(ctx context.Context, batch Batch) error {
	builder := array.NewRecordBuilder(s.mem, s.schema)
	defer builder.Release()

	for _, row := range batch {
		for i, v := range row {
			if v == nil {
				builder.Field(i).AppendNull()
				continue
			}
			if v.Type != s.fields[i].FieldType {
				return dataLoss("field %q: expected %s, got %s", s.fields[i].FieldName, s.fields[i].FieldType, v.Type)
			}
			if err := appendArrowCell(builder.Field(i), v); err != nil {
				return dataLoss("field %q: %v", s.fields[i].FieldName, err)
			}
		}
	}

	rec := builder.NewRecord()
	defer rec.Release()
	if err := s.writer.Write(rec); err != nil {
		return fmt.Errorf("codec: write arrow record: %w", err)
	}
	return nil
}

func appendArrowCell(b array.Builder, v *metadata.Value) error {
	switch v.Type {
	case metadata.TypeBoolean:
		b.(*array.BooleanBuilder).Append(*v.Boolean)
	case metadata.TypeInteger:
		b.(*array.Int64Builder).Append(*v.Integer)
	case metadata.TypeFloat:
		b.(*array.Float64Builder).Append(*v.Float)
	case metadata.TypeDecimal:
		b.(*array.StringBuilder).Append(*v.Decimal)
	case metadata.TypeString:
		b.(*array.StringBuilder).Append(*v.String)
	case metadata.TypeDate:
		t, err := time.Parse("2006-01-02", *v.Date)
		if err != nil {
			return err
		}
		b.(*array.Date32Builder).Append(arrow.Date32FromTime(t))
	case metadata.TypeDatetime:
		t, err := time.Parse(time.RFC3339Nano, *v.Datetime)
		if err != nil {
			return err
		}
		ts, err := arrow.TimestampFromTime(t, arrow.Microsecond)
		if err != nil {
			return err
		}
		b.(*array.TimestampBuilder).Append(ts)
	default:
		return fmt.Errorf("unsupported field type %q", v.Type)
	}
	return nil
}

func (s *arrowSink) Close() error {
	return s.writer.Close()
}
