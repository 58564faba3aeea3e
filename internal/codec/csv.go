package codec

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tracplatform/trac/internal/metadata"
)

// CSVCodec implements spec.md §4.E's CSV semantics: first row is header,
// whitespace trimmed, empty cell → null, date/datetime parsed per schema,
// mismatched field types fail with DATA_LOSS. Decimal cells are kept as
// their text without being parsed or validated.
type CSVCodec struct{}

var _ Codec = CSVCodec{}

func (CSVCodec) MimeType() string { return "text/csv" }

func (CSVCodec) Decoder(r io.Reader, schema *metadata.SchemaDefinition) (BatchSource, error) {
	if schema == nil || schema.SchemaType != metadata.SchemaTypeTable {
		return nil, dataLoss("csv decoder requires a TABLE schema")
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return &csvSource{done: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("codec: read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	byName := make(map[string]metadata.FieldSchema, len(schema.Table.Fields))
	for _, f := range schema.Table.Fields {
		byName[f.FieldName] = f
	}
	for _, col := range header {
		if _, ok := byName[col]; !ok {
			return nil, dataLoss("csv header column %q not present in schema", col)
		}
	}

	return &csvSource{cr: cr, header: header, fields: schema.Table.Fields, byName: byName}, nil
}

type csvSource struct {
	cr     *csv.Reader
	header []string
	fields []metadata.FieldSchema
	byName map[string]metadata.FieldSchema
	done   bool
}

func (s *csvSource) Next(ctx context.Context) (Batch, error) {
	if s.done {
		return nil, io.EOF
	}
	const batchSize = 1024
	batch := make(Batch, 0, batchSize)
	for len(batch) < batchSize {
		record, err := s.cr.Read()
		if err == io.EOF {
			s.done = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("codec: read csv record: %w", err)
		}
		row, err := s.decodeRecord(record)
		if err != nil {
			return nil, err
		}
		batch = append(batch, row)
	}
	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

func (s *csvSource) decodeRecord(record []string) (Row, error) {
	cells := make(map[string]*metadata.Value, len(record))
	for i, raw := range record {
		if i >= len(s.header) {
			break
		}
		col := s.header[i]
		field := s.byName[col]
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		v, err := parseCSVCell(field.FieldType, text)
		if err != nil {
			return nil, dataLoss("field %q: %v", col, err)
		}
		cells[col] = v
	}
	return checkRowAgainstSchema(cells, s.fields, true)
}

func parseCSVCell(t metadata.BasicType, text string) (*metadata.Value, error) {
	switch t {
	case metadata.TypeBoolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, err
		}
		return metadata.EncodeValue(t, b)
	case metadata.TypeInteger:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, err
		}
		return metadata.EncodeValue(t, i)
	case metadata.TypeFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, err
		}
		return metadata.EncodeValue(t, f)
	case metadata.TypeDecimal:
		return &metadata.Value{Type: t, Decimal: &text}, nil
	case metadata.TypeString:
		return &metadata.Value{Type: t, String: &text}, nil
	case metadata.TypeDate:
		d, err := time.Parse("2006-01-02", text)
		if err != nil {
			return nil, err
		}
		return metadata.EncodeValue(t, d)
	case metadata.TypeDatetime:
		d, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return nil, err
		}
		return metadata.EncodeValue(t, d)
	default:
		return nil, fmt.Errorf("unsupported field type %q", t)
	}
}

func (s *csvSource) Close() error { return nil }

func (CSVCodec) Encoder(w io.Writer, schema *metadata.SchemaDefinition) (BatchSink, error) {
	if schema == nil || schema.SchemaType != metadata.SchemaTypeTable {
		return nil, dataLoss("csv encoder requires a TABLE schema")
	}
	cw := csv.NewWriter(w)
	header := make([]string, len(schema.Table.Fields))
	for i, f := range schema.Table.Fields {
		header[i] = f.FieldName
	}
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("codec: write csv header: %w", err)
	}
	return &csvSink{cw: cw, fields: schema.Table.Fields}, nil
}

type csvSink struct {
	cw     *csv.Writer
	fields []metadata.FieldSchema
}

func (s *csvSink) WriteBatch(ctx context.Context, batch Batch) error {
	for _, row := range batch {
		record := make([]string, len(s.fields))
		for i, v := range row {
			if v == nil {
				continue
			}
			if v.Type != s.fields[i].FieldType {
				return dataLoss("field %q: expected %s, got %s", s.fields[i].FieldName, s.fields[i].FieldType, v.Type)
			}
			record[i] = formatCSVCell(v)
		}
		if err := s.cw.Write(record); err != nil {
			return fmt.Errorf("codec: write csv record: %w", err)
		}
	}
	return nil
}

func formatCSVCell(v *metadata.Value) string {
	switch v.Type {
	case metadata.TypeBoolean:
		return strconv.FormatBool(*v.Boolean)
	case metadata.TypeInteger:
		return strconv.FormatInt(*v.Integer, 10)
	case metadata.TypeFloat:
		return strconv.FormatFloat(*v.Float, 'f', -1, 64)
	case metadata.TypeDecimal:
		return *v.Decimal
	case metadata.TypeString:
		return *v.String
	case metadata.TypeDate:
		return *v.Date
	case metadata.TypeDatetime:
		return *v.Datetime
	default:
		return ""
	}
}

func (s *csvSink) Close() error {
	s.cw.Flush()
	return s.cw.Error()
}
