package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tracplatform/trac/internal/metadata"
)

// JSONCodec implements spec.md §4.E's JSON-records semantics: the payload
// is a JSON array of objects; missing columns decode as null; extra
// unknown columns fail with DATA_LOSS.
type JSONCodec struct{}

var _ Codec = JSONCodec{}

func (JSONCodec) MimeType() string { return "application/json" }

func (JSONCodec) Decoder(r io.Reader, schema *metadata.SchemaDefinition) (BatchSource, error) {
	if schema == nil || schema.SchemaType != metadata.SchemaTypeTable {
		return nil, dataLoss("json decoder requires a TABLE schema")
	}
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil { // consume leading '['
		if err == io.EOF {
			return &jsonSource{done: true}, nil
		}
		return nil, fmt.Errorf("codec: read json array start: %w", err)
	}
	return &jsonSource{dec: dec, fields: schema.Table.Fields}, nil
}

type jsonSource struct {
	dec    *json.Decoder
	fields []metadata.FieldSchema
	done   bool
}

func (s *jsonSource) Next(ctx context.Context) (Batch, error) {
	if s.done {
		return nil, io.EOF
	}
	const batchSize = 1024
	batch := make(Batch, 0, batchSize)
	for len(batch) < batchSize && s.dec.More() {
		var record map[string]json.RawMessage
		if err := s.dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("codec: decode json record: %w", err)
		}
		row, err := s.decodeRecord(record)
		if err != nil {
			return nil, err
		}
		batch = append(batch, row)
	}
	if !s.dec.More() {
		s.done = true
	}
	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

func (s *jsonSource) decodeRecord(record map[string]json.RawMessage) (Row, error) {
	cells := make(map[string]*metadata.Value, len(record))
	for name, raw := range record {
		var found *metadata.FieldSchema
		for i := range s.fields {
			if s.fields[i].FieldName == name {
				found = &s.fields[i]
				break
			}
		}
		if found == nil {
			return nil, dataLoss("unexpected column %q not present in schema", name)
		}
		var native any
		if err := json.Unmarshal(raw, &native); err != nil {
			return nil, fmt.Errorf("codec: unmarshal field %q: %w", name, err)
		}
		if native == nil {
			continue
		}
		v, err := jsonNativeToValue(found.FieldType, native)
		if err != nil {
			return nil, dataLoss("field %q: %v", name, err)
		}
		cells[name] = v
	}
	return checkRowAgainstSchema(cells, s.fields, true)
}

func jsonNativeToValue(t metadata.BasicType, native any) (*metadata.Value, error) {
	switch t {
	case metadata.TypeBoolean:
		b, ok := native.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", native)
		}
		return metadata.EncodeValue(t, b)
	case metadata.TypeInteger:
		f, ok := native.(float64)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", native)
		}
		return metadata.EncodeValue(t, int64(f))
	case metadata.TypeFloat:
		f, ok := native.(float64)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", native)
		}
		return metadata.EncodeValue(t, f)
	case metadata.TypeDecimal:
		s, ok := native.(string)
		if !ok {
			return nil, fmt.Errorf("expected decimal string, got %T", native)
		}
		return &metadata.Value{Type: t, Decimal: &s}, nil
	case metadata.TypeString:
		s, ok := native.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", native)
		}
		return &metadata.Value{Type: t, String: &s}, nil
	case metadata.TypeDate, metadata.TypeDatetime:
		s, ok := native.(string)
		if !ok {
			return nil, fmt.Errorf("expected ISO timestamp string, got %T", native)
		}
		return &metadata.Value{Type: t, Date: strPtrIf(t == metadata.TypeDate, s), Datetime: strPtrIf(t == metadata.TypeDatetime, s)}, nil
	default:
		return nil, fmt.Errorf("unsupported field type %q", t)
	}
}

func strPtrIf(cond bool, s string) *string {
	if !cond {
		return nil
	}
	return &s
}

func (s *jsonSource) Close() error { return nil }

func (JSONCodec) Encoder(w io.Writer, schema *metadata.SchemaDefinition) (BatchSink, error) {
	if schema == nil || schema.SchemaType != metadata.SchemaTypeTable {
		return nil, dataLoss("json encoder requires a TABLE schema")
	}
	if _, err := io.WriteString(w, "["); err != nil {
		return nil, fmt.Errorf("codec: write json array start: %w", err)
	}
	return &jsonSink{w: w, fields: schema.Table.Fields}, nil
}

type jsonSink struct {
	w       io.Writer
	fields  []metadata.FieldSchema
	wrote   bool
}

func (s *jsonSink) WriteBatch(ctx context.Context, batch Batch) error {
	for _, row := range batch {
		record := make(map[string]any, len(s.fields))
		for i, v := range row {
			if v == nil {
				record[s.fields[i].FieldName] = nil
				continue
			}
			if v.Type != s.fields[i].FieldType {
				return dataLoss("field %q: expected %s, got %s", s.fields[i].FieldName, s.fields[i].FieldType, v.Type)
			}
			native, err := metadata.DecodeValue(v)
			if err != nil {
				return fmt.Errorf("codec: decode value for field %q: %w", s.fields[i].FieldName, err)
			}
			record[s.fields[i].FieldName] = native
		}
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("codec: marshal json record: %w", err)
		}
		if s.wrote {
			if _, err := io.WriteString(s.w, ","); err != nil {
				return err
			}
		}
		s.wrote = true
		if _, err := s.w.Write(data); err != nil {
			return fmt.Errorf("codec: write json record: %w", err)
		}
	}
	return nil
}

func (s *jsonSink) Close() error {
	_, err := io.WriteString(s.w, "]")
	return err
}
