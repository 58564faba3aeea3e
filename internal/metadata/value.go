package metadata

import (
	"fmt"
	"time"
)

// Value is a tagged union mirroring BasicType plus an array variant, used
// for both schema-typed data cells encoded by codecs and free-form tag
// attrs. Exactly one field is populated, selected by Type.
type Value struct {
	Type    BasicType `json:"type"`
	Boolean *bool     `json:"boolean,omitempty"`
	Integer *int64    `json:"integer,omitempty"`
	Float   *float64  `json:"float,omitempty"`
	Decimal *string   `json:"decimal,omitempty"`
	String  *string   `json:"string,omitempty"`
	Date    *string   `json:"date,omitempty"`     // RFC3339 date, no time component
	Datetime *string  `json:"datetime,omitempty"` // RFC3339Nano, truncated to microseconds
	Array   []*Value  `json:"array,omitempty"`
}

// EncodeValue converts a native Go value into a typed Value according to
// basicType. Integers are taken as 64-bit signed, floats as 64-bit IEEE,
// decimals as arbitrary-precision text, datetimes truncated to microsecond
// resolution before encoding.
func EncodeValue(basicType BasicType, native any) (*Value, error) {
	switch basicType {
	case TypeBoolean:
		b, ok := native.(bool)
		if !ok {
			return nil, fmt.Errorf("metadata: expected bool for BOOLEAN, got %T", native)
		}
		return &Value{Type: basicType, Boolean: &b}, nil

	case TypeInteger:
		i, err := asInt64(native)
		if err != nil {
			return nil, err
		}
		return &Value{Type: basicType, Integer: &i}, nil

	case TypeFloat:
		f, ok := asFloat64(native)
		if !ok {
			return nil, fmt.Errorf("metadata: expected float for FLOAT, got %T", native)
		}
		return &Value{Type: basicType, Float: &f}, nil

	case TypeDecimal:
		d, ok := native.(string)
		if !ok {
			return nil, fmt.Errorf("metadata: expected decimal-as-string for DECIMAL, got %T", native)
		}
		return &Value{Type: basicType, Decimal: &d}, nil

	case TypeString:
		s, ok := native.(string)
		if !ok {
			return nil, fmt.Errorf("metadata: expected string for STRING, got %T", native)
		}
		return &Value{Type: basicType, String: &s}, nil

	case TypeDate:
		t, ok := native.(time.Time)
		if !ok {
			return nil, fmt.Errorf("metadata: expected time.Time for DATE, got %T", native)
		}
		enc := EncodeDate(t)
		return &Value{Type: basicType, Date: &enc}, nil

	case TypeDatetime:
		t, ok := native.(time.Time)
		if !ok {
			return nil, fmt.Errorf("metadata: expected time.Time for DATETIME, got %T", native)
		}
		enc := EncodeDatetime(t)
		return &Value{Type: basicType, Datetime: &enc}, nil

	default:
		return nil, fmt.Errorf("metadata: unknown basic type %q", basicType)
	}
}

// DecodeValue converts a typed Value back to a native Go value.
func DecodeValue(v *Value) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Type {
	case TypeBoolean:
		if v.Boolean == nil {
			return nil, fmt.Errorf("metadata: BOOLEAN value missing payload")
		}
		return *v.Boolean, nil
	case TypeInteger:
		if v.Integer == nil {
			return nil, fmt.Errorf("metadata: INTEGER value missing payload")
		}
		return *v.Integer, nil
	case TypeFloat:
		if v.Float == nil {
			return nil, fmt.Errorf("metadata: FLOAT value missing payload")
		}
		return *v.Float, nil
	case TypeDecimal:
		if v.Decimal == nil {
			return nil, fmt.Errorf("metadata: DECIMAL value missing payload")
		}
		return *v.Decimal, nil
	case TypeString:
		if v.String == nil {
			return nil, fmt.Errorf("metadata: STRING value missing payload")
		}
		return *v.String, nil
	case TypeDate:
		if v.Date == nil {
			return nil, fmt.Errorf("metadata: DATE value missing payload")
		}
		return time.Parse("2006-01-02", *v.Date)
	case TypeDatetime:
		if v.Datetime == nil {
			return nil, fmt.Errorf("metadata: DATETIME value missing payload")
		}
		return time.Parse(time.RFC3339Nano, *v.Datetime)
	default:
		return nil, fmt.Errorf("metadata: unknown basic type %q", v.Type)
	}
}

// EncodeDate truncates t to a calendar date and renders it as YYYY-MM-DD.
func EncodeDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// EncodeDatetime truncates t to microsecond precision in UTC and renders it
// as RFC3339Nano, which drops trailing zero digits, so at most six
// fractional digits appear (none for a whole second).
func EncodeDatetime(t time.Time) string {
	micros := t.UTC().Truncate(time.Microsecond)
	return micros.Format(time.RFC3339Nano)
}

func asInt64(native any) (int64, error) {
	switch n := native.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("metadata: expected integer for INTEGER, got %T", native)
	}
}

func asFloat64(native any) (float64, bool) {
	switch n := native.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
