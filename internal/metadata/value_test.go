package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeValueRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		basicType BasicType
		native    any
	}{
		{"boolean", TypeBoolean, true},
		{"integer", TypeInteger, int64(42)},
		{"float", TypeFloat, 3.5},
		{"decimal", TypeDecimal, "12.000000000000"},
		{"string", TypeString, "Hello world 7"},
		{"date", TypeDate, time.Date(1970, 1, 8, 0, 0, 0, 0, time.UTC)},
		{"datetime", TypeDatetime, time.Date(1970, 1, 1, 0, 0, 7, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := EncodeValue(tc.basicType, tc.native)
			require.NoError(t, err)
			require.Equal(t, tc.basicType, v.Type)

			decoded, err := DecodeValue(v)
			require.NoError(t, err)

			switch want := tc.native.(type) {
			case time.Time:
				got, ok := decoded.(time.Time)
				require.True(t, ok)
				require.True(t, want.Equal(got), "want %v got %v", want, got)
			default:
				require.Equal(t, tc.native, decoded)
			}
		})
	}
}

func TestEncodeDatetimeTruncatesToMicroseconds(t *testing.T) {
	t1 := time.Date(2024, 3, 4, 5, 6, 7, 123456789, time.UTC)
	encoded := EncodeDatetime(t1)

	decoded, err := time.Parse(time.RFC3339Nano, encoded)
	require.NoError(t, err)
	require.Equal(t, int64(123456000), int64(decoded.Nanosecond()))
}

func TestDecodeValueMissingPayload(t *testing.T) {
	_, err := DecodeValue(&Value{Type: TypeInteger})
	require.Error(t, err)
}
