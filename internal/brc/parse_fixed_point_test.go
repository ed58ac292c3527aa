package brc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFixedPoint(t *testing.T) {
	tcs := []struct {
		b           []byte
		expected    Fixed
		expectedErr bool
	}{
		{[]byte("25.9"), 259, false},
		{[]byte("20.7"), 207, false},
		{[]byte("0.0"), 0, false},
		{[]byte("-0.0"), 0, false},
		{[]byte("1.1"), 11, false},
		{[]byte("30.4"), 304, false},
		{[]byte("000001.0"), 10, false},
		{[]byte("10512.4"), 105124, false},
		{[]byte("214748364.7"), 2147483647, false},

		{[]byte("-5.1"), -51, false},
		{[]byte("-1.0"), -10, false},
		{[]byte("-99.9"), -999, false},
		{[]byte("-214748364.7"), -2147483647, false},

		{[]byte("214748364.8"), 0, true},  // overflow
		{[]byte("-9000000000.0"), 0, true}, // underflow
		{[]byte(""), 0, true},
		{[]byte("-"), 0, true},
		{[]byte("1"), 0, true},
		{[]byte("1."), 0, true},
		{[]byte(".1"), 0, true},
		{[]byte("-.1"), 0, true},
		{[]byte("1.12"), 0, true},
		{[]byte("1..1"), 0, true},
		{[]byte("--1.1"), 0, true},
		{[]byte("+1.1"), 0, true},
		{[]byte("1.1a"), 0, true},
		{[]byte("1a.1"), 0, true},
		{[]byte(" 1.1"), 0, true},
		{[]byte("patate"), 0, true},
	}
	for _, tc := range tcs {
		t.Run(string(tc.b), func(t *testing.T) {
			out, err := ParseFixedPoint(tc.b)
			if tc.expectedErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNumberFormat)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestFixedString(t *testing.T) {
	for _, s := range []string{"0.0", "25.9", "-5.1", "-0.5", "0.5", "-99.9", "10512.4"} {
		m, err := ParseFixedPoint([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, s, m.String())
	}
	assert.InDelta(t, -5.1, Fixed(-51).Float64(), 1e-9)
}

func BenchmarkParseFixedPoint(b *testing.B) {
	b.ReportAllocs()
	inputs := [][]byte{[]byte("25.9"), []byte("-5.1"), []byte("0.0"), []byte("-99.9")}
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			if _, err := ParseFixedPoint(in); err != nil {
				b.Fatal(err)
			}
		}
	}
}
