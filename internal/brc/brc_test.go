package brc

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/DavidHVernon/billion-row/internal/measurements"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(tb testing.TB, rows int) []byte {
	tb.Helper()
	var b bytes.Buffer
	require.NoError(tb, measurements.Generate(&b, rows, 1))
	return b.Bytes()
}

func process(t *testing.T, input string, workers int) (*Report, error) {
	t.Helper()
	buf := FromBytes([]byte(input))
	report, err := Process(context.Background(), buf, Options{Workers: workers})
	require.NoError(t, buf.Release(), "buffer must be unpinned once Process returns")
	return report, err
}

func TestProcess(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers%d", workers), func(t *testing.T) {
			report, err := process(t, "X;1.5\nY;2.0\nX;2.5\nX;1.0\n", workers)
			require.NoError(t, err)

			require.Equal(t, 2, report.Len())
			x, ok := report.Lookup("X")
			require.True(t, ok)
			assert.Equal(t, Statistic{Min: 10, Max: 25, Median: 150, Count: 3}, x)
			y, ok := report.Lookup("Y")
			require.True(t, ok)
			assert.Equal(t, Statistic{Min: 20, Max: 20, Median: 200, Count: 1}, y)

			assert.Equal(t, "{X=1.0/1.5/2.5, Y=2.0/2.0/2.0}", report.String())
		})
	}
}

func TestProcessEdgeCases(t *testing.T) {
	tcs := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", "{}"},
		{"single record no trailing newline", "A;-3.4", "{A=-3.4/-3.4/-3.4}"},
		{"even count", "A;1.0\nA;2.0\nA;3.0\nA;4.0\n", "{A=1.0/2.5/4.0}"},
		{"half tenth median", "A;1.0\nA;1.5\n", "{A=1.0/1.25/1.5}"},
		{"negative values", "A;-5.1\nA;-20.0\nA;3.0\n", "{A=-20.0/-5.1/3.0}"},
		{"sorted by key bytes", "b;1.0\nB;1.0\na;1.0\nZürich;1.0\n", "{B=1.0/1.0/1.0, Zürich=1.0/1.0/1.0, a=1.0/1.0/1.0, b=1.0/1.0/1.0}"},
		{"trailing blank lines", "A;1.0\n\n\n", "{A=1.0/1.0/1.0}"},
	}
	for _, tc := range tcs {
		for _, workers := range []int{1, 4} {
			t.Run(fmt.Sprintf("%s/workers%d", tc.name, workers), func(t *testing.T) {
				report, err := process(t, tc.input, workers)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, report.String())
			})
		}
	}
}

func TestProcessMalformed(t *testing.T) {
	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers%d", workers), func(t *testing.T) {
			report, err := process(t, "A;1.0\nB;2.0\nC\nD;4.0\nE\n", workers)
			assert.Nil(t, report)
			require.ErrorIs(t, err, ErrMalformedRecord)

			var re *RecordError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, int64(12), re.Offset, "first malformed line wins")
		})
	}
}

func TestProcessNumberFormat(t *testing.T) {
	var sb strings.Builder
	for i := range 500 {
		fmt.Fprintf(&sb, "s%03d;%d.5\n", i, i%100)
	}
	// two bad keys, the first seen must be reported every time
	sb.WriteString("s100;1.55\n")
	sb.WriteString("s400;abc\n")
	sb.WriteString("s050;1,0\n")

	for _, workers := range []int{1, 2, 8} {
		for range 10 {
			report, err := process(t, sb.String(), workers)
			assert.Nil(t, report)
			require.ErrorIs(t, err, ErrNumberFormat)
			assert.Contains(t, err.Error(), `station "s050"`)
		}
	}
}

func TestProcessRoundTrip(t *testing.T) {
	report, err := process(t, "A;1.0\nB;2.5\nA;3.0\n", 1)
	require.NoError(t, err)
	assert.Equal(t, "{A=1.0/2.0/3.0, B=2.5/2.5/2.5}", report.String())
}

func TestAggregateFileOrder(t *testing.T) {
	data := generate(t, 20_000)
	buf := FromBytes(data)

	seq, err := Aggregate(context.Background(), buf, AggregateOptions{})
	require.NoError(t, err)
	defer seq.Close()

	for _, workers := range []int{2, 3, 7} {
		par, err := AggregateParallel(context.Background(), buf, AggregateOptions{Workers: workers})
		require.NoError(t, err)

		require.Equal(t, seq.Len(), par.Len())
		for i := range seq.Len() {
			name := seq.Name(i)
			assert.Equal(t, name, par.Name(i), "first-seen order")
			g, ok := par.Lookup([]byte(name))
			require.True(t, ok)
			assert.Equal(t, seq.Group(i).Values, g.Values, "file order for %s", name)
		}
		par.Close()
	}

	var total int
	for i := range seq.Len() {
		total += len(seq.Group(i).Values)
	}
	assert.Equal(t, 20_000, total, "no value dropped or duplicated")
}

func TestProcessMatchesBaseline(t *testing.T) {
	data := generate(t, 50_000)
	expected, err := Baseline(bytes.NewReader(data))
	require.NoError(t, err)

	for _, workers := range []int{1, 4} {
		report, err := process(t, string(data), workers)
		require.NoError(t, err)
		assert.Equal(t, expected, report.String())
	}
}

func TestProcessIdempotent(t *testing.T) {
	buf := FromBytes(generate(t, 10_000))
	first, err := Process(context.Background(), buf, Options{Workers: 4})
	require.NoError(t, err)
	second, err := Process(context.Background(), buf, Options{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProcessProgress(t *testing.T) {
	data := generate(t, 200_000)
	var scanned, summarized atomic.Int64
	var keys int
	report, err := Process(context.Background(), FromBytes(data), Options{
		Workers:         4,
		ScanProgress:    func(n int64) { scanned.Add(n) },
		Aggregated:      func(n int) { keys = n },
		SummaryProgress: func(int) { summarized.Add(1) },
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), scanned.Load())
	assert.Equal(t, report.Len(), keys)
	assert.Equal(t, int64(keys), summarized.Load())
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Process(ctx, FromBytes(generate(t, 200_000)), Options{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitSections(t *testing.T) {
	data := generate(t, 1000)
	buf := FromBytes(data)
	for _, n := range []int{0, 1, 2, 5, 16, 5000} {
		sections := SplitSections(buf, n)
		require.NotEmpty(t, sections)
		assert.LessOrEqual(t, len(sections), max(1, n))

		pos := 0
		for _, s := range sections {
			assert.Equal(t, pos, s.Off)
			assert.Positive(t, s.Len)
			assert.Equal(t, byte('\n'), data[s.End()-1])
			pos = s.End()
		}
		assert.Equal(t, len(data), pos)
	}

	assert.Empty(t, SplitSections(FromBytes(nil), 4))
	assert.Equal(t, []Range{{Off: 0, Len: 5}}, SplitSections(FromBytes([]byte("A;1.0")), 4))
}

func TestBaseline(t *testing.T) {
	out, err := Baseline(strings.NewReader("X;1.5\nY;2.0\nX;2.5\nX;1.0\n"))
	require.NoError(t, err)
	assert.Equal(t, "{X=1.0/1.5/2.5, Y=2.0/2.0/2.0}", out)

	_, err = Baseline(strings.NewReader("X1.5\n"))
	assert.Error(t, err)
}

func benchmarkProcess(b *testing.B, workers int) {
	data := generate(b, 1_000_000)
	buf := FromBytes(data)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Process(context.Background(), buf, Options{Workers: workers}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProcess1m(b *testing.B)         { benchmarkProcess(b, 1) }
func BenchmarkProcessParallel1m(b *testing.B) { benchmarkProcess(b, 8) }

func BenchmarkBaseline1m(b *testing.B) {
	data := generate(b, 1_000_000)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Baseline(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}
