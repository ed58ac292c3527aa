package brc

import (
	"bytes"
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// records between two progress reports / cancellation checks
const progressEvery = 64 * 1024

type AggregateOptions struct {
	// Workers > 1 splits the buffer in that many sections scanned in
	// parallel.
	Workers int
	// Progress is called with the number of bytes scanned since its last
	// call. It may be called from several goroutines at once.
	Progress func(n int64)
}

// Aggregate groups every value of buf by key in a single pass.
func Aggregate(ctx context.Context, buf *Buffer, opts AggregateOptions) (*GroupTable, error) {
	t := NewGroupTable(buf)
	if err := scanInto(ctx, t, NewScanner(buf), opts.Progress); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

func scanInto(ctx context.Context, t *GroupTable, s *Scanner, progress func(int64)) error {
	last := s.Offset()
	for s.Scan() {
		t.Add(s.Record())
		if s.Records()%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			if progress != nil {
				progress(int64(s.Offset() - last))
				last = s.Offset()
			}
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	if progress != nil && s.Offset() > last {
		progress(int64(s.Offset() - last))
	}
	return nil
}

// SplitSections cuts buf in at most n sections of about the same size, each
// ending right after a '\n' or at the end of buf.
func SplitSections(buf *Buffer, n int) []Range {
	data := buf.Bytes(Range{Off: 0, Len: buf.Len()})
	size := len(data)
	n = max(1, n)

	sections := make([]Range, 0, n)
	sectionSize := size / n
	start := 0
	for i := 0; i < n-1; i++ {
		j := start + sectionSize
		if j >= size {
			break
		}
		nl := bytes.IndexByte(data[j:], '\n')
		if nl < 0 {
			break
		}
		end := j + nl + 1
		sections = append(sections, Range{Off: start, Len: end - start})
		start = end
	}
	if start < size {
		sections = append(sections, Range{Off: start, Len: size - start})
	}
	return sections
}

// AggregateParallel is Aggregate with one table per section, merged in
// section order so that every group stays in file order. When several
// sections are malformed, the error of the first one is returned.
func AggregateParallel(ctx context.Context, buf *Buffer, opts AggregateOptions) (*GroupTable, error) {
	sections := SplitSections(buf, opts.Workers)
	tables := make([]*GroupTable, len(sections))
	errs := make([]error, len(sections))

	var g errgroup.Group
	for i, section := range sections {
		g.Go(func() error {
			t := NewGroupTable(buf)
			tables[i] = t
			errs[i] = scanInto(ctx, t, newSectionScanner(buf, section), opts.Progress)
			slog.Debug("section scanned", "id", i, "offset", section.Off, "len", section.Len, "keys", t.Len())
			return nil
		})
	}
	g.Wait()

	for i, err := range errs {
		if err != nil {
			for _, t := range tables {
				t.Close()
			}
			slog.Debug("section failed", "id", i, "err", err)
			return nil, err
		}
	}

	if len(tables) == 0 {
		return NewGroupTable(buf), nil
	}
	merged := tables[0]
	for _, t := range tables[1:] {
		merged.Merge(t)
	}
	return merged, nil
}
