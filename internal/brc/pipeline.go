package brc

import (
	"context"
	"log/slog"
)

type Options struct {
	Workers int

	ScanProgress func(n int64)
	// Aggregated is called once scanning is done with the number of keys.
	Aggregated      func(keys int)
	SummaryProgress func(done int)
}

// Process scans buf, groups its values by key and summarizes every group.
// Once it returns, buf is no longer referenced and may be released.
func Process(ctx context.Context, buf *Buffer, opts Options) (*Report, error) {
	aggOpts := AggregateOptions{Workers: opts.Workers, Progress: opts.ScanProgress}

	var t *GroupTable
	var err error
	if opts.Workers > 1 {
		t, err = AggregateParallel(ctx, buf, aggOpts)
	} else {
		t, err = Aggregate(ctx, buf, aggOpts)
	}
	if err != nil {
		return nil, err
	}
	defer t.Close()

	slog.Debug("aggregated", "keys", t.Len(), "bytes", buf.Len())
	if opts.Aggregated != nil {
		opts.Aggregated(t.Len())
	}

	return Summarize(ctx, t, SummaryOptions{Workers: opts.Workers, Progress: opts.SummaryProgress})
}
