package stream

import (
	"context"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/DavidHVernon/billion-row/internal/brc"
)

type Options struct {
	Workers    int
	ChunkSize  int
	ChannelCap int

	// Progress is called with the number of bytes parsed by a worker. It may
	// be called from several goroutines at once.
	Progress        func(n int64)
	Aggregated      func(keys int)
	SummaryProgress func(done int)
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = runtime.NumCPU()
	}
	if o.ChunkSize < 1 {
		o.ChunkSize = 256 * 1024
	}
	if o.ChannelCap < 1 {
		o.ChannelCap = o.Workers * 4
	}
	return o
}

// Collect reads r to the end and summarizes every key. Malformed records
// and values fail the run; with several workers the error returned is the
// first one observed.
func Collect(ctx context.Context, r io.Reader, opts Options) (*brc.Report, error) {
	opts = opts.withDefaults()
	chunker := NewChunker(r, opts.ChannelCap, opts.ChunkSize)

	results := make([]*workerResult, opts.Workers)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := chunker.Run(gctx)
		slog.Debug("Chunker done", "err", err)
		return err
	})
	for i := range opts.Workers {
		g.Go(func() error {
			res, err := parseWorker(gctx, chunker, opts.Progress)
			if err != nil {
				return err
			}
			results[i] = res
			slog.Debug("Worker done", "id", i, "keys", res.groups.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := brc.NewValueGroups()
	blankAt := int64(-1)
	var recordChunks []int64
	for _, res := range results {
		merged.Merge(res.groups)
		if res.blankAt >= 0 && (blankAt < 0 || res.blankAt < blankAt) {
			blankAt = res.blankAt
		}
		recordChunks = append(recordChunks, res.recordChunks...)
	}
	if err := checkBlankLine(blankAt, recordChunks); err != nil {
		return nil, err
	}

	if opts.Aggregated != nil {
		opts.Aggregated(merged.Len())
	}
	return brc.SummarizeValueGroups(ctx, merged, brc.SummaryOptions{
		Workers:  opts.Workers,
		Progress: opts.SummaryProgress,
	})
}

// checkBlankLine applies the end marker rule across chunks: once a blank
// line is seen, no later chunk may hold a record.
func checkBlankLine(blankAt int64, recordChunks []int64) error {
	if blankAt < 0 {
		return nil
	}
	first := int64(-1)
	for _, off := range recordChunks {
		if off > blankAt && (first < 0 || off < first) {
			first = off
		}
	}
	if first < 0 {
		return nil
	}
	return &brc.RecordError{Offset: first, Reason: "data after blank line"}
}
