package brc

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// groups handed to a worker at a time
const summarizeBatch = 16

type SummaryOptions struct {
	Workers int
	// Progress is called with the number of keys summarized so far. It may
	// be called from several goroutines at once.
	Progress func(done int)
}

type StationStats struct {
	Name string
	Statistic
}

// Report is the statistic of every key, sorted by key bytes.
type Report struct {
	Stations []StationStats
}

func (r *Report) Len() int { return len(r.Stations) }

func (r *Report) Lookup(name string) (Statistic, bool) {
	i, found := slices.BinarySearchFunc(r.Stations, name, func(s StationStats, name string) int {
		return strings.Compare(s.Name, name)
	})
	if !found {
		return Statistic{}, false
	}
	return r.Stations[i].Statistic, true
}

func (r *Report) String() string {
	out := make([]string, 0, len(r.Stations))
	for _, s := range r.Stations {
		out = append(out, s.Name+"="+s.Statistic.String())
	}
	return "{" + strings.Join(out, ", ") + "}"
}

type groupSource interface {
	Len() int
	Name(i int) string
	summarize(i int, scratch []Fixed) (Statistic, []Fixed, error)
}

func (t *GroupTable) summarize(i int, scratch []Fixed) (Statistic, []Fixed, error) {
	s, scratch, err := SummarizeGroup(t.buf, t.entries[i].group.Values, scratch)
	if err != nil {
		return s, scratch, fmt.Errorf("station %q: %w", t.Name(i), err)
	}
	return s, scratch, nil
}

func (g *ValueGroups) summarize(i int, scratch []Fixed) (Statistic, []Fixed, error) {
	s, err := SummarizeValues(g.values[i])
	if err != nil {
		return s, scratch, fmt.Errorf("station %q: %w", g.names[i], err)
	}
	return s, scratch, nil
}

// Summarize computes the statistic of every group of t. t is only read.
//
// On a decoding error the whole run fails, and the error returned is the
// one of the first failing group in first-seen order, whatever the number
// of workers.
func Summarize(ctx context.Context, t *GroupTable, opts SummaryOptions) (*Report, error) {
	return summarize(ctx, t, opts)
}

// SummarizeValueGroups is Summarize for already decoded values. The values
// of g are sorted in place.
func SummarizeValueGroups(ctx context.Context, g *ValueGroups, opts SummaryOptions) (*Report, error) {
	return summarize(ctx, g, opts)
}

func summarize(ctx context.Context, src groupSource, opts SummaryOptions) (*Report, error) {
	n := src.Len()
	workers := max(1, min(opts.Workers, (n+summarizeBatch-1)/summarizeBatch))

	stats := make([]StationStats, n)
	errs := make([]error, n)
	var next, done atomic.Int64
	var firstBad atomic.Int64
	firstBad.Store(math.MaxInt64)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			var scratch []Fixed
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				lo := int(next.Add(summarizeBatch) - summarizeBatch)
				if lo >= n || int64(lo) > firstBad.Load() {
					slog.Debug("summarize worker done", "id", w)
					return nil
				}

				for i := lo; i < min(lo+summarizeBatch, n); i++ {
					var s Statistic
					var err error
					s, scratch, err = src.summarize(i, scratch)
					if err != nil {
						errs[i] = err
						lowerTo(&firstBad, int64(i))
						return nil
					}
					stats[i] = StationStats{Name: src.Name(i), Statistic: s}
					if opts.Progress != nil {
						opts.Progress(int(done.Add(1)))
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bad := firstBad.Load(); bad != math.MaxInt64 {
		return nil, errs[bad]
	}

	slices.SortFunc(stats, func(a, b StationStats) int {
		return strings.Compare(a.Name, b.Name)
	})
	return &Report{Stations: stats}, nil
}

func lowerTo(v *atomic.Int64, i int64) {
	for {
		cur := v.Load()
		if i >= cur || v.CompareAndSwap(cur, i) {
			return
		}
	}
}
