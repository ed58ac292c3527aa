package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/DavidHVernon/billion-row/internal/brc"
	"github.com/DavidHVernon/billion-row/internal/stream"
)

type config struct {
	inputFile  string
	mode       string
	loader     string
	workers    int
	chunkSize  int
	channelCap int
	progress   bool
}

func main() {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	nworkers := flag.Int("n", runtime.NumCPU(), "number of workers")
	mode := flag.String("mode", "buffer", "buffer: load the whole file, stream: read it in chunks")
	loader := flag.String("loader", "mmap", "how buffer mode loads the file: mmap or read")
	chunkSize := flag.Int("chunksize", 256*1024, "size of the chunks in stream mode")
	chunkerChannelCap := flag.Int("channel-cap", 256, "capacity of the chunk channel in stream mode")
	showProgress := flag.Bool("progress", false, "show progress on stderr")
	inputFile := flag.String("f", "data/10m.txt", "input file")
	var loglevel slog.Level
	flag.TextVar(&loglevel, "loglevel", slog.LevelInfo, "loglevel")

	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: loglevel,
	})))

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			slog.Error("cpuprofile", "err", err)
			os.Exit(1)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	report, err := run(context.Background(), config{
		inputFile:  *inputFile,
		mode:       *mode,
		loader:     *loader,
		workers:    *nworkers,
		chunkSize:  *chunkSize,
		channelCap: *chunkerChannelCap,
		progress:   *showProgress,
	})
	if err != nil {
		slog.Error("failed", "file", *inputFile, "err", err)
		pprof.StopCPUProfile()
		os.Exit(1)
	}

	fmt.Println(report)
	slog.Debug("all done", "stations", report.Len())
}

func run(ctx context.Context, cfg config) (*brc.Report, error) {
	p := newProgress(cfg.progress)
	defer p.finish()

	switch cfg.mode {
	case "buffer":
		return runBuffer(ctx, cfg, p)
	case "stream":
		return runStream(ctx, cfg, p)
	default:
		return nil, fmt.Errorf("unknown mode: %s", cfg.mode)
	}
}

func runBuffer(ctx context.Context, cfg config, p *progress) (report *brc.Report, err error) {
	var buf *brc.Buffer
	switch cfg.loader {
	case "mmap":
		buf, err = brc.MapFile(cfg.inputFile)
	case "read":
		buf, err = brc.LoadFile(cfg.inputFile)
	default:
		return nil, fmt.Errorf("unknown loader: %s", cfg.loader)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, buf.Release())
	}()
	slog.Debug("loaded", "file", cfg.inputFile, "bytes", buf.Len(), "loader", cfg.loader)

	p.startScan(int64(buf.Len()))
	return brc.Process(ctx, buf, brc.Options{
		Workers:         cfg.workers,
		ScanProgress:    p.scanned,
		Aggregated:      p.startSummary,
		SummaryProgress: p.summarized,
	})
}

func runStream(ctx context.Context, cfg config, p *progress) (*brc.Report, error) {
	f, err := os.Open(cfg.inputFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", brc.ErrIO, err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		p.startScan(fi.Size())
	}
	return stream.Collect(ctx, f, stream.Options{
		Workers:         cfg.workers,
		ChunkSize:       cfg.chunkSize,
		ChannelCap:      cfg.channelCap,
		Progress:        p.scanned,
		Aggregated:      p.startSummary,
		SummaryProgress: p.summarized,
	})
}
