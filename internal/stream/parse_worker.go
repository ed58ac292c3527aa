package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/DavidHVernon/billion-row/internal/brc"
)

type ChunkGetter interface {
	NextChunk() *Chunk
	ReleaseChunk(*Chunk)
}

// workerResult is what one parseWorker saw.
type workerResult struct {
	groups *brc.ValueGroups
	// offset of the blank line that ended the input, -1 if none
	blankAt int64
	// offsets of the chunks that held at least one record
	recordChunks []int64
}

// parseWorker scans chunks until the chunker is drained and decodes every
// value right away, so a chunk can be reused as soon as it is parsed.
func parseWorker(ctx context.Context, chunker ChunkGetter, progress func(n int64)) (*workerResult, error) {
	res := &workerResult{groups: brc.NewValueGroups(), blankAt: -1}

	for {
		chunk := chunker.NextChunk()
		if chunk == nil {
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			chunker.ReleaseChunk(chunk)
			return nil, err
		}

		if err := parseChunk(chunk, res); err != nil {
			chunker.ReleaseChunk(chunk)
			return nil, err
		}
		if progress != nil {
			progress(int64(len(chunk.Data)))
		}
		chunker.ReleaseChunk(chunk)
	}
}

func parseChunk(chunk *Chunk, res *workerResult) error {
	buf := brc.FromBytes(chunk.Data)
	s := brc.NewScanner(buf)
	for s.Scan() {
		key, value := s.Record()
		m, err := brc.ParseFixedPoint(buf.Bytes(value))
		if err != nil {
			return fmt.Errorf("station %q: %w", buf.Bytes(key), err)
		}
		res.groups.Add(buf.Bytes(key), m)
	}
	if err := s.Err(); err != nil {
		var re *brc.RecordError
		if errors.As(err, &re) {
			return &brc.RecordError{Offset: chunk.Offset + re.Offset, Reason: re.Reason}
		}
		return err
	}

	if s.Records() > 0 {
		res.recordChunks = append(res.recordChunks, chunk.Offset)
	}
	if at, ok := s.EndMarker(); ok {
		at64 := chunk.Offset + int64(at)
		if res.blankAt < 0 || at64 < res.blankAt {
			res.blankAt = at64
		}
	}
	return nil
}
