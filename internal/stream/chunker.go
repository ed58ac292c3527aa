// Package stream computes the same report as brc.Process without holding
// the whole input in memory: the input is read in newline terminated chunks
// and values are decoded as soon as they are parsed.
package stream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
)

// Chunk is a run of whole lines and its position in the input.
type Chunk struct {
	Data   []byte
	Offset int64
}

type Chunker struct {
	r       io.Reader
	p       sync.Pool
	chunkCh chan *Chunk
}

func NewChunker(r io.Reader, chCap, chunkSize int) *Chunker {
	return &Chunker{
		r:       r,
		chunkCh: make(chan *Chunk, chCap),
		p: sync.Pool{
			New: func() any {
				return &Chunk{Data: make([]byte, 0, chunkSize)}
			},
		},
	}
}

func (c *Chunker) getChunk() *Chunk {
	chunk := c.p.Get().(*Chunk)
	chunk.Data = chunk.Data[:0] // reset
	chunk.Offset = 0
	return chunk
}

func (c *Chunker) ReleaseChunk(chunk *Chunk) {
	c.p.Put(chunk)
}

// NextChunk blocks until a chunk is available. It returns nil once Run has
// returned and every chunk has been handed out.
func (c *Chunker) NextChunk() *Chunk {
	return <-c.chunkCh
}

func (c *Chunker) send(ctx context.Context, chunk *Chunk) error {
	select {
	case c.chunkCh <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run reads the input until EOF. Every chunk but the last ends with '\n'; a
// line that does not fit in a chunk is carried over to the next one.
func (c *Chunker) Run(ctx context.Context) error {
	defer close(c.chunkCh)

	leftovers := make([]byte, 0, 256)
	var offset int64
	for {
		chunk := c.getChunk()
		chunk.Data = append(chunk.Data, leftovers...) // leftovers at beginning of chunk
		currentReadStartPos := len(leftovers)         // keep ref for calculations
		leftovers = leftovers[:0]                     // reset
		if currentReadStartPos == cap(chunk.Data) {
			// line longer than a chunk
			chunk.Data = slices.Grow(chunk.Data, cap(chunk.Data))
		}
		chunk.Data = chunk.Data[:cap(chunk.Data)] // extend to use all cap

		n, err := c.r.Read(chunk.Data[currentReadStartPos:])
		chunk.Data = chunk.Data[:currentReadStartPos+n]
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed Read: %w", err)
		}

		if err == io.EOF {
			if len(chunk.Data) == 0 {
				c.ReleaseChunk(chunk)
				return nil
			}
			// last line might not have a \n
			chunk.Offset = offset
			return c.send(ctx, chunk)
		}

		lastnl := bytes.LastIndexByte(chunk.Data, '\n')
		if lastnl == -1 {
			// no \n and not EOF, keep reading
			leftovers = append(leftovers, chunk.Data...)
			c.ReleaseChunk(chunk)
			continue
		}

		leftovers = append(leftovers, chunk.Data[lastnl+1:]...)
		chunk.Data = chunk.Data[:lastnl+1]
		chunk.Offset = offset
		offset += int64(len(chunk.Data))
		if err := c.send(ctx, chunk); err != nil {
			return err
		}
	}
}
