package brc

import (
	"fmt"
	"os"
	"sync/atomic"
	"syscall"

	"golang.org/x/exp/mmap"
)

// Range is a view into a Buffer. Ranges are never copied out of the buffer
// they were produced from.
type Range struct {
	Off int
	Len int
}

func (r Range) End() int { return r.Off + r.Len }

// Buffer holds the whole input. Every GroupTable built from it pins it, and
// Release refuses to drop the bytes while a pin is held.
type Buffer struct {
	data     []byte
	unmap    func([]byte) error
	pins     atomic.Int64
	released atomic.Bool
}

// FromBytes wraps b. The caller must not modify b afterwards.
func FromBytes(b []byte) *Buffer {
	return &Buffer{data: b}
}

// LoadFile reads inputFile into memory.
func LoadFile(inputFile string) (*Buffer, error) {
	mm, err := mmap.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap.Open: %w", ErrIO, err)
	}
	defer mm.Close()

	data := make([]byte, mm.Len())
	if _, err := mm.ReadAt(data, 0); err != nil {
		return nil, fmt.Errorf("%w: ReadAt %s: %w", ErrIO, inputFile, err)
	}
	return FromBytes(data), nil
}

// MapFile maps inputFile read-only. The mapping is dropped by Release.
func MapFile(inputFile string) (*Buffer, error) {
	f, err := os.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	size := fi.Size()
	if size == 0 {
		return FromBytes(nil), nil
	}
	if size < 0 || size != int64(int(size)) {
		return nil, fmt.Errorf("%w: mmap: file %q has invalid size %d", ErrIO, inputFile, size)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %s: %w", ErrIO, inputFile, err)
	}

	err = syscall.Madvise(data, syscall.MADV_SEQUENTIAL|syscall.MADV_WILLNEED)
	if err != nil {
		syscall.Munmap(data)
		return nil, fmt.Errorf("%w: madvise %s: %w", ErrIO, inputFile, err)
	}

	return &Buffer{data: data, unmap: syscall.Munmap}, nil
}

func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the bytes r points at. It panics once the buffer has been
// released.
func (b *Buffer) Bytes(r Range) []byte {
	if b.released.Load() {
		panic("brc: buffer used after release")
	}
	return b.data[r.Off:r.End():r.End()]
}

func (b *Buffer) pin()   { b.pins.Add(1) }
func (b *Buffer) unpin() { b.pins.Add(-1) }

// Release drops the buffer contents. It fails with ErrBufferPinned while a
// GroupTable still references the buffer.
func (b *Buffer) Release() error {
	if n := b.pins.Load(); n > 0 {
		return fmt.Errorf("%w: %d tables", ErrBufferPinned, n)
	}
	if b.released.Swap(true) {
		return nil
	}

	data := b.data
	b.data = nil
	if b.unmap != nil && data != nil {
		if err := b.unmap(data); err != nil {
			return fmt.Errorf("munmap: %w", err)
		}
	}
	return nil
}
