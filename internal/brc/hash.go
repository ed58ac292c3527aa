package brc

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

const defaultBuckets = 2048

// Group is every value seen for one key, in file order.
type Group struct {
	Key    Range
	Values []Range
}

type groupEntry struct {
	hash  uint64
	next  int32 // index into entries, -1 terminates the chain
	group Group
}

// GroupTable maps keys, compared by content, to their Group. Groups keep the
// order in which their key was first seen. The table pins its Buffer until
// Close is called.
type GroupTable struct {
	buf      *Buffer
	buckets  []int32
	nbuckets uint64
	entries  []groupEntry
	closed   bool
}

func NewGroupTable(buf *Buffer) *GroupTable {
	buf.pin()
	t := &GroupTable{buf: buf}
	t.resize(defaultBuckets)
	return t
}

func (t *GroupTable) resize(nbuckets uint64) {
	t.buckets = make([]int32, nbuckets)
	for i := range t.buckets {
		t.buckets[i] = -1
	}
	t.nbuckets = nbuckets
	for i := range t.entries {
		h := t.entries[i].hash & (t.nbuckets - 1)
		t.entries[i].next = t.buckets[h]
		t.buckets[h] = int32(i)
	}
}

func (t *GroupTable) find(name []byte, hash uint64) int {
	for i := t.buckets[hash&(t.nbuckets-1)]; i >= 0; i = t.entries[i].next {
		e := &t.entries[i]
		if e.hash == hash && bytes.Equal(t.buf.Bytes(e.group.Key), name) {
			return int(i)
		}
	}
	return -1
}

// Add appends value to the group of key, creating the group on first sight.
func (t *GroupTable) Add(key, value Range) {
	g := t.getOrCreate(key)
	g.Values = append(g.Values, value)
}

func (t *GroupTable) getOrCreate(key Range) *Group {
	name := t.buf.Bytes(key)
	h := xxhash.Sum64(name)
	if i := t.find(name, h); i >= 0 {
		return &t.entries[i].group
	}

	if uint64(len(t.entries)+1)*4 > t.nbuckets*3 {
		t.resize(t.nbuckets * 2)
	}

	// Not found, create new
	b := h & (t.nbuckets - 1)
	t.entries = append(t.entries, groupEntry{
		hash:  h,
		next:  t.buckets[b],
		group: Group{Key: key},
	})
	t.buckets[b] = int32(len(t.entries) - 1)
	return &t.entries[len(t.entries)-1].group
}

// Lookup returns the group whose key has the same bytes as name.
func (t *GroupTable) Lookup(name []byte) (*Group, bool) {
	i := t.find(name, xxhash.Sum64(name))
	if i < 0 {
		return nil, false
	}
	return &t.entries[i].group, true
}

func (t *GroupTable) Len() int { return len(t.entries) }

// Group returns the i-th group in first-seen order.
func (t *GroupTable) Group(i int) *Group { return &t.entries[i].group }

// Name returns a copy of the key of the i-th group.
func (t *GroupTable) Name(i int) string {
	return string(t.buf.Bytes(t.entries[i].group.Key))
}

// Buffer returns the buffer the ranges of the table point into.
func (t *GroupTable) Buffer() *Buffer { return t.buf }

// Merge appends the groups of other after the ones already in t. Both tables
// must share the same Buffer. other is closed.
func (t *GroupTable) Merge(other *GroupTable) {
	for i := range other.entries {
		src := &other.entries[i].group
		dst := t.getOrCreate(src.Key)
		if dst.Values == nil {
			dst.Values = src.Values
		} else {
			dst.Values = append(dst.Values, src.Values...)
		}
		src.Values = nil
	}
	other.Close()
}

// Close releases the pin on the Buffer. The table must not be used after.
func (t *GroupTable) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.buf.unpin()
}
