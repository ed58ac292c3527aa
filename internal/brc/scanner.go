package brc

import (
	"bytes"
)

type scanState int

const (
	scanStateKey scanState = iota
	scanStateValue
	scanStateRecordComplete
)

// Scanner walks a Buffer once, left to right, and yields one (key, value)
// pair of ranges per line. It never copies and never reads past the end of
// the buffer.
//
// A final line without '\n' is terminated by the end of the buffer. A line
// starting with '\n' ends the scan; anything but more newlines after it is
// reported as a malformed record.
type Scanner struct {
	data    []byte
	pos     int
	end     int
	key     Range
	value   Range
	records int
	marker  int
	err     error
	done    bool
}

func NewScanner(buf *Buffer) *Scanner {
	return newSectionScanner(buf, Range{Off: 0, Len: buf.Len()})
}

// newSectionScanner scans only section, which must start at the beginning
// of a line and end right after a '\n' or at the end of buf.
func newSectionScanner(buf *Buffer, section Range) *Scanner {
	return &Scanner{
		data:   buf.Bytes(Range{Off: 0, Len: buf.Len()}),
		pos:    section.Off,
		end:    section.End(),
		marker: -1,
	}
}

// Scan advances to the next record. It returns false at the end of input or
// on the first malformed record, see Err.
func (s *Scanner) Scan() bool {
	if s.done || s.pos >= s.end {
		s.done = true
		return false
	}

	state := scanStateKey
	start := s.pos
	i := start
	for {
		switch state {
		case scanStateKey:
			if s.data[i] == '\n' {
				return s.stopAtBlankLine(i)
			}
			for ; i < s.end && s.data[i] != ';'; i++ {
				if s.data[i] == '\n' {
					return s.fail(start, "missing ';' before end of line")
				}
			}
			if i == s.end {
				return s.fail(start, "missing ';' before end of input")
			}
			if i == start {
				return s.fail(start, "empty name")
			}
			s.key = Range{Off: start, Len: i - start}
			i++ // skip ';'
			state = scanStateValue

		case scanStateValue:
			valueStart := i
			if nl := bytes.IndexByte(s.data[i:s.end], '\n'); nl >= 0 {
				i += nl
			} else {
				i = s.end
			}
			if i == valueStart {
				return s.fail(start, "empty value")
			}
			s.value = Range{Off: valueStart, Len: i - valueStart}
			state = scanStateRecordComplete

		case scanStateRecordComplete:
			if i < s.end {
				i++ // skip '\n'
			}
			s.pos = i
			s.records++
			return true
		}
	}
}

func (s *Scanner) stopAtBlankLine(i int) bool {
	s.done = true
	s.pos = s.end
	s.marker = i
	for j := i; j < len(s.data); j++ {
		if s.data[j] != '\n' {
			return s.fail(j, "data after blank line")
		}
	}
	return false
}

func (s *Scanner) fail(offset int, reason string) bool {
	s.err = &RecordError{Offset: int64(offset), Reason: reason}
	s.done = true
	return false
}

// Record returns the ranges of the record found by the last call to Scan.
func (s *Scanner) Record() (key, value Range) {
	return s.key, s.value
}

func (s *Scanner) Err() error { return s.err }

// Offset is the position of the next unread byte.
func (s *Scanner) Offset() int { return s.pos }

// EndMarker returns the offset of the blank line that ended the scan, if
// any.
func (s *Scanner) EndMarker() (int, bool) {
	return s.marker, s.marker >= 0
}

// Records is the number of records returned so far.
func (s *Scanner) Records() int { return s.records }
