package brc

import (
	"errors"
	"fmt"
)

var (
	// ErrIO is returned when the input could not be loaded.
	ErrIO = errors.New("io failure")
	// ErrMalformedRecord is wrapped by every *RecordError.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrNumberFormat is wrapped by every *NumberError.
	ErrNumberFormat = errors.New("invalid number")

	ErrEmptyGroup   = errors.New("empty group")
	ErrBufferPinned = errors.New("buffer still referenced")
)

// RecordError reports a line that does not follow the name;value grammar.
// Offset is the byte offset of the start of the offending line.
type RecordError struct {
	Offset int64
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", ErrMalformedRecord, e.Offset, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

// NumberError reports a value that is not a one decimal place numeral.
type NumberError struct {
	Value  string
	Reason string
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrNumberFormat, e.Value, e.Reason)
}

func (e *NumberError) Unwrap() error { return ErrNumberFormat }
