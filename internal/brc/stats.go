package brc

import (
	"fmt"
	"slices"
)

// Median is a median in hundredths. The median of an even number of values
// is the mean of the two middle ones and may need half a tenth, so one more
// digit than Fixed is kept.
type Median int64

func medianOf(f Fixed) Median { return Median(f) * 10 }

func (m Median) Float64() float64 { return float64(m) / 100 }

// String prints one decimal place, or two when the median falls on a half
// tenth: 1.5, 1.25, -0.05.
func (m Median) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	u, d := v/100, v%100
	if d%10 == 0 {
		return fmt.Sprintf("%s%d.%d", sign, u, d/10)
	}
	return fmt.Sprintf("%s%d.%02d", sign, u, d)
}

// Statistic is the summary of one key.
type Statistic struct {
	Min    Fixed
	Max    Fixed
	Median Median
	Count  int
}

func (s Statistic) String() string {
	return s.Min.String() + "/" + s.Median.String() + "/" + s.Max.String()
}

// SummarizeValues computes min, max and median of values. values is sorted
// in place.
func SummarizeValues(values []Fixed) (Statistic, error) {
	n := len(values)
	if n == 0 {
		return Statistic{}, ErrEmptyGroup
	}

	s := Statistic{Min: values[0], Max: values[0], Count: n}
	for _, v := range values[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}

	slices.Sort(values)
	if n%2 == 1 {
		s.Median = medianOf(values[n/2])
	} else {
		// (a + b) / 2 tenths == (a + b) * 5 hundredths
		s.Median = Median(int64(values[n/2-1])+int64(values[n/2])) * 5
	}
	return s, nil
}

// SummarizeGroup decodes values into scratch and summarizes them. The
// returned slice is scratch, possibly grown, for reuse by the next call.
func SummarizeGroup(buf *Buffer, values []Range, scratch []Fixed) (Statistic, []Fixed, error) {
	scratch = scratch[:0]
	for _, r := range values {
		m, err := ParseFixedPoint(buf.Bytes(r))
		if err != nil {
			return Statistic{}, scratch, err
		}
		scratch = append(scratch, m)
	}
	s, err := SummarizeValues(scratch)
	return s, scratch, err
}
