package brc

import (
	"fmt"
	"math"
)

// Fixed is a measurement with one decimal place, stored as value * 10.
// i.e: 25.9 -> 259
type Fixed int32

// ParseFixedPoint decodes input, which must match [-]?[0-9]+\.[0-9].
func ParseFixedPoint(input []byte) (Fixed, error) {
	n := len(input)
	i := 0
	negative := false
	if n > 0 && input[0] == '-' {
		negative = true
		i++
	}

	// at least one integer digit, '.', one decimal digit
	if n-i < 3 {
		return 0, &NumberError{Value: string(input), Reason: "too short"}
	}
	if input[n-2] != '.' {
		return 0, &NumberError{Value: string(input), Reason: "expected exactly one decimal place"}
	}

	var value int64
	for ; i < n; i++ {
		if i == n-2 {
			continue // '.'
		}
		b := input[i]
		if b < '0' || b > '9' {
			return 0, &NumberError{Value: string(input), Reason: fmt.Sprintf("invalid byte %q", b)}
		}
		value = value*10 + int64(b-'0')
		if value > math.MaxInt32 {
			return 0, &NumberError{Value: string(input), Reason: "overflow"}
		}
	}

	if negative {
		value = -value
	}
	return Fixed(value), nil
}

func (f Fixed) Float64() float64 { return float64(f) / 10 }

func (f Fixed) String() string {
	u, d := int64(f)/10, int64(f)%10
	if f >= 0 {
		return fmt.Sprintf("%d.%d", u, d)
	}
	return fmt.Sprintf("-%d.%d", -u, -d)
}
