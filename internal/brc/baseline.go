package brc

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Baseline is the straightforward version of Process: strings, floats and
// a sort. It is slow but easy to trust, and is used to cross check.
func Baseline(input io.Reader) (string, error) {
	stations := make(map[string][]float64)
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		fields := strings.Split(line, ";")
		if len(fields) != 2 {
			return "", fmt.Errorf("invalid line: %q", line)
		}
		m, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return "", err
		}
		stations[fields[0]] = append(stations[fields[0]], m)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(stations))
	for k := range stations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(stations))
	for _, k := range keys {
		values := stations[k]
		sort.Float64s(values)
		n := len(values)
		median := values[n/2]
		if n%2 == 0 {
			median = (values[n/2-1] + values[n/2]) / 2
		}
		out = append(out, fmt.Sprintf("%s=%s/%s/%s", k,
			Fixed(math.Round(values[0]*10)),
			Median(math.Round(median*100)),
			Fixed(math.Round(values[n-1]*10))))
	}
	return "{" + strings.Join(out, ", ") + "}", nil
}
