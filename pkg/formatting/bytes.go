package formatting

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// ParseBytes converts a human-readable size ("50MB", "1.5 GB", "1024")
// into a byte count. Units are base-1024 and case-insensitive; a bare
// number is taken as bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := len(s)
	for i, r := range s {
		if r != '.' && r != ' ' && (r < '0' || r > '9') {
			split = i
			break
		}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s[:split]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	unit := strings.ToUpper(strings.TrimSpace(s[split:]))
	if unit == "" {
		return int64(value), nil
	}

	idx := slices.Index(byteUnits, unit)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit %q", unit)
	}

	return int64(value * math.Pow(1024, float64(idx))), nil
}

// FormatBytes renders a byte count with base-1024 units for log output.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}

	f := float64(n)
	idx := 0
	for f >= 1024 && idx < len(byteUnits)-1 {
		f /= 1024
		idx++
	}

	return strconv.FormatFloat(f, 'f', 1, 64) + " " + byteUnits[idx]
}
