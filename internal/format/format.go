package format

import (
	"fmt"
	"strconv"
	"strings"
)

// NotAvailable is shown in place of values that cannot be computed.
const NotAvailable = "N/A"

// GB converts a capacity in MB (as reported by the control plane) to GB with
// the given number of decimal places.
// Example: GB(65536, 2) → "64.00 GB".
func GB(mb float64, decimals int) string {
	return fmt.Sprintf("%.*f GB", decimals, mb/1024)
}

// Megabytes formats an MB capacity into a human-readable string with 1 decimal place.
// Thresholds: <1GB → MB, <1TB → GB, else TB.
func Megabytes(mb float64) string {
	const (
		gb = 1024
		tb = gb * 1024
	)
	switch {
	case mb < gb:
		return fmt.Sprintf("%.0f MB", mb)
	case mb < tb:
		return fmt.Sprintf("%.1f GB", mb/gb)
	default:
		return fmt.Sprintf("%.1f TB", mb/tb)
	}
}

// Ratio formats a 0..1 ratio as a percentage with one decimal place, or
// NotAvailable when ok is false.
// Example: Ratio(0.25, true) → "25.0%".
func Ratio(r float64, ok bool) string {
	if !ok {
		return NotAvailable
	}
	return FormatPercent(r * 100)
}

// FormatNumber formats an integer with locale-style comma separators.
// Example: 12345678 → "12,345,678".
// Uses strconv.FormatInt directly to avoid abs64 overflow for math.MinInt64.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// FormatPercent formats a percentage with one decimal place.
// Example: 34.5 → "34.5%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Fraction formats "n/total".
func Fraction(n, total int64) string {
	return strconv.FormatInt(n, 10) + "/" + strconv.FormatInt(total, 10)
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
