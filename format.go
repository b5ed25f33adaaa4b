package blobmeta

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// TimestampLayout is the layout FormatTimestamp renders local times with.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatByteSize returns a human-readable size using base-1024 units up to
// TB. Values of 10 or more, and plain byte counts, are rendered without
// decimals; smaller scaled values get one decimal unless it is zero, so 1024
// renders as "1 KB" and 1536 as "1.5 KB". Non-finite and negative inputs
// yield an empty string.
func FormatByteSize(bytes float64) string {
	if math.IsNaN(bytes) || math.IsInf(bytes, 0) || bytes < 0 {
		return ""
	}
	if bytes == 0 {
		return "0 B"
	}

	value, unit := bytes, 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}

	var s string
	if value >= 10 || unit == 0 {
		s = formatFixed(value, 0)
	} else {
		s = strings.TrimSuffix(formatFixed(value, 1), ".0")
	}
	return s + " " + byteUnits[unit]
}

// FormatTimestamp renders epoch milliseconds as a local date-time string.
// Non-finite inputs yield an empty string.
func FormatTimestamp(ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return ""
	}
	return time.UnixMilli(int64(ms)).Local().Format(TimestampLayout)
}

// formatFixed renders v with exactly digits decimals. Rounding works on the
// exact binary value of v, and only exact ties go away from zero, so 1.045
// (stored just below the half) renders as "1.04" at two digits.
func formatFixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', digits, 64)
	}

	exact := new(big.Rat).SetFloat64(math.Abs(v))
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	num := new(big.Int).Mul(exact.Num(), scale)
	q, rem := new(big.Int).QuoRem(num, exact.Denom(), new(big.Int))
	if rem.Lsh(rem, 1).Cmp(exact.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	s := q.String()
	if digits > 0 {
		if len(s) <= digits {
			s = strings.Repeat("0", digits-len(s)+1) + s
		}
		s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	}
	if v < 0 {
		s = "-" + s
	}
	return s
}
