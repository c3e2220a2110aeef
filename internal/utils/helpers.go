package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatUSD formats an amount as whole dollars with comma separators, e.g. "$152,093"
func FormatUSD(amount float64) string {
	rounded := int64(math.Round(amount))
	if rounded < 0 {
		return "-$" + humanize.Comma(-rounded)
	}
	return "$" + humanize.Comma(rounded)
}

// FormatRange formats a low-high pair, e.g. "$152,093 - $202,790"
func FormatRange(low, high float64) string {
	return fmt.Sprintf("%s - %s", FormatUSD(low), FormatUSD(high))
}

// FormatMultiplier prints a multiplier with three decimals
func FormatMultiplier(m float64) string {
	return strconv.FormatFloat(m, 'f', 3, 64)
}

// ParseMoney extracts a numeric value from a salary string such as
// "$79,850", "211450" or "120K"
func ParseMoney(salaryStr string) (float64, error) {
	s := strings.TrimSpace(salaryStr)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	multiplier := 1.0
	// Handle "K" suffix (e.g., "100K" -> 100000)
	if upper := strings.ToUpper(s); strings.HasSuffix(upper, "K") {
		s = strings.TrimSpace(upper[:len(upper)-1])
		multiplier = 1000
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid salary value %q: %w", salaryStr, err)
	}
	return val * multiplier, nil
}

// SplitList splits a comma separated flag or query value, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TruncateString truncates a string to the specified length and adds "..." if necessary
func TruncateString(s string, length int) string {
	if len(s) <= length {
		return s
	}
	if length <= 3 {
		return s[:length]
	}
	return s[:length-3] + "..."
}
