// Package sizes formats byte counts for display.
package sizes

import (
	"fmt"
	"strconv"
	"strings"
)

var units = []string{"Bytes", "KB", "MB", "GB", "TB"}

// Format renders a byte count with 1024-based units, e.g. 2097152 bytes
// formats as "2.0 MB". Up to two decimals, trailing zeros trimmed, matching
// how the file list has always displayed sizes.
func Format(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	value := float64(bytes)
	idx := 0
	for value >= 1024 && idx < len(units)-1 {
		value /= 1024
		idx++
	}

	if idx == 0 {
		return strconv.FormatInt(bytes, 10) + " " + units[0]
	}

	s := fmt.Sprintf("%.2f", value)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	// Keep one decimal for scaled units so 2 MB reads "2.0 MB", not "2 MB".
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + " " + units[idx]
}
