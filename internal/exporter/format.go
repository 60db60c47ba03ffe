package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// DateTimeLayout is the layout of timestamps in exported files.
const DateTimeLayout = "2006-01-02 15:04:05"

// money marks a float as a currency amount, always written with 2 decimals.
type money float64

// formatCell renders one table cell as CSV text.
func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return formatInt(x)
	case money:
		return formatFloat(float64(x))
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return formatTime(x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatTime formats a timestamp, leaving zero times empty
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}
