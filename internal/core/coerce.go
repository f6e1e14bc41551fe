package core

import (
	"fmt"
	"strconv"
	"time"
)

// CoerceCell converts a raw cell value into its canonical string form.
//
// Absent cells (nil) become "", strings pass through unchanged, and every
// other value is converted to text. Floats use the shortest decimal form so
// that 3.0 reads "3" and 0.1 reads "0.1", matching what a spreadsheet shows.
func CoerceCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
