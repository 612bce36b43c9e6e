package utils

import (
	"fmt"
	"time"
)

// ToString converts various types to string.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NormalizeRow makes a scanned row JSON friendly. Drivers hand back text
// columns as []byte, which encoding/json would otherwise base64 encode.
func NormalizeRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			out[k] = ToString(b)
			continue
		}
		out[k] = v
	}
	return out
}
