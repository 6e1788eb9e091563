package app

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// NullDisplay is how NULL cells are rendered.
const NullDisplay = "NULL"

// FormatValue renders one result cell as text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return NullDisplay
	case string:
		return x
	case []byte:
		return `\x` + hex.EncodeToString(x)
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		if x.Equal(x.Truncate(24 * time.Hour)) {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}
