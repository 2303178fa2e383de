package analytics

import (
	"fmt"
)

// FormatMoney renders a monetary value for display: "$1.2M" at a
// million and above, "$200K" at a thousand and above, plain dollars
// below that. Values are never stored in this rounded form.
func FormatMoney(v float64) string {
	switch {
	case v >= 1000000:
		return fmt.Sprintf("$%.1fM", v/1000000)
	case v >= 1000:
		return fmt.Sprintf("$%.0fK", v/1000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
