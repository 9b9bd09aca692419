package activity

import (
	"fmt"
	"time"
)

// RelativeAge buckets the time elapsed since created into a short label.
// Elapsed time in the future counts as "just now".
func RelativeAge(created, now time.Time) string {
	elapsed := now.Sub(created)

	switch {
	case elapsed < 10*time.Second:
		return "just now"
	case elapsed < time.Minute:
		return fmt.Sprintf("%ds ago", int(elapsed/time.Second))
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed/time.Minute))
	default:
		return fmt.Sprintf("%dh ago", int(elapsed/time.Hour))
	}
}
