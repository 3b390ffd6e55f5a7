package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// DurationToMillis parses a catalog runtime string into milliseconds.
// Accepted forms: "HH:MM:SS", "MM:SS", "SS". Anything else (including an
// empty or zero duration) is an error — callers treat unknown as incomplete.
func DurationToMillis(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty duration")
	}

	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("malformed duration %q", raw)
	}

	var total int64
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("malformed duration %q", raw)
		}
		total = total*60 + n
	}

	if total == 0 {
		return 0, fmt.Errorf("zero duration %q", raw)
	}
	return total * 1000, nil
}
