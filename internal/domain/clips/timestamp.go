package clips

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/splyt/internal/diag"
)

var (
	reLeading    = regexp.MustCompile(`^\d+$`)
	reSubsequent = regexp.MustCompile(`^\d\d?$`)
)

// ParseTimestamp reads "h:mm:ss", "mm:ss" or "m:ss". Only the leading part
// may exceed 59.
func ParseTimestamp(input string) (time.Duration, error) {
	invalid := diag.New(diag.InvalidTimestampInput)
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, invalid
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, invalid
	}
	if !reLeading.MatchString(parts[0]) {
		return 0, invalid
	}
	total, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, invalid
	}
	for _, p := range parts[1:] {
		if !reSubsequent.MatchString(p) {
			return 0, invalid
		}
		n, _ := strconv.Atoi(p)
		if n > 59 {
			return 0, invalid
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

// ParseDuration reads a plain number of seconds.
func ParseDuration(input string) (time.Duration, error) {
	if !reLeading.MatchString(input) {
		return 0, diag.New(diag.InvalidDurationInput)
	}
	n, err := strconv.Atoi(input)
	if err != nil {
		return 0, diag.Wrap(diag.InvalidDurationInput, err)
	}
	return time.Duration(n) * time.Second, nil
}

// FormatSeconds renders d as ffmpeg-friendly seconds with millisecond precision.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
