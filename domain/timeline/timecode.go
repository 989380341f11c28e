package timeline

import (
	"fmt"
	"regexp"
	"strconv"
)

// timecodeRegex matches [[HH:]MM:]SS[.fff] position strings
var timecodeRegex = regexp.MustCompile(`^(?:(?:(\d{1,2}):)?(\d{1,2}):)?(\d{1,4})(\.\d{1,3})?$`)

// ParseTimecode parses a timeline position in [[HH:]MM:]SS[.fff] form into
// seconds
func ParseTimecode(s string) (float64, error) {
	matches := timecodeRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid timecode %q: expected [[HH:]MM:]SS[.fff]", s)
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])

	if matches[2] != "" && seconds > 59 {
		return 0, fmt.Errorf("invalid timecode %q: seconds must be 0-59 when minutes are given", s)
	}
	if matches[1] != "" && minutes > 59 {
		return 0, fmt.Errorf("invalid timecode %q: minutes must be 0-59 when hours are given", s)
	}

	total := float64(hours*3600 + minutes*60 + seconds)
	if matches[4] != "" {
		frac, err := strconv.ParseFloat("0"+matches[4], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", s, err)
		}
		total += frac
	}
	return total, nil
}

// FormatTimecode renders seconds as M:SS.d for display on the timeline ruler
func FormatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	tenths := int((seconds-float64(whole))*10 + 0.5)
	if tenths == 10 {
		whole++
		tenths = 0
	}
	return fmt.Sprintf("%d:%02d.%d", whole/60, whole%60, tenths)
}
