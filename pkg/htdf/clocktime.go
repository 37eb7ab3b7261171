package htdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a time of day in seconds since midnight. Values of 24 hours or
// more are valid and refer to the following calendar day, matching GTFS
// service-day semantics.
type ClockTime int

const SecondsPerDay = 24 * 60 * 60

func NewClockTime(hour int, minute int) ClockTime {
	return ClockTime(hour*3600 + minute*60)
}

func ClockTimeOf(dateTime time.Time) ClockTime {
	return ClockTime(dateTime.Hour()*3600 + dateTime.Minute()*60 + dateTime.Second())
}

// ParseClockTime parses "HH:MM" or "HH:MM:SS", allowing hours >= 24.
func ParseClockTime(value string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}

	var fields [3]int
	for i, part := range parts {
		number, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid clock time %q", value)
		}
		fields[i] = number
	}

	return ClockTime(fields[0]*3600 + fields[1]*60 + fields[2]), nil
}

// On materialises the clock time onto a calendar date, rolling into following
// days when the value is 24 hours or more.
func (c ClockTime) On(date time.Time) time.Time {
	days := int(c) / SecondsPerDay
	remaining := int(c) % SecondsPerDay

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	return midnight.AddDate(0, 0, days).Add(time.Duration(remaining) * time.Second)
}

func (c ClockTime) Add(d time.Duration) ClockTime {
	return c + ClockTime(d/time.Second)
}

func (c ClockTime) Sub(other ClockTime) time.Duration {
	return time.Duration(c-other) * time.Second
}

func (c ClockTime) String() string {
	hours := int(c) / 3600
	minutes := (int(c) % 3600) / 60

	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
