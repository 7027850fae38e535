// Package timecode converts between decimal hour quantities and the H:MM clock
// notation used by attendance sheets.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HoursToClock formats a decimal hour quantity as H:MM. Negative input is
// treated as zero.
func HoursToClock(hours float64) string {
	if hours <= 0 || math.IsNaN(hours) {
		return "0:00"
	}
	whole := math.Floor(hours)
	minutes := math.Round((hours - whole) * 60)
	if minutes >= 60 {
		whole++
		minutes = 0
	}
	return fmt.Sprintf("%d:%02d", int64(whole), int64(minutes))
}

// ClockToHours parses H or H:MM into decimal hours. A missing or garbled
// minute component is ignored and the value floors to the hour.
func ClockToHours(text string) float64 {
	parts := strings.Split(strings.TrimSpace(text), ":")

	if len(parts) == 1 {
		h, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil || h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return 0
		}
		return h
	}

	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 {
		return 0
	}

	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 0 || m >= 60 {
		return float64(h)
	}
	return float64(h) + float64(m)/60
}

// FlexibleToSeconds accepts H, H:MM or H:MM:SS and returns the total number of
// seconds. Parsing stops at the first component that is not a number and the
// value falls back to the components read so far. Negative components count as
// zero.
func FlexibleToSeconds(text string) int {
	parts := strings.SplitN(strings.TrimSpace(text), ":", 3)
	weights := []int{3600, 60, 1}

	total := 0
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			break
		}
		if v < 0 {
			v = 0
		}
		total += v * weights[i]
	}
	return total
}

// MinutesToClock formats a whole number of minutes as H:MM.
func MinutesToClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
