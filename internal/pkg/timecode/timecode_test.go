package timecode

import (
	"math"
	"testing"
)

func TestHoursToClock(t *testing.T) {
	cases := []struct {
		input float64
		want  string
	}{
		{7.5, "7:30"},
		{0, "0:00"},
		{8, "8:00"},
		{1.25, "1:15"},
		{10.999, "11:00"},
		{-3, "0:00"},
		{170.0166666667, "170:01"},
	}
	for _, c := range cases {
		got := HoursToClock(c.input)
		if got != c.want {
			t.Errorf("HoursToClock(%v) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestClockToHours(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"7:30", 7.5},
		{"8", 8},
		{"8:", 8},
		{"8:xx", 8},
		{"8:75", 8},
		{" 2:15 ", 2.25},
		{"abc", 0},
		{"", 0},
		{"-1:30", 0},
		{"7.5", 7.5},
	}
	for _, c := range cases {
		got := ClockToHours(c.input)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("ClockToHours(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestFlexibleToSeconds(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"2:15:30", 8130},
		{"2", 7200},
		{"2:15", 8100},
		{"2:xx:30", 7200},
		{"2:15:yy", 8100},
		{"x:15:30", 0},
		{"-2:15", 900},
		{"1:-5:10", 3610},
		{"", 0},
	}
	for _, c := range cases {
		got := FlexibleToSeconds(c.input)
		if got != c.want {
			t.Errorf("FlexibleToSeconds(%q) = %d, want %d", c.input, got, c.want)
		}
	}
}

func TestClockRoundTrip(t *testing.T) {
	for minutes := 0; minutes <= 300*60; minutes += 7 {
		h := float64(minutes) / 60
		got := ClockToHours(HoursToClock(h))
		if math.Abs(got-h) > 1e-4 {
			t.Fatalf("round trip of %v gave %v", h, got)
		}
	}
}

func TestMinutesToClock(t *testing.T) {
	if got := MinutesToClock(135); got != "2:15" {
		t.Errorf("MinutesToClock(135) = %q", got)
	}
	if got := MinutesToClock(-4); got != "0:00" {
		t.Errorf("MinutesToClock(-4) = %q", got)
	}
}
