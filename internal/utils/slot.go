package utils

import (
	"math"
	"strconv"
	"strings"
	"time"

	"garage-booking/internal/domain"
)

// TimeLayout is the wall-clock layout stored for booking start and end.
const TimeLayout = "15:04:05"

// Slot is a booking window on a single calendar day. Times carry no zone.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Date returns the booking date of the slot.
func (s Slot) Date() string {
	return s.Start.Format(domain.DateLayout)
}

func (s Slot) StartText() string {
	return s.Start.Format(TimeLayout)
}

func (s Slot) EndText() string {
	return s.End.Format(TimeLayout)
}

// ParseBookingDate parses a yyyy-mm-dd date.
func ParseBookingDate(dateStr string) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return d, nil
}

// ParseClock converts "9:00 AM", "1:30 PM", "13:00" or "13:00:00" into hours and minutes.
// 12 AM is midnight and 12 PM is noon.
func ParseClock(text string) (hour, minute int, err error) {
	s := strings.ToUpper(strings.TrimSpace(text))
	meridiem := ""
	if strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM") {
		meridiem = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 || (meridiem != "" && len(parts) != 2) {
		return 0, 0, domain.ErrInvalidTime
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, domain.ErrInvalidTime
	}
	if len(parts[1]) != 2 {
		return 0, 0, domain.ErrInvalidTime
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, domain.ErrInvalidTime
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec != 0 {
			return 0, 0, domain.ErrInvalidTime
		}
	}

	switch meridiem {
	case "":
		if hour < 0 || hour > 23 {
			return 0, 0, domain.ErrInvalidTime
		}
	default:
		if hour < 1 || hour > 12 {
			return 0, 0, domain.ErrInvalidTime
		}
		hour %= 12
		if meridiem == "PM" {
			hour += 12
		}
	}
	return hour, minute, nil
}

// TotalMinutes sums fractional-hour durations and rounds to whole minutes.
func TotalMinutes(durations []float64) int {
	var hours float64
	for _, d := range durations {
		hours += d
	}
	return int(math.Round(hours * 60))
}

// ComputeSlot anchors the start time to the booking date and extends it by the
// summed service durations. The end must fall after the start on the same day.
func ComputeSlot(dateStr, startText string, durations []float64) (Slot, error) {
	date, err := ParseBookingDate(dateStr)
	if err != nil {
		return Slot{}, err
	}
	hour, minute, err := ParseClock(startText)
	if err != nil {
		return Slot{}, err
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	minutes := TotalMinutes(durations)
	if minutes <= 0 {
		return Slot{}, domain.ErrInvalidSlot
	}
	end := start.Add(time.Duration(minutes) * time.Minute)

	// 24:00:00 cannot be stored as a wall-clock time, so the slot must end before midnight.
	if end.YearDay() != start.YearDay() || end.Year() != start.Year() {
		return Slot{}, domain.ErrInvalidSlot
	}
	return Slot{Start: start, End: end}, nil
}
