package league

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotMinutes is the start time granularity of recorded games.
const SlotMinutes = 5

func parseClock(hhmm string) (hour, minute int, ok bool) {
	parts := strings.Split(hhmm, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func formatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// FloorToFiveMinutes aligns an HH:MM value down to the slot grid. Input that
// does not parse is returned as is, since it is called while the user types.
func FloorToFiveMinutes(hhmm string) string {
	hour, minute, ok := parseClock(hhmm)
	if !ok {
		return hhmm
	}
	return formatClock(hour, minute/SlotMinutes*SlotMinutes)
}

// NextSlot returns the slot after the floored time, wrapping past midnight.
func NextSlot(hhmm string) (string, bool) {
	hour, minute, ok := parseClock(FloorToFiveMinutes(hhmm))
	if !ok {
		return "", false
	}
	total := (hour*60 + minute + SlotMinutes) % (24 * 60)
	return formatClock(total/60, total%60), true
}

// ClockOf returns the local HH:MM of t.
func ClockOf(t time.Time) string {
	return ClockIn(t, time.Local)
}

// ClockIn returns the HH:MM of t on the wall clock of loc.
func ClockIn(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return formatClock(t.Hour(), t.Minute())
}

// CombineDateAndTime joins a session date and a wall clock time into a local
// timestamp. Unlike FloorToFiveMinutes it reports bad input with ok == false.
func CombineDateAndTime(sessionDate, hhmm string) (time.Time, bool) {
	return CombineDateAndTimeIn(sessionDate, hhmm, time.Local)
}

func CombineDateAndTimeIn(sessionDate, hhmm string, loc *time.Location) (time.Time, bool) {
	hour, minute, ok := parseClock(FloorToFiveMinutes(hhmm))
	if !ok {
		return time.Time{}, false
	}

	parts := strings.Split(sessionDate, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var ymd [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		ymd[i] = v
	}
	year, month, day := ymd[0], time.Month(ymd[1]), ymd[2]

	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); treat that as invalid.
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// CheckAligned rejects timestamps that do not sit on a 5-minute slot.
func CheckAligned(t time.Time) error {
	if t.Minute()%SlotMinutes != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return ErrMisalignedTime
	}
	return nil
}
