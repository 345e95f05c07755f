package timeofday

import (
	"errors"
	"fmt"
)

var ErrInvalidTime = errors.New("timeofday: malformed HH:MM value")

// Minutes is a wall-clock time of day expressed as minutes since midnight.
// No timezone handling is applied; values are provider-local.
type Minutes int

// DayEnd is the exclusive upper bound of a single calendar day.
const DayEnd Minutes = 24 * 60

// Parse converts a strict "HH:MM" string into Minutes.
func Parse(s string) (Minutes, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidTime
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, ErrInvalidTime
	}
	return Minutes(h*60 + m), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// Add shifts the value by the given number of minutes. The result may exceed
// DayEnd; callers decide whether overflow past midnight is acceptable.
func (m Minutes) Add(mins int) Minutes {
	return m + Minutes(mins)
}

// Valid reports whether the value lies within a single day.
func (m Minutes) Valid() bool {
	return m >= 0 && m < DayEnd
}

// String renders the value back as "HH:MM". Values at or past DayEnd render
// the raw hour count (e.g. "24:30") rather than wrapping.
func (m Minutes) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}
