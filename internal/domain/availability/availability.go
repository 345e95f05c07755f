package availability

import (
	"errors"
	"time"

	"pnjpremium/internal/domain/shared/timeofday"
)

var ErrInvalidWindow = errors.New("availability: window end must be after start")

// Window is an open time-of-day interval during which a provider accepts
// bookings. A request fits when it starts at or after Start and ends at or
// before End.
type Window struct {
	Start timeofday.Minutes
	End   timeofday.Minutes
}

func (w Window) Validate() error {
	if !w.Start.Valid() || w.End <= w.Start || w.End > timeofday.DayEnd {
		return ErrInvalidWindow
	}
	return nil
}

func (w Window) fits(start, end timeofday.Minutes) bool {
	return start >= w.Start && end <= w.End
}

// Exception overrides the weekly schedule for one calendar date. An
// unavailable exception disables the date entirely. An available exception
// with windows replaces the weekly windows for that date; without windows it
// falls back to the normal weekly schedule.
type Exception struct {
	Date      time.Time
	Available bool
	Windows   []Window
}

// Profile is a provider's recurring weekly schedule plus date-specific
// exceptions. Consumed read-only by the availability check.
type Profile struct {
	Weekly     map[time.Weekday][]Window
	Exceptions []Exception
}

// Clone returns a deep copy safe to mutate independently.
func (p Profile) Clone() Profile {
	cp := Profile{}
	if p.Weekly != nil {
		cp.Weekly = make(map[time.Weekday][]Window, len(p.Weekly))
		for day, windows := range p.Weekly {
			cp.Weekly[day] = append([]Window(nil), windows...)
		}
	}
	for _, exc := range p.Exceptions {
		excCopy := exc
		excCopy.Windows = append([]Window(nil), exc.Windows...)
		cp.Exceptions = append(cp.Exceptions, excCopy)
	}
	return cp
}

// IsAvailable reports whether the requested slot fits the profile. Pure: no
// side effects, no I/O, no timezone conversion — times are provider-local
// wall clock. A slot overflowing past midnight fits no same-day window and
// is therefore rejected implicitly. Duration validation belongs to the
// caller; this is a plain interval containment check.
func IsAvailable(p Profile, date time.Time, start timeofday.Minutes, durationMinutes int) bool {
	end := start.Add(durationMinutes)

	for _, exc := range p.Exceptions {
		if !sameDate(exc.Date, date) {
			continue
		}
		if !exc.Available {
			return false
		}
		if len(exc.Windows) > 0 {
			return fitsAny(exc.Windows, start, end)
		}
		break
	}

	return fitsAny(p.Weekly[date.Weekday()], start, end)
}

func fitsAny(windows []Window, start, end timeofday.Minutes) bool {
	for _, w := range windows {
		if w.fits(start, end) {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
