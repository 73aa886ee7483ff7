// Package recurrence implements RecurrenceEvaluator (C1): a pure function
// from a DaysPattern, a ScheduleList, and an anchor/now pair to the next
// firing instant. It has no I/O and no dependency on the store or engine
// packages, matching the teacher's payment_schedule_service's pure
// date-arithmetic helpers generalized from a fixed set of plans to the
// full tagged-variant pattern tree.
package recurrence

import (
	"sort"
	"time"

	"reminder-engine/internal/domain/entities"
)

// maxDays bounds the day-by-day forward scan to roughly 10 years, per the
// search horizon in the component design.
const maxDays = 10*365 + 3

// Params is the input to Next.
type Params struct {
	Pattern   *entities.DaysPattern
	Schedules entities.ScheduleList
	// Anchor is the tracking's creation instant, used as the origin for
	// Interval-unit arithmetic.
	Anchor time.Time
	// Now is the instant to search strictly after.
	Now time.Time
	// Excluded, if set, is an instant that would otherwise match but must
	// be skipped (used when re-chaining after an answer/delete so the
	// terminated reminder's own instant is never reproduced).
	Excluded *time.Time
}

// Next returns the next instant at which pattern and one of schedules fires
// strictly after Now, skipping Excluded. Dates and wall-clock times are
// evaluated in loc; the returned instant is in UTC. ok is false if no such
// instant exists within the search horizon.
func Next(p Params, loc *time.Location) (time.Time, bool, error) {
	if p.Pattern == nil {
		return time.Time{}, false, nil
	}
	if err := p.Pattern.Validate(); err != nil {
		return time.Time{}, false, err
	}
	if err := p.Schedules.Validate(); err != nil {
		return time.Time{}, false, err
	}

	sched := make(entities.ScheduleList, len(p.Schedules))
	copy(sched, p.Schedules)
	sort.Slice(sched, func(i, j int) bool {
		if sched[i].Hour != sched[j].Hour {
			return sched[i].Hour < sched[j].Hour
		}
		return sched[i].Minute < sched[j].Minute
	})

	nowLocal := p.Now.In(loc)
	anchorDate := dateOnly(p.Anchor.In(loc))
	date := dateOnly(nowLocal)

	for i := 0; i < maxDays; i++ {
		if matches(p.Pattern, date, anchorDate) {
			for _, s := range sched {
				candidate := time.Date(date.Year(), date.Month(), date.Day(), s.Hour, s.Minute, 0, 0, loc)
				if !candidate.After(p.Now) {
					continue
				}
				if p.Excluded != nil && candidate.Equal(*p.Excluded) {
					continue
				}
				return candidate.UTC(), true, nil
			}
		}
		date = date.AddDate(0, 0, 1)
	}
	return time.Time{}, false, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysBetween counts whole calendar days between two dateOnly values by
// comparing at noon UTC, sidestepping DST-length days that aren't exactly
// 24 hours in their own zone.
func daysBetween(a, b time.Time) int {
	na := time.Date(a.Year(), a.Month(), a.Day(), 12, 0, 0, 0, time.UTC)
	nb := time.Date(b.Year(), b.Month(), b.Day(), 12, 0, 0, 0, time.UTC)
	return int(nb.Sub(na).Hours() / 24)
}

func matches(p *entities.DaysPattern, date, anchor time.Time) bool {
	switch p.Kind {
	case entities.PatternInterval:
		return matchInterval(p, date, anchor)
	case entities.PatternDayOfWeek:
		wd := int(date.Weekday())
		for _, d := range p.Weekdays {
			if d == wd {
				return true
			}
		}
		return false
	case entities.PatternDayNumber:
		for _, d := range p.DayNumbers {
			if d == date.Day() {
				return true
			}
		}
		return false
	case entities.PatternLastDay:
		return date.Day() == daysInMonth(date.Year(), date.Month())
	case entities.PatternMonthWeekdayOrd:
		return int(date.Weekday()) == p.OrdinalWeekday && ordinalInMonth(date) == p.Ordinal
	case entities.PatternYearDate:
		return int(date.Month()) == p.Month && date.Day() == p.Day
	case entities.PatternYearWeekdayOrd:
		return int(date.Weekday()) == p.OrdinalWeekday && ordinalInYear(date) == p.Ordinal
	default:
		return false
	}
}

func ordinalInMonth(date time.Time) int {
	return ((date.Day() - 1) / 7) + 1
}

func ordinalInYear(date time.Time) int {
	return ((date.YearDay() - 1) / 7) + 1
}

func matchInterval(p *entities.DaysPattern, date, anchor time.Time) bool {
	switch p.IntervalUnit {
	case entities.IntervalDays:
		diff := daysBetween(anchor, date)
		return diff >= 0 && diff%p.IntervalValue == 0
	case entities.IntervalWeeks:
		diff := daysBetween(anchor, date)
		return diff >= 0 && diff%(7*p.IntervalValue) == 0
	case entities.IntervalMonths:
		monthsDiff := (date.Year()-anchor.Year())*12 + int(date.Month()-anchor.Month())
		if monthsDiff < 0 || monthsDiff%p.IntervalValue != 0 {
			return false
		}
		target := addMonthsClipped(anchor, monthsDiff)
		return target.Year() == date.Year() && target.Month() == date.Month() && target.Day() == date.Day()
	case entities.IntervalYears:
		yearsDiff := date.Year() - anchor.Year()
		if yearsDiff < 0 || yearsDiff%p.IntervalValue != 0 {
			return false
		}
		target := addYearsClipped(anchor, yearsDiff)
		return target.Year() == date.Year() && target.Month() == date.Month() && target.Day() == date.Day()
	default:
		return false
	}
}

// addMonthsClipped adds n calendar months to anchor, clipping the day to
// the target month's last day when the anchor's day-of-month doesn't exist
// there (e.g. anchor day 31, target month April).
func addMonthsClipped(anchor time.Time, n int) time.Time {
	totalMonths := int(anchor.Month()) - 1 + n
	targetYear := anchor.Year() + totalMonths/12
	targetMonth := time.Month(totalMonths%12 + 1)
	day := anchor.Day()
	if max := daysInMonth(targetYear, targetMonth); day > max {
		day = max
	}
	return time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, anchor.Location())
}

// addYearsClipped adds n years to anchor, clipping Feb 29 to Feb 28 in a
// target non-leap year.
func addYearsClipped(anchor time.Time, n int) time.Time {
	targetYear := anchor.Year() + n
	month := anchor.Month()
	day := anchor.Day()
	if month == time.February && day == 29 && !isLeap(targetYear) {
		day = 28
	}
	return time.Date(targetYear, month, day, 0, 0, 0, 0, anchor.Location())
}
