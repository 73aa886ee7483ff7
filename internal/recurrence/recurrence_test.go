package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reminder-engine/internal/domain/entities"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestNext_ConcreteScenarios(t *testing.T) {
	buenosAires := mustLoc(t, "America/Argentina/Buenos_Aires")

	tests := []struct {
		name     string
		pattern  *entities.DaysPattern
		schedule entities.ScheduleList
		loc      *time.Location
		anchor   time.Time
		now      time.Time
		wantUTC  string
	}{
		{
			name:     "daily interval, before first schedule",
			pattern:  &entities.DaysPattern{Kind: entities.PatternInterval, IntervalValue: 1, IntervalUnit: entities.IntervalDays},
			schedule: entities.ScheduleList{{Hour: 8, Minute: 0}, {Hour: 20, Minute: 0}},
			loc:      buenosAires,
			anchor:   parseIn(t, buenosAires, "2025-01-10T10:00:00-03:00"),
			now:      parseIn(t, buenosAires, "2025-01-10T10:00:00-03:00"),
			wantUTC:  "2025-01-10T23:00:00Z", // 20:00 -03:00
		},
		{
			name:     "daily interval, after both schedules rolls to next day",
			pattern:  &entities.DaysPattern{Kind: entities.PatternInterval, IntervalValue: 1, IntervalUnit: entities.IntervalDays},
			schedule: entities.ScheduleList{{Hour: 8, Minute: 0}, {Hour: 20, Minute: 0}},
			loc:      buenosAires,
			anchor:   parseIn(t, buenosAires, "2025-01-10T10:00:00-03:00"),
			now:      parseIn(t, buenosAires, "2025-01-10T21:00:00-03:00"),
			wantUTC:  "2025-01-11T11:00:00Z", // 08:00 -03:00 next day
		},
		{
			name:     "day of week sunday/saturday",
			pattern:  &entities.DaysPattern{Kind: entities.PatternDayOfWeek, Weekdays: []int{0, 6}},
			schedule: entities.ScheduleList{{Hour: 9, Minute: 0}},
			loc:      time.UTC,
			anchor:   parseIn(t, time.UTC, "2025-01-01T00:00:00Z"),
			now:      parseIn(t, time.UTC, "2025-01-08T09:01:00Z"), // Wednesday
			wantUTC:  "2025-01-11T09:00:00Z",                       // Saturday
		},
		{
			name:     "last day of month",
			pattern:  &entities.DaysPattern{Kind: entities.PatternLastDay},
			schedule: entities.ScheduleList{{Hour: 23, Minute: 59}},
			loc:      time.UTC,
			anchor:   parseIn(t, time.UTC, "2025-01-01T00:00:00Z"),
			now:      parseIn(t, time.UTC, "2025-02-28T23:59:01Z"),
			wantUTC:  "2025-03-31T23:59:00Z",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := Next(Params{
				Pattern:   tc.pattern,
				Schedules: tc.schedule,
				Anchor:    tc.anchor,
				Now:       tc.now,
			}, tc.loc)
			require.NoError(t, err)
			require.True(t, ok)
			want, err := time.Parse(time.RFC3339, tc.wantUTC)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s want %s", got.Format(time.RFC3339), want.Format(time.RFC3339))
		})
	}
}

func TestNext_DayNumberSkipsFebruary(t *testing.T) {
	pattern := &entities.DaysPattern{Kind: entities.PatternDayNumber, DayNumbers: []int{31}}
	schedule := entities.ScheduleList{{Hour: 12, Minute: 0}}
	anchor := parseIn(t, time.UTC, "2025-01-01T00:00:00Z")
	now := parseIn(t, time.UTC, "2025-01-31T12:00:01Z")

	got, ok, err := Next(Params{Pattern: pattern, Schedules: schedule, Anchor: anchor, Now: now}, time.UTC)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 31, got.Day())
}

func TestNext_YearDateSkipsNonLeapFeb29(t *testing.T) {
	pattern := &entities.DaysPattern{Kind: entities.PatternYearDate, Month: 2, Day: 29}
	schedule := entities.ScheduleList{{Hour: 0, Minute: 0}}
	anchor := parseIn(t, time.UTC, "2020-01-01T00:00:00Z")
	now := parseIn(t, time.UTC, "2025-01-01T00:00:00Z")

	got, ok, err := Next(Params{Pattern: pattern, Schedules: schedule, Anchor: anchor, Now: now}, time.UTC)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2028, got.Year())
	assert.Equal(t, time.February, got.Month())
	assert.Equal(t, 29, got.Day())
}

func TestNext_MonthlyIntervalClipsShortMonths(t *testing.T) {
	pattern := &entities.DaysPattern{Kind: entities.PatternInterval, IntervalValue: 1, IntervalUnit: entities.IntervalMonths}
	schedule := entities.ScheduleList{{Hour: 9, Minute: 0}}
	anchor := parseIn(t, time.UTC, "2025-01-31T00:00:00Z")
	now := parseIn(t, time.UTC, "2025-01-31T09:00:01Z")

	got, ok, err := Next(Params{Pattern: pattern, Schedules: schedule, Anchor: anchor, Now: now}, time.UTC)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.February, got.Month())
	assert.Equal(t, 28, got.Day())
}

func TestNext_ExcludedInstantIsSkipped(t *testing.T) {
	pattern := &entities.DaysPattern{Kind: entities.PatternInterval, IntervalValue: 1, IntervalUnit: entities.IntervalDays}
	schedule := entities.ScheduleList{{Hour: 9, Minute: 0}}
	anchor := parseIn(t, time.UTC, "2025-01-01T00:00:00Z")
	now := parseIn(t, time.UTC, "2025-01-01T00:00:00Z")
	excluded := parseIn(t, time.UTC, "2025-01-01T09:00:00Z")

	got, ok, err := Next(Params{Pattern: pattern, Schedules: schedule, Anchor: anchor, Now: now, Excluded: &excluded}, time.UTC)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Day())
}

func TestNext_InvalidPatternReturnsError(t *testing.T) {
	pattern := &entities.DaysPattern{Kind: entities.PatternInterval, IntervalValue: 0, IntervalUnit: entities.IntervalDays}
	_, _, err := Next(Params{
		Pattern:   pattern,
		Schedules: entities.ScheduleList{{Hour: 9, Minute: 0}},
		Anchor:    time.Now(),
		Now:       time.Now(),
	}, time.UTC)
	assert.ErrorIs(t, err, entities.ErrInvalidPattern)
}

func parseIn(t *testing.T, loc *time.Location, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed.In(loc)
}
