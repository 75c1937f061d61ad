package services

import (
	"fmt"
	"time"

	"gym-management-system/models"
)

// DailyPeriodKey is the calendar date in loc, "2006-01-02". It names the same day DayRange covers.
func DailyPeriodKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// WeeklyPeriodKey buckets the year in loc into 7-day blocks from Jan 1: "2025-W03".
// Blocks are not ISO weeks and do not align with WeekRange.
func WeeklyPeriodKey(t time.Time, loc *time.Location) string {
	l := t.In(loc)
	week := (l.YearDay()-1)/7 + 1
	return fmt.Sprintf("%d-W%02d", l.Year(), week)
}

func PeriodKey(freq models.ChallengeFrequency, t time.Time, loc *time.Location) string {
	if freq == models.ChallengeWeekly {
		return WeeklyPeriodKey(t, loc)
	}
	return DailyPeriodKey(t, loc)
}

// DayRange is [local midnight, next local midnight).
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	l := t.In(loc)
	start := time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// WeekRange is [Monday 00:00, next Monday 00:00) in loc.
func WeekRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	day, _ := DayRange(t, loc)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

func periodRange(freq models.ChallengeFrequency, t time.Time, loc *time.Location) (time.Time, time.Time) {
	if freq == models.ChallengeWeekly {
		return WeekRange(t, loc)
	}
	return DayRange(t, loc)
}
