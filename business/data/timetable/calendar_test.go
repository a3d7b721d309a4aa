package timetable

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// weekdayOnlyCalendar is Mon-Fri from 2024-01-01 to 2024-06-01.
func weekdayOnlyCalendar() *Calendar {
	return &Calendar{
		Mon: true, Tue: true, Wed: true, Thu: true, Fri: true,
		Start: date("2024-01-01"),
		End:   ptr(date("2024-06-01")),
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestOperatesWeekdayMask(t *testing.T) {
	is := is.New(t)
	c := weekdayOnlyCalendar()

	// Monday 2024-01-01 operates
	is.True(Operates(c, date("2024-01-01")))
	// Saturday 2024-01-06 does not
	is.True(!Operates(c, date("2024-01-06")))
	// before start date
	is.True(!Operates(c, date("2023-12-25")))
	// after end date
	is.True(!Operates(c, date("2024-07-01")))
}

func TestOperatesBankHolidayExclusionBeatsMask(t *testing.T) {
	is := is.New(t)
	c := weekdayOnlyCalendar()
	c.BankHols = append(c.BankHols, CalendarBankHoliday{
		BankHoliday: "AllBankHolidays",
		Operation:   false,
	})
	// Good Friday 2024 is 2024-03-29, a Friday within the weekday mask
	is.True(!Operates(c, date("2024-03-29")))
	// a normal Tuesday still operates
	is.True(Operates(c, date("2024-01-02")))
	// Christmas Day 2024 is a Wednesday, but falls after the calendar's end date
	is.True(!Operates(c, date("2024-12-25")))
}

func TestOperatesOrdinaryExclusionBeatsMask(t *testing.T) {
	is := is.New(t)
	c := weekdayOnlyCalendar()
	c.Dates = append(c.Dates, CalendarDate{
		Range:     DateRange{Start: date("2024-03-04"), End: date("2024-03-04")},
		Operation: false,
	})
	is.True(!Operates(c, date("2024-03-04")))
}

func TestOperatesSpecialInclusionBeatsExclusion(t *testing.T) {
	is := is.New(t)
	c := weekdayOnlyCalendar()
	// exclude a Saturday range normally outside the mask, but make it
	// special-included: special wins.
	c.Dates = append(c.Dates,
		CalendarDate{
			Range:     DateRange{Start: date("2024-03-09"), End: date("2024-03-09")},
			Operation: false,
		},
		CalendarDate{
			Range:     DateRange{Start: date("2024-03-09"), End: date("2024-03-09")},
			Operation: true,
			Special:   true,
		},
	)
	is.True(Operates(c, date("2024-03-09")))
}

func TestOperatesBankHolidayInclusionOverridesMaskOff(t *testing.T) {
	is := is.New(t)
	c := weekdayOnlyCalendar()
	// bank holiday that falls on a Saturday normally doesn't run, but an
	// inclusive binding turns it on.
	c.BankHols = append(c.BankHols, CalendarBankHoliday{
		BankHoliday: "BoxingDay",
		Operation:   true,
	})
	boxingDay2026 := date("2026-12-26") // a Saturday in 2026
	c.Start = date("2026-01-01")
	c.End = ptr(date("2026-12-31"))
	is.True(Operates(c, boxingDay2026))
}

func TestRuleHashStableAndDistinguishing(t *testing.T) {
	is := is.New(t)
	a := weekdayOnlyCalendar()
	b := weekdayOnlyCalendar()
	is.Equal(a.RuleHash(), b.RuleHash())

	b.Sat = true
	is.True(a.RuleHash() != b.RuleHash())
}

func TestExpandServicedOrganisation(t *testing.T) {
	is := is.New(t)
	so := &ServicedOrganisation{
		Code: "school1",
		Name: "School Holidays",
		WorkingDays: []DateRange{
			{Start: date("2024-01-08"), End: date("2024-02-09")},
		},
		Holidays: []DateRange{
			{Start: date("2024-02-12"), End: date("2024-02-16")},
		},
	}
	dates := ExpandServicedOrganisation(so, false, false)
	is.Equal(len(dates), 1)
	is.Equal(dates[0].Operation, false)
	is.Equal(dates[0].Range.Start, date("2024-02-12"))
}

func TestSummarise(t *testing.T) {
	is := is.New(t)
	c := weekdayOnlyCalendar()
	is.Equal(Summarise(c), "Monday to Friday")
}
