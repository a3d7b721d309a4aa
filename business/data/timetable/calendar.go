// Package timetable holds the normalized relational model -- Source,
// Operator, Service, Route, Calendar, Trip, StopTime, Note, Block, Stop --
// and the calendar engine (C1) that answers whether a Calendar operates on
// a given date.
package timetable

import (
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/gb"
)

// DateRange is an inclusive start/end pair used by CalendarDate windows and
// by serviced-organisation working-day/holiday windows.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls within the inclusive range.
func (r DateRange) Contains(d time.Time) bool {
	day := truncateToDay(d)
	return !day.Before(truncateToDay(r.Start)) && !day.After(truncateToDay(r.End))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CalendarDate is a date range exclusion or inclusion override layered on
// top of a Calendar's weekday mask.
type CalendarDate struct {
	ID         int64 `db:"id"`
	CalendarID int64 `db:"calendar_id"`
	Range      DateRange
	// Operation is true if the service runs on these dates, false if it is
	// explicitly suppressed.
	Operation bool `db:"operation"`
	// Special marks an inclusive range as overriding exclusions and the
	// weekday mask outright, per the precedence rules in Operates.
	Special bool   `db:"special"`
	Summary string `db:"summary"`
}

// CalendarBankHoliday binds a Calendar to a named bank-holiday concept.
type CalendarBankHoliday struct {
	ID          int64  `db:"id"`
	CalendarID  int64  `db:"calendar_id"`
	BankHoliday string `db:"bank_holiday"` // e.g. "AllBankHolidays", "ChristmasDay", "GoodFriday"
	Operation   bool   `db:"operation"`
}

// ServicedOrganisation is an external schedule (e.g. school term dates)
// referenced by an operating profile.
type ServicedOrganisation struct {
	Code        string
	Name        string
	WorkingDays []DateRange
	Holidays    []DateRange
}

// Calendar represents a weekday mask plus date-range exceptions, bank
// holiday bindings, and a validity window.
type Calendar struct {
	ID      int64      `db:"id"`
	Mon     bool       `db:"mon"`
	Tue     bool       `db:"tue"`
	Wed     bool       `db:"wed"`
	Thu     bool       `db:"thu"`
	Fri     bool       `db:"fri"`
	Sat     bool       `db:"sat"`
	Sun     bool       `db:"sun"`
	Start   time.Time  `db:"start_date"`
	End     *time.Time `db:"end_date"`
	Summary string     `db:"summary"`

	Dates    []CalendarDate       `db:"-"`
	BankHols []CalendarBankHoliday `db:"-"`
}

func (c *Calendar) weekdayBit(d time.Time) bool {
	switch d.Weekday() {
	case time.Monday:
		return c.Mon
	case time.Tuesday:
		return c.Tue
	case time.Wednesday:
		return c.Wed
	case time.Thursday:
		return c.Thu
	case time.Friday:
		return c.Fri
	case time.Saturday:
		return c.Sat
	case time.Sunday:
		return c.Sun
	}
	return false
}

// ukBankHolidays is the shared UK bank-holiday calendar used to materialise
// CalendarBankHoliday bindings into concrete dates. Built once; rickar/cal's
// BusinessCalendar is safe for concurrent read-only IsHoliday lookups.
var ukBankHolidays = buildUKBankHolidays()

func buildUKBankHolidays() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(
		gb.NewYearsDay,
		gb.GoodFriday,
		gb.EasterMonday,
		gb.EarlyMay,
		gb.SpringBank,
		gb.SummerBank,
		gb.ChristmasDay,
		gb.BoxingDay,
	)
	return c
}

// namedHolidays maps the bank-holiday names this module recognises to the
// rickar/cal holiday they materialise to, for lookups narrower than
// "AllBankHolidays".
var namedHolidays = map[string]*cal.Holiday{
	"NewYearsDay": gb.NewYearsDay,
	"GoodFriday":  gb.GoodFriday,
	"EasterMonday": gb.EasterMonday,
	"EarlyMayBankHoliday": gb.EarlyMay,
	"SpringBankHoliday":   gb.SpringBank,
	"SummerBankHoliday":   gb.SummerBank,
	"ChristmasDay":        gb.ChristmasDay,
	"BoxingDay":           gb.BoxingDay,
}

// isBankHoliday reports whether d materialises to the named bank holiday.
// "AllBankHolidays" matches any observed UK bank holiday.
func isBankHoliday(name string, d time.Time) bool {
	if name == "AllBankHolidays" {
		_, observed, _ := ukBankHolidays.IsHoliday(d)
		return observed
	}
	h, ok := namedHolidays[name]
	if !ok {
		// Schema-boundary error per §7: unrecognised bank-holiday name.
		// Substitute a best-effort default of "never matches" rather than
		// aborting the import.
		return false
	}
	actual, _ := h.Calc(d.Year())
	return truncateToDay(actual).Equal(truncateToDay(d))
}

// Operates answers "does Calendar K operate on date D?" per the precedence
// rules in spec §4.1: special inclusive dates beat exclusions, which beat
// bank-holiday exclusions, which beat bank-holiday inclusions, which beat
// the weekday mask.
func Operates(c *Calendar, d time.Time) bool {
	day := truncateToDay(d)
	if day.Before(truncateToDay(c.Start)) {
		return false
	}
	if c.End != nil && day.After(truncateToDay(*c.End)) {
		return false
	}

	var anyExclusion, anySpecialInclusion bool
	for _, cd := range c.Dates {
		if !cd.Range.Contains(day) {
			continue
		}
		if !cd.Operation {
			anyExclusion = true
		} else if cd.Special {
			anySpecialInclusion = true
		}
	}
	if anySpecialInclusion {
		return true
	}
	if anyExclusion {
		return false
	}

	var bhOp, bhExc bool
	for _, bh := range c.BankHols {
		if !isBankHoliday(bh.BankHoliday, day) {
			continue
		}
		if bh.Operation {
			bhOp = true
		} else {
			bhExc = true
		}
	}
	if bhExc {
		return false
	}
	if bhOp {
		return true
	}

	return c.weekdayBit(day)
}

// OperatingOn filters calendars down to those that operate on d.
func OperatingOn(calendars []*Calendar, d time.Time) []*Calendar {
	var result []*Calendar
	for _, c := range calendars {
		if Operates(c, d) {
			result = append(result, c)
		}
	}
	return result
}

// ExpandServicedOrganisation expands an SO reference into ordinary
// CalendarDate rows. operatesOnWorkingDays selects which of the SO's two
// window lists to use; operation is the flag to apply to the resulting
// rows (true = service runs on these dates, false = it does not).
func ExpandServicedOrganisation(so *ServicedOrganisation, operatesOnWorkingDays bool, operation bool) []CalendarDate {
	windows := so.Holidays
	if operatesOnWorkingDays {
		windows = so.WorkingDays
	}
	dates := make([]CalendarDate, 0, len(windows))
	for _, w := range windows {
		dates = append(dates, CalendarDate{
			Range:     w,
			Operation: operation,
			Special:   false,
			Summary:   so.Name,
		})
	}
	return dates
}

// RuleHash computes the deterministic content address of a Calendar's rule
// set, used by the ingestion coordinator's per-run cache to dedupe
// calendars that describe the same operating pattern. Two calendars with
// bit-identical rule sets hash equal. FNV-1a is used rather than a
// cryptographic hash since this is a same-process cache key, not a
// security boundary; no library in the corpus offers a better fit for
// hashing an in-memory struct than the stdlib hash package.
func (c *Calendar) RuleHash() string {
	h := fnv.New64a()
	var b strings.Builder

	b.WriteByte(maskByte(c.Mon))
	b.WriteByte(maskByte(c.Tue))
	b.WriteByte(maskByte(c.Wed))
	b.WriteByte(maskByte(c.Thu))
	b.WriteByte(maskByte(c.Fri))
	b.WriteByte(maskByte(c.Sat))
	b.WriteByte(maskByte(c.Sun))
	b.WriteString("|")
	b.WriteString(c.Start.Format(time.RFC3339))
	b.WriteString("|")
	if c.End != nil {
		b.WriteString(c.End.Format(time.RFC3339))
	}

	dates := append([]CalendarDate(nil), c.Dates...)
	sort.Slice(dates, func(i, j int) bool {
		if !dates[i].Range.Start.Equal(dates[j].Range.Start) {
			return dates[i].Range.Start.Before(dates[j].Range.Start)
		}
		if !dates[i].Range.End.Equal(dates[j].Range.End) {
			return dates[i].Range.End.Before(dates[j].Range.End)
		}
		if dates[i].Operation != dates[j].Operation {
			return !dates[i].Operation
		}
		return !dates[i].Special
	})
	for _, cd := range dates {
		b.WriteString("|")
		b.WriteString(cd.Range.Start.Format(time.RFC3339))
		b.WriteString(",")
		b.WriteString(cd.Range.End.Format(time.RFC3339))
		b.WriteString(",")
		b.WriteByte(maskByte(cd.Operation))
		b.WriteByte(maskByte(cd.Special))
	}

	bankHols := append([]CalendarBankHoliday(nil), c.BankHols...)
	sort.Slice(bankHols, func(i, j int) bool {
		if bankHols[i].BankHoliday != bankHols[j].BankHoliday {
			return bankHols[i].BankHoliday < bankHols[j].BankHoliday
		}
		return !bankHols[i].Operation
	})
	for _, bh := range bankHols {
		b.WriteString("|")
		b.WriteString(bh.BankHoliday)
		b.WriteByte(maskByte(bh.Operation))
	}

	_, _ = h.Write([]byte(b.String()))
	return strings.ToLower(strings.TrimLeft(
		sprintfHex(h.Sum64()), "0"))
}

func maskByte(b bool) byte {
	if b {
		return '1'
	}
	return '0'
}

func sprintfHex(v uint64) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf)
}

// SaveCalendar inserts a new Calendar row, plus its CalendarDate and
// CalendarBankHoliday children, and populates c.ID. Dedup against an
// already-inserted calendar with the same RuleHash is the coordinator's
// job (a per-run cache, since the hash is never persisted); this function
// always performs a fresh insert.
func SaveCalendar(tx *sqlx.Tx, c *Calendar) error {
	statement := tx.Rebind(`insert into calendar (mon, tue, wed, thu, fri, sat, sun, start_date, end_date, summary)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) returning id`)
	if err := tx.QueryRow(statement,
		c.Mon, c.Tue, c.Wed, c.Thu, c.Fri, c.Sat, c.Sun, c.Start, c.End, c.Summary).Scan(&c.ID); err != nil {
		return err
	}
	for i := range c.Dates {
		c.Dates[i].CalendarID = c.ID
		if err := saveCalendarDate(tx, &c.Dates[i]); err != nil {
			return err
		}
	}
	for i := range c.BankHols {
		c.BankHols[i].CalendarID = c.ID
		if err := saveCalendarBankHoliday(tx, &c.BankHols[i]); err != nil {
			return err
		}
	}
	return nil
}

func saveCalendarDate(tx *sqlx.Tx, cd *CalendarDate) error {
	statement := tx.Rebind(`insert into calendar_date
		(calendar_id, start_date, end_date, operation, special, summary)
		values (?, ?, ?, ?, ?, ?) returning id`)
	return tx.QueryRow(statement, cd.CalendarID, cd.Range.Start, cd.Range.End, cd.Operation, cd.Special, cd.Summary).
		Scan(&cd.ID)
}

func saveCalendarBankHoliday(tx *sqlx.Tx, bh *CalendarBankHoliday) error {
	statement := tx.Rebind(`insert into calendar_bank_holiday (calendar_id, bank_holiday, operation)
		values (?, ?, ?) returning id`)
	return tx.QueryRow(statement, bh.CalendarID, bh.BankHoliday, bh.Operation).Scan(&bh.ID)
}

// getCalendarDates and getCalendarBankHolidays scan explicit columns rather
// than db.Select(&dates, "select *...") since CalendarDate.Range is a
// named (not embedded) struct field sqlx cannot flatten automatically.
func getCalendarDates(db *sqlx.DB, calendarID int64) ([]CalendarDate, error) {
	rows, err := db.Query(db.Rebind(`select id, start_date, end_date, operation, special, summary
		from calendar_date where calendar_id = ?`), calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []CalendarDate
	for rows.Next() {
		cd := CalendarDate{CalendarID: calendarID}
		if err := rows.Scan(&cd.ID, &cd.Range.Start, &cd.Range.End, &cd.Operation, &cd.Special, &cd.Summary); err != nil {
			return nil, err
		}
		dates = append(dates, cd)
	}
	return dates, rows.Err()
}

func getCalendarBankHolidays(db *sqlx.DB, calendarID int64) ([]CalendarBankHoliday, error) {
	var bankHols []CalendarBankHoliday
	err := db.Select(&bankHols, db.Rebind(`select id, calendar_id, bank_holiday, operation
		from calendar_bank_holiday where calendar_id = ?`), calendarID)
	return bankHols, err
}

// GetCalendar loads a Calendar and its CalendarDate/CalendarBankHoliday
// children by id, the shape the matrix builder's trip loader needs to call
// Operates against a requested date.
func GetCalendar(db *sqlx.DB, id int64) (*Calendar, error) {
	var c Calendar
	if err := db.Get(&c, db.Rebind("select * from calendar where id = ?"), id); err != nil {
		return nil, err
	}
	dates, err := getCalendarDates(db, id)
	if err != nil {
		return nil, err
	}
	c.Dates = dates
	bankHols, err := getCalendarBankHolidays(db, id)
	if err != nil {
		return nil, err
	}
	c.BankHols = bankHols
	return &c, nil
}

// GetCalendarsSince loads every Calendar created by Sources touched at or
// after since, the seed the coordinator uses to warm its per-run RuleHash
// cache without scanning the whole table on every import.
func GetCalendarsSince(db *sqlx.DB, since time.Time) ([]*Calendar, error) {
	var ids []int64
	err := db.Select(&ids, db.Rebind(`select distinct calendar_id from trip
		join route on route.id = trip.route_id
		join source on source.id = route.source_id
		where source.datetime >= ?`), since)
	if err != nil {
		return nil, err
	}
	calendars := make([]*Calendar, 0, len(ids))
	for _, id := range ids {
		c, err := GetCalendar(db, id)
		if err != nil {
			return nil, err
		}
		calendars = append(calendars, c)
	}
	return calendars, nil
}
