package gtfs

import (
	"time"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/business/parser/schedule"
)

// calendarRowReader builds one schedule.Calendar per service_id from
// calendar.txt.
type calendarRowReader struct {
	calendars map[string]*schedule.Calendar
}

func newCalendarRowReader() *calendarRowReader {
	return &calendarRowReader{calendars: make(map[string]*schedule.Calendar)}
}

func (r *calendarRowReader) addRow(p *fileParser) error {
	serviceID := p.getString("service_id", false)
	cal := &schedule.Calendar{
		Weekdays: [7]bool{
			p.getInt("monday", false) == 1,
			p.getInt("tuesday", false) == 1,
			p.getInt("wednesday", false) == 1,
			p.getInt("thursday", false) == 1,
			p.getInt("friday", false) == 1,
			p.getInt("saturday", false) == 1,
			p.getInt("sunday", false) == 1,
		},
	}
	if start, ok := p.getGTFSDate("start_date", false); ok {
		cal.Start = start
	}
	if end, ok := p.getGTFSDate("end_date", false); ok {
		cal.End = &end
	}
	r.calendars[serviceID] = cal
	return nil
}

func (r *calendarRowReader) flush() error { return nil }

// calendarDateRowReader layers calendar_dates.txt exceptions onto the
// calendars map, creating a bare entry for any service_id calendar.txt
// never mentioned (a calendar_dates-only service), the same semantics as §4.1.
type calendarDateRowReader struct {
	calendars map[string]*schedule.Calendar
}

func (r *calendarDateRowReader) addRow(p *fileParser) error {
	serviceID := p.getString("service_id", false)
	cal, ok := r.calendars[serviceID]
	if !ok {
		cal = &schedule.Calendar{}
		r.calendars[serviceID] = cal
	}
	date, ok := p.getGTFSDate("date", false)
	if !ok {
		return nil
	}
	exceptionType := p.getInt("exception_type", false)
	cd := timetable.CalendarDate{Range: timetable.DateRange{Start: date, End: date}}
	switch exceptionType {
	case 1:
		cd.Operation, cd.Special = true, true
	case 2:
		cd.Operation, cd.Special = false, false
	default:
		return nil
	}
	cal.Dates = append(cal.Dates, cd)
	return nil
}

func (r *calendarDateRowReader) flush() error { return nil }

// LocalOffsetAt computes the single per-calendar UTC offset used for the
// C5 DST approximation (§4.5): the zone offset at local midday of
// calendarStart, adapted directly from scheduletime.go's
// getDLSTransitionSeconds/MakeScheduleTime -- that file already solves
// "seconds since midnight plus DST correction," the exact shape of a
// UTC-feed-to-local conversion, just applied once per calendar instead of
// once per schedule slice.
func LocalOffsetAt(calendarStart time.Time, loc *time.Location) time.Duration {
	midday := time.Date(calendarStart.Year(), calendarStart.Month(), calendarStart.Day(),
		12, 0, 0, 0, loc)
	_, offsetSeconds := midday.Zone()
	return time.Duration(offsetSeconds) * time.Second
}
