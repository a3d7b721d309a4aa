// Package atcocif parses ATCO-CIF fixed-width timetable records (§4.4) into
// the shared schedule.Schedule intermediate model. Record-type dispatch on
// the 2-byte tag mirrors the teacher's gtfsFileParser/gtfsRowReader
// filename-keyed dispatch, generalised from CSV files to fixed-width lines
// within one archive member.
package atcocif

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/business/parser/schedule"
	"github.com/transitstream/timetables/foundation/fixedwidth"
)

// Warning is a non-fatal condition raised while parsing: an unrecognised
// note variant, or a record encountered outside its expected context.
type Warning struct {
	Line   int
	Reason string
}

// SourceNameFromFilename applies §4.4's Source heuristic: "ulb" anywhere in
// the archive filename (case-insensitive) names the ULB source, else MET.
func SourceNameFromFilename(filename string) string {
	if strings.Contains(strings.ToLower(filename), "ulb") {
		return "ULB"
	}
	return "MET"
}

type tripAccumulator struct {
	weekdays    [7]bool
	startDate   time.Time
	endDate     *time.Time
	exceptions  []timetable.CalendarDate
	inbound     bool
	stopTimes   []schedule.StopTime
	notes       []schedule.Note
	destination string
}

func newRouteKey(operatorCode, lineName string) string {
	return strings.ToUpper(operatorCode + lineName)
}

// Parse reads one ATCO-CIF member (a single fixed-width text stream) and
// reduces it to a schedule.Schedule, one Route per distinct (operator, line)
// QD key encountered.
func Parse(r io.Reader, filename string) (*schedule.Schedule, []Warning, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256), 1<<20)

	routes := map[string]*schedule.Route{}
	var order []string
	var currentRouteKey string
	var current *tripAccumulator
	var warnings []Warning
	lastWasQS, lastWasQI := false, false
	lineNo := 0

	finalizeTrip := func() {
		if current == nil || currentRouteKey == "" {
			current = nil
			return
		}
		route := routes[currentRouteKey]
		trip := schedule.Trip{
			Inbound: current.inbound,
			Calendar: schedule.Calendar{
				Weekdays: current.weekdays,
				Start:    current.startDate,
				End:      current.endDate,
				Dates:    current.exceptions,
			},
			StopTimes: current.stopTimes,
			Notes:     current.notes,
		}
		if current.destination != "" {
			dest := current.destination
			trip.Destination = &dest
		}
		route.Trips = append(route.Trips, trip)
		current = nil
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) < 2 {
			continue
		}
		line := fixedwidth.NewLine(filename, lineNo, append([]byte(nil), raw...))
		tag := line.Tag()

		switch tag {
		case "QD":
			finalizeTrip()
			operatorCode := line.Field(3, 7)
			lineName := line.Field(7, 11)
			description := line.Field(12, len(raw))
			key := newRouteKey(operatorCode, lineName)
			currentRouteKey = key
			if _, exists := routes[key]; !exists {
				desc := description
				routes[key] = &schedule.Route{
					Code:                key,
					ServiceCode:         key,
					LineName:            lineName,
					OutboundDescription: &desc,
				}
				order = append(order, key)
			}
			lastWasQS, lastWasQI = false, false

		case "QS":
			finalizeTrip()
			mask := line.WeekdayMask(29, 36)
			start := line.Date(13, 21)
			end := line.Date(21, 29)
			direction := line.Field(64, 65)
			var startDate time.Time
			if start != nil {
				startDate = *start
			}
			current = &tripAccumulator{
				weekdays:  mask,
				startDate: startDate,
				endDate:   end,
				inbound:   strings.EqualFold(direction, "I"),
			}
			lastWasQS, lastWasQI = true, false

		case "QE":
			if current != nil {
				start := line.Date(2, 10)
				end := line.Date(10, 18)
				operates := line.Field(18, 19) == "1"
				if start != nil {
					rangeEnd := *start
					if end != nil {
						rangeEnd = *end
					}
					current.exceptions = append(current.exceptions, timetable.CalendarDate{
						Range:     timetable.DateRange{Start: *start, End: rangeEnd},
						Operation: operates,
					})
				}
			}
			lastWasQS, lastWasQI = false, false

		case "QO":
			if current != nil {
				stop := line.Field(2, 14)
				hhmm := line.HHMM(14, 18)
				arrival, departure := hhmm, hhmm
				current.stopTimes = append(current.stopTimes, schedule.StopTime{
					Sequence: 0, StopCode: stop,
					Arrival: &arrival, Departure: &departure,
					TimingStatus: timetable.TimingPrincipal, PickUp: true, SetDown: true,
				})
			}
			lastWasQS, lastWasQI = false, false

		case "QI":
			if current != nil {
				stop := line.Field(2, 14)
				arrival := line.HHMM(14, 18)
				departure := line.HHMM(18, 22)
				status := line.Field(26, 28)
				timing := timetable.TimingOther
				if status == "T1" {
					timing = timetable.TimingPrincipal
				}
				current.stopTimes = append(current.stopTimes, schedule.StopTime{
					Sequence: len(current.stopTimes), StopCode: stop,
					Arrival: &arrival, Departure: &departure,
					TimingStatus: timing, PickUp: true, SetDown: true,
				})
			}
			lastWasQS, lastWasQI = false, true

		case "QT":
			if current != nil {
				stop := line.Field(2, 14)
				arrival := line.HHMM(14, 18)
				current.stopTimes = append(current.stopTimes, schedule.StopTime{
					Sequence: len(current.stopTimes), StopCode: stop,
					Arrival: &arrival, TimingStatus: timetable.TimingPrincipal,
					PickUp: true, SetDown: true,
				})
				current.destination = stop
			}
			finalizeTrip()
			lastWasQS, lastWasQI = false, false

		case "QN":
			text := line.Field(2, len(raw))
			switch {
			case lastWasQI && current != nil && len(current.stopTimes) > 0:
				last := &current.stopTimes[len(current.stopTimes)-1]
				switch {
				case isPickUpOnlyNote(text):
					last.PickUp, last.SetDown = true, false
				case isSetDownOnlyNote(text):
					last.PickUp, last.SetDown = false, true
				default:
					warnings = append(warnings, Warning{lineNo, "unrecognised stop-level note variant: " + text})
					current.notes = append(current.notes, schedule.Note{Code: line.Field(2, 7), Text: line.Field(7, len(raw))})
				}
			case lastWasQS && current != nil:
				code := line.Field(2, 7)
				noteText := line.Field(7, len(raw))
				current.notes = append(current.notes, schedule.Note{Code: code, Text: noteText})
			default:
				warnings = append(warnings, Warning{lineNo, "QN record outside QS/QI context"})
			}
		}
	}
	finalizeTrip()
	if err := scanner.Err(); err != nil {
		return nil, warnings, err
	}

	out := &schedule.Schedule{SourceFile: filename}
	for _, key := range order {
		out.Routes = append(out.Routes, *routes[key])
	}
	return out, warnings, nil
}
