// Package gtfs parses a GTFS static feed zip into the shared intermediate
// schedule model, generalising the teacher's zip-walking, file-dispatch,
// and batched-reader structure in app/gtfs-loader/gtfsmanager from a
// direct-to-Postgres loader into a pure parser returning schedule.Schedule.
package gtfs

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/business/parser/schedule"
)

// Warning records a non-fatal condition encountered while parsing, the
// GTFS analogue of the transxchange/atcocif Warning types.
type Warning struct {
	File   string
	Reason string
}

// Options configures a Parse call.
type Options struct {
	// RouteIDPrefixFilter, if set, keeps only routes.txt rows whose
	// route_id has this prefix -- feeds that bundle unrelated agencies
	// together are common enough that the coordinator needs a filter
	// rather than importing everything.
	RouteIDPrefixFilter string
	// UTC marks the feed's stop_times as being expressed in UTC seconds
	// from a UTC midnight rather than local clock time, triggering the
	// single-offset DST approximation from LocalOffsetAt.
	UTC bool
	// Location is the feed's local timezone, required when UTC is set.
	Location *time.Location
}

// gtfsFiles mirrors the teacher's gtfsFiles: every zip member this parser
// knows how to read, located once up front.
type gtfsFiles struct {
	calendar     *zip.File
	calendarDate *zip.File
	stopTimes    *zip.File
	trips        *zip.File
	stops        *zip.File
	routes       *zip.File
}

func locateFiles(r *zip.Reader) (*gtfsFiles, error) {
	files := &gtfsFiles{}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch f.Name {
		case "calendar.txt":
			files.calendar = f
		case "calendar_dates.txt":
			files.calendarDate = f
		case "stop_times.txt":
			files.stopTimes = f
		case "trips.txt":
			files.trips = f
		case "stops.txt":
			files.stops = f
		case "routes.txt":
			files.routes = f
		}
	}
	var missing []string
	if files.trips == nil {
		missing = append(missing, "trips.txt")
	}
	if files.stopTimes == nil {
		missing = append(missing, "stop_times.txt")
	}
	if files.stops == nil {
		missing = append(missing, "stops.txt")
	}
	if files.routes == nil {
		missing = append(missing, "routes.txt")
	}
	// calendar.txt is allowed to be absent for a calendar_dates-only feed.
	if len(missing) > 0 {
		return nil, fmt.Errorf("gtfs zip is missing required file(s): %s", strings.Join(missing, ","))
	}
	return files, nil
}

func openCSV(f *zip.File) (io.ReadCloser, error) {
	return f.Open()
}

// Parse reads a GTFS static feed zip and reduces it to the shared
// intermediate schedule model. filename is used only for diagnostics.
func Parse(zr *zip.Reader, filename string, opts Options) (*schedule.Schedule, []Warning, error) {
	files, err := locateFiles(zr)
	if err != nil {
		return nil, nil, err
	}

	calendars := make(map[string]*schedule.Calendar)

	if files.calendar != nil {
		calRR := newCalendarRowReader()
		if err := readFile(files.calendar, calRR); err != nil {
			return nil, nil, err
		}
		calendars = calRR.calendars
	}
	if files.calendarDate != nil {
		dateRR := &calendarDateRowReader{calendars: calendars}
		if err := readFile(files.calendarDate, dateRR); err != nil {
			return nil, nil, err
		}
	}

	stopTimeRR := newStopTimeRowReader()
	if err := readFile(files.stopTimes, stopTimeRR); err != nil {
		return nil, nil, err
	}

	tripRR := newTripRowReader()
	if err := readFile(files.trips, tripRR); err != nil {
		return nil, nil, err
	}

	rc, err := openCSV(files.routes)
	if err != nil {
		return nil, nil, err
	}
	routes, err := parseRoutes(rc)
	rc.Close()
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	for _, t := range tripRR.trips {
		if opts.RouteIDPrefixFilter != "" && !strings.HasPrefix(t.RouteID, opts.RouteIDPrefixFilter) {
			continue
		}
		route, ok := routes[t.RouteID]
		if !ok {
			warnings = append(warnings, Warning{File: "trips.txt", Reason: fmt.Sprintf("trip %s references unknown route %s", t.TripID, t.RouteID)})
			continue
		}
		cal, ok := calendars[t.ServiceID]
		if !ok {
			warnings = append(warnings, Warning{File: "trips.txt", Reason: fmt.Sprintf("trip %s references unknown service %s", t.TripID, t.ServiceID)})
			continue
		}
		stopTimes := stopTimeRR.byTrip[t.TripID]
		if opts.UTC && opts.Location != nil {
			offset := LocalOffsetAt(cal.Start, opts.Location)
			stopTimes = shiftStopTimes(stopTimes, offset)
		}

		tripID := t.TripID
		trip := schedule.Trip{
			Inbound:            t.DirectionID == 1,
			Calendar:           *cal,
			StopTimes:          stopTimes,
			VehicleJourneyCode: &tripID,
		}
		if t.TripHeadsign != "" {
			headsign := t.TripHeadsign
			trip.Destination = &headsign
		}
		if t.BlockID != "" {
			block := t.BlockID
			trip.Block = &block
		}
		route.Trips = append(route.Trips, trip)
	}

	sched := &schedule.Schedule{SourceFile: filename}
	for _, route := range routes {
		if len(route.Trips) == 0 {
			continue
		}
		sched.Routes = append(sched.Routes, *route)
	}
	return sched, warnings, nil
}

func readFile(f *zip.File, reader rowReader) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	parser, err := newFileParser(rc, f.Name)
	if err != nil {
		return err
	}
	return loadRows(parser, reader)
}

// shiftStopTimes applies a constant offset to every arrival/departure,
// the single-offset DST approximation described in §4.5: a feed expressed
// in UTC seconds-from-midnight is corrected once per calendar using the
// zone offset at that calendar's start date, rather than per-stop.
func shiftStopTimes(stops []schedule.StopTime, offset time.Duration) []schedule.StopTime {
	shifted := make([]schedule.StopTime, len(stops))
	for i, st := range stops {
		shifted[i] = st
		if st.Arrival != nil {
			v := st.Arrival.Add(offset)
			shifted[i].Arrival = &v
		}
		if st.Departure != nil {
			v := st.Departure.Add(offset)
			shifted[i].Departure = &v
		}
	}
	return shifted
}

// StopRows decodes stops.txt from an already-open zip, exposed separately
// from Parse since the coordinator upserts the stop master table (§4.6)
// independently of building the schedule.
func StopRows(zr *zip.Reader) ([]*timetable.Stop, error) {
	files, err := locateFiles(zr)
	if err != nil {
		return nil, err
	}
	rc, err := files.stops.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parseStops(rc)
}
