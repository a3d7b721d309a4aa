package gtfs

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/matryer/is"
)

func buildFeed(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func simpleFeed(t *testing.T) *zip.Reader {
	return buildFeed(t, map[string]string{
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"WD,1,1,1,1,1,0,0,20260101,20261231\n",
		"calendar_dates.txt": "service_id,date,exception_type\n" +
			"WD,20260601,2\n",
		"routes.txt": "route_id,route_short_name,route_long_name\n" +
			"R1,12,Town Centre\n",
		"trips.txt": "route_id,service_id,trip_id,trip_headsign,direction_id\n" +
			"R1,WD,T1,Town Centre,0\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,08:00:00,08:00:00,STOPA,1\n" +
			"T1,08:10:00,08:11:00,STOPB,2\n",
		"stops.txt": "stop_id,stop_code,stop_name,stop_lat,stop_lon\n" +
			"STOPA,A,Stop A,51.5,-0.1\n" +
			"STOPB,B,Stop B,51.6,-0.2\n",
	})
}

func TestParseSimpleFeed(t *testing.T) {
	is := is.New(t)
	sched, warnings, err := Parse(simpleFeed(t), "feed.zip", Options{})
	is.NoErr(err)
	is.Equal(len(warnings), 0)
	is.Equal(len(sched.Routes), 1)

	route := sched.Routes[0]
	is.Equal(route.LineName, "12")
	is.Equal(len(route.Trips), 1)

	trip := route.Trips[0]
	is.Equal(len(trip.StopTimes), 2)
	is.Equal(trip.StopTimes[0].StopCode, "STOPA")
	is.Equal(trip.StopTimes[1].StopCode, "STOPB")
	is.Equal(trip.StopTimes[1].Arrival.String(), "08:10:00")
	is.Equal(*trip.Destination, "Town Centre")
	is.Equal(trip.Calendar.Weekdays, [7]bool{true, true, true, true, true, false, false})
	is.Equal(len(trip.Calendar.Dates), 1)
	is.True(!trip.Calendar.Dates[0].Operation)
}

func TestParseRouteIDPrefixFilter(t *testing.T) {
	is := is.New(t)
	sched, _, err := Parse(simpleFeed(t), "feed.zip", Options{RouteIDPrefixFilter: "X"})
	is.NoErr(err)
	is.Equal(len(sched.Routes), 0)
}

func TestStopRows(t *testing.T) {
	is := is.New(t)
	stops, err := StopRows(simpleFeed(t))
	is.NoErr(err)
	is.Equal(len(stops), 2)
	is.Equal(stops[0].AtcoCode, "STOPA")
}
