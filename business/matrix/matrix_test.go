package matrix

import (
	"testing"

	"github.com/matryer/is"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/foundation/timeoffset"
)

func offset(h, m int) timeoffset.TimeOffset { return timeoffset.FromHMS(h, m, 0) }

func stopTime(key string, h, m int) StopTime {
	o := offset(h, m)
	return StopTime{StopKey: key, Arrival: &o, Departure: &o, PickUp: true, SetDown: true}
}

func route(id int64, lineName string) timetable.Route {
	return timetable.Route{ID: id, LineName: lineName}
}

func TestBuildSimpleGroupingOrdersRowsAndColumns(t *testing.T) {
	is := is.New(t)
	r := route(1, "X1")
	trips := []*Trip{
		{ID: 2, Route: r, Start: offset(9, 0), End: offset(9, 20), StopTimes: []StopTime{
			stopTime("A", 9, 0), stopTime("B", 9, 10), stopTime("C", 9, 20),
		}},
		{ID: 1, Route: r, Start: offset(8, 0), End: offset(8, 20), StopTimes: []StopTime{
			stopTime("A", 8, 0), stopTime("B", 8, 10), stopTime("C", 8, 20),
		}},
	}

	outbound, inbound := Build(trips)
	is.Equal(len(inbound.Trips), 0)
	is.Equal(len(outbound.Rows), 3)
	is.Equal(outbound.Rows[0].StopKey, "A")
	is.Equal(outbound.Rows[2].StopKey, "C")
	// earlier trip (id 1) should sort into the first column
	is.Equal(outbound.Trips[0].ID, int64(1))
	is.Equal(outbound.Trips[1].ID, int64(2))
}

func TestMergeSplitTripsJoinsThroughJourney(t *testing.T) {
	is := is.New(t)
	r := route(1, "X1")
	a := &Trip{ID: 1, Route: r, Start: offset(8, 0), End: offset(8, 20), StopTimes: []StopTime{
		stopTime("A", 8, 0), stopTime("B", 8, 20),
	}}
	b := &Trip{ID: 2, Route: r, Start: offset(8, 25), End: offset(8, 45), StopTimes: []StopTime{
		stopTime("B", 8, 25), stopTime("C", 8, 45),
	}}

	merged := mergeSplitTrips([]*Trip{a, b})
	is.Equal(len(merged), 1)
	is.Equal(len(merged[0].StopTimes), 3)
	is.Equal(merged[0].StopTimes[1].StopKey, "B")
	is.Equal(int(merged[0].End), int(offset(8, 45)))
}

func TestMergeSplitTripsSkipsWhenGapTooLong(t *testing.T) {
	is := is.New(t)
	r := route(1, "X1")
	a := &Trip{ID: 1, Route: r, Start: offset(8, 0), End: offset(8, 20), StopTimes: []StopTime{
		stopTime("A", 8, 0), stopTime("B", 8, 20),
	}}
	b := &Trip{ID: 2, Route: r, Start: offset(8, 50), End: offset(9, 10), StopTimes: []StopTime{
		stopTime("B", 8, 50), stopTime("C", 9, 10),
	}}

	merged := mergeSplitTrips([]*Trip{a, b})
	is.Equal(len(merged), 2)
}

func TestAbbreviateHeadwaysCollapsesRun(t *testing.T) {
	is := is.New(t)
	r := route(1, "X1")
	pattern := "p1"
	dest := "C"
	makeTrip := func(id int64, startHour, startMin int) *Trip {
		return &Trip{
			ID: id, Route: r, JourneyPattern: &pattern, Destination: &dest,
			Start: offset(startHour, startMin), End: offset(startHour, startMin+20),
			StopTimes: []StopTime{stopTime("A", startHour, startMin), stopTime("C", startHour, startMin+20)},
		}
	}
	trips := []*Trip{
		makeTrip(1, 8, 0), makeTrip(2, 8, 20), makeTrip(3, 8, 40), makeTrip(4, 9, 0),
	}

	g := buildGrouping(false, trips)
	is.Equal(len(g.Rows[0].Times), 3) // first, repetition, last
	is.True(g.Rows[0].Times[1].Repetition != nil)
	is.Equal(g.Rows[0].Times[1].Repetition.Colspan, 2)
	is.Equal(g.Rows[0].Times[1].Repetition.Seconds, 1200)
}

func TestComputeColumnFeetGroupsConsecutiveNotes(t *testing.T) {
	is := is.New(t)
	r := route(1, "X1")
	note := timetable.Note{ID: 7, Code: "X", Text: "pick up only"}
	trips := []*Trip{
		{ID: 1, Route: r, Start: offset(8, 0), End: offset(8, 10), StopTimes: []StopTime{stopTime("A", 8, 0), stopTime("B", 8, 10)}, Notes: []timetable.Note{note}},
		{ID: 2, Route: r, Start: offset(8, 20), End: offset(8, 30), StopTimes: []StopTime{stopTime("A", 8, 20), stopTime("B", 8, 30)}, Notes: []timetable.Note{note}},
		{ID: 3, Route: r, Start: offset(8, 40), End: offset(8, 50), StopTimes: []StopTime{stopTime("A", 8, 40), stopTime("B", 8, 50)}},
	}

	g := buildGrouping(false, trips)
	feet := g.ColumnFeet[7]
	is.Equal(len(feet), 2)
	is.Equal(feet[0].Span, 2)
	is.True(feet[0].Note != nil)
	is.Equal(feet[1].Span, 1)
	is.True(feet[1].Note == nil)
}

func TestJourneyPatternsMatchRequiresSameRouteAndDuration(t *testing.T) {
	is := is.New(t)
	r := route(1, "X1")
	p1 := "p1"
	dest := "C"
	a := &Trip{Route: r, JourneyPattern: &p1, Destination: &dest, Start: offset(8, 0), End: offset(8, 20)}
	b := &Trip{Route: r, JourneyPattern: &p1, Destination: &dest, Start: offset(9, 0), End: offset(9, 20)}
	c := &Trip{Route: r, JourneyPattern: &p1, Destination: &dest, Start: offset(9, 0), End: offset(9, 30)}

	is.True(journeyPatternsMatch(a, b))
	is.True(!journeyPatternsMatch(a, c))
}
