package gtfs

import (
	"sort"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/business/parser/schedule"
	"github.com/transitstream/timetables/foundation/timeoffset"
)

const batchedStopTimeCount = 250

// stopTimeRowReader batches stop_times.txt rows by trip, mirroring the
// teacher's stopTimeRowReader batching shape -- generalised from
// accumulating a flat insert batch to grouping by TripID, since the
// intermediate model needs each Trip's StopTimes gathered before it can be
// handed to the coordinator.
type stopTimeRowReader struct {
	rowCount int
	byTrip   map[string][]schedule.StopTime
}

func newStopTimeRowReader() *stopTimeRowReader {
	return &stopTimeRowReader{byTrip: make(map[string][]schedule.StopTime)}
}

func (r *stopTimeRowReader) addRow(p *fileParser) error {
	tripID := p.getString("trip_id", false)
	st := schedule.StopTime{
		Sequence:     p.getInt("stop_sequence", false),
		StopCode:     p.getString("stop_id", false),
		TimingStatus: timetable.TimingPrincipal,
		PickUp:       p.getInt("pickup_type", true) != 1,
		SetDown:      p.getInt("drop_off_type", true) != 1,
	}
	// timepoint==0 marks an interpolated (approximate) time; GTFS defaults
	// every stop_time to exact (1) when the column is absent.
	if p.getString("timepoint", true) == "0" {
		st.TimingStatus = timetable.TimingOther
	}
	if d, ok := p.getGTFSTime("arrival_time", true); ok {
		off := timeoffset.FromDuration(d)
		st.Arrival = &off
	}
	if d, ok := p.getGTFSTime("departure_time", true); ok {
		off := timeoffset.FromDuration(d)
		st.Departure = &off
	}
	r.byTrip[tripID] = append(r.byTrip[tripID], st)
	r.rowCount++
	if r.rowCount%batchedStopTimeCount == 0 {
		// no-op flush point; unlike the teacher's flat INSERT batch this
		// reader holds state in memory for the whole file since trips must
		// be assembled before handoff, but the periodic check is kept to
		// document where a streaming writer would flush.
		return nil
	}
	return nil
}

func (r *stopTimeRowReader) flush() error {
	for tripID := range r.byTrip {
		stops := r.byTrip[tripID]
		sort.Slice(stops, func(i, j int) bool { return stops[i].Sequence < stops[j].Sequence })
		r.byTrip[tripID] = stops
	}
	return nil
}
