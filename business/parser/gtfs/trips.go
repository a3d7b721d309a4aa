package gtfs

// gtfsTrip is one row of trips.txt, kept in its raw column form until
// assembly time joins it against its Calendar and StopTimes.
type gtfsTrip struct {
	TripID        string
	RouteID       string
	ServiceID     string
	TripHeadsign  string
	DirectionID   int
	BlockID       string
	ShapeID       string
}

type tripRowReader struct {
	trips     []*gtfsTrip
	tripsByID map[string]*gtfsTrip
}

func newTripRowReader() *tripRowReader {
	return &tripRowReader{tripsByID: make(map[string]*gtfsTrip)}
}

func (r *tripRowReader) addRow(p *fileParser) error {
	t := &gtfsTrip{
		TripID:       p.getString("trip_id", false),
		RouteID:      p.getString("route_id", false),
		ServiceID:    p.getString("service_id", false),
		TripHeadsign: p.getString("trip_headsign", true),
		DirectionID:  p.getInt("direction_id", true),
		BlockID:      p.getString("block_id", true),
		ShapeID:      p.getString("shape_id", true),
	}
	r.trips = append(r.trips, t)
	r.tripsByID[t.TripID] = t
	return nil
}

func (r *tripRowReader) flush() error { return nil }
