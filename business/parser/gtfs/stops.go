package gtfs

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"github.com/transitstream/timetables/business/data/timetable"
)

// stopCSV is stops.txt decoded wholesale, grounded on tidbyt-gtfs's
// StopCSV/ParseStops -- stops.txt is small enough to hold entirely in
// memory rather than stream row by row like the batched readers above.
type stopCSV struct {
	ID   string  `csv:"stop_id"`
	Code string  `csv:"stop_code"`
	Name string  `csv:"stop_name"`
	Lat  float64 `csv:"stop_lat"`
	Lon  float64 `csv:"stop_lon"`
}

// parseStops decodes stops.txt into master-table candidates for
// timetable.UpsertStops; the coordinator (C6) decides which of these are
// new and which already exist by AtcoCode.
func parseStops(r io.Reader) ([]*timetable.Stop, error) {
	var rows []*stopCSV
	if err := gocsv.Unmarshal(bom.NewReader(r), &rows); err != nil {
		return nil, fmt.Errorf("unmarshaling stops.txt: %w", err)
	}
	stops := make([]*timetable.Stop, 0, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		stops = append(stops, &timetable.Stop{
			AtcoCode:   row.ID,
			CommonName: row.Name,
			Latitude:   row.Lat,
			Longitude:  row.Lon,
			Active:     true,
		})
	}
	return stops, nil
}
