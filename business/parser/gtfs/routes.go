package gtfs

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"github.com/transitstream/timetables/business/parser/schedule"
)

// routeCSV is routes.txt decoded wholesale, grounded on tidbyt-gtfs's
// RouteCSV/ParseRoutes.
type routeCSV struct {
	ID        string `csv:"route_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
}

// parseRoutes decodes routes.txt into bare schedule.Route shells, keyed by
// route_id; trips are joined on afterwards by parser.go.
func parseRoutes(r io.Reader) (map[string]*schedule.Route, error) {
	var rows []*routeCSV
	if err := gocsv.Unmarshal(bom.NewReader(r), &rows); err != nil {
		return nil, fmt.Errorf("unmarshaling routes.txt: %w", err)
	}
	routes := make(map[string]*schedule.Route, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		lineName := row.ShortName
		if lineName == "" {
			lineName = row.LongName
		}
		routes[row.ID] = &schedule.Route{
			Code:     row.ID,
			LineName: lineName,
		}
	}
	return routes, nil
}
