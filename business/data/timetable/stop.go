package timetable

import "github.com/jmoiron/sqlx"

// Stop is an external entity (the master stop list); the core model only
// references it by AtcoCode, but can create one on the fly for stops not
// yet known (e.g. from a GTFS stops.txt import).
type Stop struct {
	ID         int64   `db:"id"`
	AtcoCode   string  `db:"atco_code"`
	CommonName string  `db:"common_name"`
	Latitude   float64 `db:"latitude"`
	Longitude  float64 `db:"longitude"`
	Active     bool    `db:"active"`
}

// UpsertStops bulk upserts Stops by AtcoCode, as used by the GTFS parser
// when stops.txt references stops absent from the master list.
func UpsertStops(tx *sqlx.Tx, stops []*Stop) error {
	if len(stops) == 0 {
		return nil
	}
	statement := `insert into stop (atco_code, common_name, latitude, longitude, active)
		values (:atco_code, :common_name, :latitude, :longitude, :active)
		on conflict (atco_code) do update set
			common_name = excluded.common_name,
			latitude = excluded.latitude,
			longitude = excluded.longitude`
	statement = tx.Rebind(statement)
	_, err := tx.NamedExec(statement, stops)
	return err
}

// ReactivateStopsReferencedByCurrentRoutes sets Active = true for every
// Stop referenced by a StopTime on a Trip belonging to a current Route,
// the last step of §4.6's per-archive post-processing.
func ReactivateStopsReferencedByCurrentRoutes(tx *sqlx.Tx) error {
	statement := `update stop set active = true where id in (
		select distinct st.stop_id from stop_time st
		join trip t on t.id = st.trip_id
		join route r on r.id = t.route_id
		where (r.start_date is null or r.start_date <= now())
			and (r.end_date is null or r.end_date >= now())
			and st.stop_id is not null
	)`
	_, err := tx.Exec(tx.Rebind(statement))
	return err
}
