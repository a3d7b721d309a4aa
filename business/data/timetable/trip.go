package timetable

import (
	"github.com/jmoiron/sqlx"

	"github.com/transitstream/timetables/foundation/timeoffset"
)

// Trip is a single scheduled journey. A Trip owns a list of StopTimes
// ordered by Sequence (loaded separately via GetStopTimesForTrip).
type Trip struct {
	ID                 int64             `db:"id"`
	RouteID            int64             `db:"route_id"`
	CalendarID         int64             `db:"calendar_id"`
	Inbound            bool              `db:"inbound"`
	Start              timeoffset.TimeOffset `db:"start_seconds"`
	End                timeoffset.TimeOffset `db:"end_seconds"`
	Destination        *string           `db:"destination"`
	TicketMachineCode  *string           `db:"ticket_machine_code"`
	VehicleJourneyCode *string           `db:"vehicle_journey_code"`
	BlockID            *int64            `db:"block_id"`
	VehicleTypeID      *int64            `db:"vehicle_type_id"`
	GarageID           *int64            `db:"garage_id"`
	OperatorID         *int64            `db:"operator_id"`
	// JourneyPattern groups trips sharing the same stop-sequence template,
	// used by the matrix builder's headway abbreviation pass (§4.7).
	JourneyPattern *string `db:"journey_pattern"`
}

// RecordTrips bulk-inserts Trips, mirroring the teacher's batched-insert
// pattern. Trip.ID is populated by the database's identity column and is
// not read back here; callers that need ids go through
// BulkReplaceRouteTrips instead.
func RecordTrips(tx *sqlx.Tx, trips []*Trip) error {
	if len(trips) == 0 {
		return nil
	}
	statement := `insert into trip (
			route_id, calendar_id, inbound, start_seconds, end_seconds, destination,
			ticket_machine_code, vehicle_journey_code, block_id, vehicle_type_id,
			garage_id, operator_id, journey_pattern)
		values (
			:route_id, :calendar_id, :inbound, :start_seconds, :end_seconds, :destination,
			:ticket_machine_code, :vehicle_journey_code, :block_id, :vehicle_type_id,
			:garage_id, :operator_id, :journey_pattern)`
	statement = tx.Rebind(statement)
	_, err := tx.NamedExec(statement, trips)
	return err
}

// DeleteTripsForRoute removes every Trip (and cascading StopTimes) owned by
// a Route, the "otherwise" branch of §4.2's identity-preservation rule.
func DeleteTripsForRoute(tx *sqlx.Tx, routeID int64) error {
	_, err := tx.Exec(tx.Rebind("delete from trip where route_id = ?"), routeID)
	return err
}

// GetTripsForRoute retrieves every Trip for a Route ordered by Start, the
// shape BulkReplaceRouteTrips needs to compare against a freshly parsed
// trip set for identity preservation.
func GetTripsForRoute(db *sqlx.DB, routeID int64) ([]Trip, error) {
	var trips []Trip
	err := db.Select(&trips, db.Rebind(
		"select * from trip where route_id = ? order by start_seconds"), routeID)
	return trips, err
}
