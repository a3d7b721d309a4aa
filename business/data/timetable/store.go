package timetable

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// IngestTrip bundles a Trip with its StopTimes as the unit the ingestion
// coordinator hands to the store after a parser has produced the
// intermediate model and the coordinator has resolved it to concrete
// entities.
type IngestTrip struct {
	Trip      Trip
	StopTimes []StopTime
	NoteIDs   []int64
}

// BulkReplaceRouteTrips implements the identity-preservation rule in §4.2:
// a Route's trips may be rewritten in place only if the trip count matches
// and the trips line up in the same Start order as what's already stored;
// otherwise the existing Trips (and cascading StopTimes) are deleted and
// the new set is inserted fresh, since downstream subscribers such as
// live-tracking journeys reference Trip IDs and a mismatched rewrite would
// silently reassign a trip's identity to the wrong journey.
func BulkReplaceRouteTrips(tx *sqlx.Tx, routeID int64, newTrips []IngestTrip) error {
	existing, err := getTripsForRouteTx(tx, routeID)
	if err != nil {
		return fmt.Errorf("loading existing trips for route %d: %w", routeID, err)
	}

	if canRewriteInPlace(existing, newTrips) {
		return rewriteTripsInPlace(tx, existing, newTrips)
	}

	if err := DeleteTripsForRoute(tx, routeID); err != nil {
		return fmt.Errorf("deleting prior trips for route %d: %w", routeID, err)
	}
	return insertTripsWithStopTimes(tx, routeID, newTrips, false)
}

// canRewriteInPlace reports whether existing and newTrips have the same
// count and the same ordered Start offsets, the exact condition named in
// §4.2.
func canRewriteInPlace(existing []Trip, newTrips []IngestTrip) bool {
	if len(existing) != len(newTrips) {
		return false
	}
	for i, e := range existing {
		if e.Start != newTrips[i].Trip.Start {
			return false
		}
	}
	return true
}

// rewriteTripsInPlace updates each existing Trip row with the new Trip's
// fields while preserving its ID, then replaces its StopTimes by sequence.
func rewriteTripsInPlace(tx *sqlx.Tx, existing []Trip, newTrips []IngestTrip) error {
	for i, e := range existing {
		updated := newTrips[i].Trip
		updated.ID = e.ID
		if err := updateTripInPlace(tx, &updated); err != nil {
			return fmt.Errorf("updating trip %d in place: %w", e.ID, err)
		}
		if _, err := tx.Exec(tx.Rebind("delete from stop_time where trip_id = ?"), e.ID); err != nil {
			return fmt.Errorf("clearing stop times for trip %d: %w", e.ID, err)
		}
		stopTimes := make([]*StopTime, len(newTrips[i].StopTimes))
		for j := range newTrips[i].StopTimes {
			st := newTrips[i].StopTimes[j]
			st.TripID = e.ID
			stopTimes[j] = &st
		}
		if err := recordStopTimesRetryOnConflict(tx, e.ID, stopTimes); err != nil {
			return err
		}
		if err := relinkTripNotes(tx, e.ID, newTrips[i].NoteIDs); err != nil {
			return err
		}
	}
	return nil
}

// relinkTripNotes replaces a Trip's trip_note links with noteIDs.
func relinkTripNotes(tx *sqlx.Tx, tripID int64, noteIDs []int64) error {
	if _, err := tx.Exec(tx.Rebind("delete from trip_note where trip_id = ?"), tripID); err != nil {
		return fmt.Errorf("clearing notes for trip %d: %w", tripID, err)
	}
	for _, noteID := range noteIDs {
		if err := LinkTripNote(tx, tripID, noteID); err != nil {
			return fmt.Errorf("linking note %d to trip %d: %w", noteID, tripID, err)
		}
	}
	return nil
}

func updateTripInPlace(tx *sqlx.Tx, t *Trip) error {
	statement := `update trip set
			calendar_id = :calendar_id,
			inbound = :inbound,
			start_seconds = :start_seconds,
			end_seconds = :end_seconds,
			destination = :destination,
			ticket_machine_code = :ticket_machine_code,
			vehicle_journey_code = :vehicle_journey_code,
			block_id = :block_id,
			vehicle_type_id = :vehicle_type_id,
			garage_id = :garage_id,
			operator_id = :operator_id,
			journey_pattern = :journey_pattern
		where id = :id`
	statement = tx.Rebind(statement)
	_, err := tx.NamedExec(statement, t)
	return err
}

// insertTripsWithStopTimes inserts a full fresh set of Trips and their
// StopTimes for a Route, retrieving each Trip's new ID before inserting its
// StopTimes since the FK is required. alreadyRetried guards against looping
// forever on a conflict that a single delete-and-retry cannot resolve, per
// §7's "retry once, then abort the file" integrity-error strategy.
func insertTripsWithStopTimes(tx *sqlx.Tx, routeID int64, newTrips []IngestTrip, alreadyRetried bool) error {
	for i := range newTrips {
		t := newTrips[i].Trip
		t.RouteID = routeID
		id, err := insertTripReturningID(tx, &t)
		if err != nil {
			return recoverFromIntegrityConflict(tx, routeID, newTrips, alreadyRetried, err)
		}
		stopTimes := make([]*StopTime, len(newTrips[i].StopTimes))
		for j := range newTrips[i].StopTimes {
			st := newTrips[i].StopTimes[j]
			st.TripID = id
			stopTimes[j] = &st
		}
		if err := RecordStopTimes(tx, stopTimes); err != nil {
			return recoverFromIntegrityConflict(tx, routeID, newTrips, alreadyRetried, err)
		}
		if err := relinkTripNotes(tx, id, newTrips[i].NoteIDs); err != nil {
			return recoverFromIntegrityConflict(tx, routeID, newTrips, alreadyRetried, err)
		}
	}
	return nil
}

func insertTripReturningID(tx *sqlx.Tx, t *Trip) (int64, error) {
	statement := `insert into trip (
			route_id, calendar_id, inbound, start_seconds, end_seconds, destination,
			ticket_machine_code, vehicle_journey_code, block_id, vehicle_type_id,
			garage_id, operator_id, journey_pattern)
		values (
			:route_id, :calendar_id, :inbound, :start_seconds, :end_seconds, :destination,
			:ticket_machine_code, :vehicle_journey_code, :block_id, :vehicle_type_id,
			:garage_id, :operator_id, :journey_pattern)
		returning id`
	statement = tx.Rebind(statement)
	rows, err := tx.NamedQuery(statement, t)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return 0, fmt.Errorf("insert of trip returned no id")
	}
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// recoverFromIntegrityConflict implements §7's Integrity error strategy:
// delete the conflicting prior rows for the Route and retry once; if it
// fails again, surface the error so the caller aborts the file.
func recoverFromIntegrityConflict(tx *sqlx.Tx, routeID int64, newTrips []IngestTrip, alreadyRetried bool, cause error) error {
	if alreadyRetried {
		return fmt.Errorf("integrity conflict persisted after retry for route %d: %w", routeID, cause)
	}
	if err := DeleteTripsForRoute(tx, routeID); err != nil {
		return fmt.Errorf("clearing route %d after integrity conflict: %w", routeID, err)
	}
	return insertTripsWithStopTimes(tx, routeID, newTrips, true)
}

func recordStopTimesRetryOnConflict(tx *sqlx.Tx, tripID int64, stopTimes []*StopTime) error {
	if err := RecordStopTimes(tx, stopTimes); err != nil {
		if _, delErr := tx.Exec(tx.Rebind("delete from stop_time where trip_id = ?"), tripID); delErr != nil {
			return fmt.Errorf("clearing stop times for trip %d after conflict: %w", tripID, delErr)
		}
		if err := RecordStopTimes(tx, stopTimes); err != nil {
			return fmt.Errorf("stop time insert failed after retry for trip %d: %w", tripID, err)
		}
	}
	return nil
}

func getTripsForRouteTx(tx *sqlx.Tx, routeID int64) ([]Trip, error) {
	var trips []Trip
	err := tx.Select(&trips, tx.Rebind(
		"select * from trip where route_id = ? order by start_seconds"), routeID)
	return trips, err
}
