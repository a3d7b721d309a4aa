package timetable

import (
	"github.com/jmoiron/sqlx"

	"github.com/transitstream/timetables/foundation/timeoffset"
)

// TimingStatus is whether a StopTime's times are authoritative (principal)
// or interpolated (other), or merely informational.
type TimingStatus string

const (
	TimingPrincipal TimingStatus = "principal"
	TimingOther     TimingStatus = "other"
	TimingInfo      TimingStatus = "info"
)

// StopTime is one stop on a Trip. Either StopID or StopCode identifies the
// stop -- StopCode is used for stops not yet present in the master Stop
// table. Arrival or Departure may be nil, depending on the parser: the
// TransXChange parser leaves the first stop's Arrival and the last stop's
// Departure unset, while the ATCO-CIF parser sets both on the first stop.
type StopTime struct {
	ID           int64                  `db:"id"`
	TripID       int64                  `db:"trip_id"`
	Sequence     int                    `db:"sequence"`
	StopID       *int64                 `db:"stop_id"`
	StopCode     *string                `db:"stop_code"`
	Arrival      *timeoffset.TimeOffset `db:"arrival"`
	Departure    *timeoffset.TimeOffset `db:"departure"`
	TimingStatus TimingStatus           `db:"timing_status"`
	PickUp       bool                   `db:"pick_up"`
	SetDown      bool                   `db:"set_down"`
}

// ArrivalOrDeparture returns Arrival if set, else Departure -- used to
// compute Trip.End per the data model invariant.
func (s *StopTime) ArrivalOrDeparture() timeoffset.TimeOffset {
	if s.Arrival != nil {
		return *s.Arrival
	}
	if s.Departure != nil {
		return *s.Departure
	}
	return timeoffset.Zero
}

// DepartureOrArrival returns Departure if set, else Arrival -- used to
// compute Trip.Start per the data model invariant.
func (s *StopTime) DepartureOrArrival() timeoffset.TimeOffset {
	if s.Departure != nil {
		return *s.Departure
	}
	if s.Arrival != nil {
		return *s.Arrival
	}
	return timeoffset.Zero
}

// RecordStopTimes bulk-inserts StopTimes in sequence order within each
// trip, matching the teacher's RecordStopTime batched-insert shape.
func RecordStopTimes(tx *sqlx.Tx, stopTimes []*StopTime) error {
	if len(stopTimes) == 0 {
		return nil
	}
	statement := `insert into stop_time (
			trip_id, sequence, stop_id, stop_code, arrival, departure,
			timing_status, pick_up, set_down)
		values (
			:trip_id, :sequence, :stop_id, :stop_code, :arrival, :departure,
			:timing_status, :pick_up, :set_down)`
	statement = tx.Rebind(statement)
	_, err := tx.NamedExec(statement, stopTimes)
	return err
}

// GetStopTimesForTrip retrieves a Trip's StopTimes ordered by Sequence.
func GetStopTimesForTrip(db *sqlx.DB, tripID int64) ([]StopTime, error) {
	var stopTimes []StopTime
	err := db.Select(&stopTimes, db.Rebind(
		"select * from stop_time where trip_id = ? order by sequence"), tripID)
	return stopTimes, err
}
