package matrix

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/transitstream/timetables/business/data/timetable"
)

// LoadTrips assembles the matrix builder's input for a set of Routes
// (chosen by §4.6 arbitration) and a date: every Trip whose Calendar
// operates on that date (§4.1), joined with its Route, StopTimes and
// Notes so Build never has to reach back into the store.
func LoadTrips(db *sqlx.DB, routes []timetable.Route, date time.Time) ([]*Trip, error) {
	calendarCache := make(map[int64]*timetable.Calendar)
	getCalendar := func(id int64) (*timetable.Calendar, error) {
		if c, ok := calendarCache[id]; ok {
			return c, nil
		}
		c, err := timetable.GetCalendar(db, id)
		if err != nil {
			return nil, err
		}
		calendarCache[id] = c
		return c, nil
	}

	var trips []*Trip
	for _, route := range routes {
		rows, err := timetable.GetTripsForRoute(db, route.ID)
		if err != nil {
			return nil, fmt.Errorf("loading trips for route %d: %w", route.ID, err)
		}
		for i := range rows {
			row := rows[i]
			calendar, err := getCalendar(row.CalendarID)
			if err != nil {
				return nil, fmt.Errorf("loading calendar %d: %w", row.CalendarID, err)
			}
			if !timetable.Operates(calendar, date) {
				continue
			}

			stopTimes, err := timetable.GetStopTimesForTrip(db, row.ID)
			if err != nil {
				return nil, fmt.Errorf("loading stop times for trip %d: %w", row.ID, err)
			}
			notes, err := timetable.GetNotesForTrip(db, row.ID)
			if err != nil {
				return nil, fmt.Errorf("loading notes for trip %d: %w", row.ID, err)
			}

			trips = append(trips, &Trip{
				ID:                row.ID,
				Route:             route,
				OperatorID:        row.OperatorID,
				TicketMachineCode: row.TicketMachineCode,
				JourneyPattern:    row.JourneyPattern,
				Destination:       row.Destination,
				Inbound:           row.Inbound,
				Start:             row.Start,
				End:               row.End,
				StopTimes:         toMatrixStopTimes(stopTimes),
				Notes:             notes,
			})
		}
	}
	return trips, nil
}

func toMatrixStopTimes(rows []timetable.StopTime) []StopTime {
	out := make([]StopTime, len(rows))
	for i, st := range rows {
		key := ""
		switch {
		case st.StopID != nil:
			key = fmt.Sprintf("id:%d", *st.StopID)
		case st.StopCode != nil:
			key = *st.StopCode
		}
		out[i] = StopTime{
			StopKey:      key,
			TimingStatus: st.TimingStatus,
			Arrival:      st.Arrival,
			Departure:    st.Departure,
			PickUp:       st.PickUp,
			SetDown:      st.SetDown,
		}
	}
	return out
}
