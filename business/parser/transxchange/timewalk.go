package transxchange

import (
	"time"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/business/parser/schedule"
	"github.com/transitstream/timetables/foundation/timeoffset"
)

type walkedStop struct {
	StopRef      string
	TimingStatus timetable.TimingStatus
	Activity     Activity
	Arrival      *time.Duration
	Departure    *time.Duration
}

// walkJourney implements §4.3's time-computation algorithm: walk the
// pattern's timing links accumulating a clock from the VehicleJourney's
// DepartureTime, applying each stop's wait-time, and suppressing emission
// while inside a dead-run. Clock values are plain time.Duration rather than
// wall-clock times so a trip may run past 24h without wrapping; the caller
// converts to timeoffset.TimeOffset at the edge.
func walkJourney(links []JourneyPatternTimingLink, vj VehicleJourney) []walkedStop {
	clock := vj.DepartureTime
	suppressed := vj.StartDeadRunLinkID != ""
	var stops []walkedStop

	for i, link := range links {
		if vj.EndDeadRunLinkID != "" && link.ID == vj.EndDeadRunLinkID {
			suppressed = true
		}

		runTime := link.RunTime
		if override, ok := vj.TimeOverrides[link.ID]; ok {
			runTime = override
		}

		if i == 0 {
			if link.From.WaitTime != nil {
				clock += *link.From.WaitTime
			}
			departure := clock
			if !suppressed {
				stops = append(stops, walkedStop{
					StopRef: link.From.StopRef, TimingStatus: link.From.TimingStatus,
					Activity: link.From.Activity, Departure: &departure,
				})
			}
		}

		clock += runTime
		arrival := clock
		departureAtTo := clock
		if link.To.WaitTime != nil {
			departureAtTo += *link.To.WaitTime
		}

		// Suppression lifts as soon as the Start dead-run link itself has
		// been traversed, so its destination stop -- the trip's first real
		// stop -- is the first one emitted.
		if vj.StartDeadRunLinkID != "" && link.ID == vj.StartDeadRunLinkID {
			suppressed = false
		}

		isLastLink := i == len(links)-1
		if !suppressed {
			ws := walkedStop{StopRef: link.To.StopRef, TimingStatus: link.To.TimingStatus, Activity: link.To.Activity, Arrival: &arrival}
			if !isLastLink {
				d := departureAtTo
				ws.Departure = &d
			}
			stops = append(stops, ws)
		}
		clock = departureAtTo
	}
	return stops
}

// toScheduleStopTimes converts a walked journey into the shared
// schedule.StopTime list, assigning sequence numbers over the stops that
// actually survived dead-run suppression.
func toScheduleStopTimes(stops []walkedStop) []schedule.StopTime {
	out := make([]schedule.StopTime, 0, len(stops))
	for i, s := range stops {
		st := schedule.StopTime{
			Sequence:     i,
			StopCode:     s.StopRef,
			TimingStatus: s.TimingStatus,
			PickUp:       s.Activity == ActivityNormal || s.Activity == ActivityPickUp,
			SetDown:      s.Activity == ActivityNormal || s.Activity == ActivitySetDown,
		}
		if s.Arrival != nil {
			off := timeoffset.FromDuration(*s.Arrival)
			st.Arrival = &off
		}
		if s.Departure != nil {
			off := timeoffset.FromDuration(*s.Departure)
			st.Departure = &off
		}
		out = append(out, st)
	}
	return out
}

// flattenLinks resolves a JourneyPattern's section references into one
// ordered link slice.
func flattenLinks(a *parseArena, jp JourneyPattern) []JourneyPatternTimingLink {
	var links []JourneyPatternTimingLink
	for _, idx := range jp.SectionIdxs {
		links = append(links, a.sections[idx].Links...)
	}
	return links
}
