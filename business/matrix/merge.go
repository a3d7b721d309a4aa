package matrix

import (
	"sort"

	"github.com/transitstream/timetables/foundation/timeoffset"
)

const fifteenMinutes = timeoffset.TimeOffset(15 * 60)

// mergeSplitTrips implements §4.7's split through-journey merge: two
// consecutive trips collapse into one displayed trip when they share a
// line and operator, the first trip's last stop is the second's first, the
// result isn't circular, the gap between them is within 15 minutes, and
// either the route differs (a genuine through-journey split across two
// timetable versions) or the ticket machine code matches (the same
// physical working continuing under one route). A merge concatenates the
// stop-time lists, dropping the duplicated handover stop after handing its
// pick-up flag to the first trip's final cell, and extends end.
//
// Matching bustimes/timetables.py's Grouping.merge_split_trips, a trip may
// absorb more than one follow-on trip in a single pass (A+B, then A+B+C),
// and adjacent trips that are exact duplicates (same start, end,
// destination and stop count) are dropped outright rather than merged.
func mergeSplitTrips(trips []*Trip) []*Trip {
	sort.SliceStable(trips, func(i, j int) bool { return trips[i].Start < trips[j].Start })

	dropped := make(map[*Trip]bool, len(trips))
	var prev *Trip
	for i, a := range trips {
		if len(a.StopTimes) == 0 {
			continue
		}
		if prev != nil && isDuplicateOf(prev, a) {
			dropped[a] = true
			continue
		}
		prev = a

		destination := a.StopTimes[len(a.StopTimes)-1].StopKey
		if a.StopTimes[0].StopKey == destination {
			continue // circular: don't try to extend it
		}

		for j := i + 1; j < len(trips); j++ {
			b := trips[j]
			if dropped[b] || len(b.StopTimes) == 0 {
				continue
			}
			if !canMerge(a, b, destination) {
				continue
			}
			destination = b.StopTimes[len(b.StopTimes)-1].StopKey
			last := len(a.StopTimes) - 1
			a.StopTimes[last].Departure = b.StopTimes[0].Departure
			a.StopTimes[last].PickUp = b.StopTimes[0].PickUp
			a.StopTimes = append(a.StopTimes, b.StopTimes[1:]...)
			a.End = b.End
			dropped[b] = true
		}
	}

	out := make([]*Trip, 0, len(trips))
	for _, t := range trips {
		if !dropped[t] {
			out = append(out, t)
		}
	}
	return out
}

func isDuplicateOf(prev, a *Trip) bool {
	return prev.Start == a.Start && prev.End == a.End &&
		equalOptionalString(prev.Destination, a.Destination) &&
		len(prev.StopTimes) == len(a.StopTimes)
}

func canMerge(a, b *Trip, destination string) bool {
	if a.Route.LineName != b.Route.LineName {
		return false
	}
	if a.Route.ID == b.Route.ID && !equalOptionalString(a.TicketMachineCode, b.TicketMachineCode) {
		return false
	}
	if !equalOptionalInt64(a.OperatorID, b.OperatorID) {
		return false
	}
	if b.StopTimes[0].StopKey != destination {
		return false
	}
	if b.StopTimes[len(b.StopTimes)-1].StopKey == destination {
		return false // would make the merged trip circular
	}
	gap := b.Start - a.End
	return gap >= 0 && gap <= fifteenMinutes
}

func equalOptionalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalOptionalInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
