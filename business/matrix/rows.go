package matrix

import (
	"sort"

	"github.com/transitstream/timetables/business/data/timetable"
)

// assignRows establishes the Grouping's row order per §4.7. It first tries
// a topological sort of the directed graph where each trip contributes
// edges prev -> next between its successive stop occurrences: a route with
// no repeated stop across any single trip sorts cleanly this way. If that
// graph has a cycle (a trip visits the same stop twice, e.g. a loop
// service), it falls back to the difflib-style longest-trip-first
// insertion bustimes/timetables.py uses: trips are processed longest
// first, each spliced into the growing row list by an LCS alignment
// against the stop keys already known.
//
// On the clean path every row is returned up front, fully built. On the
// cycle path it returns nil -- placeTrip discovers rows incrementally as it
// places each trip's cells, and trips must be processed in the order this
// function leaves them in (longest StopTimes first).
func assignRows(trips []*Trip) []*Row {
	if rows, ok := topoSortRows(trips); ok {
		return rows
	}
	sort.SliceStable(trips, func(i, j int) bool {
		return len(trips[i].StopTimes) > len(trips[j].StopTimes)
	})
	return nil
}

func topoSortRows(trips []*Trip) ([]*Row, bool) {
	var order []string
	seen := make(map[string]bool)
	edges := make(map[string]map[string]bool)
	indegree := make(map[string]int)

	addNode := func(key string) {
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
			indegree[key] = 0
		}
	}
	addEdge := func(from, to string) {
		if edges[from] == nil {
			edges[from] = make(map[string]bool)
		}
		if !edges[from][to] {
			edges[from][to] = true
			indegree[to]++
		}
	}

	meta := make(map[string]timetable.TimingStatus)
	for _, trip := range trips {
		var prev string
		havePrev := false
		for _, st := range trip.StopTimes {
			addNode(st.StopKey)
			if _, ok := meta[st.StopKey]; !ok {
				meta[st.StopKey] = st.TimingStatus
			}
			if havePrev {
				addEdge(prev, st.StopKey)
			}
			prev = st.StopKey
			havePrev = true
		}
	}

	queue := make([]string, 0, len(order))
	for _, k := range order {
		if indegree[k] == 0 {
			queue = append(queue, k)
		}
	}

	var sorted []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		sorted = append(sorted, n)
		// iterate in first-seen order for determinism
		for _, k := range order {
			if edges[n][k] {
				indegree[k]--
				if indegree[k] == 0 {
					queue = append(queue, k)
				}
			}
		}
	}

	if len(sorted) != len(order) {
		return nil, false
	}

	rows := make([]*Row, len(sorted))
	for i, key := range sorted {
		rows[i] = &Row{StopKey: key, TimingStatus: meta[key]}
	}
	return rows, true
}
