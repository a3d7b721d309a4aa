package matrix

import "sort"

// sortColumns orders g.Trips (and reorders every Row's Times to match) per
// §4.7: for each pair of trips, find a row where both have times; whichever
// arrives first is ordered first. Topologically sort on those pairwise
// edges; on a cycle, fall back to a comparator using the earliest
// overlapping row's arrival difference, else trip start/end times.
func sortColumns(g *Grouping) {
	n := len(g.Trips)
	if n < 2 {
		return
	}
	rowIndex := make(map[*Row]int, len(g.Rows))
	for i, r := range g.Rows {
		rowIndex[r] = i
	}

	edges := make(map[int]map[int]bool) // edges[i][j] means i before j
	addEdge := func(before, after int) {
		if before == after {
			return
		}
		if edges[before] == nil {
			edges[before] = make(map[int]bool)
		}
		edges[before][after] = true
	}

	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			ta, tb := g.Trips[a], g.Trips[b]
			aTop, aBottom := rowIndex[ta.top], rowIndex[ta.bottom]
			bTop, bBottom := rowIndex[tb.top], rowIndex[tb.bottom]
			lo, hi := max(aTop, bTop), min(aBottom, bBottom)
			for r := lo; r <= hi; r++ {
				aCell := cellAt(g.Rows[r], a)
				bCell := cellAt(g.Rows[r], b)
				if aCell == nil || bCell == nil {
					continue
				}
				switch {
				case aCell.Arrival > bCell.Arrival:
					addEdge(b, a)
				case aCell.Arrival < bCell.Arrival:
					addEdge(a, b)
				case bTop == aBottom:
					addEdge(b, a)
				default:
					addEdge(a, b)
				}
				break
			}
		}
	}

	order, ok := topoSortIndices(n, edges)
	if !ok {
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return compareTrips(g, order[i], order[j]) < 0
		})
	}

	reordered := make([]*Trip, n)
	for i, idx := range order {
		reordered[i] = g.Trips[idx]
	}
	g.Trips = reordered

	for _, row := range g.Rows {
		times := make([]*Slot, n)
		for i, idx := range order {
			times[i] = row.Times[idx]
		}
		row.Times = times
	}
}

func cellAt(row *Row, col int) *Cell {
	if col >= len(row.Times) || row.Times[col] == nil {
		return nil
	}
	return row.Times[col].Cell
}

// compareTrips breaks a column-ordering cycle using the earliest
// overlapping row's arrival difference, falling back to trip start/end
// times when the two trips' row ranges never overlap.
func compareTrips(g *Grouping, a, b int) int {
	rowIndex := make(map[*Row]int, len(g.Rows))
	for i, r := range g.Rows {
		rowIndex[r] = i
	}
	ta, tb := g.Trips[a], g.Trips[b]
	aTop, aBottom := rowIndex[ta.top], rowIndex[ta.bottom]
	bTop, bBottom := rowIndex[tb.top], rowIndex[tb.bottom]

	lo, hi := max(aTop, bTop), min(aBottom, bBottom)
	for r := lo; r <= hi; r++ {
		if r < 0 || r >= len(g.Rows) {
			continue
		}
		aCell := cellAt(g.Rows[r], a)
		bCell := cellAt(g.Rows[r], b)
		if aCell != nil && bCell != nil {
			return int(aCell.Arrival) - int(bCell.Arrival)
		}
	}

	var aTime, bTime int
	switch {
	case aTop > bBottom: // b above a
		aTime, bTime = int(ta.Start), int(tb.End)
	case bTop > aBottom: // a above b
		aTime, bTime = int(ta.End), int(tb.Start)
	default:
		aTime, bTime = int(ta.Start), int(tb.Start)
	}
	return aTime - bTime
}

// topoSortIndices Kahn-sorts 0..n-1 given edges[before][after]; returns
// ok=false on a cycle.
func topoSortIndices(n int, edges map[int]map[int]bool) ([]int, bool) {
	indegree := make([]int, n)
	for from, tos := range edges {
		_ = from
		for to := range tos {
			indegree[to]++
		}
	}
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	var order []int
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for to := range edges[i] {
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}
	return order, len(order) == n
}
