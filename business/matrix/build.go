package matrix

// Build splits trips into outbound and inbound Groupings and runs the full
// §4.7 pipeline on each: merge split journeys, assign rows, place cells,
// order columns, then compute head/foot annotations.
func Build(trips []*Trip) (outbound, inbound *Grouping) {
	var out, in []*Trip
	for _, t := range trips {
		if t.Inbound {
			in = append(in, t)
		} else {
			out = append(out, t)
		}
	}
	return buildGrouping(false, out), buildGrouping(true, in)
}

func buildGrouping(inbound bool, trips []*Trip) *Grouping {
	g := &Grouping{Inbound: inbound, ColumnFeet: make(map[int64][]*ColumnFoot)}
	if len(trips) == 0 {
		return g
	}

	trips = mergeSplitTrips(trips)
	rows := assignRows(trips)

	for _, trip := range trips {
		rows = placeTrip(rows, trip)
	}
	g.Rows = rows
	g.Trips = trips

	sortColumns(g)
	computeHeadsAndFeet(g)
	return g
}

// placeTrip places one trip's cells into rows, inserting any stop rows this
// trip needs that aren't already present (the path exercised when rows
// arrives empty or incomplete from assignRows' cycle fallback).
func placeTrip(rows []*Row, trip *Trip) []*Row {
	if len(rows) == 0 && len(trip.StopTimes) == 0 {
		return rows
	}
	existingKeys := make([]string, len(rows))
	for i, r := range rows {
		existingKeys[i] = r.StopKey
	}
	tripKeys := make([]string, len(trip.StopTimes))
	for i, st := range trip.StopTimes {
		tripKeys[i] = st.StopKey
	}

	mergedKeys, indexOfTrip := mergeRowKeys(existingKeys, tripKeys)

	if len(mergedKeys) != len(rows) {
		merged := make([]*Row, len(mergedKeys))
		existingByKey := make(map[string]*Row, len(rows))
		for _, r := range rows {
			existingByKey[r.StopKey] = r
		}
		width := 0
		if len(rows) > 0 {
			width = len(rows[0].Times)
		}
		for i, key := range mergedKeys {
			if r, ok := existingByKey[key]; ok {
				merged[i] = r
			} else {
				merged[i] = &Row{StopKey: key, Times: make([]*Slot, width)}
				for c := range merged[i].Times {
					merged[i].Times[c] = &Slot{}
				}
			}
		}
		rows = merged
	}

	// widen every row by one column for this trip.
	for _, r := range rows {
		r.Times = append(r.Times, &Slot{})
	}
	col := len(rows[0].Times) - 1

	for i, st := range trip.StopTimes {
		rowIdx := indexOfTrip[i]
		row := rows[rowIdx]
		if row.TimingStatus == "" {
			row.TimingStatus = st.TimingStatus
		}
		cell := &Cell{Arrival: st.arrival(), Departure: st.departure(), PickUp: st.PickUp, SetDown: st.SetDown}
		if i == 0 {
			cell.First = true
			trip.top = row
		}
		if i == len(trip.StopTimes)-1 {
			cell.Last = true
			trip.bottom = row
		}
		row.Times[col] = &Slot{Cell: cell}
	}

	return rows
}
