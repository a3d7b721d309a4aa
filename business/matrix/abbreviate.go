package matrix

// abbreviateHeadways walks g.Trips (already column-ordered) looking for a
// maximal run of >= 3 consecutive trips sharing a journey pattern (same
// route, journey_pattern id, destination and duration) with an identical
// successive start-time difference that is either exactly 60 minutes or at
// most 30 minutes, per §4.7. The run's middle trips are collapsed: the top
// row's cell for the first collapsed column becomes a Repetition spanning
// the run, every other cell those columns touch is blanked, and the first
// and last trips of the run stay as ordinary visible columns.
func abbreviateHeadways(g *Grouping) {
	n := len(g.Trips)
	i := 0
	for i+1 < n {
		d := int(g.Trips[i+1].Start) - int(g.Trips[i].Start)
		if !journeyPatternsMatch(g.Trips[i], g.Trips[i+1]) || !isHeadwayInterval(d) {
			i++
			continue
		}
		j := i + 1
		for j+1 < n && journeyPatternsMatch(g.Trips[j], g.Trips[j+1]) &&
			int(g.Trips[j+1].Start)-int(g.Trips[j].Start) == d {
			j++
		}
		if j-i+1 >= 3 {
			collapseRun(g, i, j, d)
		}
		i = j
	}
}

func isHeadwayInterval(seconds int) bool {
	return seconds == 3600 || (seconds > 0 && seconds <= 1800)
}

// collapseRun blanks the cells of every column strictly between first and
// last, replacing the top row's first blanked column with a spanning
// Repetition cell.
func collapseRun(g *Grouping, first, last, seconds int) {
	span := last - first - 1
	if span <= 0 || len(g.Rows) == 0 {
		return
	}
	top := g.Rows[0]
	top.Times[first+1] = &Slot{Repetition: &Repetition{Colspan: span, Seconds: seconds}}
	for col := first + 2; col < last; col++ {
		top.Times[col] = nil
	}
	for _, row := range g.Rows[1:] {
		for col := first + 1; col < last; col++ {
			row.Times[col] = nil
		}
	}
}

// compactRows drops the nil slots abbreviation leaves behind so each row's
// Times holds one entry per visible column (ordinary trips plus one entry
// per repetition span) rather than one entry per original trip.
func compactRows(g *Grouping) {
	for _, row := range g.Rows {
		kept := row.Times[:0]
		for _, s := range row.Times {
			if s != nil {
				kept = append(kept, s)
			}
		}
		row.Times = kept
	}
}
