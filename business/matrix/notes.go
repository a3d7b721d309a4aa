package matrix

import "github.com/transitstream/timetables/business/data/timetable"

// computeHeadsAndFeet fills in g.Heads, g.ColumnFeet and runs the headway
// abbreviation pass, then compacts the rows. Heads group consecutive
// columns sharing a Route's line name, shown only where it's heterogeneous
// across the Grouping. Feet group consecutive columns sharing a Note into
// one spanning annotation, with an unlabelled ColumnFoot filling the gaps
// between runs for each Note id that appears anywhere in the Grouping.
func computeHeadsAndFeet(g *Grouping) {
	if len(g.Trips) == 0 {
		return
	}
	computeHeads(g)
	computeColumnFeet(g)
	abbreviateHeadways(g)
	compactRows(g)
}

func computeHeads(g *Grouping) {
	start := 0
	for i := 1; i <= len(g.Trips); i++ {
		if i == len(g.Trips) || g.Trips[i].Route.LineName != g.Trips[start].Route.LineName {
			g.Heads = append(g.Heads, ColumnHead{Route: g.Trips[start].Route, Span: i - start})
			start = i
		}
	}
	if len(g.Heads) == 1 {
		g.Heads = nil
	}
}

func computeColumnFeet(g *Grouping) {
	notesByID := make(map[int64]timetable.Note)
	for _, t := range g.Trips {
		for _, n := range t.Notes {
			notesByID[n.ID] = n
		}
	}
	if len(notesByID) == 0 {
		return
	}

	n := len(g.Trips)
	for id := range notesByID {
		note := notesByID[id]
		var feet []*ColumnFoot
		i := 0
		for i < n {
			has := g.Trips[i].noteIDs()[id]
			j := i + 1
			for j < n && g.Trips[j].noteIDs()[id] == has {
				j++
			}
			span := j - i
			if has {
				noteCopy := note
				feet = append(feet, &ColumnFoot{Note: &noteCopy, Span: span})
			} else {
				feet = append(feet, &ColumnFoot{Note: nil, Span: span})
			}
			i = j
		}
		g.ColumnFeet[id] = feet
	}
}
