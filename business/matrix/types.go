// Package matrix builds the two-dimensional timetable grid (C7): rows are
// stops, columns are trips, cells are arrival/departure times. It is pure,
// in-memory and CPU bound -- no store access, no parser knowledge. Callers
// assemble the input Trip slice (a Route's Trips whose Calendar operates on
// the requested date, per §4.1) and hand it to Build.
package matrix

import (
	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/foundation/timeoffset"
)

// StopTime is one stop visit on a Trip, reduced to what the grid needs.
type StopTime struct {
	StopKey      string
	TimingStatus timetable.TimingStatus
	Arrival      *timeoffset.TimeOffset
	Departure    *timeoffset.TimeOffset
	PickUp       bool
	SetDown      bool
}

func (s StopTime) arrival() timeoffset.TimeOffset {
	if s.Arrival != nil {
		return *s.Arrival
	}
	return *s.Departure
}

func (s StopTime) departure() timeoffset.TimeOffset {
	if s.Departure != nil {
		return *s.Departure
	}
	return *s.Arrival
}

// Trip is the matrix builder's view of one scheduled journey: the relevant
// parts of timetable.Trip, timetable.Route and timetable.Note already
// joined, so the builder never has to reach back into the store.
type Trip struct {
	ID                int64
	Route             timetable.Route
	OperatorID        *int64
	TicketMachineCode *string
	JourneyPattern    *string
	Destination       *string
	Inbound           bool
	Start             timeoffset.TimeOffset
	End               timeoffset.TimeOffset
	StopTimes         []StopTime
	Notes             []timetable.Note

	top, bottom *Row // endpoints, assigned while building the grid
}

func (t *Trip) noteIDs() map[int64]bool {
	ids := make(map[int64]bool, len(t.Notes))
	for _, n := range t.Notes {
		ids[n.ID] = true
	}
	return ids
}

// journeyPatternsMatch reports whether two trips are the same repeating
// headway pattern per §4.7: same route, same journey pattern id, same
// destination, same duration.
func journeyPatternsMatch(a, b *Trip) bool {
	if a.Route.ID != b.Route.ID {
		return false
	}
	if a.JourneyPattern == nil || b.JourneyPattern == nil || *a.JourneyPattern != *b.JourneyPattern {
		return false
	}
	if (a.Destination == nil) != (b.Destination == nil) {
		return false
	}
	if a.Destination != nil && *a.Destination != *b.Destination {
		return false
	}
	return a.End-a.Start == b.End-b.Start
}

// Cell is one occupied grid position: a trip's visit to a row's stop.
type Cell struct {
	Arrival   timeoffset.TimeOffset
	Departure timeoffset.TimeOffset
	PickUp    bool
	SetDown   bool
	First     bool
	Last      bool
}

func (c *Cell) waitTime() timeoffset.TimeOffset { return c.Departure - c.Arrival }

// Repetition is a spanning cell standing in for a run of abbreviated
// headway columns, carrying the column span and the repeat interval.
type Repetition struct {
	Colspan int
	Seconds int // repeat interval in seconds, e.g. 3600 for an hourly run
}

// Slot is one grid position along a Row: at most one of Cell or Repetition
// is set; both nil means a blank cell. A row is shrunk to drop removed
// slots only after abbreviation finishes (see abbreviate.go).
type Slot struct {
	Cell       *Cell
	Repetition *Repetition
	removed    bool
}

func (s *Slot) empty() bool { return s != nil && s.Cell == nil && s.Repetition == nil && !s.removed }

// Row is one stop appearing in the grid, with one Slot per column.
type Row struct {
	StopKey      string
	TimingStatus timetable.TimingStatus
	Times        []*Slot
}

func (r *Row) isMinor() bool { return r.TimingStatus == timetable.TimingOther }

// ColumnHead labels a run of Span consecutive columns sharing a Route,
// shown only where the Route changes partway through a Grouping.
type ColumnHead struct {
	Route timetable.Route
	Span  int
}

// ColumnFoot labels a run of Span consecutive columns sharing a Note (or,
// when Note is nil, a gap between two labelled runs).
type ColumnFoot struct {
	Note *timetable.Note
	Span int
}

// Grouping is one direction (outbound or inbound) of a built timetable: an
// ordered set of Trips as columns, Rows as the stop axis, plus the head and
// foot annotations §4.7 describes.
type Grouping struct {
	Inbound    bool
	Trips      []*Trip
	Rows       []*Row
	Heads      []ColumnHead
	ColumnFeet map[int64][]*ColumnFoot
}

func (g *Grouping) width() int {
	if len(g.Rows) == 0 {
		return 0
	}
	return len(g.Rows[0].Times)
}
