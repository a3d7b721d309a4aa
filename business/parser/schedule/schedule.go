// Package schedule defines the common intermediate model every format
// parser (transxchange, atcocif, gtfs) reduces its own source-specific
// representation down to. The ingestion coordinator is polymorphic over
// this shape; it never branches on which parser produced a Schedule.
package schedule

import (
	"time"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/foundation/timeoffset"
)

// Calendar is a parsed operating pattern prior to content-addressed
// deduplication, which the coordinator performs by hashing it through
// timetable.Calendar.RuleHash after resolving it to that type.
type Calendar struct {
	Weekdays  [7]bool // Mon..Sun
	Start     time.Time
	End       *time.Time
	Dates     []timetable.CalendarDate
	BankHols  []timetable.CalendarBankHoliday
	Summary   string
}

// StopTime is one parsed stop visit, stop identity still a raw source
// code pending resolution against the Stop master table.
type StopTime struct {
	Sequence     int
	StopCode     string
	Arrival      *timeoffset.TimeOffset
	Departure    *timeoffset.TimeOffset
	TimingStatus timetable.TimingStatus
	PickUp       bool
	SetDown      bool
}

// Note is a footnote a parser attached to a Trip, identified by source
// code with resolved text (pick-up/set-down variants already normalised).
type Note struct {
	Code string
	Text string
}

// Trip is one parsed vehicle journey: a Calendar, an ordered StopTime
// list, and the descriptive fields the normalized Trip row carries.
type Trip struct {
	Inbound            bool
	Calendar           Calendar
	StopTimes          []StopTime
	Destination        *string
	TicketMachineCode  *string
	VehicleJourneyCode *string
	Block              *string
	VehicleType        *string
	Garage              *string
	OperatorRef         string
	JourneyPattern      *string
	Notes               []Note
}

// Route is one parsed timetable version, keyed by the source-native Code
// the coordinator uses for (SourceID, Code) upsert.
type Route struct {
	Code                string
	ServiceCode         string
	LineName            string
	LineBrand           *string
	RevisionNumber      *int
	StartDate           *time.Time
	EndDate             *time.Time
	Origin              *string
	Destination         *string
	Via                 *string
	OutboundDescription *string
	InboundDescription  *string
	Trips               []Trip
}

// Schedule is a whole parsed file or archive: every Route it describes,
// each carrying its own Trips. A parser returns exactly one Schedule per
// top-level source file; archives containing several files produce one
// Schedule per member, each ingested as its own Import by the coordinator.
type Schedule struct {
	SourceFile string
	Routes     []Route
}
