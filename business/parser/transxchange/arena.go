package transxchange

import (
	"time"

	"github.com/transitstream/timetables/business/data/timetable"
)

// Activity is what a VehicleJourney does at a stop.
type Activity int

const (
	ActivityNormal Activity = iota
	ActivityPickUp
	ActivitySetDown
	ActivityPass
)

// StopUsage is one end of a JourneyPatternTimingLink.
type StopUsage struct {
	StopRef      string
	TimingStatus timetable.TimingStatus
	Activity     Activity
	WaitTime     *time.Duration
}

// JourneyPatternTimingLink is one hop between two StopUsages.
type JourneyPatternTimingLink struct {
	ID      string
	From    StopUsage
	To      StopUsage
	RunTime time.Duration
}

// JourneyPatternSection is an ordered run of timing links, referenced by ID
// from one or more JourneyPatterns.
type JourneyPatternSection struct {
	ID    string
	Links []JourneyPatternTimingLink
}

// JourneyPattern is an ordered list of section references plus direction
// and optional defaults.
type JourneyPattern struct {
	ID            string
	Direction     string
	RouteRef      string
	SectionIdxs   []int // indices into parseArena.sections
}

// BankHolidayRule is one named-holiday operation/non-operation element.
type BankHolidayRule struct {
	Name      string
	Operation bool
}

// ServicedOrgRule references a ServicedOrganisation by code plus the
// working-day/holiday choice and operation flag it contributes.
type ServicedOrgRule struct {
	OrganisationCode string
	WorkingDays      bool
	Operation        bool
}

// OperatingProfile is the weekday mask plus the three exception-list
// mechanisms TransXChange supports.
type OperatingProfile struct {
	Weekdays      [7]bool // Mon..Sun
	SpecialDates  []timetable.CalendarDate
	BankHolidays  []BankHolidayRule
	ServicedOrgs  []ServicedOrgRule
}

// VehicleJourney is one scheduled departure: a JourneyPatternRef (possibly
// indirect via VehicleJourneyRef), a DepartureTime, per-link time overrides,
// and the dead-run markers that bound which StopTimes actually get emitted.
type VehicleJourney struct {
	Code                string
	ServiceRef          string
	LineRef             string
	JourneyPatternRef   string
	VehicleJourneyRef   string // indirect ref to another VJ, resolved transitively
	DepartureTime       time.Duration
	OperatorRef         string
	Block               string
	VehicleType         string
	TicketMachineCode   string
	StartDeadRunLinkID  string
	EndDeadRunLinkID    string
	OperatingProfile    *OperatingProfile // nil => inherit the Service's default
	TimeOverrides       map[string]time.Duration
	Notes               []string
}

// ServicedOrganisation is the working-day/holiday window list a
// ServicedOrgRule references by code.
type ServicedOrganisation struct {
	Code        string
	Name        string
	WorkingDays []timetable.DateRange
	Holidays    []timetable.DateRange
}

// Line is one published line of a Service, with direction descriptions.
type Line struct {
	ID                  string
	LineName            string
	OutboundDescription string
	InboundDescription  string
}

// Service groups Lines, a StandardService (origin/destination/journey
// patterns), an operating period, and an optional default OperatingProfile.
type Service struct {
	ServiceCode         string
	Mode                string
	Start               time.Time
	End                 *time.Time
	Origin              string
	Destination         string
	Vias                []string
	Lines               []Line
	JourneyPatterns     []JourneyPattern
	DefaultProfile      *OperatingProfile
	RegisteredOperatorRef string
}

// Operator is one <Operator> element, kept with every identifying field the
// resolution ladder in resolve.go needs.
type Operator struct {
	ID                   string
	NationalOperatorCode string
	LicenceNumber        string
	OperatorCode         string
	Name                 string
}

// parseArena owns every intermediate value produced while walking one
// TransXChange document. Slices only -- cross references are looked up by
// string ID through the index maps below, never by pointer, so the
// JourneyPattern -> Section -> TimingLink -> StopUsage graph never becomes a
// Go reference cycle.
type parseArena struct {
	stopNames       map[string]string // StopPointRef -> CommonName
	sections        []JourneyPatternSection
	sectionByID     map[string]int
	services        []Service
	operators       []Operator
	operatorByID    map[string]int
	vehicleJourneys []VehicleJourney
	servicedOrgs    []ServicedOrganisation
	servicedOrgByCode map[string]int
}

func newParseArena() *parseArena {
	return &parseArena{
		stopNames:         make(map[string]string),
		sectionByID:       make(map[string]int),
		operatorByID:      make(map[string]int),
		servicedOrgByCode: make(map[string]int),
	}
}
