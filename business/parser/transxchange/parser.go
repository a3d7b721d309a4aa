package transxchange

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/business/parser/schedule"
)

// Warning is a non-fatal condition raised while parsing: an unresolvable
// reference that causes a VehicleJourney or Route to be skipped, per §4.3's
// "unknown refs -> warn and skip that VJ" rule, or an operator reference
// that matches no Operator, in which case the trip is kept without one.
type Warning struct {
	VehicleJourneyCode string
	Reason             string
}

func (w Warning) String() string {
	return fmt.Sprintf("vehicle journey %s: %s", w.VehicleJourneyCode, w.Reason)
}

// Options configures reference resolution that depends on context outside
// the document itself.
type Options struct {
	// RegionOperatorCodes maps an operator reference to the region-local
	// OperatorCode of the document's Operator it should resolve to, the
	// last rung of the operator resolution ladder in §4.3.
	RegionOperatorCodes map[string]string
}

// Parse decodes one TransXChange document and reduces it to the shared
// schedule.Schedule model, returning any non-fatal Warnings raised while
// resolving references.
func Parse(r io.Reader, filename string, opts Options) (*schedule.Schedule, []Warning, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, errors.Wrapf(err, "decoding TransXChange document %s", filename)
	}

	arena := buildArena(&doc)
	vjByCode := indexVehicleJourneysByCode(arena)

	routes := make(map[string]*schedule.Route)
	var order []string
	var warnings []Warning

	for _, vj := range arena.vehicleJourneys {
		svc, ok := findService(arena, vj.ServiceRef)
		if !ok {
			warnings = append(warnings, Warning{vj.Code, "unknown ServiceRef " + vj.ServiceRef})
			continue
		}
		jpRef, ok := resolveJourneyPattern(arena, vjByCode, vj)
		if !ok {
			warnings = append(warnings, Warning{vj.Code, "unresolvable JourneyPatternRef chain"})
			continue
		}
		jp, ok := findJourneyPattern(svc, jpRef)
		if !ok {
			warnings = append(warnings, Warning{vj.Code, "unknown JourneyPattern " + jpRef})
			continue
		}
		links := flattenLinks(arena, jp)
		if len(links) == 0 {
			warnings = append(warnings, Warning{vj.Code, "journey pattern has no timing links"})
			continue
		}

		line, lineOK := resolveLine(svc, vj.LineRef)
		if !lineOK {
			warnings = append(warnings, Warning{vj.Code, "unresolvable LineRef " + vj.LineRef})
			continue
		}

		profile := vj.OperatingProfile
		if profile == nil {
			profile = svc.DefaultProfile
		}
		if profile == nil {
			warnings = append(warnings, Warning{vj.Code, "no OperatingProfile on VehicleJourney or Service"})
			continue
		}

		stops := walkJourney(links, vj)
		if len(stops) == 0 {
			warnings = append(warnings, Warning{vj.Code, "dead-run suppression left no stop times"})
			continue
		}

		opRef := firstNonEmpty(vj.OperatorRef, svc.RegisteredOperatorRef)
		op, opOK := resolveOperatorRef(arena, opRef, opts.RegionOperatorCodes)
		if !opOK {
			warnings = append(warnings, Warning{vj.Code, "unresolved operator reference " + opRef + "; trip kept without an operator"})
		}

		var notes []schedule.Note
		for _, n := range vj.Notes {
			notes = append(notes, schedule.Note{Text: n})
		}

		var block, vehicleType, ticketCode, destination *string
		if vj.Block != "" {
			block = &vj.Block
		}
		if vj.VehicleType != "" {
			vehicleType = &vj.VehicleType
		}
		if vj.TicketMachineCode != "" {
			ticketCode = &vj.TicketMachineCode
		}
		if svc.Destination != "" {
			d := titleCaseIfShouting(svc.Destination)
			destination = &d
		}

		trip := schedule.Trip{
			Inbound:            strings.EqualFold(jp.Direction, "inbound"),
			Calendar:           toScheduleCalendar(svc.Start, svc.End, profile, arena),
			StopTimes:          toScheduleStopTimes(stops),
			Destination:        destination,
			TicketMachineCode:  ticketCode,
			VehicleJourneyCode: &vj.Code,
			Block:              block,
			VehicleType:        vehicleType,
			OperatorRef:        op.ID,
			JourneyPattern:     &jp.ID,
			Notes:              notes,
		}

		routeKey := svc.ServiceCode + "/" + line.ID
		route, ok := routes[routeKey]
		if !ok {
			route = &schedule.Route{
				Code:                routeKey,
				ServiceCode:         svc.ServiceCode,
				LineName:            line.LineName,
				StartDate:           timePtr(svc.Start),
				EndDate:             svc.End,
				OutboundDescription: strPtr(line.OutboundDescription),
				InboundDescription:  strPtr(line.InboundDescription),
			}
			if svc.Origin != "" {
				route.Origin = strPtr(titleCaseIfShouting(svc.Origin))
			}
			if svc.Destination != "" {
				route.Destination = strPtr(titleCaseIfShouting(svc.Destination))
			}
			if len(svc.Vias) > 0 {
				route.Via = strPtr(titleCaseIfShouting(strings.Join(svc.Vias, ", ")))
			}
			routes[routeKey] = route
			order = append(order, routeKey)
		}
		route.Trips = append(route.Trips, trip)
	}

	out := &schedule.Schedule{SourceFile: filename}
	for _, key := range order {
		out.Routes = append(out.Routes, *routes[key])
	}
	return out, warnings, nil
}

func resolveLine(svc Service, lineRef string) (Line, bool) {
	if lineRef == "" {
		if len(svc.Lines) == 1 {
			return svc.Lines[0], true
		}
		return Line{}, false
	}
	return findLine(svc, lineRef)
}

func toScheduleCalendar(start time.Time, end *time.Time, profile *OperatingProfile, arena *parseArena) schedule.Calendar {
	cal := schedule.Calendar{Weekdays: profile.Weekdays, Start: start, End: end}
	cal.Dates = append(cal.Dates, profile.SpecialDates...)
	for _, bh := range profile.BankHolidays {
		cal.BankHols = append(cal.BankHols, timetable.CalendarBankHoliday{
			BankHoliday: bh.Name, Operation: bh.Operation,
		})
	}
	for _, ref := range profile.ServicedOrgs {
		so, ok := findServicedOrg(arena, ref.OrganisationCode)
		if !ok {
			continue
		}
		soEntity := timetable.ServicedOrganisation{
			Code: so.Code, Name: so.Name, WorkingDays: so.WorkingDays, Holidays: so.Holidays,
		}
		cal.Dates = append(cal.Dates, timetable.ExpandServicedOrganisation(&soEntity, ref.WorkingDays, ref.Operation)...)
	}
	return cal
}

func timePtr(t time.Time) *time.Time { return &t }
func strPtr(s string) *string        { return &s }
