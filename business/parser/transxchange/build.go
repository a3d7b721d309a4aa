package transxchange

import (
	"strings"
	"time"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/foundation/textnorm"
)

// titleCaseIfShouting title-cases s only when it arrived fully upper-case,
// the same guard timetable.py applies before calling titlecase.titlecase on
// a Service's Description: a feed that already mixes case is left alone.
func titleCaseIfShouting(s string) string {
	if s != "" && s == strings.ToUpper(s) {
		return textnorm.TitleCase(s)
	}
	return s
}

// buildArena walks the decoded XML document into the intermediate arena.
// It never fails on a single malformed node; unresolvable references are
// left for Parse to warn about and skip.
func buildArena(doc *document) *parseArena {
	a := newParseArena()

	for _, sp := range doc.StopPoints {
		a.stopNames[sp.StopPointRef] = sp.CommonName
	}

	for _, so := range doc.ServicedOrganisations {
		a.servicedOrgByCode[so.OrganisationCode] = len(a.servicedOrgs)
		a.servicedOrgs = append(a.servicedOrgs, ServicedOrganisation{
			Code:        so.OrganisationCode,
			Name:        so.Name,
			WorkingDays: toDateRanges(so.WorkingDays),
			Holidays:    toDateRanges(so.Holidays),
		})
	}

	for _, op := range doc.Operators {
		a.operatorByID[op.ID] = len(a.operators)
		a.operators = append(a.operators, Operator{
			ID:                   op.ID,
			NationalOperatorCode: op.NationalOperatorCode,
			LicenceNumber:        op.LicenceNumber,
			OperatorCode:         op.OperatorCode,
			Name:                 firstNonEmpty(op.TradingName, op.OperatorShortName),
		})
	}

	for _, sec := range doc.JourneyPatternSections {
		links := make([]JourneyPatternTimingLink, 0, len(sec.TimingLinks))
		for _, l := range sec.TimingLinks {
			links = append(links, JourneyPatternTimingLink{
				ID:      l.ID,
				From:    toStopUsage(l.From),
				To:      toStopUsage(l.To),
				RunTime: parseISODuration(l.RunTime),
			})
		}
		a.sectionByID[sec.ID] = len(a.sections)
		a.sections = append(a.sections, JourneyPatternSection{ID: sec.ID, Links: links})
	}

	for _, svc := range doc.Services {
		s := Service{
			ServiceCode:           svc.ServiceCode,
			Mode:                  svc.Mode,
			Origin:                svc.StandardService.Origin,
			Destination:           svc.StandardService.Destination,
			Vias:                  svc.StandardService.Vias,
			RegisteredOperatorRef: svc.RegisteredOperatorRef,
		}
		if start, ok := parseISODate(svc.OperatingPeriod.StartDate); ok {
			s.Start = start
		}
		if end, ok := parseISODate(svc.OperatingPeriod.EndDate); ok {
			s.End = &end
		}
		if svc.OperatingProfile != nil {
			s.DefaultProfile = toOperatingProfile(svc.OperatingProfile)
		}
		for _, line := range svc.Lines {
			s.Lines = append(s.Lines, Line{
				ID:                  line.ID,
				LineName:            line.LineName,
				OutboundDescription: titleCaseIfShouting(line.OutboundDescription.Description),
				InboundDescription:  titleCaseIfShouting(line.InboundDescription.Description),
			})
		}
		for _, jp := range svc.StandardService.JourneyPatterns {
			pattern := JourneyPattern{ID: jp.ID, Direction: jp.Direction, RouteRef: jp.RouteRef}
			for _, ref := range jp.JourneyPatternSectionRefs {
				if idx, ok := a.sectionByID[ref]; ok {
					pattern.SectionIdxs = append(pattern.SectionIdxs, idx)
				}
			}
			s.JourneyPatterns = append(s.JourneyPatterns, pattern)
		}
		a.services = append(a.services, s)
	}

	for _, vj := range doc.VehicleJourneys {
		v := VehicleJourney{
			Code:               vj.VehicleJourneyCode,
			ServiceRef:         vj.ServiceRef,
			LineRef:            vj.LineRef,
			JourneyPatternRef:  vj.JourneyPatternRef,
			VehicleJourneyRef:  vj.VehicleJourneyRef,
			DepartureTime:      parseClockDuration(vj.DepartureTime),
			OperatorRef:        vj.OperatorRef,
			Block:              vj.BlockNumber,
			VehicleType:        vj.VehicleType,
			TicketMachineCode:  vj.TicketMachineCode,
			StartDeadRunLinkID: vj.StartDeadRunShortWorking,
			EndDeadRunLinkID:   vj.EndDeadRunShortWorking,
			Notes:              vj.Note,
		}
		if vj.OperatingProfile != nil {
			v.OperatingProfile = toOperatingProfile(vj.OperatingProfile)
		}
		for _, override := range vj.VehicleJourneyTimingLink {
			if override.RunTime == "" {
				continue
			}
			if v.TimeOverrides == nil {
				v.TimeOverrides = make(map[string]time.Duration)
			}
			v.TimeOverrides[override.JourneyPatternTimingLinkRef] = parseISODuration(override.RunTime)
		}
		a.vehicleJourneys = append(a.vehicleJourneys, v)
	}

	return a
}

func toStopUsage(u xmlStopUsage) StopUsage {
	su := StopUsage{
		StopRef:      u.StopPointRef,
		TimingStatus: toTimingStatus(u.TimingStatus),
		Activity:     toActivity(u.Activity),
	}
	if d := parseISODuration(u.WaitTime); d > 0 {
		su.WaitTime = &d
	}
	return su
}

func toTimingStatus(s string) timetable.TimingStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PTP", "PRINCIPALTIMINGPOINT":
		return timetable.TimingPrincipal
	case "OTH", "OTHERPOINT":
		return timetable.TimingOther
	default:
		return timetable.TimingInfo
	}
}

func toActivity(s string) Activity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pickup":
		return ActivityPickUp
	case "setdown":
		return ActivitySetDown
	case "pass":
		return ActivityPass
	default:
		return ActivityNormal
	}
}

func toDateRanges(defs []xmlDateRangeDef) []timetable.DateRange {
	var out []timetable.DateRange
	for _, d := range defs {
		start, ok := parseISODate(d.StartDate)
		if !ok {
			continue
		}
		end := start
		if e, ok := parseISODate(d.EndDate); ok {
			end = e
		}
		out = append(out, timetable.DateRange{Start: start, End: end})
	}
	return out
}

func toOperatingProfile(p *xmlOperatingProfile) *OperatingProfile {
	profile := &OperatingProfile{}
	if dow := p.RegularDayType.DaysOfWeek; dow != nil {
		profile.Weekdays = daysOfWeekMask(dow)
	}
	if p.SpecialDaysOperation != nil {
		for _, d := range toDateRanges(p.SpecialDaysOperation.DaysOfOperation) {
			profile.SpecialDates = append(profile.SpecialDates, timetable.CalendarDate{
				Range: d, Operation: true, Special: true,
			})
		}
		for _, d := range toDateRanges(p.SpecialDaysOperation.DaysOfNonOperation) {
			profile.SpecialDates = append(profile.SpecialDates, timetable.CalendarDate{
				Range: d, Operation: false,
			})
		}
	}
	if p.BankHolidayOperation != nil {
		for _, n := range p.BankHolidayOperation.DaysOfOperation.Names {
			profile.BankHolidays = append(profile.BankHolidays, BankHolidayRule{Name: n.XMLName.Local, Operation: true})
		}
		for _, n := range p.BankHolidayOperation.DaysOfNonOperation.Names {
			profile.BankHolidays = append(profile.BankHolidays, BankHolidayRule{Name: n.XMLName.Local, Operation: false})
		}
	}
	if p.ServicedOrganisationDayType != nil {
		for _, ref := range p.ServicedOrganisationDayType.DaysOfOperation {
			profile.ServicedOrgs = append(profile.ServicedOrgs, ServicedOrgRule{
				OrganisationCode: strings.TrimSpace(ref.Ref), WorkingDays: true, Operation: true,
			})
		}
		for _, ref := range p.ServicedOrganisationDayType.DaysOfNonOperation {
			profile.ServicedOrgs = append(profile.ServicedOrgs, ServicedOrgRule{
				OrganisationCode: strings.TrimSpace(ref.Ref), WorkingDays: false, Operation: false,
			})
		}
	}
	return profile
}

func daysOfWeekMask(dow *xmlDaysOfWeek) [7]bool {
	var mask [7]bool
	set := func(idxs ...int) {
		for _, i := range idxs {
			mask[i] = true
		}
	}
	switch {
	case dow.MondayToSunday != nil:
		set(0, 1, 2, 3, 4, 5, 6)
	case dow.MondayToSaturday != nil:
		set(0, 1, 2, 3, 4, 5)
	case dow.MondayToFriday != nil:
		set(0, 1, 2, 3, 4)
	case dow.Weekend != nil:
		set(5, 6)
	case dow.NotSaturday != nil:
		set(0, 1, 2, 3, 4, 6)
	default:
		if dow.Monday != nil {
			mask[0] = true
		}
		if dow.Tuesday != nil {
			mask[1] = true
		}
		if dow.Wednesday != nil {
			mask[2] = true
		}
		if dow.Thursday != nil {
			mask[3] = true
		}
		if dow.Friday != nil {
			mask[4] = true
		}
		if dow.Saturday != nil {
			mask[5] = true
		}
		if dow.Sunday != nil {
			mask[6] = true
		}
	}
	return mask
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
