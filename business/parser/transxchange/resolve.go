package transxchange

import (
	"regexp"
	"strings"
)

// bodsServiceCodePattern marks a ServiceCode as unique across the whole
// open-data profile, enabling cross-source de-duplication downstream in
// the ingestion coordinator (§4.3, carried from jclgoodwin/buses' utils.py).
var bodsServiceCodePattern = regexp.MustCompile(`^P[BCDFGHKM]\d+:\d+.*$`)

// IsBODSUniqueServiceCode reports whether code is in the BODS unique-code
// family.
func IsBODSUniqueServiceCode(code string) bool {
	return bodsServiceCodePattern.MatchString(code)
}

// resolveOperatorRef implements the first-match-wins ladder from §4.3: by
// NationalOperatorCode, then licence number, then name (case-insensitive),
// then a region-local OperatorCode table, finally falling back to "none" --
// the caller logs that trip as operatorless rather than abandoning it.
func resolveOperatorRef(a *parseArena, ref string, regionCodeTable map[string]string) (Operator, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Operator{}, false
	}
	if idx, ok := a.operatorByID[ref]; ok {
		return a.operators[idx], true
	}
	for _, op := range a.operators {
		if op.NationalOperatorCode != "" && strings.EqualFold(op.NationalOperatorCode, ref) {
			return op, true
		}
	}
	for _, op := range a.operators {
		if op.LicenceNumber != "" && strings.EqualFold(op.LicenceNumber, ref) {
			return op, true
		}
	}
	for _, op := range a.operators {
		if op.Name != "" && strings.EqualFold(op.Name, ref) {
			return op, true
		}
	}
	if regionCodeTable != nil {
		if mapped, ok := regionCodeTable[ref]; ok {
			for _, op := range a.operators {
				if strings.EqualFold(op.OperatorCode, mapped) {
					return op, true
				}
			}
		}
	}
	return Operator{}, false
}

// resolveJourneyPattern follows VehicleJourneyRef chains transitively to
// find the JourneyPatternRef that actually applies to vj, since TransXChange
// allows a VehicleJourney to inherit its pattern from another VJ rather than
// naming one directly. Returns false if the chain cannot be resolved
// (unknown ref, or a cycle), in which case the caller skips the VJ with a
// warning per §4.3.
func resolveJourneyPattern(a *parseArena, vjByCode map[string]int, vj VehicleJourney) (string, bool) {
	seen := make(map[string]bool)
	current := vj
	for {
		if current.JourneyPatternRef != "" {
			return current.JourneyPatternRef, true
		}
		ref := strings.TrimSpace(current.VehicleJourneyRef)
		if ref == "" || seen[ref] {
			return "", false
		}
		seen[ref] = true
		idx, ok := vjByCode[ref]
		if !ok {
			return "", false
		}
		current = a.vehicleJourneys[idx]
	}
}

func indexVehicleJourneysByCode(a *parseArena) map[string]int {
	m := make(map[string]int, len(a.vehicleJourneys))
	for i, vj := range a.vehicleJourneys {
		m[vj.Code] = i
	}
	return m
}

func findJourneyPattern(svc Service, id string) (JourneyPattern, bool) {
	for _, jp := range svc.JourneyPatterns {
		if jp.ID == id {
			return jp, true
		}
	}
	return JourneyPattern{}, false
}

func findService(a *parseArena, code string) (Service, bool) {
	for _, s := range a.services {
		if s.ServiceCode == code {
			return s, true
		}
	}
	return Service{}, false
}

func findLine(svc Service, id string) (Line, bool) {
	for _, l := range svc.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

func findServicedOrg(a *parseArena, code string) (ServicedOrganisation, bool) {
	idx, ok := a.servicedOrgByCode[code]
	if !ok {
		return ServicedOrganisation{}, false
	}
	return a.servicedOrgs[idx], true
}
