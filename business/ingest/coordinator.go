package ingest

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/business/parser/schedule"
	"github.com/transitstream/timetables/business/parser/transxchange"
	"github.com/transitstream/timetables/foundation/database"
)

// Import is one archive's worth of already-parsed data, ready to be
// resolved against the store.
type Import struct {
	SourceName string
	Filename   string
	Mtime      time.Time
	Content    []byte
	Schedule   *schedule.Schedule
	Complete   bool // §4.6: an authoritative full feed for its operator
	Ticketer   bool // §4.6: uses the alternate Ticketer revision key
	Stops      []*timetable.Stop
}

// IngestArchive resolves one parsed archive against the store inside a
// single transaction, following gtfsmanager.go's
// loadGTFSScheduleFromFile/transact shape (§4.6 step 1-4): set the Source,
// persist arbitrated Routes/Trips, then mark stale Routes, Services and
// Stops.
func IngestArchive(log *log.Logger, db *sqlx.DB, imp Import) error {
	return database.Transact(db, func(tx *sqlx.Tx) error {
		source, duplicate, err := resolveSource(tx, db, imp)
		if err != nil {
			return fmt.Errorf("resolving source %s: %w", imp.SourceName, err)
		}
		if duplicate {
			log.Printf("ingest: %s is byte-identical to an existing source, skipping", imp.SourceName)
			return nil
		}

		if len(imp.Stops) > 0 {
			if err := timetable.UpsertStops(tx, imp.Stops); err != nil {
				return fmt.Errorf("upserting stops: %w", err)
			}
		}

		kept := ArbitrateWithinSource(imp.Schedule.Routes, imp.Ticketer, imp.Filename)
		SortByLineName(kept)

		res := newResolver(tx)
		var keptIDs []int64
		for _, route := range kept {
			skip, reason, err := deferToOtherSource(tx, source, route)
			if err != nil {
				return fmt.Errorf("checking cross-source arbitration for %s: %w", route.Code, err)
			}
			if skip {
				log.Printf("ingest: deferring route %s: %s", route.Code, reason)
				continue
			}
			routeID, err := persistRoute(tx, res, source.ID, route)
			if err != nil {
				log.Printf("ingest: skipping route %s: %v", route.Code, err)
				continue
			}
			keptIDs = append(keptIDs, routeID)
		}

		if err := deleteStaleRoutes(tx, source.ID, keptIDs); err != nil {
			return fmt.Errorf("clearing stale routes for source %d: %w", source.ID, err)
		}
		if err := timetable.MarkServicesNotCurrentWithNoRoutes(tx); err != nil {
			return fmt.Errorf("marking stale services: %w", err)
		}
		if err := timetable.ReactivateStopsReferencedByCurrentRoutes(tx); err != nil {
			return fmt.Errorf("reactivating stops: %w", err)
		}
		return nil
	})
}

// resolveSource finds or creates the Source for this import. When the
// import arrives under a name never seen before but its content is
// byte-identical to a Source already on record, §4.6's content-hash dedup
// rule applies: the existing Source remains the sole representative and
// resolveSource reports duplicate=true instead of creating a second one.
func resolveSource(tx *sqlx.Tx, db *sqlx.DB, imp Import) (source *timetable.Source, duplicate bool, err error) {
	hash := ContentHash(imp.Content)
	existing, err := timetable.GetSourceByName(db, imp.SourceName)
	isNew := false
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, err
		}
		existing = &timetable.Source{Name: imp.SourceName}
		isNew = true
	}

	if isNew {
		others, err := timetable.GetSourcesBySHA1Tx(tx, hash)
		if err != nil {
			return nil, false, err
		}
		if len(others) > 0 {
			candidates := append(others, timetable.Source{Name: imp.SourceName, SHA1: hash})
			kept := DedupeByContentHash(candidates, func(s timetable.Source) string { return s.SHA1 })
			if len(kept) == 1 && kept[0].Name != imp.SourceName {
				return nil, true, nil
			}
		}
	}

	existing.Datetime = imp.Mtime
	existing.SHA1 = hash
	existing.Complete = imp.Complete
	if err := timetable.SaveSource(tx, existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// deferToOtherSource applies §4.6's cross-Source arbitration rules
// (complete-source precedence, then the NCSD_TXC preference) against every
// current Route sharing route's service_code but belonging to a different
// Source, reporting whether route should be skipped rather than persisted.
func deferToOtherSource(tx *sqlx.Tx, source *timetable.Source, route schedule.Route) (skip bool, reason string, err error) {
	conflicts, err := timetable.GetConflictingRoutesTx(tx, route.ServiceCode, source.ID)
	if err != nil {
		return false, "", err
	}
	for _, c := range conflicts {
		if !source.Complete && c.SourceComplete {
			return true, fmt.Sprintf("incomplete source defers to complete source on route %s", c.Code), nil
		}
	}
	for _, c := range conflicts {
		if prefer, decided := PreferNCSDTXC(route.Code, c.Code); decided && !prefer {
			return true, fmt.Sprintf("NCSD_TXC variant %s takes precedence", c.Code), nil
		}
	}
	return false, "", nil
}

// persistRoute resolves a parsed Route's Service, Calendars, Operators and
// ancillary entities, then writes the Route and its Trips via C2's
// identity-preserving BulkReplaceRouteTrips.
func persistRoute(tx *sqlx.Tx, res *resolver, sourceID int64, route schedule.Route) (int64, error) {
	serviceID, err := res.resolveService(route.LineName, uniqueServiceCodeFor(route))
	if err != nil {
		return 0, fmt.Errorf("resolving service: %w", err)
	}

	tr := timetable.Route{
		SourceID:            sourceID,
		Code:                route.Code,
		ServiceID:           serviceID,
		LineName:            route.LineName,
		LineBrand:           route.LineBrand,
		RevisionNumber:      route.RevisionNumber,
		StartDate:           route.StartDate,
		EndDate:             route.EndDate,
		Origin:              route.Origin,
		Destination:         route.Destination,
		Via:                 route.Via,
		OutboundDescription: route.OutboundDescription,
		InboundDescription:  route.InboundDescription,
		ServiceCode:         route.ServiceCode,
	}
	if err := timetable.SaveRoute(tx, &tr); err != nil {
		return 0, fmt.Errorf("saving route: %w", err)
	}

	ingestTrips := make([]timetable.IngestTrip, 0, len(route.Trips))
	for _, trip := range route.Trips {
		it, err := resolveTrip(tx, res, trip)
		if err != nil {
			return 0, fmt.Errorf("resolving trip: %w", err)
		}
		ingestTrips = append(ingestTrips, it)
	}

	if err := timetable.BulkReplaceRouteTrips(tx, tr.ID, ingestTrips); err != nil {
		return 0, fmt.Errorf("replacing trips for route %d: %w", tr.ID, err)
	}
	return tr.ID, nil
}

func resolveTrip(tx *sqlx.Tx, res *resolver, trip schedule.Trip) (timetable.IngestTrip, error) {
	calendarID, err := res.resolveCalendar(trip.Calendar)
	if err != nil {
		return timetable.IngestTrip{}, fmt.Errorf("resolving calendar: %w", err)
	}

	var operatorID *int64
	if trip.OperatorRef != "" {
		id, err := res.resolveOperator(trip.OperatorRef, "", "", trip.OperatorRef, "")
		if err != nil {
			return timetable.IngestTrip{}, fmt.Errorf("resolving operator: %w", err)
		}
		operatorID = &id
	}

	blockID, err := optionalID(trip.Block, res.resolveBlock)
	if err != nil {
		return timetable.IngestTrip{}, err
	}
	garageID, err := optionalID(trip.Garage, res.resolveGarage)
	if err != nil {
		return timetable.IngestTrip{}, err
	}
	vehicleTypeID, err := optionalID(trip.VehicleType, res.resolveVehicleType)
	if err != nil {
		return timetable.IngestTrip{}, err
	}

	noteIDs := make([]int64, 0, len(trip.Notes))
	for _, n := range trip.Notes {
		id, err := res.resolveNote(n)
		if err != nil {
			return timetable.IngestTrip{}, fmt.Errorf("resolving note %s: %w", n.Code, err)
		}
		noteIDs = append(noteIDs, id)
	}

	t := timetable.Trip{
		Inbound:            trip.Inbound,
		CalendarID:         calendarID,
		Destination:        trip.Destination,
		TicketMachineCode:  trip.TicketMachineCode,
		VehicleJourneyCode: trip.VehicleJourneyCode,
		BlockID:            blockID,
		VehicleTypeID:      vehicleTypeID,
		GarageID:           garageID,
		OperatorID:         operatorID,
		JourneyPattern:     trip.JourneyPattern,
	}
	stopTimes := make([]timetable.StopTime, 0, len(trip.StopTimes))
	for _, st := range trip.StopTimes {
		stopCode := st.StopCode
		stopTimes = append(stopTimes, timetable.StopTime{
			Sequence:     st.Sequence,
			StopCode:     &stopCode,
			Arrival:      st.Arrival,
			Departure:    st.Departure,
			TimingStatus: st.TimingStatus,
			PickUp:       st.PickUp,
			SetDown:      st.SetDown,
		})
	}
	if len(stopTimes) > 0 {
		t.Start = stopTimes[0].DepartureOrArrival()
		t.End = stopTimes[len(stopTimes)-1].ArrivalOrDeparture()
	}

	return timetable.IngestTrip{Trip: t, StopTimes: stopTimes, NoteIDs: noteIDs}, nil
}

func optionalID(code *string, resolve func(string) (int64, error)) (*int64, error) {
	if code == nil || *code == "" {
		return nil, nil
	}
	id, err := resolve(*code)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func uniqueServiceCodeFor(route schedule.Route) *string {
	if !transxchange.IsBODSUniqueServiceCode(route.ServiceCode) {
		return nil
	}
	code := route.ServiceCode
	return &code
}

// deleteStaleRoutes removes every Route still attributed to source that
// was not part of this import's kept set, the §4.6 step-4 cleanup.
func deleteStaleRoutes(tx *sqlx.Tx, sourceID int64, keptIDs []int64) error {
	existing, err := timetable.GetRoutesBySourceTx(tx, sourceID)
	if err != nil {
		return err
	}
	kept := make(map[int64]bool, len(keptIDs))
	for _, id := range keptIDs {
		kept[id] = true
	}
	for _, r := range existing {
		if kept[r.ID] {
			continue
		}
		if err := timetable.DeleteRoute(tx, r.ID); err != nil {
			return err
		}
	}
	return nil
}

// IngestMany ingests several archives, running imports in parallel except
// where two imports' Routes share a service_code -- §5's "Different
// Sources may be ingested in parallel on separate workers only if their
// Routes do not share service_code; otherwise the arbitration rules in
// §4.6 require serialisation."
func IngestMany(log *log.Logger, db *sqlx.DB, imports []Import) error {
	groups := groupByServiceCode(imports)

	g := new(errgroup.Group)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			for _, imp := range group {
				if err := IngestArchive(log, db, imp); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// groupByServiceCode partitions imports into chains that must run
// serially: any two imports sharing a service_code end up in the same
// chain, using a union-find over the service_code sets each import's
// Routes touch.
func groupByServiceCode(imports []Import) [][]Import {
	parent := make([]int, len(imports))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	codeOwner := make(map[string]int)
	for i, imp := range imports {
		for _, route := range imp.Schedule.Routes {
			if route.ServiceCode == "" {
				continue
			}
			if owner, ok := codeOwner[route.ServiceCode]; ok {
				union(owner, i)
			} else {
				codeOwner[route.ServiceCode] = i
			}
		}
	}

	byRoot := make(map[int][]Import)
	var order []int
	for i, imp := range imports {
		root := find(i)
		if _, ok := byRoot[root]; !ok {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], imp)
	}

	groups := make([][]Import, 0, len(order))
	for _, root := range order {
		groups = append(groups, byRoot[root])
	}
	return groups
}
