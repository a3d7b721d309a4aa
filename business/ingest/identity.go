// Package ingest is the coordinator (C6): it takes the intermediate model
// any format parser produces and resolves it against the store, following
// gtfsmanager.go's UpdateGTFSSchedule/loadGTFSScheduleFromFile/transact
// shape -- generalised from a single GTFS-only loader into one coordinator
// that is polymorphic over schedule.Schedule regardless of which parser
// produced it.
package ingest

import (
	"github.com/jmoiron/sqlx"

	"github.com/transitstream/timetables/business/data/timetable"
	"github.com/transitstream/timetables/business/parser/schedule"
)

// resolver caches entity lookups/inserts for the duration of one archive
// import, mirroring §5's "Calendar cache (C1) and Note cache are
// per-import-run, not shared across workers".
type resolver struct {
	tx *sqlx.Tx

	calendarsByHash map[string]int64
	notesByKey      map[string]int64
	operatorsByRef  map[string]int64
	blocksByCode    map[string]int64
	garagesByCode   map[string]int64
	vehiclesByCode  map[string]int64
	servicesByLine  map[string]int64
}

func newResolver(tx *sqlx.Tx) *resolver {
	return &resolver{
		tx:              tx,
		calendarsByHash: make(map[string]int64),
		notesByKey:      make(map[string]int64),
		operatorsByRef:  make(map[string]int64),
		blocksByCode:    make(map[string]int64),
		garagesByCode:   make(map[string]int64),
		vehiclesByCode:  make(map[string]int64),
		servicesByLine:  make(map[string]int64),
	}
}

// resolveCalendar content-addresses c by RuleHash, inserting a new row only
// the first time a given rule set is seen this run.
func (r *resolver) resolveCalendar(c schedule.Calendar) (int64, error) {
	tc := timetable.Calendar{
		Mon: c.Weekdays[0], Tue: c.Weekdays[1], Wed: c.Weekdays[2], Thu: c.Weekdays[3],
		Fri: c.Weekdays[4], Sat: c.Weekdays[5], Sun: c.Weekdays[6],
		Start: c.Start, End: c.End, Summary: c.Summary,
		Dates:    c.Dates,
		BankHols: c.BankHols,
	}
	hash := tc.RuleHash()
	if id, ok := r.calendarsByHash[hash]; ok {
		return id, nil
	}
	if err := timetable.SaveCalendar(r.tx, &tc); err != nil {
		return 0, err
	}
	r.calendarsByHash[hash] = tc.ID
	return tc.ID, nil
}

// resolveNote inserts or fetches a Note by (Code, Text), caching by that
// pair for the run.
func (r *resolver) resolveNote(n schedule.Note) (int64, error) {
	key := n.Code + "\x00" + n.Text
	if id, ok := r.notesByKey[key]; ok {
		return id, nil
	}
	note := timetable.Note{Code: n.Code, Text: n.Text}
	if err := timetable.SaveNote(r.tx, &note); err != nil {
		return 0, err
	}
	r.notesByKey[key] = note.ID
	return note.ID, nil
}

// resolveOperator inserts or fetches an Operator keyed by ref (the Trip's
// OperatorRef as the parser set it; the TransXChange parser puts the
// matched Operator element's id there), caching it for the run.
func (r *resolver) resolveOperator(ref string, noc, licenceNumber, name, regionCode string) (int64, error) {
	if ref == "" {
		return 0, nil
	}
	if id, ok := r.operatorsByRef[ref]; ok {
		return id, nil
	}
	op := timetable.Operator{
		NationalOperatorCode: noc,
		LicenceNumber:        licenceNumber,
		Name:                 name,
		RegionCode:           regionCode,
	}
	if err := timetable.SaveOperator(r.tx, &op); err != nil {
		return 0, err
	}
	r.operatorsByRef[ref] = op.ID
	return op.ID, nil
}

func (r *resolver) resolveBlock(code string) (int64, error) {
	if code == "" {
		return 0, nil
	}
	if id, ok := r.blocksByCode[code]; ok {
		return id, nil
	}
	b := timetable.Block{Code: code}
	if err := timetable.SaveBlock(r.tx, &b); err != nil {
		return 0, err
	}
	r.blocksByCode[code] = b.ID
	return b.ID, nil
}

func (r *resolver) resolveGarage(code string) (int64, error) {
	if code == "" {
		return 0, nil
	}
	if id, ok := r.garagesByCode[code]; ok {
		return id, nil
	}
	g := timetable.Garage{Code: code}
	if err := timetable.SaveGarage(r.tx, &g); err != nil {
		return 0, err
	}
	r.garagesByCode[code] = g.ID
	return g.ID, nil
}

func (r *resolver) resolveVehicleType(code string) (int64, error) {
	if code == "" {
		return 0, nil
	}
	if id, ok := r.vehiclesByCode[code]; ok {
		return id, nil
	}
	v := timetable.VehicleType{Code: code}
	if err := timetable.SaveVehicleType(r.tx, &v); err != nil {
		return 0, err
	}
	r.vehiclesByCode[code] = v.ID
	return v.ID, nil
}

// resolveService inserts or fetches a Service by LineName, populating
// UniqueServiceCode the first time it is seen for that line.
func (r *resolver) resolveService(lineName string, uniqueServiceCode *string) (int64, error) {
	if id, ok := r.servicesByLine[lineName]; ok {
		return id, nil
	}
	svc := timetable.Service{LineName: lineName, Current: true, UniqueServiceCode: uniqueServiceCode}
	if err := timetable.SaveService(r.tx, &svc); err != nil {
		return 0, err
	}
	r.servicesByLine[lineName] = svc.ID
	return svc.ID, nil
}
