package timetable

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// Route is a concrete timetable version for a Service, sourced from one
// Source and one file. (Source, Code) is unique; deleting a Route cascades
// to its Trips.
type Route struct {
	ID                  int64      `db:"id"`
	SourceID            int64      `db:"source_id"`
	Code                string     `db:"code"`
	ServiceID           int64      `db:"service_id"`
	LineName            string     `db:"line_name"`
	LineBrand           *string    `db:"line_brand"`
	RevisionNumber      *int       `db:"revision_number"`
	StartDate           *time.Time `db:"start_date"`
	EndDate             *time.Time `db:"end_date"`
	Origin              *string    `db:"origin"`
	Destination         *string    `db:"destination"`
	Via                 *string    `db:"via"`
	OutboundDescription *string    `db:"outbound_description"`
	InboundDescription  *string    `db:"inbound_description"`
	// ServiceCode is the arbitration key used by §4.6 (e.g. the TransXChange
	// <ServiceCode> or an ATCO-CIF LINE_OPERATOR key).
	ServiceCode string `db:"service_code"`
}

// IsDateOverride reports whether this Route is a per-date override (§4.6):
// StartDate and EndDate both set to the same single day.
func (r *Route) IsDateOverride() bool {
	return r.StartDate != nil && r.EndDate != nil && truncateToDay(*r.StartDate).Equal(truncateToDay(*r.EndDate))
}

// SaveRoute inserts or updates a Route keyed by (SourceID, Code).
func SaveRoute(tx *sqlx.Tx, r *Route) error {
	statement := `insert into route (
			source_id, code, service_id, line_name, line_brand, revision_number,
			start_date, end_date, origin, destination, via,
			outbound_description, inbound_description, service_code)
		values (
			:source_id, :code, :service_id, :line_name, :line_brand, :revision_number,
			:start_date, :end_date, :origin, :destination, :via,
			:outbound_description, :inbound_description, :service_code)
		on conflict (source_id, code) do update set
			service_id = excluded.service_id,
			line_name = excluded.line_name,
			line_brand = excluded.line_brand,
			revision_number = excluded.revision_number,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			origin = excluded.origin,
			destination = excluded.destination,
			via = excluded.via,
			outbound_description = excluded.outbound_description,
			inbound_description = excluded.inbound_description,
			service_code = excluded.service_code
		returning id`
	statement = tx.Rebind(statement)
	rows, err := tx.NamedQuery(statement, r)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		return rows.Scan(&r.ID)
	}
	return nil
}

// DeleteRoute removes a Route and cascades to its Trips and StopTimes.
func DeleteRoute(tx *sqlx.Tx, routeID int64) error {
	_, err := tx.Exec(tx.Rebind("delete from route where id = ?"), routeID)
	return err
}

// GetRoutesBySource retrieves every Route currently attributed to a Source,
// used by the ingestion coordinator to mark stale routes after a re-import.
func GetRoutesBySource(db *sqlx.DB, sourceID int64) ([]Route, error) {
	var routes []Route
	err := db.Select(&routes, db.Rebind("select * from route where source_id = ?"), sourceID)
	return routes, err
}

// GetRoutesBySourceTx is GetRoutesBySource run inside an open transaction,
// so it sees this transaction's own uncommitted writes -- needed by the
// coordinator's stale-route cleanup, which must compare against Routes it
// just upserted in the same transaction.
func GetRoutesBySourceTx(tx *sqlx.Tx, sourceID int64) ([]Route, error) {
	var routes []Route
	err := tx.Select(&routes, tx.Rebind("select * from route where source_id = ?"), sourceID)
	return routes, err
}

// GetRoutesByServiceCode retrieves every current Route sharing serviceCode
// across all Sources, the set the §4.6 arbitration rules choose among when
// multiple Sources claim the same line.
func GetRoutesByServiceCode(db *sqlx.DB, serviceCode string) ([]Route, error) {
	var routes []Route
	err := db.Select(&routes, db.Rebind("select * from route where service_code = ?"), serviceCode)
	return routes, err
}

// GetRoutesActiveOn retrieves every Route whose validity window includes d,
// the starting point for matrix construction (C7).
func GetRoutesActiveOn(db *sqlx.DB, d time.Time) ([]Route, error) {
	var routes []Route
	query := `select * from route where
		(start_date is null or start_date <= ?) and
		(end_date is null or end_date >= ?)`
	err := db.Select(&routes, db.Rebind(query), d, d)
	return routes, err
}

// ConflictingRoute is a current Route sharing a service_code with one
// being ingested, carrying its owning Source's arbitration-relevant
// fields -- the join §4.6's cross-Source rules (complete-source
// precedence, NCSD_TXC preference) decide among.
type ConflictingRoute struct {
	Code           string `db:"code"`
	SourceID       int64  `db:"source_id"`
	SourceComplete bool   `db:"source_complete"`
}

// GetConflictingRoutesTx retrieves every current Route sharing serviceCode
// that belongs to a Source other than excludeSourceID.
func GetConflictingRoutesTx(tx *sqlx.Tx, serviceCode string, excludeSourceID int64) ([]ConflictingRoute, error) {
	if serviceCode == "" {
		return nil, nil
	}
	query := `select r.code, r.source_id, s.complete as source_complete
		from route r join source s on s.id = r.source_id
		where r.service_code = ? and r.source_id != ?`
	var rows []ConflictingRoute
	err := tx.Select(&rows, tx.Rebind(query), serviceCode, excludeSourceID)
	return rows, err
}

// GetRoutesByIDs retrieves Routes by id, the shape matrix-service's
// route_id query parameter needs.
func GetRoutesByIDs(db *sqlx.DB, ids []int64) ([]Route, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("select * from route where id in (?)", ids)
	if err != nil {
		return nil, err
	}
	var routes []Route
	err = db.Select(&routes, db.Rebind(query), args...)
	return routes, err
}
