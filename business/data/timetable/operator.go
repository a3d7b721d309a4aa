package timetable

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Operator is identified by a stable code (e.g. a National Operator Code).
// It is external to the ingestion core but referenced by Route and Trip; no
// CRUD lives here beyond lookups the resolution ladder in the TransXChange
// parser needs.
type Operator struct {
	ID                   int64  `db:"id"`
	NationalOperatorCode string `db:"national_operator_code"`
	LicenceNumber        string `db:"licence_number"`
	Name                 string `db:"name"`
	// RegionCode is used by the region-local operator code mapping step of
	// the resolution ladder (§4.3).
	RegionCode string `db:"region_code"`
}

// SaveOperator inserts a new Operator or updates an existing one matched by
// NationalOperatorCode, falling back to an insert keyed by Name when the
// code is blank (the final rung of the §4.3 resolution ladder, for feeds
// that never carry a NOC at all).
func SaveOperator(tx *sqlx.Tx, o *Operator) error {
	var statement string
	if o.NationalOperatorCode != "" {
		statement = tx.Rebind(`insert into operator
			(national_operator_code, licence_number, name, region_code)
			values (?, ?, ?, ?)
			on conflict (national_operator_code) do update set
				licence_number = excluded.licence_number,
				name = excluded.name,
				region_code = excluded.region_code
			returning id`)
	} else {
		statement = tx.Rebind(`insert into operator
			(national_operator_code, licence_number, name, region_code)
			values (?, ?, ?, ?)
			on conflict (name) do update set
				licence_number = excluded.licence_number,
				region_code = excluded.region_code
			returning id`)
	}
	return tx.QueryRow(statement, o.NationalOperatorCode, o.LicenceNumber, o.Name, o.RegionCode).Scan(&o.ID)
}

// GetOperatorByNOC, GetOperatorByLicenceNumber and GetOperatorByName
// implement the database-backed half of the §4.3 resolution ladder once
// parsed data is being resolved against the persisted Operator set rather
// than a single archive's own in-memory table.
func GetOperatorByNOC(db *sqlx.DB, noc string) (*Operator, error) {
	return getOperatorBy(db, "national_operator_code", noc)
}

func GetOperatorByLicenceNumber(db *sqlx.DB, licenceNumber string) (*Operator, error) {
	return getOperatorBy(db, "licence_number", licenceNumber)
}

func GetOperatorByName(db *sqlx.DB, name string) (*Operator, error) {
	return getOperatorBy(db, "name", name)
}

func getOperatorBy(db *sqlx.DB, column, value string) (*Operator, error) {
	if value == "" {
		return nil, nil
	}
	var o Operator
	err := db.Get(&o, db.Rebind("select * from operator where "+column+" = ?"), value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
