package timetable

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Service is a logical bus line: a line name and description that may have
// one or more Routes (timetable versions) across Sources and time.
type Service struct {
	ID                int64   `db:"id"`
	LineName          string  `db:"line_name"`
	Description        *string `db:"description"`
	PublicUse         bool    `db:"public_use"`
	Region            *string `db:"region"`
	Mode              *string `db:"mode"`
	Current           bool    `db:"current"`
	// UniqueServiceCode is populated when the BODS-style regex in §4.3
	// matches, enabling cross-source de-duplication.
	UniqueServiceCode *string `db:"unique_service_code"`
}

// SaveService inserts a new Service or updates an existing one matched by
// LineName, keeping Current true whenever a Route import references it
// (the coordinator flips it false later via MarkServicesNotCurrentWithNoRoutes
// only when no current Route remains).
func SaveService(tx *sqlx.Tx, s *Service) error {
	statement := tx.Rebind(`insert into service
		(line_name, description, public_use, region, mode, current, unique_service_code)
		values (?, ?, ?, ?, ?, ?, ?)
		on conflict (line_name) do update set
			description = excluded.description,
			public_use = excluded.public_use,
			region = excluded.region,
			mode = excluded.mode,
			current = excluded.current,
			unique_service_code = coalesce(excluded.unique_service_code, service.unique_service_code)
		returning id`)
	return tx.QueryRow(statement, s.LineName, s.Description, s.PublicUse, s.Region, s.Mode, s.Current, s.UniqueServiceCode).
		Scan(&s.ID)
}

// GetServiceByUniqueServiceCode looks up a Service by its BODS-style
// unique_service_code, the cross-source dedup key from §4.3.
func GetServiceByUniqueServiceCode(db *sqlx.DB, code string) (*Service, error) {
	var s Service
	err := db.Get(&s, db.Rebind("select * from service where unique_service_code = ?"), code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkServicesNotCurrentWithNoRoutes flips Current to false for every
// Service with no remaining current Route, the last step of §4.6's
// per-archive post-processing.
func MarkServicesNotCurrentWithNoRoutes(tx *sqlx.Tx) error {
	statement := `update service set current = false
		where current = true
		and id not in (
			select distinct service_id from route where
				(start_date is null or start_date <= now())
				and (end_date is null or end_date >= now())
		)`
	_, err := tx.Exec(tx.Rebind(statement))
	return err
}
