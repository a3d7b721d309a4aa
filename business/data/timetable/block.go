package timetable

import "github.com/jmoiron/sqlx"

// Block is a vehicle working identified by a code; a vehicle executes
// multiple Trips on one Block across a service day.
type Block struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`
}

// Garage is the depot a vehicle is based at.
type Garage struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
}

// VehicleType describes the kind of vehicle used on a Trip.
type VehicleType struct {
	ID          int64  `db:"id"`
	Code        string `db:"code"`
	Description string `db:"description"`
}

// SaveBlock inserts or fetches a Block by its natural key Code.
func SaveBlock(tx *sqlx.Tx, b *Block) error {
	statement := tx.Rebind(`insert into block (code) values (?)
		on conflict (code) do update set code = excluded.code
		returning id`)
	return tx.QueryRow(statement, b.Code).Scan(&b.ID)
}

// SaveGarage inserts or updates a Garage matched by Code.
func SaveGarage(tx *sqlx.Tx, g *Garage) error {
	statement := tx.Rebind(`insert into garage (code, name) values (?, ?)
		on conflict (code) do update set name = excluded.name
		returning id`)
	return tx.QueryRow(statement, g.Code, g.Name).Scan(&g.ID)
}

// SaveVehicleType inserts or updates a VehicleType matched by Code.
func SaveVehicleType(tx *sqlx.Tx, v *VehicleType) error {
	statement := tx.Rebind(`insert into vehicle_type (code, description) values (?, ?)
		on conflict (code) do update set description = excluded.description
		returning id`)
	return tx.QueryRow(statement, v.Code, v.Description).Scan(&v.ID)
}
