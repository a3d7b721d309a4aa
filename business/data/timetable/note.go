package timetable

import "github.com/jmoiron/sqlx"

// Note is a textual footnote attached to zero or more Trips.
type Note struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`
	Text string `db:"text"`
}

// SaveNote inserts or fetches a Note by (Code, Text), the pair that makes a
// footnote unique; reused across trips the way Calendar is content-addressed.
func SaveNote(tx *sqlx.Tx, n *Note) error {
	statement := `insert into note (code, text) values (:code, :text)
		on conflict (code, text) do update set text = excluded.text
		returning id`
	statement = tx.Rebind(statement)
	rows, err := tx.NamedQuery(statement, n)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		return rows.Scan(&n.ID)
	}
	return nil
}

// LinkTripNote associates a Trip with a Note via the trip_note link table.
func LinkTripNote(tx *sqlx.Tx, tripID, noteID int64) error {
	statement := tx.Rebind(`insert into trip_note (trip_id, note_id) values (?, ?)
		on conflict do nothing`)
	_, err := tx.Exec(statement, tripID, noteID)
	return err
}

// GetNotesForTrip retrieves every Note linked to a Trip, the column-foot
// source data for the matrix builder (C7).
func GetNotesForTrip(db *sqlx.DB, tripID int64) ([]Note, error) {
	var notes []Note
	err := db.Select(&notes, db.Rebind(`select note.id, note.code, note.text from note
		join trip_note on trip_note.note_id = note.id
		where trip_note.trip_id = ?`), tripID)
	return notes, err
}
