package timetable

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// Source is a named origin of timetable data: an operator feed, an open
// data portal entry, or a manually-uploaded archive. Settings carries
// per-source options such as date-windowed file-prefix filters for
// incremental feeds, as free-form JSON text.
type Source struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	URL      string `db:"url"`
	Datetime time.Time `db:"datetime"`
	SHA1     string `db:"sha1"`
	Settings *string `db:"settings"`
	// Complete marks a Source as the authoritative full feed for an
	// operator, used by the arbitration rules in the ingestion coordinator.
	Complete bool `db:"complete"`
}

// SaveSource inserts a new Source or updates an existing one by Name,
// following the insert-or-update-by-natural-key shape used throughout this
// store.
func SaveSource(tx *sqlx.Tx, s *Source) error {
	statement := `insert into source (name, url, datetime, sha1, settings, complete)
		values (:name, :url, :datetime, :sha1, :settings, :complete)
		on conflict (name) do update set
			url = excluded.url,
			datetime = excluded.datetime,
			sha1 = excluded.sha1,
			settings = excluded.settings,
			complete = excluded.complete
		returning id`
	statement = tx.Rebind(statement)
	rows, err := tx.NamedQuery(statement, s)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		return rows.Scan(&s.ID)
	}
	return nil
}

// GetSourceByName retrieves a Source by its stable name, the key used
// throughout §4.6's arbitration rules.
func GetSourceByName(db *sqlx.DB, name string) (*Source, error) {
	var s Source
	err := db.Get(&s, db.Rebind("select * from source where name = ?"), name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSourcesBySHA1Tx retrieves every known Source carrying the given
// content hash, oldest first -- the candidate set §4.6's content-hash
// dedup rule picks a representative from when an archive arriving under a
// new name turns out to be byte-identical to a Source already on record.
func GetSourcesBySHA1Tx(tx *sqlx.Tx, sha1 string) ([]Source, error) {
	var sources []Source
	err := tx.Select(&sources, tx.Rebind("select * from source where sha1 = ? order by id"), sha1)
	return sources, err
}
