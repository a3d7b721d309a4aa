package ingest

import (
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/transitstream/timetables/business/parser/schedule"
)

func revision(n int) *int { return &n }

func TestPreferNCSDTXC(t *testing.T) {
	is := is.New(t)
	prefer, decided := PreferNCSDTXC("NCSD_TXC/123", "OTHER/123")
	is.True(decided)
	is.True(prefer)

	_, decided = PreferNCSDTXC("OTHER/1", "OTHER/2")
	is.True(!decided)
}

func TestTicketerRevisionKey(t *testing.T) {
	is := is.New(t)
	is.Equal(TicketerRevisionKey("SVC1", "OP_REV3_20260101.xml"), "SVC1:REV3")
	is.Equal(TicketerRevisionKey("SVC1", "noUnderscores.xml"), "SVC1")
}

func TestArbitrateWithinSourceKeepsMaxRevision(t *testing.T) {
	is := is.New(t)
	routes := []schedule.Route{
		{Code: "A", ServiceCode: "SVC1", RevisionNumber: revision(1)},
		{Code: "B", ServiceCode: "SVC1", RevisionNumber: revision(3)},
		{Code: "C", ServiceCode: "SVC1", RevisionNumber: revision(2)},
	}
	kept := ArbitrateWithinSource(routes, false, "")
	is.Equal(len(kept), 1)
	is.Equal(kept[0].Code, "B")
}

func TestArbitrateWithinSourceKeepsDateOverride(t *testing.T) {
	is := is.New(t)
	d := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)
	routes := []schedule.Route{
		{Code: "A", ServiceCode: "SVC1", RevisionNumber: revision(1)},
		{Code: "OVERRIDE", ServiceCode: "SVC1", StartDate: &d, EndDate: &d},
	}
	kept := ArbitrateWithinSource(routes, false, "")
	is.Equal(len(kept), 2)
}

func TestArbitrateWithinSourceSeparatesDifferentServiceCodes(t *testing.T) {
	is := is.New(t)
	routes := []schedule.Route{
		{Code: "A", ServiceCode: "SVC1", RevisionNumber: revision(1)},
		{Code: "B", ServiceCode: "SVC2", RevisionNumber: revision(1)},
	}
	kept := ArbitrateWithinSource(routes, false, "")
	is.Equal(len(kept), 2)
}

func TestDedupeByContentHash(t *testing.T) {
	is := is.New(t)
	type named struct {
		hash string
		name string
	}
	items := []named{{"h1", "a"}, {"h1", "b"}, {"h2", "c"}}
	kept := DedupeByContentHash(items, func(n named) string { return n.hash })
	is.Equal(len(kept), 2)
	is.Equal(kept[0].name, "a")
	is.Equal(kept[1].name, "c")
}
