package timetable

import (
	"testing"

	"github.com/matryer/is"

	"github.com/transitstream/timetables/foundation/timeoffset"
)

func TestCanRewriteInPlaceMatchingStarts(t *testing.T) {
	is := is.New(t)
	existing := []Trip{
		{ID: 1, Start: timeoffset.FromHMS(8, 0, 0)},
		{ID: 2, Start: timeoffset.FromHMS(9, 0, 0)},
	}
	newTrips := []IngestTrip{
		{Trip: Trip{Start: timeoffset.FromHMS(8, 0, 0)}},
		{Trip: Trip{Start: timeoffset.FromHMS(9, 0, 0)}},
	}
	is.True(canRewriteInPlace(existing, newTrips))
}

func TestCanRewriteInPlaceCountMismatch(t *testing.T) {
	is := is.New(t)
	existing := []Trip{{ID: 1, Start: timeoffset.FromHMS(8, 0, 0)}}
	newTrips := []IngestTrip{
		{Trip: Trip{Start: timeoffset.FromHMS(8, 0, 0)}},
		{Trip: Trip{Start: timeoffset.FromHMS(9, 0, 0)}},
	}
	is.True(!canRewriteInPlace(existing, newTrips))
}

func TestCanRewriteInPlaceStartMismatch(t *testing.T) {
	is := is.New(t)
	existing := []Trip{{ID: 1, Start: timeoffset.FromHMS(8, 0, 0)}}
	newTrips := []IngestTrip{{Trip: Trip{Start: timeoffset.FromHMS(8, 5, 0)}}}
	is.True(!canRewriteInPlace(existing, newTrips))
}
