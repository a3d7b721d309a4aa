package ingest

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/transitstream/timetables/business/parser/schedule"
)

// ContentHash computes the SHA1 hex digest of a source file's bytes, the
// content-address the §4.6 arbitration rules use to recognise two Sources
// carrying identical feed content -- adapted from the teacher's
// DataSet.ETag/LastModifiedTimestamp change-detection idea, generalised
// from an HTTP-header comparison into a byte-content comparison since this
// module's archives arrive as local files, not URLs.
func ContentHash(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// ncsdTXCPrefix marks the known-feed special case from §4.6: when two
// current Routes for the same line disagree, the NCSD_TXC variant wins.
const ncsdTXCPrefix = "NCSD_TXC/"

// PreferNCSDTXC reports whether a is preferred over b under the NCSD_TXC
// rule, or false if neither (or both) carry the prefix and the rule does
// not decide between them.
func PreferNCSDTXC(aCode, bCode string) (prefer bool, decided bool) {
	aIsNCSD := strings.HasPrefix(aCode, ncsdTXCPrefix)
	bIsNCSD := strings.HasPrefix(bCode, ncsdTXCPrefix)
	if aIsNCSD == bIsNCSD {
		return false, false
	}
	return aIsNCSD, true
}

// TicketerRevisionKey builds the alternate arbitration key a "Ticketer"
// feed uses in place of plain ServiceCode: service_code plus the second
// '_'-separated segment of the source filename, which for Ticketer feeds
// carries the revision-distinguishing part plain ServiceCode does not.
func TicketerRevisionKey(serviceCode, filename string) string {
	segments := strings.Split(filename, "_")
	if len(segments) < 2 {
		return serviceCode
	}
	return serviceCode + ":" + segments[1]
}

// ArbitrateWithinSource implements the first paragraph of §4.6's source
// arbitration: within one Source's parsed Routes, when several overlap in
// time for the same arbitration key, keep only the one with the maximum
// RevisionNumber.
func ArbitrateWithinSource(routes []schedule.Route, isTicketer bool, filename string) []schedule.Route {
	groups := make(map[string][]schedule.Route)
	var order []string
	for _, r := range routes {
		key := r.ServiceCode
		if isTicketer {
			key = TicketerRevisionKey(r.ServiceCode, filename)
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	var kept []schedule.Route
	for _, key := range order {
		candidates := groups[key]
		kept = append(kept, arbitrateOverlappingGroup(candidates)...)
	}
	return kept
}

// arbitrateOverlappingGroup separates per-date overrides (which always
// survive, per §4.6's last rule) from ordinary Routes, then keeps only the
// highest-revision-numbered ordinary Route per overlapping time window.
func arbitrateOverlappingGroup(candidates []schedule.Route) []schedule.Route {
	var overrides, ordinary []schedule.Route
	for _, r := range candidates {
		if isDateOverride(r) {
			overrides = append(overrides, r)
			continue
		}
		ordinary = append(ordinary, r)
	}

	if len(ordinary) == 0 {
		return overrides
	}

	best := ordinary[0]
	bestRevision := revisionOf(best)
	for _, r := range ordinary[1:] {
		if rev := revisionOf(r); rev > bestRevision {
			best = r
			bestRevision = rev
		}
	}
	return append(overrides, best)
}

func isDateOverride(r schedule.Route) bool {
	return r.StartDate != nil && r.EndDate != nil && r.StartDate.Equal(*r.EndDate)
}

func revisionOf(r schedule.Route) int {
	if r.RevisionNumber == nil {
		return -1
	}
	return *r.RevisionNumber
}

// DedupeByContentHash keeps one representative entry per content hash from
// a set of (hash, value) pairs, in first-seen order -- the second clause of
// §4.6's cross-Source arbitration, used when deciding which of several
// Sources with byte-identical feed content to keep.
func DedupeByContentHash[T any](items []T, hashOf func(T) string) []T {
	seen := make(map[string]bool)
	var kept []T
	for _, item := range items {
		h := hashOf(item)
		if seen[h] {
			continue
		}
		seen[h] = true
		kept = append(kept, item)
	}
	return kept
}

// SortByLineName provides a stable, deterministic iteration order for
// arbitrated Routes before persistence, so re-running an import against
// unchanged input produces the same Trip insert order (§5's ordering
// guarantee applies within a Route; this keeps cross-Route logging stable
// too).
func SortByLineName(routes []schedule.Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].LineName < routes[j].LineName
	})
}
