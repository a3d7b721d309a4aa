package atcocif

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

// fixedLine builds a line of length n filled with spaces, then writes each
// (start, value) pair at its byte offset -- a small builder so tests can
// target the exact byte ranges §4.4 specifies without juggling padding.
func fixedLine(n int, fields map[int]string) string {
	line := []byte(strings.Repeat(" ", n))
	for start, value := range fields {
		copy(line[start:], value)
	}
	return string(line)
}

func buildQD(operatorCode, lineName, description string) string {
	return fixedLine(12+len(description), map[int]string{
		0: "QD", 3: operatorCode, 7: lineName, 12: description,
	})
}

func buildQS(mask, start, end, direction string) string {
	return fixedLine(65, map[int]string{
		0: "QS", 13: start, 21: end, 29: mask, 64: direction,
	})
}

func buildQO(stop, departure string) string {
	return fixedLine(18, map[int]string{0: "QO", 2: stop, 14: departure})
}

func buildQI(stop, arrival, departure, timingStatus string) string {
	return fixedLine(28, map[int]string{
		0: "QI", 2: stop, 14: arrival, 18: departure, 26: timingStatus,
	})
}

func buildQT(stop, arrival string) string {
	return fixedLine(18, map[int]string{0: "QT", 2: stop, 14: arrival})
}

func buildQN(text string) string {
	return fixedLine(2+len(text), map[int]string{0: "QN", 2: text})
}

func TestParseSimpleTripWithPickupNote(t *testing.T) {
	is := is.New(t)
	lines := []string{
		buildQD("OP01", "L1", "Example route"),
		buildQS("1111100", "20260101", "99999999", "O"),
		buildQO("STOPA", "0800"),
		buildQI("STOPB", "0810", "0812", "T1"),
		buildQN("pick up only"),
		buildQT("STOPC", "0820"),
	}
	sched, warnings, err := Parse(strings.NewReader(strings.Join(lines, "\n")), "test.cif")
	is.NoErr(err)
	is.Equal(len(warnings), 0)
	is.Equal(len(sched.Routes), 1)

	route := sched.Routes[0]
	is.Equal(len(route.Trips), 1)
	trip := route.Trips[0]
	is.Equal(len(trip.StopTimes), 3)
	is.Equal(trip.StopTimes[0].StopCode, "STOPA")
	is.Equal(trip.StopTimes[1].StopCode, "STOPB")
	is.Equal(string(trip.StopTimes[1].TimingStatus), "principal")
	is.True(trip.StopTimes[1].PickUp)
	is.True(!trip.StopTimes[1].SetDown)
	is.Equal(trip.StopTimes[2].StopCode, "STOPC")
	is.Equal(*trip.Destination, "STOPC")
	is.Equal(trip.Calendar.Weekdays, [7]bool{true, true, true, true, true, false, false})
}

func TestSetDownOnlyNote(t *testing.T) {
	is := is.New(t)
	lines := []string{
		buildQD("OP01", "L1", "Example route"),
		buildQS("1111100", "20260101", "99999999", "O"),
		buildQO("STOPA", "0800"),
		buildQI("STOPB", "0810", "0812", "T0"),
		buildQN("set down only"),
		buildQT("STOPC", "0820"),
	}
	sched, _, err := Parse(strings.NewReader(strings.Join(lines, "\n")), "test.cif")
	is.NoErr(err)
	trip := sched.Routes[0].Trips[0]
	is.True(!trip.StopTimes[1].PickUp)
	is.True(trip.StopTimes[1].SetDown)
	is.Equal(string(trip.StopTimes[1].TimingStatus), "other")
}

func TestTripLevelNoteAfterQS(t *testing.T) {
	is := is.New(t)
	lines := []string{
		buildQD("OP01", "L1", "Example route"),
		buildQS("1111100", "20260101", "99999999", "O"),
		buildQN("TL001School days only"),
		buildQO("STOPA", "0800"),
		buildQT("STOPC", "0820"),
	}
	sched, _, err := Parse(strings.NewReader(strings.Join(lines, "\n")), "test.cif")
	is.NoErr(err)
	trip := sched.Routes[0].Trips[0]
	is.Equal(len(trip.Notes), 1)
	is.Equal(trip.Notes[0].Code, "TL001")
}

func TestSourceNameFromFilename(t *testing.T) {
	is := is.New(t)
	is.Equal(SourceNameFromFilename("ULB_OCT2026.zip"), "ULB")
	is.Equal(SourceNameFromFilename("met_data.zip"), "MET")
	is.Equal(SourceNameFromFilename("other.zip"), "MET")
}
