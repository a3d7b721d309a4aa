package transxchange

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

const sampleDoc = `<?xml version="1.0"?>
<TransXChange>
  <Operators>
    <Operator id="OP1">
      <NationalOperatorCode>ABCD</NationalOperatorCode>
      <OperatorShortName>Sample Buses</OperatorShortName>
    </Operator>
  </Operators>
  <JourneyPatternSections>
    <JourneyPatternSection id="JPS1">
      <JourneyPatternTimingLink id="L1">
        <From>
          <StopPointRef>S1</StopPointRef>
          <TimingStatus>PTP</TimingStatus>
          <Activity>pickUp</Activity>
        </From>
        <To>
          <StopPointRef>S2</StopPointRef>
          <TimingStatus>OTH</TimingStatus>
          <Activity>normal</Activity>
          <WaitTime>PT1M</WaitTime>
        </To>
        <RunTime>PT10M</RunTime>
      </JourneyPatternTimingLink>
      <JourneyPatternTimingLink id="L2">
        <From>
          <StopPointRef>S2</StopPointRef>
          <TimingStatus>OTH</TimingStatus>
          <Activity>normal</Activity>
        </From>
        <To>
          <StopPointRef>S3</StopPointRef>
          <TimingStatus>PTP</TimingStatus>
          <Activity>setDown</Activity>
        </To>
        <RunTime>PT5M</RunTime>
      </JourneyPatternTimingLink>
    </JourneyPatternSection>
  </JourneyPatternSections>
  <Services>
    <Service>
      <ServiceCode>SVC1</ServiceCode>
      <Lines>
        <Line id="LN1">
          <LineName>1</LineName>
        </Line>
      </Lines>
      <OperatingPeriod>
        <StartDate>2026-01-01</StartDate>
      </OperatingPeriod>
      <RegisteredOperatorRef>OP1</RegisteredOperatorRef>
      <StandardService>
        <Origin>Town Centre</Origin>
        <Destination>Retail Park</Destination>
        <JourneyPattern id="JP1">
          <Direction>outbound</Direction>
          <JourneyPatternSectionRefs>JPS1</JourneyPatternSectionRefs>
        </JourneyPattern>
      </StandardService>
      <OperatingProfile>
        <RegularDayType>
          <DaysOfWeek><MondayToFriday/></DaysOfWeek>
        </RegularDayType>
      </OperatingProfile>
    </Service>
  </Services>
  <VehicleJourneys>
    <VehicleJourney>
      <VehicleJourneyCode>VJ1</VehicleJourneyCode>
      <ServiceRef>SVC1</ServiceRef>
      <JourneyPatternRef>JP1</JourneyPatternRef>
      <DepartureTime>08:00:00</DepartureTime>
    </VehicleJourney>
  </VehicleJourneys>
</TransXChange>`

func TestParseSimpleTrip(t *testing.T) {
	is := is.New(t)
	sched, warnings, err := Parse(strings.NewReader(sampleDoc), "sample.xml", Options{})
	is.NoErr(err)
	is.Equal(len(warnings), 0)
	is.Equal(len(sched.Routes), 1)

	route := sched.Routes[0]
	is.Equal(route.ServiceCode, "SVC1")
	is.Equal(len(route.Trips), 1)

	trip := route.Trips[0]
	is.Equal(len(trip.StopTimes), 3)
	is.Equal(trip.StopTimes[0].StopCode, "S1")
	is.True(trip.StopTimes[0].Departure != nil)
	is.Equal(trip.StopTimes[0].Departure.String(), "08:00:00")

	is.Equal(trip.StopTimes[1].StopCode, "S2")
	is.Equal(trip.StopTimes[1].Arrival.String(), "08:10:00")
	is.Equal(trip.StopTimes[1].Departure.String(), "08:11:00")

	is.Equal(trip.StopTimes[2].StopCode, "S3")
	is.Equal(trip.StopTimes[2].Arrival.String(), "08:16:00")
	is.True(trip.StopTimes[2].Departure == nil)

	is.Equal(trip.Calendar.Weekdays, [7]bool{true, true, true, true, true, false, false})
}

func TestDeadRunSuppression(t *testing.T) {
	is := is.New(t)
	links := []JourneyPatternTimingLink{
		{ID: "DEAD1", From: StopUsage{StopRef: "GARAGE"}, To: StopUsage{StopRef: "S1"}, RunTime: 0},
		{ID: "L1", From: StopUsage{StopRef: "S1"}, To: StopUsage{StopRef: "S2"}, RunTime: 0},
		{ID: "DEAD2", From: StopUsage{StopRef: "S2"}, To: StopUsage{StopRef: "GARAGE"}, RunTime: 0},
	}
	vj := VehicleJourney{StartDeadRunLinkID: "DEAD1", EndDeadRunLinkID: "DEAD2"}
	stops := walkJourney(links, vj)
	is.Equal(len(stops), 2)
	is.Equal(stops[0].StopRef, "S1")
	is.Equal(stops[1].StopRef, "S2")
}

func TestBODSServiceCodePattern(t *testing.T) {
	is := is.New(t)
	is.True(IsBODSUniqueServiceCode("PB0002032:339"))
	is.True(!IsBODSUniqueServiceCode("339"))
}
