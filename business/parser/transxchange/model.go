// Package transxchange parses TransXChange 2.1/2.4 XML into the shared
// schedule.Schedule intermediate model (§4.3). The XML is decoded with
// struct tags rather than a manual token walk -- the schema nests deeply
// but maps cleanly onto Go structs, the same trade the netex-gtfs-converter
// pack repo makes for an equally deep UK-transport XML schema.
package transxchange

import "encoding/xml"

// document is the root <TransXChange> element, narrowed to the nodes this
// parser consumes: StopPoints, JourneyPatternSections, Operators, Services,
// VehicleJourneys, ServicedOrganisations.
type document struct {
	XMLName               xml.Name               `xml:"TransXChange"`
	StopPoints             []xmlStopPoint          `xml:"StopPoints>AnnotatedStopPointRef"`
	JourneyPatternSections []xmlJPSection          `xml:"JourneyPatternSections>JourneyPatternSection"`
	Operators              []xmlOperator           `xml:"Operators>Operator"`
	Services               []xmlService            `xml:"Services>Service"`
	VehicleJourneys        []xmlVehicleJourney      `xml:"VehicleJourneys>VehicleJourney"`
	ServicedOrganisations  []xmlServicedOrganisation `xml:"ServicedOrganisations>ServicedOrganisation"`
}

type xmlStopPoint struct {
	StopPointRef string `xml:"StopPointRef"`
	CommonName   string `xml:"CommonName"`
}

type xmlOperator struct {
	ID                   string `xml:"id,attr"`
	NationalOperatorCode string `xml:"NationalOperatorCode"`
	LicenceNumber        string `xml:"LicenceNumber"`
	OperatorCode         string `xml:"OperatorCode"`
	OperatorShortName    string `xml:"OperatorShortName"`
	TradingName          string `xml:"TradingName"`
}

type xmlJPSection struct {
	ID          string                `xml:"id,attr"`
	TimingLinks []xmlJPTimingLink `xml:"JourneyPatternTimingLink"`
}

type xmlJPTimingLink struct {
	ID       string      `xml:"id,attr"`
	From     xmlStopUsage `xml:"From"`
	To       xmlStopUsage `xml:"To"`
	RunTime  string      `xml:"RunTime"`
}

type xmlStopUsage struct {
	StopPointRef string `xml:"StopPointRef"`
	TimingStatus string `xml:"TimingStatus"`
	Activity     string `xml:"Activity"`
	WaitTime     string `xml:"WaitTime"`
}

type xmlService struct {
	ServiceCode       string                  `xml:"ServiceCode"`
	Mode              string                  `xml:"Mode"`
	OperatingPeriod   xmlDateRange             `xml:"OperatingPeriod"`
	StandardService   xmlStandardService       `xml:"StandardService"`
	Lines             []xmlLine                `xml:"Lines>Line"`
	OperatingProfile  *xmlOperatingProfile     `xml:"OperatingProfile"`
	RegisteredOperatorRef string              `xml:"RegisteredOperatorRef"`
	PublicUse         *bool                   `xml:"PublicUse"`
}

type xmlDateRange struct {
	StartDate string `xml:"StartDate"`
	EndDate   string `xml:"EndDate"`
}

type xmlStandardService struct {
	Origin         string            `xml:"Origin"`
	Destination    string            `xml:"Destination"`
	Vias           []string          `xml:"Via"`
	JourneyPatterns []xmlJourneyPattern `xml:"JourneyPattern"`
}

type xmlJourneyPattern struct {
	ID                string   `xml:"id,attr"`
	Direction         string   `xml:"Direction"`
	RouteRef          string   `xml:"RouteRef"`
	JourneyPatternSectionRefs []string `xml:"JourneyPatternSectionRefs"`
}

type xmlLine struct {
	ID                  string `xml:"id,attr"`
	LineName            string `xml:"LineName"`
	OutboundDescription xmlLineDescription `xml:"OutboundDescription"`
	InboundDescription  xmlLineDescription `xml:"InboundDescription"`
}

type xmlLineDescription struct {
	Description string `xml:"Description"`
}

type xmlOperatingProfile struct {
	RegularDayType          xmlRegularDayType           `xml:"RegularDayType"`
	SpecialDaysOperation    *xmlSpecialDaysOperation     `xml:"SpecialDaysOperation"`
	BankHolidayOperation    *xmlBankHolidayOperation     `xml:"BankHolidayOperation"`
	ServicedOrganisationDayType *xmlServicedOrgDayType   `xml:"ServicedOrganisationDayType"`
}

type xmlRegularDayType struct {
	DaysOfWeek *xmlDaysOfWeek `xml:"DaysOfWeek"`
}

// xmlDaysOfWeek is decoded by presence of child elements, since TransXChange
// represents the weekday set as a choice of tag names (<Monday/>, <MondayToFriday/>,
// <Weekend/>, ...) rather than a value.
type xmlDaysOfWeek struct {
	Monday         *struct{} `xml:"Monday"`
	Tuesday        *struct{} `xml:"Tuesday"`
	Wednesday      *struct{} `xml:"Wednesday"`
	Thursday       *struct{} `xml:"Thursday"`
	Friday         *struct{} `xml:"Friday"`
	Saturday       *struct{} `xml:"Saturday"`
	Sunday         *struct{} `xml:"Sunday"`
	MondayToFriday *struct{} `xml:"MondayToFriday"`
	MondayToSaturday *struct{} `xml:"MondayToSaturday"`
	MondayToSunday *struct{} `xml:"MondayToSunday"`
	Weekend        *struct{} `xml:"Weekend"`
	NotSaturday    *struct{} `xml:"NotSaturday"`
}

type xmlSpecialDaysOperation struct {
	DaysOfOperation []xmlDateRangeDef `xml:"DaysOfOperation>DateRange"`
	DaysOfNonOperation []xmlDateRangeDef `xml:"DaysOfNonOperation>DateRange"`
}

type xmlDateRangeDef struct {
	StartDate string `xml:"StartDate"`
	EndDate   string `xml:"EndDate"`
}

type xmlBankHolidayOperation struct {
	DaysOfOperation    xmlBankHolidayList `xml:"DaysOfOperation"`
	DaysOfNonOperation xmlBankHolidayList `xml:"DaysOfNonOperation"`
}

// xmlBankHolidayList captures the raw child element names (e.g.
// <ChristmasDay/>, <AllBankHolidays/>) since TransXChange models named
// holidays as element names rather than values.
type xmlBankHolidayList struct {
	XMLName xml.Name
	Names   []xmlNamedElement `xml:",any"`
}

type xmlNamedElement struct {
	XMLName xml.Name
}

type xmlServicedOrgDayType struct {
	DaysOfOperation    []xmlServicedOrgRef `xml:"DaysOfOperation>WorkingDays>ServicedOrganisationRef"`
	DaysOfNonOperation []xmlServicedOrgRef `xml:"DaysOfNonOperation>Holidays>ServicedOrganisationRef"`
}

type xmlServicedOrgRef struct {
	Ref string `xml:",chardata"`
}

type xmlServicedOrganisation struct {
	OrganisationCode string             `xml:"OrganisationCode"`
	Name             string             `xml:"Name"`
	WorkingDays      []xmlDateRangeDef  `xml:"WorkingDays>DateRange"`
	Holidays         []xmlDateRangeDef  `xml:"Holidays>DateRange"`
}

type xmlVehicleJourney struct {
	VehicleJourneyCode    string                `xml:"VehicleJourneyCode"`
	ServiceRef            string                `xml:"ServiceRef"`
	LineRef               string                `xml:"LineRef"`
	JourneyPatternRef     string                `xml:"JourneyPatternRef"`
	VehicleJourneyRef     string                `xml:"VehicleJourneyRef"`
	DepartureTime         string                `xml:"DepartureTime"`
	OperatorRef           string                `xml:"OperatorRef"`
	BlockNumber           string                `xml:"Operational>Block>BlockNumber"`
	VehicleType           string                `xml:"Operational>VehicleType>VehicleTypeCode"`
	TicketMachineCode     string                `xml:"Operational>TicketMachine>JourneyCode"`
	StartDeadRunShortWorking string             `xml:"StartDeadRun>ShortWorking>JourneyPatternTimingLinkRef"`
	EndDeadRunShortWorking   string             `xml:"EndDeadRun>ShortWorking>JourneyPatternTimingLinkRef"`
	OperatingProfile      *xmlOperatingProfile  `xml:"OperatingProfile"`
	Note                  []string              `xml:"Note>NoteText"`
	VehicleJourneyTimingLink []xmlVJTimingLinkOverride `xml:"VehicleJourneyTimingLink"`
}

type xmlVJTimingLinkOverride struct {
	JourneyPatternTimingLinkRef string `xml:"JourneyPatternTimingLinkRef"`
	RunTime                     string `xml:"RunTime"`
}
