package flight

import "strings"

// Airport is one entry of the fixed Taiwan arrival allow-list. The table also
// serves display enrichment; it is never used to validate flight identifiers.
type Airport struct {
	IATA string
	ICAO string
	Name string
	City string
}

// taiwanAirports is the closed set of airports an airport-pickup event can
// correlate against. Arrivals only; the product has no departure use case.
var taiwanAirports = []Airport{
	{"TPE", "RCTP", "臺灣桃園國際機場", "Taoyuan"},
	{"TSA", "RCSS", "臺北松山機場", "Taipei"},
	{"KHH", "RCKH", "高雄國際機場", "Kaohsiung"},
	{"RMQ", "RCMQ", "臺中國際機場", "Taichung"},
	{"TNN", "RCNN", "臺南機場", "Tainan"},
	{"HUN", "RCYU", "花蓮機場", "Hualien"},
	{"TTT", "RCFN", "臺東機場", "Taitung"},
	{"KNH", "RCBS", "金門機場", "Kinmen"},
	{"MZG", "RCQC", "澎湖馬公機場", "Magong"},
	{"LZN", "RCFG", "南竿機場", "Nangan"},
}

// LookupAirport resolves an IATA or ICAO code against the allow-list.
func LookupAirport(code string) (Airport, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, a := range taiwanAirports {
		if a.IATA == code || a.ICAO == code {
			return a, true
		}
	}
	return Airport{}, false
}

// IsTaiwanArrival reports whether a destination airport code is allow-listed.
func IsTaiwanArrival(code string) bool {
	_, ok := LookupAirport(code)
	return ok
}
