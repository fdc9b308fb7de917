package manifest

import "regexp"

// Manifest bodies come from Classic Vacations Word documents; every
// pattern below mirrors a phrasing observed in real manifests. Each
// field keeps an ordered candidate list tried in sequence, first match
// wins, so new phrasing variants are added here without touching the
// extraction code.

// actionPatterns identify the bracketed action keyword on a record's
// first line, tried in order.
var actionPatterns = []struct {
	action  Action
	pattern *regexp.Regexp
}{
	{ActionNew, regexp.MustCompile(`(?i)\[New\]`)},
	{ActionChange, regexp.MustCompile(`(?i)\[Change\]`)},
	{ActionCancel, regexp.MustCompile(`(?i)\[Cancel\]`)},
}

// datePattern matches the compact service-date token, e.g. "10-Jul-25".
var datePattern = regexp.MustCompile(`(\d{1,2})-([A-Za-z]{3})-(\d{2})`)

// bookingPattern matches the external booking reference, e.g.
// "Booking #: 12871711-DI23278963153".
var bookingPattern = regexp.MustCompile(`(?i)Booking\s*#?:?\s*([A-Z0-9\-]+)`)

// Vehicle phrasings: "by Mercedes E for 1-2" then "Mercedes Minivan (3-7)".
// The model capture stays on one line so a match never bleeds across
// neighboring manifest lines.
var vehiclePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:by\s+)?([A-Za-z][A-Za-z ]*?)\s+for\s+(\d+(?:-\d+)?)`),
	regexp.MustCompile(`(?i)([A-Za-z][A-Za-z ]*?)\s+\((\d+(?:-\d+)?)\)`),
}

// passengerPattern matches "Adult 1: John Smith" / "Child 2: Tim Doe".
var passengerPattern = regexp.MustCompile(`(?i)(Adult|Child)\s+\d+:\s*(.*)`)

// Phone label variants, most specific first.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Cell\s*Phone\s*#:\s*([+\d\s\-()]+)`),
	regexp.MustCompile(`(?i)Phone:\s*([+\d\s\-()]+)`),
	regexp.MustCompile(`(?i)Tel:\s*([+\d\s\-()]+)`),
}

// Pickup-time phrasings: "pick up @9:00 am", "pu@14:15", "pickup time: 9:00".
var pickupTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pick\s*up\s*@?\s*(\d{1,2}:\d{2}\s*[apmAPM]*)`),
	regexp.MustCompile(`(?i)pu@?\s*(\d{1,2}:\d{2}\s*[apmAPM]*)`),
	regexp.MustCompile(`(?i)pickup\s*time:?\s*(\d{1,2}:\d{2}\s*[apmAPM]*)`),
}

// flightNumberPattern is the only flight pattern wired into field
// assignment. The departure/arrival variants below are recognized
// phrasings but not yet mapped to FlightDepartureTime /
// FlightArrivalTime.
// TODO: map the Departure:/Arrival: matches once manifests carrying
// those labels alongside a date are confirmed in production traffic.
var flightNumberPattern = regexp.MustCompile(`(?i)Flight\s*#?:\s*([A-Z0-9 ]+)`)

var flightTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Departure:\s*(\d{1,2}:\d{2}\s*[apmAPM]*)`),
	regexp.MustCompile(`(?i)Arrival:\s*(\d{1,2}:\d{2}\s*[apmAPM]*)`),
}

// Location labels.
var (
	hotelPattern   = regexp.MustCompile(`(?i)Hotel\s*Name:\s*(.*?)(?:\n|Address|$)`)
	addressPattern = regexp.MustCompile(`(?i)Address\s*:\s*([^\n]*)`)
)

// Comment label variants; matches from all of them are concatenated.
var commentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Comments\s*#?:\s*([^\n]*)`),
	regexp.MustCompile(`(?i)Supplier\s*comments\s*#?:\s*([^\n]*)`),
	regexp.MustCompile(`(?i)Notes?:\s*([^\n]*)`),
}

// serviceTypeKeywords is the fixed vocabulary scanned over the first
// few lines of a block, in priority order.
var serviceTypeKeywords = []string{
	"Arrival Transfers",
	"Departure Transfers",
	"City to City",
	"Tour",
	"Specialty",
	"Transfer",
}

// monthMap resolves 3-letter month abbreviations for the compact date
// token. Two-digit years are assumed to fall in the 2000s.
var monthMap = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}
