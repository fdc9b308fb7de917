package manifest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-service/pkg/logger"
)

func newTestParser() *Parser {
	return NewParser(logger.NewLogger())
}

func TestParseSingleService(t *testing.T) {
	content := "[New] 10-Jul-25 Transfer\n" +
		"Booking #: ABC-123\n" +
		"Adult 1: John Smith\n" +
		"Cell Phone #: +1234567890\n" +
		"pick up 9:00 am"

	res := newTestParser().Parse(content)

	require.Len(t, res.Services, 1)
	require.Empty(t, res.Errors)
	require.Empty(t, res.Warnings)

	svc := res.Services[0]
	assert.Equal(t, ActionNew, svc.Action)
	assert.Equal(t, "ABC-123", svc.ServiceID)
	assert.Equal(t, time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC), svc.ServiceDate)
	assert.Equal(t, "Transfer", svc.ServiceType)
	assert.Equal(t, []string{"John Smith"}, svc.PassengerNames)
	assert.Equal(t, 1, svc.PassengerCountAdults)
	assert.Equal(t, 0, svc.PassengerCountChildren)
	assert.Equal(t, "+1234567890", svc.ContactPhone)
	assert.Equal(t, "9:00 am", svc.PickupTime)
	assert.True(t, svc.PickupTimeConfirmed)
	assert.Equal(t, []string{"pickup_location", "vehicle_model"}, svc.MissingDataFlags)
	assert.Equal(t, content, svc.RawData["original_block"])
}

func TestMissingBookingNumberDropsBlock(t *testing.T) {
	content := "[Change] 11-Aug-25 Arrival Transfers\n" +
		"Adult 1: Jane Roe\n" +
		"Cell Phone #: +441234567890"

	res := newTestParser().Parse(content)

	assert.Empty(t, res.Services)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no booking number")
}

func TestActionDateGating(t *testing.T) {
	// An action keyword without a date, and a date without an action,
	// must not yield a service.
	for _, content := range []string{
		"[New] airport pickup for the Smith family\nBooking #: XX-1\nmore detail here",
		"arrival on 10-Jul-25 at terminal 4\nBooking #: XX-2\nmore detail here",
	} {
		res := newTestParser().Parse(content)
		assert.Empty(t, res.Services, "content: %q", content)
		assert.Empty(t, res.Errors)
	}
}

func TestUnknownMonthRejectsBlock(t *testing.T) {
	content := "[New] 10-Xyz-25 Transfer\n" +
		"Booking #: ABC-999\n" +
		"Adult 1: John Smith"

	res := newTestParser().Parse(content)

	assert.Empty(t, res.Services)
}

func TestTwoConsecutiveServices(t *testing.T) {
	content := "[New] 10-Jul-25 Arrival Transfers\n" +
		"Booking #: 12871711-DI23278963153\n" +
		"Adult 1: John Smith\n" +
		"Adult 2: Mary Smith\n" +
		"[New] 12-Jul-25 Departure Transfers\n" +
		"Booking #: 12871712-DI23278963154\n" +
		"Adult 1: Bob Brown\n" +
		"Cell Phone #: +15550001111"

	res := newTestParser().Parse(content)

	require.Len(t, res.Services, 2)
	assert.Equal(t, "12871711-DI23278963153", res.Services[0].ServiceID)
	assert.Equal(t, "Arrival Transfers", res.Services[0].ServiceType)
	assert.Equal(t, "12871712-DI23278963154", res.Services[1].ServiceID)
	assert.Equal(t, "Departure Transfers", res.Services[1].ServiceType)
}

func TestEmptyInput(t *testing.T) {
	res := newTestParser().Parse("")

	assert.Empty(t, res.Services)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestPassengerHonorificsStripped(t *testing.T) {
	content := "[New] 10-Jul-25 Tour\n" +
		"Booking #: TOUR-55\n" +
		"Adult 1: Mrs. Jane Doe\n" +
		"Child 1: Master Tim Doe"

	res := newTestParser().Parse(content)

	require.Len(t, res.Services, 1)
	svc := res.Services[0]
	assert.Equal(t, 1, svc.PassengerCountAdults)
	assert.Equal(t, 1, svc.PassengerCountChildren)
	assert.Equal(t, []string{"Jane Doe", "Tim Doe"}, svc.PassengerNames)
}

// Passenger counting invariant: names line up with adult+child counts.
func TestPassengerCountsMatchNames(t *testing.T) {
	content := "[Change] 2-Sep-25 City to City\n" +
		"Booking #: CC-42\n" +
		"Adult 1: Alice Adams\n" +
		"Adult 2: Ben Adams\n" +
		"Child 1: Carol Adams\n" +
		"Child 2: Dave Adams"

	res := newTestParser().Parse(content)

	require.Len(t, res.Services, 1)
	svc := res.Services[0]
	assert.Equal(t, ActionChange, svc.Action)
	assert.Len(t, svc.PassengerNames, svc.PassengerCountAdults+svc.PassengerCountChildren)
}

func TestVehicleExtraction(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantModel    string
		wantCapacity string
	}{
		{"by-for phrasing", "by Mercedes for 1-2", "Mercedes", "1-2"},
		{"parenthesized capacity", "Mercedes Minivan (3-7)", "Mercedes Minivan", "3-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "[New] 10-Jul-25 Tour\n" +
				"Booking #: V-1\n" +
				tt.line

			res := newTestParser().Parse(content)

			require.Len(t, res.Services, 1)
			assert.Equal(t, tt.wantModel, res.Services[0].VehicleModel)
			assert.Equal(t, tt.wantCapacity, res.Services[0].VehicleCapacity)
			assert.NotContains(t, res.Services[0].MissingDataFlags, "vehicle_model")
		})
	}
}

func TestLocationAndComments(t *testing.T) {
	content := "[New] 10-Jul-25 Arrival Transfers\n" +
		"Booking #: LOC-9\n" +
		"Hotel Name: Grand Palace Hotel\n" +
		"Address: 12 Harbour Road\n" +
		"Comments: driver waits at gate\n" +
		"Notes: luggage assistance needed"

	res := newTestParser().Parse(content)

	require.Len(t, res.Services, 1)
	svc := res.Services[0]
	assert.Equal(t, "Grand Palace Hotel", svc.PickupLocation)
	assert.Equal(t, "12 Harbour Road", svc.PickupAddress)
	assert.Equal(t, "driver waits at gate; luggage assistance needed", svc.OperatorComments)
	assert.NotContains(t, svc.MissingDataFlags, "pickup_location")
}

// Flight departure/arrival labels are recognized phrasings but are not
// mapped to fields yet; this pins the current behavior.
func TestFlightTimesStayUnassigned(t *testing.T) {
	content := "[New] 10-Jul-25 Arrival Transfers\n" +
		"Booking #: FL-3\n" +
		"Flight #: BA 117\n" +
		"Departure: 8:30 am\n" +
		"Arrival: 11:45 am"

	res := newTestParser().Parse(content)

	require.Len(t, res.Services, 1)
	svc := res.Services[0]
	assert.Equal(t, "BA 117", svc.FlightNumber)
	assert.Nil(t, svc.FlightDepartureTime)
	assert.Nil(t, svc.FlightArrivalTime)
	assert.Empty(t, svc.SupplierComments)
}

// A malformed block between two good ones must not take the batch down.
func TestMalformedBlockIsIsolated(t *testing.T) {
	good1 := "[New] 10-Jul-25 Transfer\nBooking #: OK-1\nAdult 1: A One"
	malformed := "[New] 11-Jul-25 Transfer\nthis block carries no reference number at all"
	good2 := "[New] 12-Jul-25 Transfer\nBooking #: OK-2\nAdult 1: B Two"

	res := newTestParser().Parse(good1 + "\n" + malformed + "\n" + good2)

	require.Len(t, res.Services, 2)
	assert.Equal(t, "OK-1", res.Services[0].ServiceID)
	assert.Equal(t, "OK-2", res.Services[1].ServiceID)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no booking number")
}

// Missing-flags completeness: a field name is flagged exactly when the
// corresponding attribute is empty.
func TestMissingFlagsCompleteness(t *testing.T) {
	full := "[New] 10-Jul-25 Tour\n" +
		"Booking #: FULL-1\n" +
		"pick up @10:30\n" +
		"Hotel Name: Some Hotel\n" +
		"Phone: +1999000\n" +
		"Adult 1: Full Name\n" +
		"by Sprinter for 3-7"

	bare := "[New] 10-Jul-25 Tour\n" +
		"Booking #: BARE-1\n" +
		"no structured detail beyond the booking line"

	res := newTestParser().Parse(full)
	require.Len(t, res.Services, 1)
	assert.Empty(t, res.Services[0].MissingDataFlags)

	res = newTestParser().Parse(bare)
	require.Len(t, res.Services, 1)
	assert.Equal(t,
		[]string{"pickup_time", "pickup_location", "contact_phone", "passenger_names", "vehicle_model"},
		res.Services[0].MissingDataFlags)
}

func TestPickupTimeVariants(t *testing.T) {
	for phrase, want := range map[string]string{
		"pick up @9:00 am":   "9:00 am",
		"pu@14:15":           "14:15",
		"pickup time: 11:30": "11:30",
	} {
		content := "[New] 10-Jul-25 Tour\nBooking #: PT-1\n" + phrase

		res := newTestParser().Parse(content)

		require.Len(t, res.Services, 1, "phrase: %q", phrase)
		assert.Equal(t, want, res.Services[0].PickupTime, "phrase: %q", phrase)
		assert.True(t, res.Services[0].PickupTimeConfirmed)
	}
}

func TestDescriptionSkipsBookingLine(t *testing.T) {
	content := "[New] 10-Jul-25 Specialty\n" +
		"Booking #: D-77\n" +
		"private wine country day trip\n" +
		"lunch included"

	res := newTestParser().Parse(content)

	require.Len(t, res.Services, 1)
	svc := res.Services[0]
	assert.Equal(t, "Specialty", svc.ServiceType)
	assert.Equal(t, "private wine country day trip lunch included", svc.Description)
	assert.NotContains(t, svc.Description, "D-77")
}

func TestServiceTypeDefaultsToUnknown(t *testing.T) {
	content := "[Cancel] 10-Jul-25 something unrecognized\n" +
		"Booking #: U-1\n" +
		"details without any category keyword"

	res := newTestParser().Parse(content)

	require.Len(t, res.Services, 1)
	assert.Equal(t, ActionCancel, res.Services[0].Action)
	assert.Equal(t, "Unknown", res.Services[0].ServiceType)
}

func TestParseFileUnreadableDocument(t *testing.T) {
	res := newTestParser().ParseFile("testdata/does-not-exist.docx")

	assert.Empty(t, res.Services)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "does-not-exist.docx")
}

func TestHeaderNoiseIgnored(t *testing.T) {
	content := strings.Join([]string{
		"CLASSIC VACATIONS DAILY MANIFEST",
		"Report Generation Date: 09-Jul-25",
		strings.Repeat("*", 60),
		"[New] 10-Jul-25 Transfer",
		"Booking #: N-1",
		"Adult 1: Real Passenger",
		"Please send your response by end of day",
	}, "\n")

	res := newTestParser().Parse(content)

	require.Len(t, res.Services, 1)
	svc := res.Services[0]
	assert.Equal(t, "N-1", svc.ServiceID)
	assert.NotContains(t, svc.Description, "CLASSIC")
	assert.NotContains(t, svc.Description, "response")
}
