package manifest

import "time"

// Action is the operation a service block requests against an order.
type Action string

const (
	ActionNew    Action = "New"
	ActionChange Action = "Change"
	ActionCancel Action = "Cancel"
)

// ParsedService represents one booking-level service instruction
// extracted from a block of manifest text. It is built once per
// recognized block and never mutated afterwards.
type ParsedService struct {
	Action      Action
	ServiceID   string
	ServiceDate time.Time
	ServiceType string
	Description string

	VehicleModel    string
	VehicleCapacity string

	PassengerCountAdults   int
	PassengerCountChildren int
	PassengerNames         []string

	ContactPhone string
	ContactEmail string

	PickupLocation  string
	DropoffLocation string
	PickupAddress   string
	DropoffAddress  string

	PickupTime          string
	PickupTimeConfirmed bool

	FlightNumber        string
	FlightDepartureTime *time.Time
	FlightArrivalTime   *time.Time
	TrainDetails        string

	OperatorComments string
	SupplierComments string

	MissingDataFlags []string

	// RawData retains the original block text for audit/debugging.
	RawData map[string]string
}

// Result is the outcome of a single parse call. Errors are operational
// failures worth investigating; Warnings are expected data-quality
// rejections; per-record review hints live in MissingDataFlags.
type Result struct {
	Services []*ParsedService
	Errors   []string
	Warnings []string
}
