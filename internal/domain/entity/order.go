package entity

import (
	"time"

	"gorm.io/gorm"
)

// Order actions, mirroring the manifest action keywords
const (
	OrderActionNew    = "New"
	OrderActionChange = "Change"
	OrderActionCancel = "Cancel"
)

// Order statuses
const (
	OrderStatusPending           = "pending"
	OrderStatusApproved          = "approved"
	OrderStatusModified          = "modified"
	OrderStatusCancelled         = "cancelled"
	OrderStatusRequiresAttention = "requires_attention"
)

// Order represents a persisted service instruction created from a
// parsed manifest block. ServiceID is the external booking reference
// and acts as the idempotency key: re-ingesting the same manifest
// updates rather than duplicates.
type Order struct {
	ID        uint
	ServiceID string

	Action      string
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

	FlightNumber string
	TrainDetails string

	OperatorComments string
	SupplierComments string

	Status            string
	MissingDataFlags  []string
	RequiresAttention bool

	// Source of the order: the stored manifest email and the ingestion
	// batch it arrived in.
	SourceEmailID string
	BatchID       string
	RawBlock      string

	ProcessedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt
}
