package repository

import (
	"context"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormOrderRepository implements the OrderRepository interface
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository and makes
// sure the orders table exists
func NewGormOrderRepository(db *gorm.DB) (repository.OrderRepository, error) {
	if err := db.AutoMigrate(&OrderRow{}); err != nil {
		return nil, err
	}

	return &GormOrderRepository{
		db: db,
	}, nil
}

// OrderRow GORM model for database mapping
type OrderRow struct {
	ID        uint   `gorm:"primaryKey"`
	ServiceID string `gorm:"column:service_id;uniqueIndex;size:100;not null"`

	Action      string    `gorm:"size:20;not null"`
	ServiceDate time.Time `gorm:"index;not null"`
	ServiceType string    `gorm:"size:100"`
	Description string    `gorm:"type:text"`

	VehicleModel    string `gorm:"size:100"`
	VehicleCapacity string `gorm:"size:50"`

	PassengerCountAdults   int
	PassengerCountChildren int
	PassengerNames         []string `gorm:"serializer:json"`

	ContactPhone string `gorm:"size:50"`
	ContactEmail string `gorm:"size:120"`

	PickupLocation  string `gorm:"size:200"`
	DropoffLocation string `gorm:"size:200"`
	PickupAddress   string `gorm:"type:text"`
	DropoffAddress  string `gorm:"type:text"`

	PickupTime          string `gorm:"size:50"`
	PickupTimeConfirmed bool

	FlightNumber string `gorm:"size:20"`
	TrainDetails string `gorm:"size:200"`

	OperatorComments string `gorm:"type:text"`
	SupplierComments string `gorm:"type:text"`

	Status            string   `gorm:"size:50;not null;default:pending"`
	MissingDataFlags  []string `gorm:"serializer:json"`
	RequiresAttention bool

	SourceEmailID string `gorm:"index;size:100"`
	BatchID       string `gorm:"size:40"`
	RawBlock      string `gorm:"type:text"`

	ProcessedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the default table name
func (OrderRow) TableName() string {
	return "orders"
}

// Create inserts a new order
func (r *GormOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	row := toRow(order)
	result := r.db.WithContext(ctx).Create(row)
	if result.Error != nil {
		return result.Error
	}
	order.ID = row.ID
	return nil
}

// FindByServiceID finds an order by its external booking reference.
// A missing order returns (nil, nil).
func (r *GormOrderRepository) FindByServiceID(ctx context.Context, serviceID string) (*entity.Order, error) {
	var row OrderRow
	result := r.db.WithContext(ctx).Where("service_id = ?", serviceID).First(&row)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return toEntity(&row), nil
}

// Update saves changed order fields
func (r *GormOrderRepository) Update(ctx context.Context, order *entity.Order) error {
	row := toRow(order)
	row.ID = order.ID
	return r.db.WithContext(ctx).Save(row).Error
}

// Cancel marks the order for a booking reference as cancelled
func (r *GormOrderRepository) Cancel(ctx context.Context, serviceID string) error {
	result := r.db.WithContext(ctx).
		Model(&OrderRow{}).
		Where("service_id = ?", serviceID).
		Updates(map[string]interface{}{
			"action": entity.OrderActionCancel,
			"status": entity.OrderStatusCancelled,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}
	return nil
}

// ListByStatus lists orders in a given status, oldest first
func (r *GormOrderRepository) ListByStatus(ctx context.Context, status string, limit int) ([]*entity.Order, error) {
	var rows []OrderRow
	result := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("service_date asc").
		Limit(limit).
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	orders := make([]*entity.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, toEntity(&rows[i]))
	}
	return orders, nil
}

func toRow(order *entity.Order) *OrderRow {
	return &OrderRow{
		ID:                     order.ID,
		ServiceID:              order.ServiceID,
		Action:                 order.Action,
		ServiceDate:            order.ServiceDate,
		ServiceType:            order.ServiceType,
		Description:            order.Description,
		VehicleModel:           order.VehicleModel,
		VehicleCapacity:        order.VehicleCapacity,
		PassengerCountAdults:   order.PassengerCountAdults,
		PassengerCountChildren: order.PassengerCountChildren,
		PassengerNames:         order.PassengerNames,
		ContactPhone:           order.ContactPhone,
		ContactEmail:           order.ContactEmail,
		PickupLocation:         order.PickupLocation,
		DropoffLocation:        order.DropoffLocation,
		PickupAddress:          order.PickupAddress,
		DropoffAddress:         order.DropoffAddress,
		PickupTime:             order.PickupTime,
		PickupTimeConfirmed:    order.PickupTimeConfirmed,
		FlightNumber:           order.FlightNumber,
		TrainDetails:           order.TrainDetails,
		OperatorComments:       order.OperatorComments,
		SupplierComments:       order.SupplierComments,
		Status:                 order.Status,
		MissingDataFlags:       order.MissingDataFlags,
		RequiresAttention:      order.RequiresAttention,
		SourceEmailID:          order.SourceEmailID,
		BatchID:                order.BatchID,
		RawBlock:               order.RawBlock,
		ProcessedAt:            order.ProcessedAt,
	}
}

func toEntity(row *OrderRow) *entity.Order {
	return &entity.Order{
		ID:                     row.ID,
		ServiceID:              row.ServiceID,
		Action:                 row.Action,
		ServiceDate:            row.ServiceDate,
		ServiceType:            row.ServiceType,
		Description:            row.Description,
		VehicleModel:           row.VehicleModel,
		VehicleCapacity:        row.VehicleCapacity,
		PassengerCountAdults:   row.PassengerCountAdults,
		PassengerCountChildren: row.PassengerCountChildren,
		PassengerNames:         row.PassengerNames,
		ContactPhone:           row.ContactPhone,
		ContactEmail:           row.ContactEmail,
		PickupLocation:         row.PickupLocation,
		DropoffLocation:        row.DropoffLocation,
		PickupAddress:          row.PickupAddress,
		DropoffAddress:         row.DropoffAddress,
		PickupTime:             row.PickupTime,
		PickupTimeConfirmed:    row.PickupTimeConfirmed,
		FlightNumber:           row.FlightNumber,
		TrainDetails:           row.TrainDetails,
		OperatorComments:       row.OperatorComments,
		SupplierComments:       row.SupplierComments,
		Status:                 row.Status,
		MissingDataFlags:       row.MissingDataFlags,
		RequiresAttention:      row.RequiresAttention,
		SourceEmailID:          row.SourceEmailID,
		BatchID:                row.BatchID,
		RawBlock:               row.RawBlock,
		ProcessedAt:            row.ProcessedAt,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
		DeletedAt:              row.DeletedAt,
	}
}
