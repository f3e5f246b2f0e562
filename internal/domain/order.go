package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

type Order struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Number string    `gorm:"uniqueIndex;size:60" json:"number"`

	CustomerName  string `gorm:"size:140" json:"customer_name"`
	CustomerEmail string `gorm:"size:140" json:"customer_email"`
	CustomerPhone string `gorm:"size:50" json:"customer_phone"`
	Address       string `gorm:"size:255" json:"address"`
	City          string `gorm:"size:80" json:"city"`
	PostalCode    string `gorm:"size:20" json:"postal_code"`

	Items       []OrderItem   `json:"items"`
	TotalAmount float64       `gorm:"type:decimal(12,2)" json:"total_amount"`
	Status      OrderStatus   `gorm:"type:varchar(20);index;default:pending" json:"status"`
	Payment     PaymentStatus `gorm:"type:varchar(20);index;default:pending" json:"payment_status"`
	Notes       string        `gorm:"type:text" json:"notes"`
	Notified    bool          `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID  `gorm:"type:uuid;index" json:"-"`
	ProductID *uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Title     string     `gorm:"size:180" json:"title"`
	Qty       int        `gorm:"not null" json:"qty"`
	UnitPrice float64    `gorm:"type:decimal(12,2)" json:"unit_price"`
	Size      string     `gorm:"size:30" json:"size,omitempty"`
	Color     string     `gorm:"size:60" json:"color,omitempty"`
}

type OrderFilter struct {
	Status   string
	Payment  string
	Page     int
	PageSize int
}

type OrderRepo interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	List(ctx context.Context, f OrderFilter) ([]Order, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}
