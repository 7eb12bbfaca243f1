package models

import (
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderItem describes the purchased item. Only quiz purchases exist today
// but the shape leaves room for other item types.
type OrderItem struct {
	ItemType string  `json:"item_type"`
	ItemID   uint    `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// Human-facing identifier, also used as the gateway receipt.
	// Not a cryptographic ID; the gateway order id is the dedup key.
	OrderID string `json:"order_id" gorm:"not null;uniqueIndex;size:64"`

	UserID   uint        `json:"user_id" gorm:"not null;index"`
	Amount   float64     `json:"amount" gorm:"not null"`
	Currency string      `json:"currency" gorm:"default:INR;size:8"`
	Status   OrderStatus `json:"status" gorm:"default:pending;index;size:20"`

	PaymentMethod   string  `json:"payment_method" gorm:"size:50"`
	TransactionID   *string `json:"transaction_id" gorm:"size:255"`
	RazorpayOrderID *string `json:"razorpay_order_id" gorm:"index;size:255"`

	Item datatypes.JSONType[OrderItem] `json:"item" gorm:"type:jsonb"`

	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (Order) TableName() string {
	return "orders"
}
