package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentCompleted = "completed"
	PaymentPending   = "pending"
	PaymentFailed    = "failed"

	PaymentTypePayment = "payment"
	PaymentTypeDeposit = "deposit"
)

// Payment — платёж клиента за ремонт (таблица customer_payments).
type Payment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DeviceID    string    `gorm:"index;size:36;not null" json:"device_id"`
	CustomerID  string    `gorm:"index;size:36" json:"customer_id,omitempty"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Currency    string    `gorm:"size:8;default:TZS" json:"currency"`
	Method      string    `gorm:"size:32" json:"method"`
	PaymentType string    `gorm:"size:32" json:"payment_type"`
	Status      string    `gorm:"index;size:16;not null" json:"status"`
	Reference   string    `gorm:"size:128" json:"reference,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	PaidAt      time.Time `json:"paid_at"`
}

func (Payment) TableName() string { return "customer_payments" }

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
