package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Device — устройство клиента в ремонте.
type Device struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Brand         string `gorm:"size:128" json:"brand"`
	Model         string `gorm:"size:128" json:"model"`
	SerialNumber  string `gorm:"index;size:128" json:"serial_number"`
	CustomerID    string `gorm:"index;size:36" json:"customer_id,omitempty"`
	CustomerName  string `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerPhone string `gorm:"size:32" json:"customer_phone,omitempty"`

	Status     string `gorm:"index;size:64;not null" json:"status"`
	AssignedTo string `gorm:"index;size:36" json:"assigned_to,omitempty"`
	Remarks    string `gorm:"type:text" json:"remarks,omitempty"`

	RepairCost    float64 `json:"repair_cost"`
	DepositAmount float64 `json:"deposit_amount"`
}

func (d *Device) BeforeCreate(*gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Name — "Brand Model" для сообщений клиенту.
func (d *Device) Name() string {
	switch {
	case d.Brand == "":
		return d.Model
	case d.Model == "":
		return d.Brand
	}
	return d.Brand + " " + d.Model
}
