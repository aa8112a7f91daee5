package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RepairPart — запчасть, заказанная под конкретный ремонт.
type RepairPart struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DeviceID       string  `gorm:"index;size:36;not null" json:"device_id"`
	SparePartID    string  `gorm:"index;size:36" json:"spare_part_id,omitempty"`
	Name           string  `gorm:"size:255" json:"name"`
	QuantityNeeded int     `gorm:"not null;default:1" json:"quantity_needed"`
	QuantityUsed   int     `json:"quantity_used"`
	CostPerUnit    float64 `json:"cost_per_unit"`
	Status         string  `gorm:"index;size:32;not null" json:"status"` // needed|ordered|accepted|received|used
	Notes          string  `gorm:"type:text" json:"notes,omitempty"`
	UpdatedBy      string  `gorm:"size:36" json:"updated_by,omitempty"`
}

func (p *RepairPart) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
