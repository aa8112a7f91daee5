package models

import (
	"time"

	"gorm.io/datatypes"
)

// StatusChange — журнал смен статуса (кто, когда, с какими заметками).
type StatusChange struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	DeviceID   string         `gorm:"index;size:36;not null" json:"device_id"`
	FromStatus string         `gorm:"size:64" json:"from_status"`
	ToStatus   string         `gorm:"size:64" json:"to_status"`
	Action     string         `gorm:"size:64" json:"action"`
	ActorID    string         `gorm:"size:36" json:"actor_id"`
	ActorRole  string         `gorm:"size:32" json:"actor_role"`
	Notes      string         `gorm:"type:text" json:"notes,omitempty"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
}
