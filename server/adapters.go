package server

import (
	"gorm.io/gorm"

	"repairdesk/internal/repair"
	"repairdesk/internal/repo"
)

type deviceStore interface {
	repair.Devices
	repair.StatusUpdater
}

// backends — хранилища для сервиса ремонта: gorm или in-memory.
type backends struct {
	devices  deviceStore
	parts    repair.Parts
	payments repair.Payments
	history  repair.History
}

func newBackends(db *gorm.DB) backends {
	if db == nil {
		mem := repo.NewMemory()
		return backends{
			devices:  mem.Devices(),
			parts:    mem.Parts(),
			payments: mem.Payments(),
			history:  mem.History(),
		}
	}
	return backends{
		devices:  repo.NewDeviceStore(db),
		parts:    repo.NewPartStore(db),
		payments: repo.NewPaymentStore(db),
		history:  repo.NewHistoryStore(db),
	}
}

func (b backends) deps() repair.Deps {
	return repair.Deps{
		Devices:  b.devices,
		Updater:  b.devices,
		Parts:    b.parts,
		Payments: b.payments,
		History:  b.history,
	}
}
