package messaging

import (
	"fmt"
	"strings"

	"repairdesk/internal/workflow"
)

// Тексты для клиента по статусу ремонта (суахили, как в мастерской).
var statusTemplates = map[workflow.Status]string{
	workflow.StatusAssigned:         "Hujambo %s! Kifaa chako %s kimepewa technician. Tutakujulisha mwendelezo wa ukarabati.",
	workflow.StatusDiagnosisStarted: "Hujambo %s! Kifaa chako %s kimeanza diagnosis. Technician anachunguza tatizo. Tutakujulisha matokeo.",
	workflow.StatusAwaitingParts:    "Hujambo %s! Kifaa chako %s kinahitaji spare parts. Tunasubiri parts kufika, tutakujulisha.",
	workflow.StatusInRepair:         "Hujambo %s! Kifaa chako %s kinakarabatiwa. Technician anafanya kazi, tutakujulisha mwendelezo.",
	workflow.StatusTesting:          "Hujambo %s! Kifaa chako %s kimekarabatiwa na kinajaribiwa. Karibu kukichukua.",
	workflow.StatusRepairComplete:   "Hujambo %s! Kifaa chako %s kimekarabatiwa! Unaweza kuja kukichukua.",
	workflow.StatusReturnedToCare:   "Hujambo %s! Kifaa chako %s kimekarabatiwa na kiko tayari kuchukuliwa. Karibu ofisini.",
	workflow.StatusDone:             "Asante %s! Kifaa chako %s kimechukuliwa. Karibu tena!",
	workflow.StatusFailed:           "Hujambo %s. Kuna tatizo na kifaa chako %s. Tunaomba uje ofisini kujadili.",
}

const fallbackTemplate = "Hujambo %s! Kuna update kuhusu kifaa chako %s."

// StatusText — сообщение клиенту; signature дописывается через " - ".
func StatusText(status workflow.Status, customerName, deviceName, signature string) string {
	tpl, ok := statusTemplates[status]
	if !ok {
		tpl = fallbackTemplate
	}
	name := strings.TrimSpace(customerName)
	if name == "" {
		name = "mteja"
	}
	msg := fmt.Sprintf(tpl, name, strings.TrimSpace(deviceName))
	if s := strings.TrimSpace(signature); s != "" {
		msg += " - " + s
	}
	return msg
}
