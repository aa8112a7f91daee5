package repairctl

// DTO запросов/ответов API ремонта.

import "repairdesk/internal/repair"

type ActionRequest struct {
	Notes string `json:"notes"`
}

type StatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type AddPartsRequest struct {
	Parts []repair.PartInput `json:"parts"`
}

type PartsRequest struct {
	IDs    []string `json:"ids"`
	Reason string   `json:"reason,omitempty"`
}

type PartsResponse struct {
	Updated int `json:"updated"`
}

type PaymentRequest struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
}
