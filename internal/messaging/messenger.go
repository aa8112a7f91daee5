package messaging

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidPhone = errors.New("invalid phone number format, use international format (e.g. 255700000000)")

// Result — ответ провайдера: ошибка доставки не является ошибкой вызова.
type Result struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

// Messenger — коллаборатор отправки SMS/WhatsApp сообщений.
type Messenger interface {
	Send(ctx context.Context, phone, text string) (Result, error)
}

// Noop — провайдер не настроен.
type Noop struct{}

func (Noop) Send(context.Context, string, string) (Result, error) {
	return Result{Success: false, Error: "messaging provider is not configured"}, nil
}

// NormalizePhone оставляет только цифры; допустимо 9..15 цифр.
// Ведущий 0 локального номера заменяется на код страны, если он задан.
func NormalizePhone(phone, countryCode string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSuffix(strings.TrimSpace(phone), "@c.us") {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") && countryCode != "" {
		digits = countryCode + strings.TrimLeft(digits, "0")
	}
	if len(digits) < 9 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}
	return digits, nil
}
