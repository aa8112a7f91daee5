package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGreenAPIURL = "https://api.green-api.com"

// GreenAPI — отправка текстовых сообщений через Green API (WhatsApp).
type GreenAPI struct {
	baseURL     string
	instanceID  string
	token       string
	countryCode string
	client      *http.Client
}

type GreenAPIOptions struct {
	BaseURL     string
	InstanceID  string
	Token       string
	CountryCode string
	Timeout     time.Duration
	Client      *http.Client
}

func NewGreenAPI(o GreenAPIOptions) (*GreenAPI, error) {
	if strings.TrimSpace(o.InstanceID) == "" || strings.TrimSpace(o.Token) == "" {
		return nil, fmt.Errorf("green api: instance id and token must be set")
	}
	base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if base == "" {
		base = defaultGreenAPIURL
	}
	client := o.Client
	if client == nil {
		timeout := o.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &GreenAPI{
		baseURL:     base,
		instanceID:  o.InstanceID,
		token:       o.Token,
		countryCode: o.CountryCode,
		client:      client,
	}, nil
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

type sendMessageResponse struct {
	IDMessage string `json:"idMessage"`
}

// Send — одна попытка, без ретраев; неуспех провайдера возвращается в Result.
func (g *GreenAPI) Send(ctx context.Context, phone, text string) (Result, error) {
	digits, err := NormalizePhone(phone, g.countryCode)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, nil
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: digits + "@c.us", Message: text})
	if err != nil {
		return Result{}, err
	}
	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", g.baseURL, g.instanceID, g.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("green api: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 300 {
		return Result{Success: false, Error: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))}, nil
	}
	var out sendMessageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("green api: decode response: %w", err)
	}
	if out.IDMessage == "" {
		return Result{Success: false, Error: "provider returned no message id"}, nil
	}
	return Result{Success: true, MessageID: out.IDMessage}, nil
}
