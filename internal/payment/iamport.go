// Package payment applies gateway outcomes to reservations exactly once,
// regardless of whether they arrive through the client completion call, the
// gateway webhook, or both.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sejinpark/cinetick/internal/domain"
	"github.com/shopspring/decimal"
)

const DefaultIamportBaseURL = "https://api.iamport.kr"

// IamportGateway implements domain.PaymentGateway against the Iamport REST
// API: token issuance, transaction lookup by imp_uid, and refunds.
type IamportGateway struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
}

func NewIamportGateway(baseURL, apiKey, apiSecret string) *IamportGateway {
	if baseURL == "" {
		baseURL = DefaultIamportBaseURL
	}

	return &IamportGateway{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// iamportEnvelope is the common response wrapper: a zero code means success
// and the payload sits under "response".
type iamportEnvelope struct {
	Code     int             `json:"code"`
	Message  string          `json:"message"`
	Response json.RawMessage `json:"response"`
}

type iamportPayment struct {
	ImpUID      string          `json:"imp_uid"`
	MerchantUID string          `json:"merchant_uid"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	PayMethod   string          `json:"pay_method"`
	PaidAt      int64           `json:"paid_at"`
	ReceiptURL  string          `json:"receipt_url"`
}

func (g *IamportGateway) Verify(ctx context.Context, impUID string) (*domain.GatewayTransaction, error) {
	token, err := g.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/payments/"+impUID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)

	var payment iamportPayment

	err = g.do(req, &payment)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment %s from gateway: %w", impUID, err)
	}

	return toGatewayTransaction(payment), nil
}

func (g *IamportGateway) Refund(ctx context.Context, impUID, reason string) (*domain.GatewayTransaction, error) {
	token, err := g.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{
		"imp_uid": impUID,
		"reason":  reason,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payments/cancel", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	var payment iamportPayment

	err = g.do(req, &payment)
	if err != nil {
		return nil, fmt.Errorf("refund of %s rejected by gateway: %w", impUID, err)
	}

	return toGatewayTransaction(payment), nil
}

func (g *IamportGateway) getAccessToken(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"imp_key":    g.apiKey,
		"imp_secret": g.apiSecret,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/users/getToken", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}

	err = g.do(req, &tokenResp)
	if err != nil {
		return "", fmt.Errorf("failed to obtain gateway access token: %w", err)
	}

	return tokenResp.AccessToken, nil
}

func (g *IamportGateway) do(req *http.Request, out any) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var envelope iamportEnvelope

	err = json.NewDecoder(resp.Body).Decode(&envelope)
	if err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if envelope.Code != 0 {
		return fmt.Errorf("gateway error %d: %s", envelope.Code, envelope.Message)
	}

	return json.Unmarshal(envelope.Response, out)
}

func toGatewayTransaction(p iamportPayment) *domain.GatewayTransaction {
	txn := &domain.GatewayTransaction{
		ImpUID:      p.ImpUID,
		MerchantUID: p.MerchantUID,
		Amount:      p.Amount,
		Status:      p.Status,
		Method:      p.PayMethod,
	}

	if p.PaidAt > 0 {
		paidAt := time.Unix(p.PaidAt, 0)
		txn.PaidAt = &paidAt
	}

	if p.ReceiptURL != "" {
		txn.ReceiptURL = &p.ReceiptURL
	}

	return txn
}
