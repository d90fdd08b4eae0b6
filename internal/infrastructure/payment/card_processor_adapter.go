package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	appgateway "github.com/dinehub/backend/internal/application/gateway"
	"github.com/dinehub/backend/internal/domain/shared"
)

// Refund statuses returned by the processor API
const (
	processorStatusSucceeded = "succeeded"
	processorStatusDeclined  = "declined"
)

// CardProcessorAdapter is the HTTP client for the card processor's refund
// API. Transport and 5xx failures surface as ErrUnavailable so the event
// fabric redelivers; a decline is a terminal verdict carried in the result.
type CardProcessorAdapter struct {
	config     *CardProcessorConfig
	httpClient *http.Client
}

// NewCardProcessorAdapter creates a new card processor adapter
func NewCardProcessorAdapter(config *CardProcessorConfig) (*CardProcessorAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &CardProcessorAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// refundRequest is the outbound API payload
type refundRequest struct {
	MerchantID string `json:"merchant_id"`
	PaymentID  string `json:"payment_id"`
	RefundID   string `json:"refund_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Sandbox    bool   `json:"sandbox,omitempty"`
}

// refundResponse is the processor's API response
type refundResponse struct {
	Status       string `json:"status"`
	ProcessorRef string `json:"processor_ref"`
	FailureCode  string `json:"failure_code,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Refund implements the CardProcessor interface
func (a *CardProcessorAdapter) Refund(ctx context.Context, req appgateway.ProcessorRefundRequest) (appgateway.ProcessorRefundResult, error) {
	payload := refundRequest{
		MerchantID: req.MerchantID.String(),
		PaymentID:  req.PaymentID.String(),
		RefundID:   req.RefundID.String(),
		Amount:     req.Amount.StringFixed(2),
		Currency:   req.Currency,
		Sandbox:    a.config.IsSandbox,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return appgateway.ProcessorRefundResult{}, fmt.Errorf("card processor: marshal refund request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v1/refunds", bytes.NewReader(body))
	if err != nil {
		return appgateway.ProcessorRefundResult{}, fmt.Errorf("card processor: build request: %w", err)
	}
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	httpReq.Header.Set("X-Timestamp", timestamp)
	httpReq.Header.Set("X-Signature", a.sign(body, timestamp))
	// The refund ID doubles as the processor-side idempotency key, so a
	// redelivered event cannot refund twice.
	httpReq.Header.Set("Idempotency-Key", req.RefundID.String())

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return appgateway.ProcessorRefundResult{}, fmt.Errorf("card processor: %w: %v", shared.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return appgateway.ProcessorRefundResult{}, fmt.Errorf("card processor: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return appgateway.ProcessorRefundResult{}, fmt.Errorf("card processor: %w: status %d", shared.ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return appgateway.ProcessorRefundResult{}, fmt.Errorf("card processor: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed refundResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return appgateway.ProcessorRefundResult{}, fmt.Errorf("card processor: decode response: %w", err)
	}

	switch parsed.Status {
	case processorStatusSucceeded:
		return appgateway.ProcessorRefundResult{
			Succeeded:    true,
			ProcessorRef: parsed.ProcessorRef,
		}, nil
	case processorStatusDeclined:
		return appgateway.ProcessorRefundResult{
			Succeeded:   false,
			FailureCode: parsed.FailureCode,
		}, nil
	default:
		return appgateway.ProcessorRefundResult{}, fmt.Errorf("card processor: unknown refund status %q", parsed.Status)
	}
}

// sign computes the request signature: HMAC-SHA256 over timestamp.body
func (a *CardProcessorAdapter) sign(body []byte, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(a.config.SigningSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
