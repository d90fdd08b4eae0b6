package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	appgateway "github.com/dinehub/backend/internal/application/gateway"
	"github.com/shopspring/decimal"
)

// SimulatedProcessor is an in-process stand-in for the card processor,
// used in development and tests. Refund verdicts are derived from the
// amount's cent value so scenarios are reproducible:
//
//	cents 01  -> declined with insufficient_funds
//	cents 02  -> declined with card_expired
//	cents 03  -> transport error (redelivery path)
//	otherwise -> succeeded
type SimulatedProcessor struct {
	mu       sync.Mutex
	refunded map[string]appgateway.ProcessorRefundResult
}

// NewSimulatedProcessor creates a new simulated processor
func NewSimulatedProcessor() *SimulatedProcessor {
	return &SimulatedProcessor{
		refunded: make(map[string]appgateway.ProcessorRefundResult),
	}
}

// Refund implements the CardProcessor interface
func (p *SimulatedProcessor) Refund(ctx context.Context, req appgateway.ProcessorRefundRequest) (appgateway.ProcessorRefundResult, error) {
	if err := ctx.Err(); err != nil {
		return appgateway.ProcessorRefundResult{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Idempotent per refund ID, like the real API.
	key := req.RefundID.String()
	if result, ok := p.refunded[key]; ok {
		return result, nil
	}

	var result appgateway.ProcessorRefundResult
	switch cents(req.Amount) {
	case 1:
		result = appgateway.ProcessorRefundResult{FailureCode: "insufficient_funds"}
	case 2:
		result = appgateway.ProcessorRefundResult{FailureCode: "card_expired"}
	case 3:
		return appgateway.ProcessorRefundResult{}, fmt.Errorf("card processor simulator: connection reset")
	default:
		result = appgateway.ProcessorRefundResult{
			Succeeded:    true,
			ProcessorRef: "sim_" + strings.ReplaceAll(key, "-", "")[:24],
		}
	}

	p.refunded[key] = result
	return result, nil
}

func cents(amount decimal.Decimal) int {
	return int(amount.Mul(decimal.NewFromInt(100)).Mod(decimal.NewFromInt(100)).IntPart())
}
