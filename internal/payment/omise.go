package payment

import (
	"context"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"github.com/shopspring/decimal"

	"github.com/voyatra/travel-booking/internal/app"
)

// OmiseGateway refunds captured charges through Omise. It only implements
// the narrow surface the cancellation engine needs; capture/charge flows
// live in a separate payment service.
type OmiseGateway struct {
	client *omise.Client
}

func NewOmiseGateway(publicKey, secretKey string) (*OmiseGateway, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	return &OmiseGateway{client: client}, nil
}

var minorUnits = decimal.NewFromInt(100)

// Refund issues a refund against the charge identified by transactionID.
// Amount is converted to minor units (satang/cents) as the API requires.
func (g *OmiseGateway) Refund(_ context.Context, transactionID string, amount decimal.Decimal) (app.RefundReceipt, error) {
	refund := &omise.Refund{}
	err := g.client.Do(refund, &operations.CreateRefund{
		ChargeID: transactionID,
		Amount:   amount.Mul(minorUnits).IntPart(),
	})
	if err != nil {
		return app.RefundReceipt{}, fmt.Errorf("create refund: %w", err)
	}
	return app.RefundReceipt{
		ID:     refund.ID,
		Amount: decimal.NewFromInt(refund.Amount).Div(minorUnits),
	}, nil
}
