package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// PaymentRequest describes the charge for one reservation.
type PaymentRequest struct {
	ReservationID uint64
	BuyOrder      string
	AmountCents   uint32
}

// PaymentResult is the gateway's verdict.
type PaymentResult struct {
	Token             string
	Status            string // model.PaymentApproved or model.PaymentDeclined
	AuthorizationCode string
}

// PaymentGateway authorises reservation payments.  Booking logic depends
// only on this interface so a real gateway can replace the simulated one.
type PaymentGateway interface {
	Authorize(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

// SimulatedGateway approves every payment in-process.
type SimulatedGateway struct {
	AuthCode string
}

func (g SimulatedGateway) Authorize(_ context.Context, req PaymentRequest) (PaymentResult, error) {
	code := g.AuthCode
	if code == "" {
		code = "AUTH12345"
	}
	return PaymentResult{
		Token:             fmt.Sprintf("TOKEN-%s-%d", req.BuyOrder, req.ReservationID),
		Status:            model.PaymentApproved,
		AuthorizationCode: code,
	}, nil
}

// NewPaymentGateway returns the gateway variant named by kind.
func NewPaymentGateway(kind, authCode string) (PaymentGateway, error) {
	switch kind {
	case "", "simulated":
		return SimulatedGateway{AuthCode: authCode}, nil
	}
	return nil, fmt.Errorf("unknown payment gateway %q", kind)
}
