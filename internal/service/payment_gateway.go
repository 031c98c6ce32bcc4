package service

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// manualGateway accepts every transaction as-is. Used when payments are
// settled out of band (app store receipts reconciled manually) and in
// development.
type manualGateway struct{}

// NewManualGateway creates a PaymentGateway that trusts the caller's
// transaction reference.
func NewManualGateway() PaymentGateway {
	return manualGateway{}
}

func (manualGateway) VerifyTransaction(_ context.Context, transactionID string) (*PaymentConfirmation, error) {
	log.WithField("transactionId", transactionID).Info("manual gateway accepting transaction")
	return &PaymentConfirmation{
		TransactionID: transactionID,
		Succeeded:     true,
	}, nil
}
