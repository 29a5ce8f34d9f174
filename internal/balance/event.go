// Package balance receives Up banking webhooks and hands the resulting
// transactions to registered handlers
package balance

import (
	"context"

	"github.com/baely/balance/pkg/model"
)

// TransactionEvent contains information about a bank transaction
type TransactionEvent struct {
	Account     model.AccountResource     // Account details
	Transaction model.TransactionResource // Transaction details
}

// TransactionEventHandler defines the interface for handling transaction events
type TransactionEventHandler interface {
	// HandleEvent processes a transaction event
	// Returns an error if the handling fails
	HandleEvent(ctx context.Context, event TransactionEvent) error
}

// TransactionEventHandlerFunc adapts a function to a TransactionEventHandler
type TransactionEventHandlerFunc func(ctx context.Context, event TransactionEvent) error

func (f TransactionEventHandlerFunc) HandleEvent(ctx context.Context, event TransactionEvent) error {
	return f(ctx, event)
}
