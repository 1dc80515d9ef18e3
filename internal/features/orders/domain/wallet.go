package domain

import "time"

// WalletEntry is one line of a buyer's wallet ledger.
type WalletEntry struct {
	// Reference is the idempotency key; a reference is credited at most once.
	Reference string `json:"reference"`
	// TransactionID is the locally synthesized transaction identifier.
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	// Amount is the credited amount in minor units.
	Amount      int64     `json:"amount"`
	OrderID     string    `json:"order_id,omitempty"`
	ItemIndex   int       `json:"item_index"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// WalletCredit is the outcome of crediting a wallet.
type WalletCredit struct {
	// TransactionID is the transaction recorded for the reference, even on replay.
	TransactionID string
	// Balance is the wallet balance after the call.
	Balance int64
	// Applied is false when the reference had already been credited.
	Applied bool
}
