package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the closed set of balance-affecting events. Direction
// is carried by the kind; the amount itself is always positive.
type TransactionKind string

const (
	KindDeposit     TransactionKind = "Deposit"
	KindWithdrawal  TransactionKind = "Withdrawal"
	KindTransferOut TransactionKind = "TransferOut"
	KindTransferIn  TransactionKind = "TransferIn"
)

// Transaction is an immutable ledger entry owned by a single account.
// For transfers, Counterparty holds the username of the other side.
type Transaction struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	Kind         TransactionKind `json:"kind"`
	Counterparty string          `json:"counterparty,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Description renders the human-readable label for a transaction, e.g.
// "Transfer Out to alice".
func (t *Transaction) Description() string {
	switch t.Kind {
	case KindTransferOut:
		return fmt.Sprintf("Transfer Out to %s", t.Counterparty)
	case KindTransferIn:
		return fmt.Sprintf("Transfer In from %s", t.Counterparty)
	default:
		return string(t.Kind)
	}
}
