package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_Description(t *testing.T) {
	tests := []struct {
		name string
		tr   Transaction
		want string
	}{
		{"deposit", Transaction{Kind: KindDeposit}, "Deposit"},
		{"withdrawal", Transaction{Kind: KindWithdrawal}, "Withdrawal"},
		{"transfer out names the recipient", Transaction{Kind: KindTransferOut, Counterparty: "bob"}, "Transfer Out to bob"},
		{"transfer in names the sender", Transaction{Kind: KindTransferIn, Counterparty: "alice"}, "Transfer In from alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tr.Description())
		})
	}
}
