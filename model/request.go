// file: model/request.go

package model

import "github.com/shopspring/decimal"

// RegisterRequest defines the payload for opening a new account.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the payload for account authentication.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AmountRequest carries the amount for deposits and withdrawals. Positivity
// is enforced in the service, which rejects zero and negative amounts.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// TransferRequest defines the payload for moving money to another account,
// addressed by its username.
type TransferRequest struct {
	ToUsername string          `json:"to_username" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
}

// CreateAccountRequest defines the payload for creating an account directly,
// optionally with an opening balance.
type CreateAccountRequest struct {
	Username string          `json:"username" validate:"required,min=3,max=50"`
	Password string          `json:"password" validate:"required,min=8"`
	Balance  decimal.Decimal `json:"balance"`
}

// UpdateAccountRequest defines the payload for overwriting an account's
// fields in place. An empty password leaves the stored hash untouched.
type UpdateAccountRequest struct {
	Username string          `json:"username" validate:"required,min=3,max=50"`
	Password string          `json:"password" validate:"omitempty,min=8"`
	Balance  decimal.Decimal `json:"balance"`
}
