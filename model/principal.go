package model

import "github.com/shopspring/decimal"

// RoleUser is the single role granted to every account.
const RoleUser = "USER"

// Principal is the authentication-facing projection of an Account. It is a
// separate value so the login machinery never mutates domain state through
// a shared entity.
type Principal struct {
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	Roles        []string        `json:"roles"`
}

// NewPrincipal builds the login view of an account.
func NewPrincipal(account *Account) *Principal {
	return &Principal{
		Username:     account.Username,
		PasswordHash: account.Password,
		Balance:      account.Balance,
		Roles:        []string{RoleUser},
	}
}
