package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user's identity plus its monetary balance. The username is
// the immutable business key; the password is stored as a bcrypt hash and
// never leaves the server.
type Account struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Password  string          `json:"-"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
