package model

import "github.com/golang-jwt/jwt/v5"

type AppClaims struct {
	AccountID int64  `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
