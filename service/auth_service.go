package service

import (
	"context"
	"errors"
	"fmt"
	"go-bank-app/config"
	"go-bank-app/logger"
	"go-bank-app/model"
	"go-bank-app/repository"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

func getJwtKey() []byte {
	return []byte(config.AppConfig.JWT.SecretKey)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func GenerateJWT(account *model.Account) (string, error) {
	expirationTime := time.Now().Add(1 * time.Hour)

	claims := &model.AppClaims{
		AccountID: account.ID,
		Role:      model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Username,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(getJwtKey())
	if err != nil {
		logger.Log.WithError(err).WithField("username", account.Username).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}

// AuthService adapts accounts into authentication principals and issues
// session tokens.
type AuthService struct {
	accountRepo repository.IAccountRepository
}

func NewAuthService(accountRepo repository.IAccountRepository) *AuthService {
	return &AuthService{accountRepo: accountRepo}
}

// Login verifies the credentials and returns a signed session token.
// Lookup misses and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	account, err := s.accountRepo.GetAccountByUsername(username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, account.Password) {
		logger.Log.WithField("username", username).Warn("Login attempt with wrong password")
		return "", ErrInvalidCredentials
	}

	return GenerateJWT(account)
}

// LoadPrincipal resolves the account and returns its authentication-facing
// projection. Every account carries the single fixed "USER" role.
func (s *AuthService) LoadPrincipal(ctx context.Context, username string) (*model.Principal, error) {
	account, err := s.accountRepo.GetAccountByUsername(username)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return model.NewPrincipal(account), nil
}
