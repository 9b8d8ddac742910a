package handler

import (
	"encoding/json"
	"errors"
	"go-bank-app/common"
	"go-bank-app/logger"
	"go-bank-app/model"
	"go-bank-app/service"
	"net/http"
)

// AuthHandler holds dependencies for registration and login.
type AuthHandler struct {
	accountService *service.AccountService
	authService    *service.AuthService
}

func NewAuthHandler(accountService *service.AccountService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		authService:    authService,
	}
}

// Register godoc
// @Summary      Register a new account
// @Description  Opens a new bank account with a zero balance for the given username.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register body model.RegisterRequest true "Registration details"
// @Success      201  {object}  model.Account
// @Failure      400  {object}  common.AppError "Invalid request payload"
// @Failure      409  {object}  common.AppError "Username already exists"
// @Failure      500  {object}  common.AppError "Internal server error"
// @Router       /register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	logger.Log.WithField("username", req.Username).Info("Register request received")

	account, err := h.accountService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) {
			return common.NewAppError(http.StatusConflict, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not register account", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
	return nil
}

// Login godoc
// @Summary      Log in to an account
// @Description  Verifies the credentials and returns a signed session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login body model.LoginRequest true "Login credentials"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  common.AppError "Invalid request payload"
// @Failure      401  {object}  common.AppError "Invalid username or password"
// @Router       /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return common.NewAppError(http.StatusUnauthorized, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not log in", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"token": token})
	return nil
}
