package handler

import (
	"encoding/json"
	"errors"
	"go-bank-app/common"
	"go-bank-app/logger"
	"go-bank-app/model"
	"go-bank-app/service"
	"net/http"
	"strconv"
)

type AccountHandler struct {
	service *service.AccountService
}

func NewAccountHandler(service *service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// accountIDFromPath parses the {id} path segment.
func accountIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// ListAccounts godoc
// @Summary      List all accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.Account
// @Failure      500  {object}  common.AppError
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	accounts, err := h.service.GetAllAccounts(r.Context())
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve accounts", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
	return nil
}

// GetAccount godoc
// @Summary      View a single account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Account ID"
// @Success      200  {object}  model.Account
// @Failure      400  {object}  common.AppError "Invalid account ID in URL path"
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/accounts/{id} [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, err := accountIDFromPath(r)
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}

	account, err := h.service.GetAccountByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve account", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}

// CreateAccount godoc
// @Summary      Create an account directly
// @Description  Creates an account with an optional opening balance, bypassing registration.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        account body model.CreateAccountRequest true "Account details"
// @Success      201  {object}  model.Account
// @Failure      400  {object}  common.AppError "Invalid request payload"
// @Failure      409  {object}  common.AppError "Username already exists"
// @Router       /api/accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateAccountRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	logger.Log.WithField("username", req.Username).Info("Create account request received")

	hashedPassword, err := service.HashPassword(req.Password)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not create account", err)
	}

	account := &model.Account{
		Username: req.Username,
		Password: hashedPassword,
		Balance:  req.Balance,
	}

	account, err = h.service.SaveAccount(r.Context(), account)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) {
			return common.NewAppError(http.StatusConflict, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create account", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
	return nil
}

// UpdateAccount godoc
// @Summary      Edit an account
// @Description  Overwrites the username, password and balance of an account.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Account ID"
// @Param        account body model.UpdateAccountRequest true "Updated fields"
// @Success      200  {object}  model.Account
// @Failure      400  {object}  common.AppError "Invalid request payload or account ID"
// @Failure      404  {object}  common.AppError "Account not found"
// @Failure      409  {object}  common.AppError "Username already exists"
// @Router       /api/accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, err := accountIDFromPath(r)
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}

	var req model.UpdateAccountRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	account, err := h.service.UpdateAccount(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case errors.Is(err, service.ErrDuplicateUsername):
			return common.NewAppError(http.StatusConflict, err.Error(), err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not update account", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}

// DeleteAccount godoc
// @Summary      Delete an account
// @Description  Removes an account together with its transaction history.
// @Tags         accounts
// @Security     BearerAuth
// @Param        id path int true "Account ID"
// @Success      204  "Account deleted"
// @Failure      400  {object}  common.AppError "Invalid account ID in URL path"
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, err := accountIDFromPath(r)
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}

	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not delete account", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
