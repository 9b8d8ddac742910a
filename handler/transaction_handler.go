package handler

import (
	"encoding/json"
	"errors"
	"go-bank-app/common"
	"go-bank-app/model"
	"go-bank-app/service"
	"net/http"
)

// TransactionHandler holds dependencies for the balance-affecting handlers.
type TransactionHandler struct {
	service *service.AccountService
}

// NewTransactionHandler creates a new TransactionHandler with its dependencies.
func NewTransactionHandler(s *service.AccountService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// requireOwnAccount ensures the path account matches the authenticated one.
func requireOwnAccount(r *http.Request, accountID int64) *common.AppError {
	authedID, ok := r.Context().Value(AccountIDKey).(int64)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid account ID in token", nil)
	}
	if authedID != accountID {
		return common.NewAppError(http.StatusForbidden, "You can only move money on your own account", nil)
	}
	return nil
}

func mapDomainError(err error, fallback string) *common.AppError {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSameAccountTransfer):
		return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallback, err)
	}
}

// Deposit godoc
// @Summary      Deposit into an account
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Account ID"
// @Param        deposit body model.AmountRequest true "Deposit amount"
// @Success      204  "Deposit applied"
// @Failure      400  {object}  common.AppError "Invalid amount"
// @Failure      403  {object}  common.AppError "Not the caller's account"
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/accounts/{id}/deposit [post]
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, err := accountIDFromPath(r)
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}
	if appErr := requireOwnAccount(r, id); appErr != nil {
		return appErr
	}

	var req model.AmountRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.service.Deposit(r.Context(), id, req.Amount); err != nil {
		return mapDomainError(err, "Could not process deposit")
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Withdraw godoc
// @Summary      Withdraw from an account
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Account ID"
// @Param        withdrawal body model.AmountRequest true "Withdrawal amount"
// @Success      204  "Withdrawal applied"
// @Failure      400  {object}  common.AppError "Invalid amount or insufficient funds"
// @Failure      403  {object}  common.AppError "Not the caller's account"
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/accounts/{id}/withdraw [post]
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, err := accountIDFromPath(r)
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}
	if appErr := requireOwnAccount(r, id); appErr != nil {
		return appErr
	}

	var req model.AmountRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.service.Withdraw(r.Context(), id, req.Amount); err != nil {
		return mapDomainError(err, "Could not process withdrawal")
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Transfer godoc
// @Summary      Transfer money to another account
// @Description  Moves the amount from the caller's account to the account owning the given username.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Sender account ID"
// @Param        transfer body model.TransferRequest true "Transfer details"
// @Success      204  "Transfer applied"
// @Failure      400  {object}  common.AppError "Invalid amount, insufficient funds, or same-account transfer"
// @Failure      403  {object}  common.AppError "Not the caller's account"
// @Failure      404  {object}  common.AppError "Sender or recipient account not found"
// @Router       /api/accounts/{id}/transfer [post]
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, err := accountIDFromPath(r)
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}
	if appErr := requireOwnAccount(r, id); appErr != nil {
		return appErr
	}

	var req model.TransferRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.service.Transfer(r.Context(), id, req.ToUsername, req.Amount); err != nil {
		return mapDomainError(err, "Could not process transfer")
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// ListTransactions godoc
// @Summary      List account transaction history
// @Description  Retrieves the transactions of an account in chronological order.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Account ID"
// @Success      200  {array}   model.Transaction
// @Failure      400  {object}  common.AppError "Invalid account ID in URL path"
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/accounts/{id}/transactions [get]
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, err := accountIDFromPath(r)
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}

	transactions, err := h.service.GetTransactionHistory(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transactions", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transactions)
	return nil
}
