package router

import (
	"go-bank-app/common"
	"go-bank-app/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "go-bank-app/docs"
)

func NewRouter(authHandler *handler.AuthHandler, accountHandler *handler.AccountHandler, transactionHandler *handler.TransactionHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	mux.Handle("POST /register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /login", handler.ErrorHandlingMiddleware(authHandler.Login))

	protected := func(h func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return handler.AuthMiddleware(handler.ErrorHandlingMiddleware(h))
	}

	mux.Handle("GET /api/accounts", protected(accountHandler.ListAccounts))
	mux.Handle("POST /api/accounts", protected(accountHandler.CreateAccount))
	mux.Handle("GET /api/accounts/{id}", protected(accountHandler.GetAccount))
	mux.Handle("PUT /api/accounts/{id}", protected(accountHandler.UpdateAccount))
	mux.Handle("DELETE /api/accounts/{id}", protected(accountHandler.DeleteAccount))

	mux.Handle("POST /api/accounts/{id}/deposit", protected(transactionHandler.Deposit))
	mux.Handle("POST /api/accounts/{id}/withdraw", protected(transactionHandler.Withdraw))
	mux.Handle("POST /api/accounts/{id}/transfer", protected(transactionHandler.Transfer))
	mux.Handle("GET /api/accounts/{id}/transactions", protected(transactionHandler.ListTransactions))

	return mux
}
