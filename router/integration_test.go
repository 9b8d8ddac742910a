// file: router/integration_test.go

package router_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"go-bank-app/app"
	"go-bank-app/config"
	"go-bank-app/model"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testApp *app.TestApp
var testRedisClient *redis.Client

// setupIntegration is called from TestMain when INTEGRATION is set. It
// expects a Postgres instance with a <name>_test database and a Redis
// instance reachable at the configured addresses.
func setupIntegration() {
	config.LoadConfig("../")

	testDbConnStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s_test?sslmode=disable",
		config.AppConfig.Database.User,
		config.AppConfig.Database.Password,
		config.AppConfig.Database.Host,
		config.AppConfig.Database.Port,
		config.AppConfig.Database.Name,
	)
	db, err := sql.Open("postgres", testDbConnStr)
	if err != nil {
		log.Fatalf("could not connect to test database: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		log.Fatalf("database not ready: %v", err)
	}
	runMigrations(testDbConnStr)

	redisAddr := fmt.Sprintf("%s:%s", config.AppConfig.Redis.Host, config.AppConfig.Redis.Port)
	testRedisClient = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: config.AppConfig.Redis.Password,
		DB:       1, // Use a separate DB for test isolation.
	})
	if _, err := testRedisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("could not connect to test redis: %v", err)
	}

	testApp = app.NewTestApp(db, testRedisClient)
}

func runMigrations(connStr string) {
	migrationPath := "file://../db/migrations"
	mig, err := migrate.New(migrationPath, connStr)
	if err != nil {
		log.Fatalf("cannot create migrate instance: %v", err)
	}
	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("failed to run migrate up: %v", err)
	}
}

func requireIntegration(t *testing.T) {
	if testApp == nil {
		t.Skip("skipping integration test: INTEGRATION not set")
	}
}

// --- Test Helper Functions ---

func cleanupAccount(t *testing.T, username string) {
	_, err := testApp.DB.Exec("DELETE FROM accounts WHERE username = $1", username)
	assert.NoError(t, err, "Failed to clean up account")
}

func registerAccountForTest(t *testing.T, username, password string) model.Account {
	requestBody := fmt.Sprintf(`{"username": "%s", "password": "%s"}`, username, password)
	req, _ := http.NewRequest("POST", "/register", strings.NewReader(requestBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	testApp.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code, "Registration should succeed")

	var account model.Account
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &account))
	return account
}

func loginForTest(t *testing.T, username, password string) string {
	requestBody := fmt.Sprintf(`{"username": "%s", "password": "%s"}`, username, password)
	req, _ := http.NewRequest("POST", "/login", strings.NewReader(requestBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	testApp.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, "Login request should be successful")

	var response struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Token, "Token should not be empty")
	return response.Token
}

func doAuthedRequest(t *testing.T, token, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	testApp.Router.ServeHTTP(rr, req)
	return rr
}

func accountBalance(t *testing.T, id int64) decimal.Decimal {
	var balance decimal.Decimal
	err := testApp.DB.QueryRow("SELECT balance FROM accounts WHERE id = $1", id).Scan(&balance)
	assert.NoError(t, err)
	return balance
}

// --- Test Suites ---

func TestRegisterAndLogin_Integration(t *testing.T) {
	requireIntegration(t)
	defer cleanupAccount(t, "it_alice")

	account := registerAccountForTest(t, "it_alice", "password123")
	assert.Equal(t, "it_alice", account.Username)
	assert.True(t, account.Balance.IsZero(), "A registered account starts at zero")

	var storedHash string
	err := testApp.DB.QueryRow("SELECT password FROM accounts WHERE username = $1", "it_alice").Scan(&storedHash)
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", storedHash, "The password must never be stored in plaintext")

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		requestBody := `{"username": "it_alice", "password": "otherpassword"}`
		req, _ := http.NewRequest("POST", "/register", strings.NewReader(requestBody))
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("login with the right password", func(t *testing.T) {
		token := loginForTest(t, "it_alice", "password123")
		assert.NotEmpty(t, token)
	})

	t.Run("login with the wrong password", func(t *testing.T) {
		requestBody := `{"username": "it_alice", "password": "wrongpassword"}`
		req, _ := http.NewRequest("POST", "/login", strings.NewReader(requestBody))
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestMoneyMovement_Integration(t *testing.T) {
	requireIntegration(t)
	defer cleanupAccount(t, "it_sender")
	defer cleanupAccount(t, "it_receiver")

	sender := registerAccountForTest(t, "it_sender", "password123")
	receiver := registerAccountForTest(t, "it_receiver", "password123")
	senderToken := loginForTest(t, "it_sender", "password123")

	t.Run("deposit", func(t *testing.T) {
		rr := doAuthedRequest(t, senderToken, "POST",
			fmt.Sprintf("/api/accounts/%d/deposit", sender.ID), `{"amount": "500.50"}`)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.True(t, accountBalance(t, sender.ID).Equal(decimal.RequireFromString("500.50")))
	})

	t.Run("withdraw", func(t *testing.T) {
		rr := doAuthedRequest(t, senderToken, "POST",
			fmt.Sprintf("/api/accounts/%d/withdraw", sender.ID), `{"amount": "100.50"}`)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.True(t, accountBalance(t, sender.ID).Equal(decimal.NewFromInt(400)))
	})

	t.Run("withdraw more than the balance", func(t *testing.T) {
		rr := doAuthedRequest(t, senderToken, "POST",
			fmt.Sprintf("/api/accounts/%d/withdraw", sender.ID), `{"amount": "9999"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.True(t, accountBalance(t, sender.ID).Equal(decimal.NewFromInt(400)), "A failed withdrawal leaves the balance unchanged")
	})

	t.Run("transfer", func(t *testing.T) {
		rr := doAuthedRequest(t, senderToken, "POST",
			fmt.Sprintf("/api/accounts/%d/transfer", sender.ID), `{"to_username": "it_receiver", "amount": "150"}`)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.True(t, accountBalance(t, sender.ID).Equal(decimal.NewFromInt(250)))
		assert.True(t, accountBalance(t, receiver.ID).Equal(decimal.NewFromInt(150)))
	})

	t.Run("transfer to an unknown username", func(t *testing.T) {
		rr := doAuthedRequest(t, senderToken, "POST",
			fmt.Sprintf("/api/accounts/%d/transfer", sender.ID), `{"to_username": "it_ghost", "amount": "10"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.True(t, accountBalance(t, sender.ID).Equal(decimal.NewFromInt(250)), "A failed transfer leaves the sender unchanged")
	})

	t.Run("transfer from someone else's account", func(t *testing.T) {
		rr := doAuthedRequest(t, senderToken, "POST",
			fmt.Sprintf("/api/accounts/%d/transfer", receiver.ID), `{"to_username": "it_sender", "amount": "10"}`)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("transaction history is chronological and complete", func(t *testing.T) {
		rr := doAuthedRequest(t, senderToken, "GET",
			fmt.Sprintf("/api/accounts/%d/transactions", sender.ID), "")
		assert.Equal(t, http.StatusOK, rr.Code)

		var history []model.Transaction
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
		assert.Len(t, history, 3)
		assert.Equal(t, model.KindDeposit, history[0].Kind)
		assert.Equal(t, model.KindWithdrawal, history[1].Kind)
		assert.Equal(t, model.KindTransferOut, history[2].Kind)
		assert.Equal(t, "it_receiver", history[2].Counterparty)
	})
}

func TestListAccounts_Caching_Integration(t *testing.T) {
	requireIntegration(t)
	assert.NoError(t, testRedisClient.FlushDB(context.Background()).Err())
	defer cleanupAccount(t, "it_cache")
	defer cleanupAccount(t, "it_cache2")

	registerAccountForTest(t, "it_cache", "password123")
	token := loginForTest(t, "it_cache", "password123")

	// 1. First request: a cache miss that populates the key.
	rr := doAuthedRequest(t, token, "GET", "/api/accounts", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	cachedValue, err := testRedisClient.Get(context.Background(), "accounts:all").Result()
	assert.NoError(t, err)
	assert.NotEmpty(t, cachedValue)

	// 2. A new registration invalidates the listing.
	registerAccountForTest(t, "it_cache2", "password123")

	_, err = testRedisClient.Get(context.Background(), "accounts:all").Result()
	assert.Error(t, err, "Cache key should be deleted after a new account is created")
	assert.Equal(t, redis.Nil, err)
}

func TestAccountCRUD_Integration(t *testing.T) {
	requireIntegration(t)
	defer cleanupAccount(t, "it_crud")
	defer cleanupAccount(t, "it_crud_renamed")

	account := registerAccountForTest(t, "it_crud", "password123")
	token := loginForTest(t, "it_crud", "password123")

	t.Run("view", func(t *testing.T) {
		rr := doAuthedRequest(t, token, "GET", fmt.Sprintf("/api/accounts/%d", account.ID), "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("view unknown id", func(t *testing.T) {
		rr := doAuthedRequest(t, token, "GET", "/api/accounts/999999", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("edit", func(t *testing.T) {
		body := `{"username": "it_crud_renamed", "password": "password456", "balance": "42"}`
		rr := doAuthedRequest(t, token, "PUT", fmt.Sprintf("/api/accounts/%d", account.ID), body)
		assert.Equal(t, http.StatusOK, rr.Code)

		var updated model.Account
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		assert.Equal(t, "it_crud_renamed", updated.Username)
		assert.True(t, updated.Balance.Equal(decimal.NewFromInt(42)))
	})

	t.Run("delete cascades the ledger", func(t *testing.T) {
		depositRR := doAuthedRequest(t, token, "POST",
			fmt.Sprintf("/api/accounts/%d/deposit", account.ID), `{"amount": "10"}`)
		assert.Equal(t, http.StatusNoContent, depositRR.Code)

		rr := doAuthedRequest(t, token, "DELETE", fmt.Sprintf("/api/accounts/%d", account.ID), "")
		assert.Equal(t, http.StatusNoContent, rr.Code)

		var count int
		err := testApp.DB.QueryRow("SELECT COUNT(*) FROM transactions WHERE account_id = $1", account.ID).Scan(&count)
		assert.NoError(t, err)
		assert.Zero(t, count, "Deleting an account removes its transactions")
	})
}
