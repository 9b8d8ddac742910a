package repository

import (
	"database/sql"
	"go-bank-app/logger"
	"go-bank-app/model"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func accountColumns() []string {
	return []string{"id", "username", "password", "balance", "created_at"}
}

func TestAccountRepository_GetAccountByUsername(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(accountColumns()).
			AddRow(int64(1), "alice", "hash", "150.25", time.Now())
		dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, password, balance, created_at FROM accounts WHERE username = $1`)).
			WithArgs("alice").
			WillReturnRows(rows)

		account, err := repo.GetAccountByUsername("alice")

		assert.NoError(t, err)
		assert.Equal(t, "alice", account.Username)
		assert.True(t, account.Balance.Equal(decimal.RequireFromString("150.25")))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("miss surfaces sql.ErrNoRows", func(t *testing.T) {
		dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, password, balance, created_at FROM accounts WHERE username = $1`)).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		account, err := repo.GetAccountByUsername("ghost")

		assert.Nil(t, account)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAccountRepository_CreateAccount(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)

	t.Run("fills generated fields", func(t *testing.T) {
		account := testAccount
		created := time.Now()
		dbMock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts (username, password, balance) VALUES ($1, $2, $3) RETURNING id, created_at`)).
			WithArgs(account.Username, account.Password, account.Balance).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), created))

		err := repo.CreateAccount(&account)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), account.ID)
		assert.Equal(t, created, account.CreatedAt)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("duplicate username surfaces the pq error", func(t *testing.T) {
		dbMock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts`)).
			WillReturnError(&pq.Error{Code: "23505"})

		account := testAccount
		err := repo.CreateAccount(&account)

		assert.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAccountRepository_UpdateAccount(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)

	t.Run("success", func(t *testing.T) {
		account := testAccount
		account.ID = 1
		dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE accounts SET username = $1, password = $2, balance = $3 WHERE id = $4`)).
			WithArgs(account.Username, account.Password, account.Balance, account.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateAccount(&account))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown id surfaces sql.ErrNoRows", func(t *testing.T) {
		account := testAccount
		account.ID = 99
		dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE accounts SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateAccount(&account), sql.ErrNoRows)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAccountRepository_DeleteAccount(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)

	t.Run("reports a deleted row", func(t *testing.T) {
		dbMock.ExpectExec(regexp.QuoteMeta(`DELETE FROM accounts WHERE id = $1`)).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		deleted, err := repo.DeleteAccount(1)

		assert.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("reports a miss", func(t *testing.T) {
		dbMock.ExpectExec(regexp.QuoteMeta(`DELETE FROM accounts WHERE id = $1`)).
			WithArgs(int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		deleted, err := repo.DeleteAccount(99)

		assert.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestAccountRepository_GetAccountForUpdate(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)

	dbMock.ExpectBegin()
	rows := sqlmock.NewRows(accountColumns()).
		AddRow(int64(1), "alice", "hash", "500", time.Now())
	dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, password, balance, created_at FROM accounts WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(1)).
		WillReturnRows(rows)
	dbMock.ExpectRollback()

	tx, err := db.Begin()
	assert.NoError(t, err)
	defer tx.Rollback()

	account, err := repo.GetAccountForUpdate(tx, 1)

	assert.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(500)))
}

var testAccount = model.Account{
	Username: "alice",
	Password: "hash",
	Balance:  decimal.NewFromInt(100),
}
