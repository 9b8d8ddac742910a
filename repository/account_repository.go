package repository

import (
	"database/sql"
	"errors"
	"go-bank-app/logger"
	"go-bank-app/model"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// IAccountRepository defines the contract for account database operations.
type IAccountRepository interface {
	CreateAccount(account *model.Account) error
	GetAccountByID(id int64) (*model.Account, error)
	GetAccountByUsername(username string) (*model.Account, error)
	GetAllAccounts() ([]*model.Account, error)
	UpdateAccount(account *model.Account) error
	DeleteAccount(id int64) (bool, error)
	GetAccountForUpdate(tx *sql.Tx, id int64) (*model.Account, error)
	GetAccountForUpdateByUsername(tx *sql.Tx, username string) (*model.Account, error)
	UpdateAccountBalance(tx *sql.Tx, accountID int64, newBalance decimal.Decimal) error
}

// AccountRepository implements IAccountRepository on top of Postgres.
type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

// IsUniqueViolation reports whether err is the Postgres unique-constraint
// error, which surfaces a duplicate username.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateAccount inserts a new account and fills in its generated fields.
func (r *AccountRepository) CreateAccount(account *model.Account) error {
	log := logger.Log.WithField("username", account.Username)
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts (username, password, balance) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.DB.QueryRow(query, account.Username, account.Password, account.Balance).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		if !IsUniqueViolation(err) {
			log.WithError(err).Error("Failed to execute create account query")
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetAccountByID(id int64) (*model.Account, error) {
	account := &model.Account{}
	query := `SELECT id, username, password, balance, created_at FROM accounts WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(&account.ID, &account.Username, &account.Password, &account.Balance, &account.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithField("account_id", id).WithError(err).Error("Failed to execute get account by ID query")
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) GetAccountByUsername(username string) (*model.Account, error) {
	account := &model.Account{}
	query := `SELECT id, username, password, balance, created_at FROM accounts WHERE username = $1`
	err := r.DB.QueryRow(query, username).Scan(&account.ID, &account.Username, &account.Password, &account.Balance, &account.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithField("username", username).WithError(err).Error("Failed to execute get account by username query")
		}
		return nil, err
	}
	return account, nil
}

// GetAllAccounts retrieves every account, oldest first.
func (r *AccountRepository) GetAllAccounts() ([]*model.Account, error) {
	log := logger.Log
	log.Info("Executing query to get all accounts")

	query := `SELECT id, username, password, balance, created_at FROM accounts ORDER BY id`
	rows, err := r.DB.Query(query)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for all accounts")
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		var acc model.Account
		if err := rows.Scan(&acc.ID, &acc.Username, &acc.Password, &acc.Balance, &acc.CreatedAt); err != nil {
			log.WithError(err).Error("Failed to scan account row")
			return nil, err
		}
		accounts = append(accounts, &acc)
	}
	return accounts, rows.Err()
}

// UpdateAccount overwrites the stored username, password hash and balance of
// the account identified by account.ID. It returns sql.ErrNoRows if the id
// does not resolve.
func (r *AccountRepository) UpdateAccount(account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": account.ID,
		"username":   account.Username,
	})
	log.Info("Executing query to update account")

	query := `UPDATE accounts SET username = $1, password = $2, balance = $3 WHERE id = $4`
	res, err := r.DB.Exec(query, account.Username, account.Password, account.Balance, account.ID)
	if err != nil {
		if !IsUniqueViolation(err) {
			log.WithError(err).Error("Failed to execute update account query")
		}
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAccount removes an account; its transactions go with it via the
// ON DELETE CASCADE constraint. The bool reports whether a row was deleted.
func (r *AccountRepository) DeleteAccount(id int64) (bool, error) {
	log := logger.Log.WithField("account_id", id)
	log.Info("Executing query to delete account")

	res, err := r.DB.Exec(`DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete account query")
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetAccountForUpdate locks the account row for the duration of tx so
// concurrent balance mutations on the same account serialize.
func (r *AccountRepository) GetAccountForUpdate(tx *sql.Tx, id int64) (*model.Account, error) {
	log := logger.Log.WithField("account_id", id)
	log.Info("Executing query to get account for update")

	account := &model.Account{}
	query := `SELECT id, username, password, balance, created_at FROM accounts WHERE id = $1 FOR UPDATE`
	err := tx.QueryRow(query, id).Scan(&account.ID, &account.Username, &account.Password, &account.Balance, &account.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Account not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get account for update query")
		}
		return nil, err
	}
	return account, nil
}

// GetAccountForUpdateByUsername is the row-locking lookup used to resolve
// transfer recipients.
func (r *AccountRepository) GetAccountForUpdateByUsername(tx *sql.Tx, username string) (*model.Account, error) {
	log := logger.Log.WithField("username", username)
	log.Info("Executing query to get account for update by username")

	account := &model.Account{}
	query := `SELECT id, username, password, balance, created_at FROM accounts WHERE username = $1 FOR UPDATE`
	err := tx.QueryRow(query, username).Scan(&account.ID, &account.Username, &account.Password, &account.Balance, &account.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Account not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get account for update by username query")
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) UpdateAccountBalance(tx *sql.Tx, accountID int64, newBalance decimal.Decimal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":  accountID,
		"new_balance": newBalance.String(),
	})
	log.Info("Executing query to update account balance")

	query := `UPDATE accounts SET balance = $1 WHERE id = $2`
	_, err := tx.Exec(query, newBalance, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update account balance query")
		return err
	}
	return nil
}
