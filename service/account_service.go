// file: service/account_service.go

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"go-bank-app/logger"
	"go-bank-app/model"
	"go-bank-app/repository"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrSameAccountTransfer = errors.New("cannot transfer money to the same account")
)

const allAccountsCacheKey = "accounts:all"

// AccountService is the domain core: it enforces the balance invariants and
// produces the transaction records for every balance-affecting operation.
// Each multi-write operation runs inside a single database transaction with
// the touched account rows locked FOR UPDATE, so the balance update and its
// ledger entry commit or roll back together and concurrent mutations on the
// same account serialize.
type AccountService struct {
	db              *sql.DB
	accountRepo     repository.IAccountRepository
	transactionRepo repository.ITransactionRepository
	cache           ICacheClient
}

func NewAccountService(db *sql.DB, accountRepo repository.IAccountRepository, transactionRepo repository.ITransactionRepository, cache ICacheClient) *AccountService {
	return &AccountService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		cache:           cache,
	}
}

// invalidateAccountsCache drops the cached account listing after any write.
func (s *AccountService) invalidateAccountsCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Del(ctx, allAccountsCacheKey)
}

// mapLookupErr translates the driver-level miss into the domain taxonomy.
// Every lookup in the service shares this one contract: a miss is always
// ErrAccountNotFound, never a nil sentinel.
func mapLookupErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAccountNotFound
	}
	return err
}

// FindAccountByUsername resolves an account by its business key.
func (s *AccountService) FindAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	account, err := s.accountRepo.GetAccountByUsername(username)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return account, nil
}

// GetAccountByID resolves an account by its identifier.
func (s *AccountService) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	account, err := s.accountRepo.GetAccountByID(id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return account, nil
}

// Register opens a new account with a zero balance and a hashed password.
func (s *AccountService) Register(ctx context.Context, username, password string) (*model.Account, error) {
	log := logger.Log.WithField("username", username)
	log.Info("Registering new account")

	if _, err := s.accountRepo.GetAccountByUsername(username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Username: username,
		Password: hashedPassword,
		Balance:  decimal.Zero,
	}

	if err := s.accountRepo.CreateAccount(account); err != nil {
		// A concurrent registration can still win the race past the lookup
		// above; the unique constraint is the authority.
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	s.invalidateAccountsCache(ctx)

	log.WithField("account_id", account.ID).Info("Account registered successfully")
	return account, nil
}

// Deposit increases the account balance and appends the matching ledger
// entry atomically.
func (s *AccountService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount.String(),
	})
	log.Info("Starting deposit")

	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(tx, accountID)
	if err != nil {
		return mapLookupErr(err)
	}

	if err := s.accountRepo.UpdateAccountBalance(tx, account.ID, account.Balance.Add(amount)); err != nil {
		return fmt.Errorf("could not update balance: %w", err)
	}

	entry := &model.Transaction{
		AccountID: account.ID,
		Amount:    amount,
		Kind:      model.KindDeposit,
	}
	if err := s.transactionRepo.CreateTransaction(tx, entry); err != nil {
		return fmt.Errorf("could not create transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	s.invalidateAccountsCache(ctx)

	log.Info("Deposit completed successfully")
	return nil
}

// Withdraw decreases the account balance, refusing to let it go negative,
// and appends the matching ledger entry atomically. Withdrawing the exact
// balance is allowed.
func (s *AccountService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount.String(),
	})
	log.Info("Starting withdrawal")

	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(tx, accountID)
	if err != nil {
		return mapLookupErr(err)
	}

	if account.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	if err := s.accountRepo.UpdateAccountBalance(tx, account.ID, account.Balance.Sub(amount)); err != nil {
		return fmt.Errorf("could not update balance: %w", err)
	}

	entry := &model.Transaction{
		AccountID: account.ID,
		Amount:    amount,
		Kind:      model.KindWithdrawal,
	}
	if err := s.transactionRepo.CreateTransaction(tx, entry); err != nil {
		return fmt.Errorf("could not create transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	s.invalidateAccountsCache(ctx)

	log.Info("Withdrawal completed successfully")
	return nil
}

// Transfer moves amount from the sender to the account owning toUsername.
// Debit, credit and both ledger entries share one database transaction, so
// the two accounts can never diverge.
func (s *AccountService) Transfer(ctx context.Context, fromAccountID int64, toUsername string, amount decimal.Decimal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"from_account_id": fromAccountID,
		"to_username":     toUsername,
		"amount":          amount.String(),
	})
	log.Info("Starting transfer")

	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	fromAccount, err := s.accountRepo.GetAccountForUpdate(tx, fromAccountID)
	if err != nil {
		return mapLookupErr(err)
	}

	if fromAccount.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	toAccount, err := s.accountRepo.GetAccountForUpdateByUsername(tx, toUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("recipient %q: %w", toUsername, ErrAccountNotFound)
		}
		return err
	}

	if toAccount.ID == fromAccount.ID {
		return ErrSameAccountTransfer
	}

	if err := s.accountRepo.UpdateAccountBalance(tx, fromAccount.ID, fromAccount.Balance.Sub(amount)); err != nil {
		return fmt.Errorf("could not update sender balance: %w", err)
	}

	if err := s.accountRepo.UpdateAccountBalance(tx, toAccount.ID, toAccount.Balance.Add(amount)); err != nil {
		return fmt.Errorf("could not update receiver balance: %w", err)
	}

	debit := &model.Transaction{
		AccountID:    fromAccount.ID,
		Amount:       amount,
		Kind:         model.KindTransferOut,
		Counterparty: toAccount.Username,
	}
	if err := s.transactionRepo.CreateTransaction(tx, debit); err != nil {
		return fmt.Errorf("could not create debit record: %w", err)
	}

	credit := &model.Transaction{
		AccountID:    toAccount.ID,
		Amount:       amount,
		Kind:         model.KindTransferIn,
		Counterparty: fromAccount.Username,
	}
	if err := s.transactionRepo.CreateTransaction(tx, credit); err != nil {
		return fmt.Errorf("could not create credit record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	s.invalidateAccountsCache(ctx)

	log.Info("Transfer completed successfully")
	return nil
}

// GetTransactionHistory returns the account's ledger in chronological order.
func (s *AccountService) GetTransactionHistory(ctx context.Context, accountID int64) ([]*model.Transaction, error) {
	if _, err := s.accountRepo.GetAccountByID(accountID); err != nil {
		return nil, mapLookupErr(err)
	}
	return s.transactionRepo.GetTransactionsByAccountID(accountID)
}

// GetAllAccounts lists every account, utilizing a cache-aside strategy.
func (s *AccountService) GetAllAccounts(ctx context.Context) ([]*model.Account, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, allAccountsCacheKey).Result()
		if err == nil {
			var accounts []*model.Account
			if err := json.Unmarshal([]byte(cached), &accounts); err == nil {
				return accounts, nil
			}
		}
	}

	accounts, err := s.accountRepo.GetAllAccounts()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(accounts); err == nil {
			s.cache.Set(ctx, allAccountsCacheKey, data, 10*time.Minute)
		}
	}

	return accounts, nil
}

// SaveAccount persists the account: insert when it has no identifier yet,
// overwrite otherwise.
func (s *AccountService) SaveAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	var err error
	if account.ID == 0 {
		err = s.accountRepo.CreateAccount(account)
	} else {
		err = s.accountRepo.UpdateAccount(account)
	}
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, mapLookupErr(err)
	}

	s.invalidateAccountsCache(ctx)
	return account, nil
}

// UpdateAccount overwrites the username, password and balance of the account
// identified by id. An empty password keeps the stored hash.
func (s *AccountService) UpdateAccount(ctx context.Context, id int64, req model.UpdateAccountRequest) (*model.Account, error) {
	account, err := s.accountRepo.GetAccountByID(id)
	if err != nil {
		return nil, mapLookupErr(err)
	}

	account.Username = req.Username
	account.Balance = req.Balance
	if req.Password != "" {
		hashed, err := HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		account.Password = hashed
	}

	if err := s.accountRepo.UpdateAccount(account); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, mapLookupErr(err)
	}

	s.invalidateAccountsCache(ctx)
	return account, nil
}

// DeleteAccount removes the account and, through the schema's cascade, its
// entire transaction history.
func (s *AccountService) DeleteAccount(ctx context.Context, id int64) error {
	deleted, err := s.accountRepo.DeleteAccount(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAccountNotFound
	}

	s.invalidateAccountsCache(ctx)
	return nil
}
