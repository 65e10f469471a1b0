package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/K1T3K1/msfin/internal/amqp"
	"github.com/K1T3K1/msfin/internal/core"
	"github.com/K1T3K1/msfin/internal/metrics"
	"github.com/K1T3K1/msfin/internal/storage"
)

// LedgerService orchestrates ledger mutations over the store and publishes
// mutation events. It is the only writer of account balances; every
// balance change rides inside a store mutation.
type LedgerService struct {
	store      storage.Store
	amqpClient *amqp.Client
}

func NewLedgerService(store storage.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
	}
}

func (s *LedgerService) CreateAccount(ctx context.Context, name string, accountType core.AccountType, openingBalance decimal.Decimal) (core.Account, error) {
	account := core.Account{
		ID:      uuid.New(),
		Name:    name,
		Type:    accountType,
		Balance: openingBalance,
	}
	if err := account.Validate(); err != nil {
		metrics.RecordOperation("create_account", err)
		return core.Account{}, err
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		metrics.RecordOperation("create_account", err)
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	metrics.RecordOperation("create_account", nil)
	return account, nil
}

func (s *LedgerService) GetAccount(ctx context.Context, id uuid.UUID) (core.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *LedgerService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *LedgerService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		metrics.RecordOperation("delete_account", err)
		return fmt.Errorf("delete account: %w", err)
	}
	metrics.RecordOperation("delete_account", nil)
	s.publishEvent(ctx, amqp.NewLedgerEvent(amqp.EventAccountDeleted, uuid.Nil, id))
	return nil
}

func (s *LedgerService) CreateCategory(ctx context.Context, name, icon string) (core.Category, error) {
	category := core.Category{
		ID:   uuid.New(),
		Name: name,
		Icon: icon,
	}
	if err := category.Validate(); err != nil {
		metrics.RecordOperation("create_category", err)
		return core.Category{}, err
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		metrics.RecordOperation("create_category", err)
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	metrics.RecordOperation("create_category", nil)
	return category, nil
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		metrics.RecordOperation("delete_category", err)
		return fmt.Errorf("delete category: %w", err)
	}
	metrics.RecordOperation("delete_category", nil)
	return nil
}

func (s *LedgerService) CreateTransaction(ctx context.Context, timestamp time.Time, value decimal.Decimal, accountID uuid.UUID, name string, categoryID *uuid.UUID) (core.Transaction, error) {
	tx := core.Transaction{
		ID:         uuid.New(),
		Timestamp:  timestamp,
		Value:      value,
		AccountID:  accountID,
		Name:       name,
		CategoryID: categoryID,
	}
	if err := tx.Validate(); err != nil {
		metrics.RecordOperation("create_transaction", err)
		return core.Transaction{}, err
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		metrics.RecordOperation("create_transaction", err)
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	metrics.RecordOperation("create_transaction", nil)
	s.publishEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionCreated, tx.ID, accountID))
	return tx, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id uuid.UUID, timestamp time.Time, value decimal.Decimal, accountID uuid.UUID, name string, categoryID *uuid.UUID) (core.Transaction, error) {
	tx := core.Transaction{
		ID:         id,
		Timestamp:  timestamp,
		Value:      value,
		AccountID:  accountID,
		Name:       name,
		CategoryID: categoryID,
	}
	if err := tx.Validate(); err != nil {
		metrics.RecordOperation("update_transaction", err)
		return core.Transaction{}, err
	}
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		metrics.RecordOperation("update_transaction", err)
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	metrics.RecordOperation("update_transaction", nil)
	s.publishEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionUpdated, tx.ID, accountID))
	return tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		metrics.RecordOperation("delete_transaction", err)
		return fmt.Errorf("delete transaction: %w", err)
	}
	metrics.RecordOperation("delete_transaction", nil)
	s.publishEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionDeleted, id, uuid.Nil))
	return nil
}

// ListTransactions returns the entries matching the query, filtered and
// sorted in memory.
func (s *LedgerService) ListTransactions(ctx context.Context, query core.TransactionQuery) ([]core.LedgerEntry, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return query.Apply(entries), nil
}

func (s *LedgerService) Summarize(ctx context.Context, by core.GroupBy, from, to time.Time) (core.Summary, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list entries: %w", err)
	}
	return core.Summarize(entries, by, from, to), nil
}

// publishEvent never fails the mutation it follows; a broker outage is
// logged and the call stands.
func (s *LedgerService) publishEvent(ctx context.Context, event *amqp.LedgerEvent) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishLedgerEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish ledger event",
			"type", event.Type,
			"transaction_id", event.TransactionID,
			"error", err)
	}
}

func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
