package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/K1T3K1/msfin/internal/core"
)

// MemoryStore is an in-memory Store with the same semantics as the SQLite
// repository. It backs unit tests.
type MemoryStore struct {
	mu           sync.RWMutex
	accounts     map[uuid.UUID]core.Account
	categories   map[uuid.UUID]core.Category
	transactions map[uuid.UUID]core.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[uuid.UUID]core.Account),
		categories:   make(map[uuid.UUID]core.Category),
		transactions: make(map[uuid.UUID]core.Transaction),
	}
}

func (s *MemoryStore) CreateAccount(_ context.Context, account core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.Name == account.Name {
			return fmt.Errorf("%w: account %q", core.ErrDuplicateName, account.Name)
		}
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id uuid.UUID) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return core.Account{}, fmt.Errorf("%w: account %s", core.ErrNotFound, id)
	}
	return a, nil
}

func (s *MemoryStore) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (s *MemoryStore) DeleteAccount(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return fmt.Errorf("%w: account %s", core.ErrNotFound, id)
	}
	delete(s.accounts, id)
	for tid, t := range s.transactions {
		if t.AccountID == id {
			delete(s.transactions, tid)
		}
	}
	return nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, category core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Name == category.Name {
			return fmt.Errorf("%w: category %q", core.ErrDuplicateName, category.Name)
		}
	}
	s.categories[category.ID] = category
	return nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	return categories, nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("%w: category %s", core.ErrNotFound, id)
	}
	delete(s.categories, id)
	for tid, t := range s.transactions {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
			s.transactions[tid] = t
		}
	}
	return nil
}

func (s *MemoryStore) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[t.AccountID]
	if !ok {
		return fmt.Errorf("%w: account %s does not exist", core.ErrValidation, t.AccountID)
	}
	account.Balance = account.Balance.Add(t.Value)
	s.accounts[t.AccountID] = account
	s.transactions[t.ID] = t
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id uuid.UUID) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: transaction %s", core.ErrNotFound, id)
	}
	return t, nil
}

func (s *MemoryStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.transactions[t.ID]
	if !ok {
		return fmt.Errorf("%w: transaction %s", core.ErrNotFound, t.ID)
	}
	newAccount, ok := s.accounts[t.AccountID]
	if !ok {
		return fmt.Errorf("%w: account %s does not exist", core.ErrNotFound, t.AccountID)
	}

	if old.AccountID == t.AccountID {
		newAccount.Balance = newAccount.Balance.Sub(old.Value).Add(t.Value)
		s.accounts[t.AccountID] = newAccount
	} else {
		oldAccount := s.accounts[old.AccountID]
		oldAccount.Balance = oldAccount.Balance.Sub(old.Value)
		s.accounts[old.AccountID] = oldAccount
		newAccount.Balance = newAccount.Balance.Add(t.Value)
		s.accounts[t.AccountID] = newAccount
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return fmt.Errorf("%w: transaction %s", core.ErrNotFound, id)
	}
	account := s.accounts[t.AccountID]
	account.Balance = account.Balance.Sub(t.Value)
	s.accounts[t.AccountID] = account
	delete(s.transactions, id)
	return nil
}

func (s *MemoryStore) GetEntry(_ context.Context, id uuid.UUID) (core.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return core.LedgerEntry{}, fmt.Errorf("%w: transaction %s", core.ErrNotFound, id)
	}
	return s.entry(t), nil
}

func (s *MemoryStore) ListEntries(_ context.Context) ([]core.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]core.LedgerEntry, 0, len(s.transactions))
	for _, t := range s.transactions {
		entries = append(entries, s.entry(t))
	}
	return entries, nil
}

func (s *MemoryStore) entry(t core.Transaction) core.LedgerEntry {
	e := core.LedgerEntry{Transaction: t}
	if a, ok := s.accounts[t.AccountID]; ok {
		e.AccountName = a.Name
	}
	if t.CategoryID != nil {
		if c, ok := s.categories[*t.CategoryID]; ok {
			e.CategoryName = c.Name
		}
	}
	return e
}

func (s *MemoryStore) Close() error { return nil }
