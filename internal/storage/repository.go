package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/K1T3K1/msfin/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys is a per-connection pragma, so it rides in the DSN to
	// cover every pooled connection
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, account core.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE name = ?", account.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check account name: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: account %q", core.ErrDuplicateName, account.Name)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO accounts (id, name, type, opening_balance, balance) VALUES (?, ?, ?, ?, ?)",
		account.ID.String(), account.Name, string(account.Type),
		account.Balance.String(), account.Balance.String())
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "account created", "id", account.ID, "name", account.Name)
	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id uuid.UUID) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, type, balance FROM accounts WHERE id = ?", id.String())
	return scanAccount(row)
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, type, balance FROM accounts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	// FK cascade removes the account's transactions with the row.
	res, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: account %s", core.ErrNotFound, id)
	}

	slog.InfoContext(ctx, "account deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, category core.Category) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE name = ?", category.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: category %q", core.ErrDuplicateName, category.Name)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO categories (id, name, icon) VALUES (?, ?, ?)",
		category.ID.String(), category.Name, category.Icon)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, icon FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var id string
		if err := rows.Scan(&id, &c.Name, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse category id: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	// FK sets referencing transactions' category_id to NULL.
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %s", core.ErrNotFound, id)
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	balance, err := accountBalance(ctx, tx, t.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: account %s does not exist", core.ErrValidation, t.AccountID)
	}
	if err != nil {
		return fmt.Errorf("read account balance: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO transactions (id, timestamp, value, name, account_id, category_id) VALUES (?, ?, ?, ?, ?, ?)",
		t.ID.String(), t.Timestamp.UnixMilli(), t.Value.String(), t.Name,
		t.AccountID.String(), categoryParam(t.CategoryID))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	if err := setBalance(ctx, tx, t.AccountID, balance.Add(t.Value)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "transaction created",
		"id", t.ID, "account_id", t.AccountID, "value", t.Value)
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, timestamp, value, name, account_id, category_id FROM transactions WHERE id = ?",
		id.String())
	return scanTransaction(row)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := scanTransaction(tx.QueryRowContext(ctx,
		"SELECT id, timestamp, value, name, account_id, category_id FROM transactions WHERE id = ?",
		t.ID.String()))
	if err != nil {
		return err
	}

	oldBalance, err := accountBalance(ctx, tx, old.AccountID)
	if err != nil {
		return fmt.Errorf("read old account balance: %w", err)
	}

	if old.AccountID == t.AccountID {
		delta := t.Value.Sub(old.Value)
		if err := setBalance(ctx, tx, t.AccountID, oldBalance.Add(delta)); err != nil {
			return err
		}
	} else {
		newBalance, err := accountBalance(ctx, tx, t.AccountID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: account %s does not exist", core.ErrNotFound, t.AccountID)
		}
		if err != nil {
			return fmt.Errorf("read new account balance: %w", err)
		}
		if err := setBalance(ctx, tx, old.AccountID, oldBalance.Sub(old.Value)); err != nil {
			return err
		}
		if err := setBalance(ctx, tx, t.AccountID, newBalance.Add(t.Value)); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE transactions SET timestamp = ?, value = ?, name = ?, account_id = ?, category_id = ? WHERE id = ?",
		t.Timestamp.UnixMilli(), t.Value.String(), t.Name,
		t.AccountID.String(), categoryParam(t.CategoryID), t.ID.String())
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "transaction updated",
		"id", t.ID, "account_id", t.AccountID, "value", t.Value)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := scanTransaction(tx.QueryRowContext(ctx,
		"SELECT id, timestamp, value, name, account_id, category_id FROM transactions WHERE id = ?",
		id.String()))
	if err != nil {
		return err
	}

	// The balance adjustment and the row delete commit together; the
	// balance can never go stale against a removed transaction.
	balance, err := accountBalance(ctx, tx, old.AccountID)
	if err != nil {
		return fmt.Errorf("read account balance: %w", err)
	}
	if err := setBalance(ctx, tx, old.AccountID, balance.Sub(old.Value)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id.String()); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "transaction deleted", "id", id, "account_id", old.AccountID)
	return nil
}

const entryQuery = `
SELECT t.id, t.timestamp, t.value, t.name, t.account_id, t.category_id,
       a.name, COALESCE(c.name, '')
FROM transactions t
JOIN accounts a ON a.id = t.account_id
LEFT JOIN categories c ON c.id = t.category_id`

func (r *SQLiteRepository) GetEntry(ctx context.Context, id uuid.UUID) (core.LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx, entryQuery+" WHERE t.id = ?", id.String())
	return scanEntry(row)
}

func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, entryQuery+" ORDER BY t.timestamp DESC")
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []core.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func accountBalance(ctx context.Context, tx execer, id uuid.UUID) (decimal.Decimal, error) {
	var raw string
	err := tx.QueryRowContext(ctx, "SELECT balance FROM accounts WHERE id = ?", id.String()).Scan(&raw)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", raw, err)
	}
	return balance, nil
}

func setBalance(ctx context.Context, tx execer, id uuid.UUID, balance decimal.Decimal) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE accounts SET balance = ? WHERE id = ?", balance.String(), id.String()); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

func categoryParam(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (core.Account, error) {
	var a core.Account
	var id, balance string
	if err := row.Scan(&id, &a.Name, (*string)(&a.Type), &balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Account{}, fmt.Errorf("%w: account", core.ErrNotFound)
		}
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	var err error
	if a.ID, err = uuid.Parse(id); err != nil {
		return core.Account{}, fmt.Errorf("parse account id: %w", err)
	}
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return core.Account{}, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	return a, nil
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var t core.Transaction
	var id, value, accountID string
	var ts int64
	var categoryID sql.NullString
	if err := row.Scan(&id, &ts, &value, &t.Name, &accountID, &categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, fmt.Errorf("%w: transaction", core.ErrNotFound)
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	return buildTransaction(t, id, ts, value, accountID, categoryID)
}

func scanEntry(row scanner) (core.LedgerEntry, error) {
	var e core.LedgerEntry
	var id, value, accountID string
	var ts int64
	var categoryID sql.NullString
	err := row.Scan(&id, &ts, &value, &e.Name, &accountID, &categoryID,
		&e.AccountName, &e.CategoryName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.LedgerEntry{}, fmt.Errorf("%w: transaction", core.ErrNotFound)
		}
		return core.LedgerEntry{}, fmt.Errorf("scan entry: %w", err)
	}
	e.Transaction, err = buildTransaction(e.Transaction, id, ts, value, accountID, categoryID)
	return e, err
}

func buildTransaction(t core.Transaction, id string, ts int64, value, accountID string, categoryID sql.NullString) (core.Transaction, error) {
	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id: %w", err)
	}
	t.Timestamp = time.UnixMilli(ts).UTC()
	if t.Value, err = decimal.NewFromString(value); err != nil {
		return core.Transaction{}, fmt.Errorf("parse value %q: %w", value, err)
	}
	if t.AccountID, err = uuid.Parse(accountID); err != nil {
		return core.Transaction{}, fmt.Errorf("parse account id: %w", err)
	}
	if categoryID.Valid {
		cid, err := uuid.Parse(categoryID.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse category id: %w", err)
		}
		t.CategoryID = &cid
	}
	return t, nil
}
