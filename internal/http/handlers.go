package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/K1T3K1/msfin/internal/core"
	"github.com/K1T3K1/msfin/internal/currency"
)

type accountResponse struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type transactionResponse struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	Value        decimal.Decimal `json:"value"`
	AccountID    string          `json:"account_id"`
	Name         string          `json:"name"`
	CategoryID   *string         `json:"category_id,omitempty"`
	AccountName  string          `json:"account_name,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
}

type groupShareResponse struct {
	Name  string          `json:"name"`
	Sum   decimal.Decimal `json:"sum"`
	Share decimal.Decimal `json:"share"`
}

type summaryResponse struct {
	Incomes      []groupShareResponse `json:"incomes"`
	Expenses     []groupShareResponse `json:"expenses"`
	IncomeTotal  decimal.Decimal      `json:"income_total"`
	ExpenseTotal decimal.Decimal      `json:"expense_total"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:      a.ID.String(),
		Name:    a.Name,
		Type:    string(a.Type),
		Balance: a.Balance,
	}
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:        t.ID.String(),
		Timestamp: t.Timestamp,
		Value:     t.Value,
		AccountID: t.AccountID.String(),
		Name:      t.Name,
	}
	if t.CategoryID != nil {
		id := t.CategoryID.String()
		resp.CategoryID = &id
	}
	return resp
}

func toEntryResponse(e core.LedgerEntry) transactionResponse {
	resp := toTransactionResponse(e.Transaction)
	resp.AccountName = e.AccountName
	resp.CategoryName = e.CategoryName
	return resp
}

func toGroupShares(groups []core.GroupShare) []groupShareResponse {
	out := make([]groupShareResponse, len(groups))
	for i, g := range groups {
		out[i] = groupShareResponse{Name: g.Name, Sum: g.Sum, Share: g.Share}
	}
	return out
}

// --- accounts ---

type createAccountRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = toAccountResponse(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	balance := decimal.Zero
	if req.Balance != "" {
		var err error
		if balance, err = core.ParseValue(req.Balance); err != nil {
			writeError(w, r, err)
			return
		}
	}

	account, err := s.ledger.CreateAccount(r.Context(), req.Name, core.AccountType(req.Type), balance)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusNoContent, nil)
}

// --- categories ---

type createCategoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = categoryResponse{ID: c.ID.String(), Name: c.Name, Icon: c.Icon}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := s.ledger.CreateCategory(r.Context(), req.Name, req.Icon)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusCreated, categoryResponse{ID: category.ID.String(), Name: category.Name, Icon: category.Icon})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusNoContent, nil)
}

// --- transactions ---

type transactionRequest struct {
	Timestamp  string `json:"timestamp"`
	Value      string `json:"value"`
	AccountID  string `json:"account_id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

func (r transactionRequest) parse() (time.Time, decimal.Decimal, uuid.UUID, *uuid.UUID, error) {
	ts, err := parseTime(r.Timestamp, "timestamp")
	if err != nil {
		return time.Time{}, decimal.Zero, uuid.Nil, nil, err
	}
	value, err := core.ParseValue(r.Value)
	if err != nil {
		return time.Time{}, decimal.Zero, uuid.Nil, nil, err
	}
	accountID, err := uuid.Parse(r.AccountID)
	if err != nil {
		return time.Time{}, decimal.Zero, uuid.Nil, nil,
			fmt.Errorf("%w: invalid account_id %q", core.ErrValidation, r.AccountID)
	}
	var categoryID *uuid.UUID
	if r.CategoryID != "" {
		id, err := uuid.Parse(r.CategoryID)
		if err != nil {
			return time.Time{}, decimal.Zero, uuid.Nil, nil,
				fmt.Errorf("%w: invalid category_id %q", core.ErrValidation, r.CategoryID)
		}
		categoryID = &id
	}
	return ts, value, accountID, categoryID, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cacheKey := r.URL.RawQuery
	entries, ok := s.listCache.Get(cacheKey)
	if !ok {
		entries, err = s.ledger.ListTransactions(r.Context(), query)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.listCache.Set(cacheKey, entries)
	}

	out := make([]transactionResponse, len(entries))
	for i, e := range entries {
		out[i] = toEntryResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ts, value, accountID, categoryID, err := req.parse()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.ledger.CreateTransaction(r.Context(), ts, value, accountID, req.Name, categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ts, value, accountID, categoryID, err := req.parse()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.ledger.UpdateTransaction(r.Context(), id, ts, value, accountID, req.Name, categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusNoContent, nil)
}

// --- summary ---

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	by := core.GroupBy(r.URL.Query().Get("group_by"))
	if by == "" {
		by = core.GroupByCategory
	}
	if !by.Valid() {
		writeError(w, r, fmt.Errorf("%w: unknown group_by %q", core.ErrValidation, by))
		return
	}
	from, err := parseTime(r.URL.Query().Get("from"), "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := parseTime(r.URL.Query().Get("to"), "to")
	if err != nil {
		writeError(w, r, err)
		return
	}

	cacheKey := r.URL.RawQuery
	summary, ok := s.summaryCache.Get(cacheKey)
	if !ok {
		summary, err = s.ledger.Summarize(r.Context(), by, from, to)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.summaryCache.Set(cacheKey, summary)
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Incomes:      toGroupShares(summary.Incomes),
		Expenses:     toGroupShares(summary.Expenses),
		IncomeTotal:  summary.IncomeTotal,
		ExpenseTotal: summary.ExpenseTotal,
	})
}

// --- currency ---

type rateResponse struct {
	Base      string           `json:"base"`
	Quote     string           `json:"quote"`
	Rate      decimal.Decimal  `json:"rate"`
	Converted *decimal.Decimal `json:"converted,omitempty"`
}

func (s *Server) handleCurrencyRate(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	quote := r.URL.Query().Get("quote")
	if base == "" || quote == "" {
		writeError(w, r, fmt.Errorf("%w: base and quote are required", core.ErrValidation))
		return
	}

	rate, err := s.rates.FetchRate(r.Context(), base, quote)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := rateResponse{Base: base, Quote: quote, Rate: rate}
	if raw := r.URL.Query().Get("amount"); raw != "" {
		amount, err := core.ParseValue(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		converted := currency.Convert(amount, rate)
		resp.Converted = &converted
	}
	writeJSON(w, http.StatusOK, resp)
}
