package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSummarizeByCategory(t *testing.T) {
	entries := []LedgerEntry{
		entry("salary", 15, 150, ""),
		entry("coffee", 10, -10, "Food"),
		entry("groceries", 11, -20, "Food"),
		entry("bus", 12, -10, ""),
	}
	s := Summarize(entries, GroupByCategory, time.Time{}, time.Time{})

	if !s.IncomeTotal.Equal(decimal.NewFromInt(150)) {
		t.Errorf("IncomeTotal = %s, want 150", s.IncomeTotal)
	}
	if !s.ExpenseTotal.Equal(decimal.NewFromInt(-40)) {
		t.Errorf("ExpenseTotal = %s, want -40", s.ExpenseTotal)
	}

	if len(s.Incomes) != 1 || s.Incomes[0].Name != NoCategoryLabel {
		t.Fatalf("Incomes = %+v, want single %q bucket", s.Incomes, NoCategoryLabel)
	}
	if !s.Incomes[0].Share.Equal(decimal.NewFromInt(1)) {
		t.Errorf("sole income group share = %s, want 1", s.Incomes[0].Share)
	}

	if len(s.Expenses) != 2 {
		t.Fatalf("Expenses = %+v, want 2 buckets", s.Expenses)
	}
	// sorted by name: "Food" < "No category"
	food := s.Expenses[0]
	if food.Name != "Food" || !food.Sum.Equal(decimal.NewFromInt(-30)) {
		t.Errorf("food bucket = %+v, want sum -30", food)
	}
	if !food.Share.Equal(decimal.NewFromFloat(0.75)) {
		t.Errorf("food share = %s, want 0.75", food.Share)
	}
}

func TestSummarizeByAccount(t *testing.T) {
	a := entry("salary", 15, 100, "")
	b := entry("coffee", 10, -5, "Food")
	b.AccountName = "Cash"
	s := Summarize([]LedgerEntry{a, b}, GroupByAccount, time.Time{}, time.Time{})

	if len(s.Incomes) != 1 || s.Incomes[0].Name != "Checking" {
		t.Errorf("Incomes = %+v, want Checking bucket", s.Incomes)
	}
	if len(s.Expenses) != 1 || s.Expenses[0].Name != "Cash" {
		t.Errorf("Expenses = %+v, want Cash bucket", s.Expenses)
	}
}

func TestSummarizeEmptyPartition(t *testing.T) {
	s := Summarize([]LedgerEntry{entry("salary", 15, 100, "")}, GroupByCategory, time.Time{}, time.Time{})
	if !s.ExpenseTotal.IsZero() {
		t.Errorf("ExpenseTotal = %s, want 0", s.ExpenseTotal)
	}
	if len(s.Expenses) != 0 {
		t.Errorf("Expenses = %+v, want none", s.Expenses)
	}
}

func TestSummarizeZeroTotalShare(t *testing.T) {
	// two incomes cancelling out: total 0, shares must be 0, not NaN/panic
	a := entry("in", 10, 0, "")
	s := Summarize([]LedgerEntry{a}, GroupByCategory, time.Time{}, time.Time{})
	if !s.IncomeTotal.IsZero() {
		t.Fatalf("IncomeTotal = %s, want 0", s.IncomeTotal)
	}
	if len(s.Incomes) != 1 || !s.Incomes[0].Share.IsZero() {
		t.Errorf("share for zero total = %+v, want 0", s.Incomes)
	}
}

func TestSummarizeRespectsRange(t *testing.T) {
	from := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	entries := []LedgerEntry{
		entry("early", 1, -10, "Food"),
		entry("inside", 10, -20, "Food"),
	}
	s := Summarize(entries, GroupByCategory, from, to)
	if !s.ExpenseTotal.Equal(decimal.NewFromInt(-20)) {
		t.Errorf("ExpenseTotal = %s, want -20", s.ExpenseTotal)
	}
}
