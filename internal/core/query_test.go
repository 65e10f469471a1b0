package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func entry(name string, day int, value float64, category string) LedgerEntry {
	return LedgerEntry{
		Transaction: Transaction{
			Timestamp: time.Date(2026, time.January, day, 12, 0, 0, 0, time.UTC),
			Value:     decimal.NewFromFloat(value),
			Name:      name,
		},
		AccountName:  "Checking",
		CategoryName: category,
	}
}

func names(entries []LedgerEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQuerySortOrders(t *testing.T) {
	entries := []LedgerEntry{
		entry("rent", 1, -800, ""),
		entry("salary", 15, 2000, ""),
		entry("coffee", 10, -3.5, "Food"),
	}
	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortDateDesc, []string{"salary", "coffee", "rent"}},
		{SortDateAsc, []string{"rent", "coffee", "salary"}},
		{SortValueDesc, []string{"salary", "coffee", "rent"}},
		{SortValueAsc, []string{"rent", "coffee", "salary"}},
		{"", []string{"salary", "coffee", "rent"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			got := names(TransactionQuery{Order: tt.order}.Apply(entries))
			if !equalNames(got, tt.want) {
				t.Errorf("Apply() order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuerySortIsStable(t *testing.T) {
	a := entry("first", 5, -10, "")
	b := entry("second", 5, -10, "")
	got := names(TransactionQuery{Order: SortDateAsc}.Apply([]LedgerEntry{a, b}))
	if !equalNames(got, []string{"first", "second"}) {
		t.Errorf("equal keys reordered: %v", got)
	}
}

func TestQuerySignFilter(t *testing.T) {
	entries := []LedgerEntry{
		entry("salary", 15, 2000, ""),
		entry("refund", 16, 0, ""),
		entry("coffee", 10, -3.5, "Food"),
	}
	tests := []struct {
		sign SignFilter
		want []string
	}{
		{SignAll, []string{"refund", "salary", "coffee"}},
		{SignIncome, []string{"refund", "salary"}},
		{SignExpense, []string{"coffee"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sign), func(t *testing.T) {
			got := names(TransactionQuery{Sign: tt.sign}.Apply(entries))
			if !equalNames(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryCategoryFilter(t *testing.T) {
	entries := []LedgerEntry{
		entry("coffee", 10, -3.5, "Food"),
		entry("rent", 1, -800, "Housing"),
		entry("gift", 20, 50, ""),
	}
	got := names(TransactionQuery{Category: "Food"}.Apply(entries))
	if !equalNames(got, []string{"coffee"}) {
		t.Errorf("category filter = %v, want [coffee]", got)
	}
	all := TransactionQuery{}.Apply(entries)
	if len(all) != 3 {
		t.Errorf("empty category filter kept %d entries, want 3", len(all))
	}
}

func TestQueryDateRangeIsStrict(t *testing.T) {
	from := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.January, 31, 12, 0, 0, 0, time.UTC)
	// on-from and on-to sit exactly on the bounds and are excluded
	entries := []LedgerEntry{
		entry("on-from", 1, -1, ""),
		entry("inside", 15, -1, ""),
		entry("on-to", 31, -1, ""),
	}
	got := names(TransactionQuery{From: from, To: to}.Apply(entries))
	if !equalNames(got, []string{"inside"}) {
		t.Errorf("strict range = %v, want [inside]", got)
	}
}

func TestQueryOpenEndedRange(t *testing.T) {
	from := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	entries := []LedgerEntry{
		entry("old", 1, -1, ""),
		entry("new", 20, -1, ""),
	}
	got := names(TransactionQuery{From: from}.Apply(entries))
	if !equalNames(got, []string{"new"}) {
		t.Errorf("open-ended range = %v, want [new]", got)
	}
}
