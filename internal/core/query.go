package core

import (
	"sort"
	"time"
)

type SortOrder string

const (
	SortDateDesc  SortOrder = "date_desc"
	SortDateAsc   SortOrder = "date_asc"
	SortValueDesc SortOrder = "value_desc"
	SortValueAsc  SortOrder = "value_asc"
)

func (o SortOrder) Valid() bool {
	switch o {
	case SortDateDesc, SortDateAsc, SortValueDesc, SortValueAsc:
		return true
	}
	return false
}

type SignFilter string

const (
	SignAll     SignFilter = "all"
	SignIncome  SignFilter = "income"
	SignExpense SignFilter = "expense"
)

func (f SignFilter) Valid() bool {
	switch f {
	case SignAll, SignIncome, SignExpense:
		return true
	}
	return false
}

// TransactionQuery narrows and orders a ledger view. Zero-valued fields
// are open: an empty Category matches everything, zero From/To leave that
// end of the range unbounded.
type TransactionQuery struct {
	Order    SortOrder
	Sign     SignFilter
	Category string
	From     time.Time
	To       time.Time
}

func (q TransactionQuery) matches(e LedgerEntry) bool {
	switch q.Sign {
	case SignIncome:
		if e.IsExpense() {
			return false
		}
	case SignExpense:
		if !e.IsExpense() {
			return false
		}
	}
	if q.Category != "" && e.CategoryName != q.Category {
		return false
	}
	return InRange(e.Timestamp, q.From, q.To)
}

// InRange reports whether ts falls strictly between from and to. A zero
// bound leaves that side open.
func InRange(ts, from, to time.Time) bool {
	if !from.IsZero() && !ts.After(from) {
		return false
	}
	if !to.IsZero() && !ts.Before(to) {
		return false
	}
	return true
}

// Apply filters and sorts entries according to the query. The input slice
// is not modified; ties keep their incoming order.
func (q TransactionQuery) Apply(entries []LedgerEntry) []LedgerEntry {
	out := make([]LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if q.matches(e) {
			out = append(out, e)
		}
	}
	order := q.Order
	if order == "" {
		order = SortDateDesc
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch order {
		case SortDateAsc:
			return a.Timestamp.Before(b.Timestamp)
		case SortValueDesc:
			return a.Value.GreaterThan(b.Value)
		case SortValueAsc:
			return a.Value.LessThan(b.Value)
		default:
			return a.Timestamp.After(b.Timestamp)
		}
	})
	return out
}
