package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type GroupBy string

const (
	GroupByAccount  GroupBy = "account"
	GroupByCategory GroupBy = "category"
)

func (g GroupBy) Valid() bool {
	return g == GroupByAccount || g == GroupByCategory
}

// NoCategoryLabel is the bucket uncategorized transactions land in when
// grouping by category.
const NoCategoryLabel = "No category"

// GroupShare is one summary bucket: the summed value of its entries and
// its share of the partition total. Share is 0 when the total is 0.
type GroupShare struct {
	Name  string
	Sum   decimal.Decimal
	Share decimal.Decimal
}

// Summary partitions a date range into incomes (value >= 0) and expenses
// (value < 0), each grouped and totalled separately.
type Summary struct {
	Incomes      []GroupShare
	Expenses     []GroupShare
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
}

func groupKey(e LedgerEntry, by GroupBy) string {
	if by == GroupByAccount {
		return e.AccountName
	}
	if e.CategoryName == "" {
		return NoCategoryLabel
	}
	return e.CategoryName
}

func shares(sums map[string]decimal.Decimal, total decimal.Decimal) []GroupShare {
	out := make([]GroupShare, 0, len(sums))
	for name, sum := range sums {
		share := decimal.Zero
		if !total.IsZero() {
			share = sum.Div(total)
		}
		out = append(out, GroupShare{Name: name, Sum: sum, Share: share})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Summarize aggregates the entries falling strictly inside (from, to),
// grouped by account or category name.
func Summarize(entries []LedgerEntry, by GroupBy, from, to time.Time) Summary {
	incomeSums := make(map[string]decimal.Decimal)
	expenseSums := make(map[string]decimal.Decimal)
	var incomeTotal, expenseTotal decimal.Decimal

	for _, e := range entries {
		if !InRange(e.Timestamp, from, to) {
			continue
		}
		key := groupKey(e, by)
		if e.IsExpense() {
			expenseSums[key] = expenseSums[key].Add(e.Value)
			expenseTotal = expenseTotal.Add(e.Value)
		} else {
			incomeSums[key] = incomeSums[key].Add(e.Value)
			incomeTotal = incomeTotal.Add(e.Value)
		}
	}

	return Summary{
		Incomes:      shares(incomeSums, incomeTotal),
		Expenses:     shares(expenseSums, expenseTotal),
		IncomeTotal:  incomeTotal,
		ExpenseTotal: expenseTotal,
	}
}
