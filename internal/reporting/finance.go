package reporting

import (
	"github.com/shopspring/decimal"

	fmodels "transparency/internal/finance/models"
)

// SummaryFilter restricts a financial summary to Year when set.
type SummaryFilter struct {
	Year *int
}

// StreamSummary aggregates one stream (revenue or expense).
type StreamSummary struct {
	Total      decimal.Decimal            `json:"total"`
	Count      int                        `json:"count"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
	ByMonth    map[int]decimal.Decimal    `json:"by_month"`
}

// FinanceSummary is the revenue/expense picture of a tenant.
type FinanceSummary struct {
	Year    *int            `json:"year,omitempty"`
	Revenue StreamSummary   `json:"revenue"`
	Expense StreamSummary   `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// FinancialSummary totals both streams independently with exact decimal
// arithmetic. Balance is revenue minus expense.
func FinancialSummary(revenues, expenses []*fmodels.Record, filter SummaryFilter) FinanceSummary {
	rev := summarizeStream(revenues, filter)
	exp := summarizeStream(expenses, filter)
	return FinanceSummary{
		Year:    filter.Year,
		Revenue: rev,
		Expense: exp,
		Balance: rev.Total.Sub(exp.Total),
	}
}

// SplitByKind separates a mixed record slice into revenue and expense streams.
func SplitByKind(records []*fmodels.Record) (revenues, expenses []*fmodels.Record) {
	for _, r := range records {
		switch r.Kind {
		case fmodels.KindRevenue:
			revenues = append(revenues, r)
		case fmodels.KindExpense:
			expenses = append(expenses, r)
		}
	}
	return revenues, expenses
}

func summarizeStream(records []*fmodels.Record, filter SummaryFilter) StreamSummary {
	if filter.Year != nil {
		year := *filter.Year
		records = Filter(records, func(r *fmodels.Record) bool { return r.Year == year })
	}
	total := Summarize(records, amount)
	return StreamSummary{
		Total:      total.Sum,
		Count:      total.Count,
		ByCategory: GroupBy(records, func(r *fmodels.Record) string { return r.Category }, amount).Sums(),
		ByMonth:    GroupBy(records, func(r *fmodels.Record) int { return r.Month }, amount).Sums(),
	}
}

func amount(r *fmodels.Record) decimal.Decimal {
	return r.Amount
}
