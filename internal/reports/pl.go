package reports

import (
	"math"
	"sort"
)

// PLRow is one period row of the profit and loss report.
type PLRow struct {
	Period  string
	Revenue float64
	Expense float64
	Net     float64
}

// ProfitAndLoss is the period matrix plus a grand total row.
type ProfitAndLoss struct {
	Rows  []PLRow
	Total PLRow
}

// BuildProfitAndLoss folds ledger lines into per-period revenue and
// expense totals. Revenue accounts carry credit-normal balances, so
// their contribution is credit minus debit; expenses the opposite.
// Account types outside those two play no part in the P&L.
func BuildProfitAndLoss(lines []LedgerLine) ProfitAndLoss {
	byPeriod := make(map[string]*PLRow)
	for _, line := range lines {
		row, ok := byPeriod[line.Period]
		if !ok {
			row = &PLRow{Period: line.Period}
			byPeriod[line.Period] = row
		}
		switch line.AccountType {
		case "REVENUE":
			row.Revenue += line.Credit - line.Debit
		case "EXPENSE":
			row.Expense += line.Debit - line.Credit
		}
	}

	report := ProfitAndLoss{Total: PLRow{Period: "Total"}}
	for _, row := range byPeriod {
		row.Revenue = round2(row.Revenue)
		row.Expense = round2(row.Expense)
		row.Net = round2(row.Revenue - row.Expense)
		report.Rows = append(report.Rows, *row)
		report.Total.Revenue += row.Revenue
		report.Total.Expense += row.Expense
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Period < report.Rows[j].Period })

	report.Total.Revenue = round2(report.Total.Revenue)
	report.Total.Expense = round2(report.Total.Expense)
	report.Total.Net = round2(report.Total.Revenue - report.Total.Expense)
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
