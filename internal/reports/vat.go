package reports

import "sort"

// VATRow is one period of the VAT summary. Net is the amount payable
// to the tax authority when positive.
type VATRow struct {
	Period    string
	OutputVAT float64
	InputVAT  float64
	Net       float64
}

// VATSummary is the period matrix plus a grand total row.
type VATSummary struct {
	Rows  []VATRow
	Total VATRow
}

// BuildVATSummary folds VAT account lines into output versus input tax
// per period. Output VAT sits on liability accounts (credit normal),
// input VAT on asset accounts (debit normal); the caller is expected to
// feed only VAT-category lines.
func BuildVATSummary(lines []LedgerLine) VATSummary {
	byPeriod := make(map[string]*VATRow)
	for _, line := range lines {
		row, ok := byPeriod[line.Period]
		if !ok {
			row = &VATRow{Period: line.Period}
			byPeriod[line.Period] = row
		}
		switch line.AccountType {
		case "LIABILITY":
			row.OutputVAT += line.Credit - line.Debit
		case "ASSET":
			row.InputVAT += line.Debit - line.Credit
		}
	}

	summary := VATSummary{Total: VATRow{Period: "Total"}}
	for _, row := range byPeriod {
		row.OutputVAT = round2(row.OutputVAT)
		row.InputVAT = round2(row.InputVAT)
		row.Net = round2(row.OutputVAT - row.InputVAT)
		summary.Rows = append(summary.Rows, *row)
		summary.Total.OutputVAT += row.OutputVAT
		summary.Total.InputVAT += row.InputVAT
	}
	sort.Slice(summary.Rows, func(i, j int) bool { return summary.Rows[i].Period < summary.Rows[j].Period })

	summary.Total.OutputVAT = round2(summary.Total.OutputVAT)
	summary.Total.InputVAT = round2(summary.Total.InputVAT)
	summary.Total.Net = round2(summary.Total.OutputVAT - summary.Total.InputVAT)
	return summary
}
