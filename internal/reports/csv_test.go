package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWritePLCSV(t *testing.T) {
	report := ProfitAndLoss{
		Rows: []PLRow{
			{Period: "2026-01", Revenue: 1000, Expense: 400, Net: 600},
			{Period: "2026-02", Revenue: 1900, Expense: 850, Net: 1050},
		},
		Total: PLRow{Period: "Total", Revenue: 2900, Expense: 1250, Net: 1650},
	}

	var buf bytes.Buffer
	project := int64(3)
	err := WritePLCSV(&buf, report, ReportFilter{CompanyID: 1, FiscalYear: 2026, ProjectID: &project})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	lines := strings.Split(out, "\r\n")
	if lines[0] != "# Report: Profit & Loss" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if lines[1] != "# Company: 1 | Fiscal Year: 2026 | Project: 3" {
		t.Fatalf("unexpected metadata line %q", lines[1])
	}
	if lines[2] != "Period,Revenue,Expense,Net" {
		t.Fatalf("unexpected header %q", lines[2])
	}
	if lines[3] != "2026-01,1000.00,400.00,600.00" {
		t.Fatalf("unexpected row %q", lines[3])
	}
	if lines[5] != "Total,2900.00,1250.00,1650.00" {
		t.Fatalf("unexpected total row %q", lines[5])
	}
	if !strings.HasSuffix(out, "\r\n") {
		t.Fatal("output must end with CRLF")
	}
}

func TestWriteAgingCSV(t *testing.T) {
	report := AgingReport{
		AsOf: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Buckets: []AgingBucket{
			{Label: "Current", Count: 2, Total: 1500},
			{Label: "1-30", Count: 1, Total: 200},
		},
		Total: 1700,
	}

	var buf bytes.Buffer
	if err := WriteAgingCSV(&buf, report, "AR Aging"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(buf.String(), "\r\n")
	if lines[0] != "# Report: AR Aging" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if lines[1] != "# As Of: 2026-08-31" {
		t.Fatalf("unexpected as-of line %q", lines[1])
	}
	if lines[2] != "# Total Outstanding: 1,700.00" {
		t.Fatalf("unexpected total comment %q", lines[2])
	}
	if lines[4] != "Current,2,1500.00" {
		t.Fatalf("unexpected bucket row %q", lines[4])
	}
	if lines[6] != "Total,,1700.00" {
		t.Fatalf("unexpected total row %q", lines[6])
	}
}

func TestWriteTransactionsCSVQuotesCommas(t *testing.T) {
	rows := []TransactionRow{
		{
			Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Description: "Fuel, dockside",
			Reference:   "JE-2026-0001",
			Category:    "Fuel",
			Amount:      -535,
			Attachments: []string{"receipt-1.pdf", "receipt-2.pdf"},
		},
	}

	var buf bytes.Buffer
	if err := WriteTransactionsCSV(&buf, rows, "Fuel Transactions"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(buf.String(), "\r\n")
	want := `2026-03-10,"Fuel, dockside",JE-2026-0001,Fuel,-535.00,receipt-1.pdf; receipt-2.pdf`
	if lines[2] != want {
		t.Fatalf("row = %q, want %q", lines[2], want)
	}
}
