package reports

import (
	"math"
	"testing"
	"time"
)

func TestBuildProfitAndLoss(t *testing.T) {
	lines := []LedgerLine{
		{Period: "2026-01", AccountType: "REVENUE", Credit: 1000},
		{Period: "2026-01", AccountType: "EXPENSE", Debit: 400},
		{Period: "2026-02", AccountType: "REVENUE", Credit: 2000, Debit: 100},
		{Period: "2026-02", AccountType: "EXPENSE", Debit: 900, Credit: 50},
		{Period: "2026-02", AccountType: "ASSET", Debit: 9999},
	}

	report := BuildProfitAndLoss(lines)
	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report.Rows))
	}
	jan := report.Rows[0]
	if jan.Period != "2026-01" || jan.Revenue != 1000 || jan.Expense != 400 || jan.Net != 600 {
		t.Fatalf("unexpected january row: %+v", jan)
	}
	feb := report.Rows[1]
	if feb.Revenue != 1900 || feb.Expense != 850 || feb.Net != 1050 {
		t.Fatalf("unexpected february row: %+v", feb)
	}
	if report.Total.Revenue != 2900 || report.Total.Expense != 1250 || report.Total.Net != 1650 {
		t.Fatalf("unexpected total: %+v", report.Total)
	}
}

func TestBuildProfitAndLossEmpty(t *testing.T) {
	report := BuildProfitAndLoss(nil)
	if len(report.Rows) != 0 || report.Total.Net != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestBuildAgingBuckets(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return asOf.AddDate(0, 0, -offset) }

	docs := []OpenDocument{
		{DocumentID: "INV-1", DueDate: day(-10), Outstanding: 100}, // not yet due
		{DocumentID: "INV-2", DueDate: day(0), Outstanding: 50},    // due today
		{DocumentID: "INV-3", DueDate: day(15), Outstanding: 200},
		{DocumentID: "INV-4", DueDate: day(45), Outstanding: 300},
		{DocumentID: "INV-5", DueDate: day(75), Outstanding: 400},
		{DocumentID: "INV-6", DueDate: day(120), Outstanding: 500},
		{DocumentID: "INV-7", DueDate: day(30), Outstanding: 25},
		{DocumentID: "INV-8", DueDate: day(5), Outstanding: 0}, // settled
	}

	report := BuildAging(docs, asOf)

	wantTotals := []float64{150, 225, 300, 400, 500}
	wantCounts := []int{2, 2, 1, 1, 1}
	for i, bucket := range report.Buckets {
		if bucket.Total != wantTotals[i] {
			t.Fatalf("bucket %s total = %.2f, want %.2f", bucket.Label, bucket.Total, wantTotals[i])
		}
		if bucket.Count != wantCounts[i] {
			t.Fatalf("bucket %s count = %d, want %d", bucket.Label, bucket.Count, wantCounts[i])
		}
	}
	if report.Total != 1575 {
		t.Fatalf("report total = %.2f, want 1575", report.Total)
	}
}

func TestAgingBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want int
	}{
		{-5, 0}, {0, 0}, {1, 1}, {30, 1}, {31, 2}, {60, 2}, {61, 3}, {90, 3}, {91, 4}, {365, 4},
	}
	for _, tc := range cases {
		if got := agingIndex(tc.days); got != tc.want {
			t.Fatalf("agingIndex(%d) = %d, want %d", tc.days, got, tc.want)
		}
	}
}

func TestBuildVATSummary(t *testing.T) {
	lines := []LedgerLine{
		{Period: "2026-01", AccountType: "LIABILITY", Credit: 70},
		{Period: "2026-01", AccountType: "ASSET", Debit: 35},
		{Period: "2026-02", AccountType: "LIABILITY", Credit: 140, Debit: 10},
		{Period: "2026-02", AccountType: "ASSET", Debit: 20, Credit: 5},
	}

	summary := BuildVATSummary(lines)
	if len(summary.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(summary.Rows))
	}
	jan := summary.Rows[0]
	if jan.OutputVAT != 70 || jan.InputVAT != 35 || jan.Net != 35 {
		t.Fatalf("unexpected january row: %+v", jan)
	}
	feb := summary.Rows[1]
	if feb.OutputVAT != 130 || feb.InputVAT != 15 || feb.Net != 115 {
		t.Fatalf("unexpected february row: %+v", feb)
	}
	if summary.Total.Net != 150 {
		t.Fatalf("unexpected total net: %.2f", summary.Total.Net)
	}
}

func TestRound2(t *testing.T) {
	if got := round2(654.20561); math.Abs(got-654.21) > 1e-9 {
		t.Fatalf("round2 = %v", got)
	}
}
