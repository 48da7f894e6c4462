package reports

import "time"

// AgingBucket summarises the open documents falling into one overdue
// band.
type AgingBucket struct {
	Label string
	Count int
	Total float64
}

// AgingReport groups outstanding receivables or payables by how far
// past due they are as of the report date.
type AgingReport struct {
	AsOf    time.Time
	Buckets []AgingBucket
	Total   float64
}

var agingLabels = []string{"Current", "1-30", "31-60", "61-90", "90+"}

// BuildAging places each open document into its overdue band. A
// document due on or after the report date is current; everything else
// lands by whole days overdue.
func BuildAging(docs []OpenDocument, asOf time.Time) AgingReport {
	report := AgingReport{AsOf: asOf, Buckets: make([]AgingBucket, len(agingLabels))}
	for i, label := range agingLabels {
		report.Buckets[i].Label = label
	}
	for _, doc := range docs {
		if doc.Outstanding <= 0 {
			continue
		}
		idx := agingIndex(daysOverdue(asOf, doc.DueDate))
		report.Buckets[idx].Count++
		report.Buckets[idx].Total = round2(report.Buckets[idx].Total + doc.Outstanding)
		report.Total = round2(report.Total + doc.Outstanding)
	}
	return report
}

func daysOverdue(asOf, due time.Time) int {
	asOfDay := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(asOfDay.Sub(dueDay).Hours() / 24)
}

func agingIndex(days int) int {
	switch {
	case days <= 0:
		return 0
	case days <= 30:
		return 1
	case days <= 60:
		return 2
	case days <= 90:
		return 3
	default:
		return 4
	}
}
