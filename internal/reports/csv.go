package reports

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// csvStreamer writes CSV output incrementally so large exports never
// buffer whole reports in memory. Excel expects CRLF line endings.
type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

func writeHeaderComment(streamer *csvStreamer, reportName string, filter ReportFilter) error {
	if err := streamer.writeComment(fmt.Sprintf("# Report: %s", reportName)); err != nil {
		return err
	}
	company := "all"
	if filter.CompanyID != 0 {
		company = strconv.FormatInt(filter.CompanyID, 10)
	}
	project := "all"
	if filter.ProjectID != nil {
		project = strconv.FormatInt(*filter.ProjectID, 10)
	}
	return streamer.writeComment(fmt.Sprintf("# Company: %s | Fiscal Year: %d | Project: %s", company, filter.FiscalYear, project))
}

// WritePLCSV streams the profit and loss report as CSV.
func WritePLCSV(w io.Writer, report ProfitAndLoss, filter ReportFilter) error {
	streamer := newCSVStreamer(w)
	if err := writeHeaderComment(streamer, "Profit & Loss", filter); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Period", "Revenue", "Expense", "Net"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := streamer.writeRow([]string{row.Period, formatAmount(row.Revenue), formatAmount(row.Expense), formatAmount(row.Net)}); err != nil {
			return err
		}
	}
	total := report.Total
	if err := streamer.writeRow([]string{total.Period, formatAmount(total.Revenue), formatAmount(total.Expense), formatAmount(total.Net)}); err != nil {
		return err
	}
	return streamer.Close()
}

// WriteAgingCSV streams an AR or AP aging report as CSV.
func WriteAgingCSV(w io.Writer, report AgingReport, reportName string) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Report: %s", reportName)); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# As Of: %s", report.AsOf.Format("2006-01-02"))); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Total Outstanding: %s", displayAmount(report.Total))); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Bucket", "Documents", "Outstanding"}); err != nil {
		return err
	}
	for _, bucket := range report.Buckets {
		if err := streamer.writeRow([]string{bucket.Label, strconv.Itoa(bucket.Count), formatAmount(bucket.Total)}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"Total", "", formatAmount(report.Total)}); err != nil {
		return err
	}
	return streamer.Close()
}

// WriteVATCSV streams the VAT summary as CSV.
func WriteVATCSV(w io.Writer, summary VATSummary, filter ReportFilter) error {
	streamer := newCSVStreamer(w)
	if err := writeHeaderComment(streamer, "VAT Summary", filter); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Period", "Output VAT", "Input VAT", "Net"}); err != nil {
		return err
	}
	for _, row := range summary.Rows {
		if err := streamer.writeRow([]string{row.Period, formatAmount(row.OutputVAT), formatAmount(row.InputVAT), formatAmount(row.Net)}); err != nil {
			return err
		}
	}
	total := summary.Total
	if err := streamer.writeRow([]string{total.Period, formatAmount(total.OutputVAT), formatAmount(total.InputVAT), formatAmount(total.Net)}); err != nil {
		return err
	}
	return streamer.Close()
}

// WriteTransactionsCSV streams drill-down transaction rows as CSV.
func WriteTransactionsCSV(w io.Writer, rows []TransactionRow, reportName string) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Report: %s", reportName)); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Date", "Description", "Reference", "Category", "Amount", "Attachments"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := streamer.writeRow([]string{
			row.Date.Format("2006-01-02"),
			row.Description,
			row.Reference,
			row.Category,
			formatAmount(row.Amount),
			strings.Join(row.Attachments, "; "),
		}); err != nil {
			return err
		}
	}
	return streamer.Close()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var displayPrinter = message.NewPrinter(language.English)

// displayAmount adds thousands separators for the human-facing comment
// lines. Data rows stay machine-parseable via formatAmount.
func displayAmount(v float64) string {
	return displayPrinter.Sprintf("%.2f", v)
}
