// Package reports renders registration lists as downloadable CSV, XLSX and
// PDF files for the admin export.
package reports

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
	"github.com/yojana-dates/yojana-backend/internal/registration"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"

	MimeCSV   = "text/csv;charset=utf-8"
	MimeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePDF   = "application/pdf"

	SheetName = "Registrations"

	isoMillis      = "2006-01-02T15:04:05.000Z"
	filenameLayout = "2006-01-02-15-04-05"
)

var ErrUnsupportedFormat = apperror.Invalid("format", "Unsupported export format")

// Columns is the fixed export column order.
var Columns = []string{
	"id",
	"createdAt",
	"name",
	"email",
	"phone",
	"emergencyContact",
	"startDateTime",
	"endDateTime",
	"occasion",
	"experience",
	"dining",
	"dietVeg",
	"dietHalal",
	"dietAllergies",
	"flowers",
	"cake",
	"budget",
	"personalNote",
	"paymentConfirmed",
}

// Exporter renders rows in one format and returns the body, a download
// filename and the content type.
type Exporter interface {
	Export(format string, rows []registration.Registration, now time.Time) ([]byte, string, string, error)
}

type exporter struct {
	loc *time.Location
}

// NewExporter returns an Exporter whose PDF times are shown in loc.
func NewExporter(loc *time.Location) Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &exporter{loc: loc}
}

// ParseFormat maps the format query value; empty means CSV.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatExcel, "excel":
		return FormatExcel, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Filename is yojana_registrations_<UTC timestamp>.<ext>.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("yojana_registrations_%s.%s", now.UTC().Format(filenameLayout), ext)
}

func (e *exporter) Export(format string, rows []registration.Registration, now time.Time) ([]byte, string, string, error) {
	switch format {
	case FormatCSV:
		return ExportCSV(rows), Filename(now, "csv"), MimeCSV, nil

	case FormatExcel:
		data, err := e.exportExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, Filename(now, "xlsx"), MimeExcel, nil

	case FormatPDF:
		data, err := e.exportPDF(rows, now)
		if err != nil {
			return nil, "", "", err
		}
		return data, Filename(now, "pdf"), MimePDF, nil

	default:
		return nil, "", "", ErrUnsupportedFormat
	}
}

// ===========================
// 📄 CSV

// ExportCSV writes an unquoted header and rows whose every value is quoted,
// joined by "\n" with no trailing newline.
func ExportCSV(rows []registration.Registration) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(Columns, ","))

	for _, r := range rows {
		buf.WriteByte('\n')
		for i, v := range rowValues(r) {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(v, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	return buf.Bytes()
}

// rowValues renders one registration in Columns order.
func rowValues(r registration.Registration) []string {
	return []string{
		r.ID,
		isoTime(r.CreatedAt),
		r.Name,
		r.Email,
		r.Phone,
		r.EmergencyContact,
		isoTime(r.StartDateTime),
		isoTime(r.EndDateTime),
		string(r.Occasion),
		string(r.Experience),
		string(r.Dining),
		strconv.FormatBool(r.DietVeg),
		strconv.FormatBool(r.DietHalal),
		r.DietAllergies,
		strconv.FormatBool(r.Flowers),
		strconv.FormatBool(r.Cake),
		string(r.Budget),
		collapseNewlines(r.PersonalNote),
		strconv.FormatBool(r.PaymentConfirmed),
	}
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoMillis)
}

func collapseNewlines(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ").Replace(s)
}

// ===========================
// 📊 Excel

func (e *exporter) exportExcel(rows []registration.Registration) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := rowValues(r)
		line := make([]interface{}, len(values))
		for j, v := range values {
			line[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &line); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ===========================
// 🧾 PDF

var (
	pdfHeaders = []string{"Name", "Email", "Phone", "Start", "Occasion", "Budget", "Paid"}
	pdfWidths  = []float64{45, 65, 35, 50, 35, 20, 20}
)

func (e *exporter) exportPDF(rows []registration.Registration, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Yojana Registrations")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 8, fmt.Sprintf("Generated %s, %d entries", registration.FormatDisplay(now, e.loc), len(rows)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 9)
	for i, h := range pdfHeaders {
		pdf.CellFormat(pdfWidths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		paid := "No"
		if r.PaymentConfirmed {
			paid = "Yes"
		}
		values := []string{
			r.Name,
			r.Email,
			r.Phone,
			registration.FormatDisplay(r.StartDateTime, e.loc),
			string(r.Occasion),
			string(r.Budget),
			paid,
		}
		for i, v := range values {
			pdf.CellFormat(pdfWidths[i], 6, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
