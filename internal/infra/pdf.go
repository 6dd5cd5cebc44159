package infra

// pdf.go — payment receipt generation using go-pdf/fpdf.
// A6-size receipt with the company header, receipt number, branch, customer,
// machine serial, amount and remaining balance. Written to
// storagePath/receipt_{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptData carries everything the PDF needs; the worker assembles it so
// this package stays free of model imports.
type ReceiptData struct {
	Company       string
	BranchName    string
	ReceiptNumber string
	CustomerName  string
	SerialNumber  string
	Amount        decimal.Decimal
	Remaining     decimal.Decimal
	PaidAt        time.Time
}

// GenerateReceiptPDF writes a payment receipt and returns its absolute path.
func GenerateReceiptPDF(data ReceiptData, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", data.ReceiptNumber)
	filePath := filepath.Join(storagePath, fileName)

	// A6 — 105mm × 148mm, enough for a handed-over counter receipt
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 105, Ht: 148},
	})
	pdf.SetMargins(6, 6, 6)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 12

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, data.Company, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, "Receipt Nr "+data.ReceiptNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, data.PaidAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Branch: "+data.BranchName, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(6, pdf.GetY(), pageW-6, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.45
	col2 := contentW * 0.55

	rows := [][2]string{
		{"Customer", data.CustomerName},
		{"Machine serial", data.SerialNumber},
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		pdf.CellFormat(col1, 6, row[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, row[1], "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1, 7, "Amount paid:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "$"+data.Amount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(col1, 6, "Remaining balance:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "$"+data.Remaining.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "Thank you for your payment", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
