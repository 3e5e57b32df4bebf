package progress

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Certificate is what a completion certificate states.
type Certificate struct {
	Recipient string
	Course    string
	Lessons   int64
	IssuedAt  time.Time
}

// Render draws the certificate as a single landscape A4 page.
func (cert Certificate) Render() ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate of Completion", false)
	pdf.SetAuthor("LearnHub", false)
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, w-20, h-20, "D")

	pdf.SetY(45)
	pdf.SetFont("Helvetica", "B", 30)
	pdf.CellFormat(0, 14, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, cert.Recipient, "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, "has completed every lesson of the course", "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, cert.Course, "", "C", false)

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d lessons completed", cert.Lessons), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Issued on "+cert.IssuedAt.UTC().Format("January 2, 2006"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
