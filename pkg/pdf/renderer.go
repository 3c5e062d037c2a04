package pdf

import (
	"bytes"
	"fmt"
	"strings"
)

// InvoiceDocument carries the fields printed on an invoice download.
type InvoiceDocument struct {
	InvoiceNumber     string
	Status            string
	SellerName        string
	BuyerName         string
	ProductName       string
	Quantity          int
	UnitPrice         string
	TotalPrice        string
	ShippingCost      string
	ShippingMethod    string
	Tax               string
	TotalAmount       string
	Currency          string
	ConvertedAmount   string
	ConvertedCurrency string
	Notes             string
	IssuedAt          string
}

// Renderer turns an invoice document into downloadable bytes. The production
// deployment points this at the external rendering service.
type Renderer interface {
	Render(doc InvoiceDocument) ([]byte, error)
}

// PlainRenderer emits a minimal single-page PDF with the invoice fields as
// monospaced text. It keeps the download endpoint functional without the
// external rendering service.
type PlainRenderer struct{}

// Render implements Renderer.
func (PlainRenderer) Render(doc InvoiceDocument) ([]byte, error) {
	if strings.TrimSpace(doc.InvoiceNumber) == "" {
		return nil, fmt.Errorf("invoice number required")
	}

	lines := []string{
		"INVOICE " + doc.InvoiceNumber,
		"Status: " + doc.Status,
		"Issued: " + doc.IssuedAt,
		"",
		"Seller: " + doc.SellerName,
		"Buyer:  " + doc.BuyerName,
		"",
		fmt.Sprintf("%-28s %6d x %s %s", doc.ProductName, doc.Quantity, doc.UnitPrice, doc.Currency),
		fmt.Sprintf("%-28s %s %s", "Subtotal", doc.TotalPrice, doc.Currency),
		fmt.Sprintf("%-28s %s %s (%s)", "Shipping", doc.ShippingCost, doc.Currency, doc.ShippingMethod),
	}
	if doc.Tax != "" {
		lines = append(lines, fmt.Sprintf("%-28s %s %s", "Tax", doc.Tax, doc.Currency))
	}
	lines = append(lines, fmt.Sprintf("%-28s %s %s", "TOTAL", doc.TotalAmount, doc.Currency))
	if doc.ConvertedAmount != "" && doc.ConvertedCurrency != "" {
		lines = append(lines, fmt.Sprintf("%-28s %s %s", "Approx.", doc.ConvertedAmount, doc.ConvertedCurrency))
	}
	if strings.TrimSpace(doc.Notes) != "" {
		lines = append(lines, "", "Notes: "+doc.Notes)
	}

	return buildPDF(lines), nil
}

// buildPDF assembles a single-page PDF with one text stream. Offsets in the
// xref table must match the byte positions of each object.
func buildPDF(lines []string) []byte {
	var content bytes.Buffer
	content.WriteString("BT /F1 10 Tf 50 780 Td 14 TL\n")
	for _, line := range lines {
		content.WriteString(fmt.Sprintf("(%s) Tj T*\n", escapePDFText(line)))
	}
	content.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>",
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)
	return out.Bytes()
}

func escapePDFText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
