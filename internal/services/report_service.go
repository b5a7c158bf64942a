// internal/services/report_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
)

// ReportService renders invoices and spreadsheet exports.
type ReportService struct {
	config  *config.Config
	content *ContentService
}

// exportBatch bounds how many orders one export reads per page.
const exportBatch = 500

func NewReportService(cfg *config.Config, content *ContentService) *ReportService {
	return &ReportService{config: cfg, content: content}
}

// The core PDF fonts are cp1252; Turkish letters outside it are folded to ASCII.
var pdfFold = strings.NewReplacer("ş", "s", "Ş", "S", "ğ", "g", "Ğ", "G", "ı", "i", "İ", "I")

// Invoice renders an A4 PDF invoice for order.
func (s *ReportService) Invoice(ctx context.Context, order *models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	tr := func(text string) string { return translate(pdfFold.Replace(text)) }
	pdf.AddPage()

	// Shop header
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, tr(s.config.Email.FromName))
	pdf.SetFont("Arial", "", 11)
	pdf.Ln(8)
	if s.content != nil {
		if contact, err := s.content.ContactSettings(ctx); err == nil {
			if contact.Address != "" {
				pdf.Cell(100, 6, tr(contact.Address))
				pdf.Ln(6)
			}
			if contact.Email != "" || contact.Phone != "" {
				pdf.Cell(100, 6, tr(strings.Trim(contact.Email+" | "+contact.Phone, " |")))
				pdf.Ln(6)
			}
		}
	}
	pdf.Ln(6)

	// Invoice details
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, tr("FATURA"))
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, tr("Sipariş No: "+order.ID.String()))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Tarih: "+order.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Ödeme: "+string(order.PaymentMethod)+" ("+string(order.PaymentStatus)+")"))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Durum: "+string(order.Status)))
	pdf.Ln(10)

	// Customer
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 7, tr("Alıcı"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, tr(order.CustomerName))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(order.CustomerEmail))
	pdf.Ln(6)
	if order.Phone != "" {
		pdf.Cell(0, 6, tr(order.Phone))
		pdf.Ln(6)
	}
	pdf.MultiCell(0, 6, tr(order.Address), "", "L", false)
	pdf.Ln(6)

	// Items
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, tr("Ürün"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, tr("Adet"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, tr("Birim Fiyat"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, tr("Tutar"), "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	for _, item := range order.Items {
		pdf.CellFormat(90, 8, tr(item.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, item.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, item.LineTotal().StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	// Totals
	pdf.Ln(4)
	totals := []struct {
		label string
		value string
	}{
		{"Ara Toplam:", order.Subtotal.StringFixed(2)},
		{"İndirim:", "-" + order.DiscountAmount.StringFixed(2)},
		{"Kargo:", order.ShippingTotal.StringFixed(2)},
	}
	for _, row := range totals {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(145, 8, tr(row.label), "", 0, "R", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(35, 8, row.value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(145, 10, tr("Genel Toplam:"), "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 10, order.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 11)
	pdf.Cell(0, 10, tr("Bizi tercih ettiğiniz için teşekkür ederiz!"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

var orderExportHeader = []string{
	"Order ID", "Date", "Customer", "Email", "Phone", "Address",
	"Status", "Payment Method", "Payment Status", "Items",
	"Subtotal", "Discount", "Shipping", "Total",
}

// ExportOrders writes every order matching filters as an XLSX workbook.
func (s *ReportService) ExportOrders(ctx context.Context, orders *OrderService, filters OrderFilters, w io.Writer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range orderExportHeader {
		cell := header.AddCell()
		cell.SetString(h)
		cell.GetStyle().Font.Bold = true
	}

	filters.Page = 1
	filters.Limit = exportBatch
	for {
		batch, total, err := orders.List(ctx, filters)
		if err != nil {
			return err
		}
		for i := range batch {
			writeOrderRow(sheet.AddRow(), &batch[i])
		}
		if int64(filters.Page*filters.Limit) >= total || len(batch) == 0 {
			break
		}
		filters.Page++
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeOrderRow(row *xlsx.Row, order *models.Order) {
	items := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, fmt.Sprintf("%s x%d", item.ProductName, item.Quantity))
	}

	row.AddCell().SetString(order.ID.String())
	row.AddCell().SetString(order.CreatedAt.UTC().Format("2006-01-02 15:04"))
	row.AddCell().SetString(order.CustomerName)
	row.AddCell().SetString(order.CustomerEmail)
	row.AddCell().SetString(order.Phone)
	row.AddCell().SetString(order.Address)
	row.AddCell().SetString(string(order.Status))
	row.AddCell().SetString(string(order.PaymentMethod))
	row.AddCell().SetString(string(order.PaymentStatus))
	row.AddCell().SetString(strings.Join(items, ", "))
	for _, amount := range []decimal.Decimal{
		order.Subtotal, order.DiscountAmount, order.ShippingTotal, order.Total,
	} {
		row.AddCell().SetFloatWithFormat(amount.InexactFloat64(), "0.00")
	}
}
