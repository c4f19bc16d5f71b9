package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/solterra/solterra-api/internal/repository"
)

// DocumentService renders printable PDFs for quotations and reservations
type DocumentService struct {
	quotationRepo   repository.QuotationRepository
	reservationRepo repository.ReservationRepository
	scheduleSvc     *ScheduleService
}

func NewDocumentService(quotationRepo repository.QuotationRepository, reservationRepo repository.ReservationRepository, scheduleSvc *ScheduleService) *DocumentService {
	return &DocumentService{
		quotationRepo:   quotationRepo,
		reservationRepo: reservationRepo,
		scheduleSvc:     scheduleSvc,
	}
}

// generatePDF renders an HTML template and converts it with wkhtmltopdf
func (s *DocumentService) generatePDF(templateName string, data interface{}) (*bytes.Buffer, error) {
	// Path relative to project root (prod), falling back to the package path (tests)
	tmplPath := fmt.Sprintf("internal/services/templates/%s", templateName)
	if _, err := os.Stat(tmplPath); os.IsNotExist(err) {
		tmplPath = fmt.Sprintf("templates/%s", templateName)
	}

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(buf.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}

type installmentRow struct {
	Number  int
	DueDate string
	Amount  string
	Paid    string
	Status  string
}

// GenerateQuotationPDF renders the printable offer handed to the client,
// including a preview of the installment plan
func (s *DocumentService) GenerateQuotationPDF(ctx context.Context, quotationID uint) (*bytes.Buffer, string, error) {
	quotation, err := s.quotationRepo.FindByIDWithDetails(ctx, quotationID)
	if err != nil {
		return nil, "", ErrNotFound
	}

	var rows []installmentRow
	for _, p := range s.scheduleSvc.GenerateSchedule(quotation, quotation.QuotationDate) {
		rows = append(rows, installmentRow{
			Number:  p.Number,
			DueDate: p.DueDate.Format("02/01/2006"),
			Amount:  fmt.Sprintf("%.2f", p.AmountDue),
		})
	}

	data := map[string]interface{}{
		"Code":           quotation.Code,
		"Date":           quotation.QuotationDate.Format("02/01/2006"),
		"ValidUntil":     quotation.ValidUntil.Format("02/01/2006"),
		"ClientName":     quotation.Lead.Client.DisplayName(),
		"ClientDocument": quotation.Lead.Client.DocumentNumber,
		"ProjectName":    quotation.Lot.Block.Project.Name,
		"BlockName":      quotation.Lot.Block.Name,
		"LotNumber":      quotation.Lot.Number,
		"LotArea":        fmt.Sprintf("%.2f", quotation.LotArea),
		"PricePerM2":     fmt.Sprintf("%.2f", quotation.PricePerM2),
		"LotPrice":       fmt.Sprintf("%.2f", quotation.LotPrice),
		"Discount":       fmt.Sprintf("%.2f", quotation.DiscountAmount),
		"FinalPrice":     fmt.Sprintf("%.2f", quotation.FinalPrice),
		"DownPayment":    fmt.Sprintf("%.2f", quotation.DownPaymentAmount()),
		"DownPaymentPct": fmt.Sprintf("%.2f", quotation.DownPaymentPct),
		"AmountFinanced": fmt.Sprintf("%.2f", quotation.AmountFinanced),
		"MonthsFinanced": quotation.MonthsFinanced,
		"Currency":       quotation.Currency,
		"AdvisorName":    "",
		"Installments":   rows,
		"GeneratedAt":    time.Now().Format("02/01/2006 15:04"),
	}
	if quotation.Advisor != nil {
		data["AdvisorName"] = quotation.Advisor.FullName
	}

	buf, err := s.generatePDF("quotation.html", data)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("cotizacion_%s.pdf", quotation.Code), nil
}

// GenerateReservationStatementPDF renders the account statement of a
// reservation with the current state of each installment
func (s *DocumentService) GenerateReservationStatementPDF(ctx context.Context, reservationID uint) (*bytes.Buffer, string, error) {
	reservation, err := s.reservationRepo.FindByIDWithDetails(ctx, reservationID)
	if err != nil {
		return nil, "", ErrNotFound
	}

	var rows []installmentRow
	for _, p := range reservation.Payments {
		rows = append(rows, installmentRow{
			Number:  p.Number,
			DueDate: p.DueDate.Format("02/01/2006"),
			Amount:  fmt.Sprintf("%.2f", p.AmountDue),
			Paid:    fmt.Sprintf("%.2f", p.PaidAmount),
			Status:  p.Status,
		})
	}

	data := map[string]interface{}{
		"Reference":       reservation.Reference,
		"QuotationCode":   reservation.Quotation.Code,
		"ClientName":      reservation.Client.DisplayName(),
		"ClientDocument":  reservation.Client.DocumentNumber,
		"ProjectName":     reservation.Quotation.Lot.Block.Project.Name,
		"BlockName":       reservation.Quotation.Lot.Block.Name,
		"LotNumber":       reservation.Quotation.Lot.Number,
		"Status":          reservation.Status,
		"TotalRequired":   fmt.Sprintf("%.2f", reservation.TotalAmountRequired),
		"AmountPaid":      fmt.Sprintf("%.2f", reservation.AmountPaid),
		"RemainingAmount": fmt.Sprintf("%.2f", reservation.RemainingAmount),
		"Currency":        reservation.Currency,
		"Installments":    rows,
		"GeneratedAt":     time.Now().Format("02/01/2006 15:04"),
	}

	buf, err := s.generatePDF("reservation_statement.html", data)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("estado_cuenta_%s.pdf", reservation.Reference), nil
}
