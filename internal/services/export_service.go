package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

var monthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// ExportService renders the dashboard summary as downloadable files
type ExportService struct {
	dashboardSvc *DashboardService
}

func NewExportService(dashboardSvc *DashboardService) *ExportService {
	return &ExportService{dashboardSvc: dashboardSvc}
}

func (s *ExportService) ExportCSV(ctx context.Context, year int) ([]byte, string, error) {
	summary, err := s.dashboardSvc.Summary(ctx, year)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	// Header
	_ = writer.Write([]string{fmt.Sprintf("Reporte de Ventas %d", summary.Year), time.Now().Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})

	// Leads Section
	_ = writer.Write([]string{"Leads por Origen"})
	_ = writer.Write([]string{"Origen", "Cantidad", "Porcentaje"})
	for _, src := range summary.LeadsBySource {
		_ = writer.Write([]string{src.Source, fmt.Sprintf("%d", src.Count), fmt.Sprintf("%.2f%%", src.Percentage)})
	}
	_ = writer.Write([]string{"Total", fmt.Sprintf("%d", summary.TotalLeads), ""})
	_ = writer.Write([]string{""})

	// Quotations Section
	_ = writer.Write([]string{"Cotizaciones por Estado"})
	_ = writer.Write([]string{"Estado", "Cantidad"})
	for _, sc := range summary.QuotationsByStatus {
		_ = writer.Write([]string{sc.Status, fmt.Sprintf("%d", sc.Count)})
	}
	_ = writer.Write([]string{"Total", fmt.Sprintf("%d", summary.TotalQuotations)})
	_ = writer.Write([]string{""})

	// Reservations Section
	_ = writer.Write([]string{"Reservas por Estado"})
	_ = writer.Write([]string{"Estado", "Cantidad"})
	for _, sc := range summary.ReservationsByStatus {
		_ = writer.Write([]string{sc.Status, fmt.Sprintf("%d", sc.Count)})
	}
	_ = writer.Write([]string{"Total", fmt.Sprintf("%d", summary.TotalReservations)})
	_ = writer.Write([]string{""})

	// Revenue Section
	_ = writer.Write([]string{"Recaudación Mensual"})
	_ = writer.Write([]string{"Mes", "Monto"})
	for _, mr := range summary.RevenueByMonth {
		_ = writer.Write([]string{monthNames[mr.Month-1], fmt.Sprintf("%.2f", mr.Amount)})
	}
	_ = writer.Write([]string{"Total Recaudado", fmt.Sprintf("%.2f", summary.TotalCollected)})
	_ = writer.Write([]string{""})

	// Inventory Section
	_ = writer.Write([]string{"Distribución de Lotes"})
	_ = writer.Write([]string{"Estado", "Cantidad"})
	_ = writer.Write([]string{"Disponible", fmt.Sprintf("%d", summary.LotDistribution.Available)})
	_ = writer.Write([]string{"Cotizado", fmt.Sprintf("%d", summary.LotDistribution.Quoted)})
	_ = writer.Write([]string{"Reservado", fmt.Sprintf("%d", summary.LotDistribution.Reserved)})
	_ = writer.Write([]string{"Vendido", fmt.Sprintf("%d", summary.LotDistribution.Sold)})
	_ = writer.Write([]string{"Total", fmt.Sprintf("%d", summary.LotDistribution.Total)})
	_ = writer.Write([]string{"Tasa de Ocupación", fmt.Sprintf("%.2f%%", summary.LotDistribution.OccupancyRate)})

	writer.Flush()

	filename := fmt.Sprintf("sales_report_%d_%s.csv", year, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportXLSX(ctx context.Context, year int) ([]byte, string, error) {
	summary, err := s.dashboardSvc.Summary(ctx, year)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ventas"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Reporte de Ventas %d", summary.Year))
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	row := 3
	_ = f.SetCellValue(sheet, cell("A", row), "Leads por Origen")
	row++
	_ = f.SetCellValue(sheet, cell("A", row), "Origen")
	_ = f.SetCellValue(sheet, cell("B", row), "Cantidad")
	_ = f.SetCellValue(sheet, cell("C", row), "Porcentaje")
	row++
	for _, src := range summary.LeadsBySource {
		_ = f.SetCellValue(sheet, cell("A", row), src.Source)
		_ = f.SetCellValue(sheet, cell("B", row), src.Count)
		_ = f.SetCellValue(sheet, cell("C", row), fmt.Sprintf("%.2f%%", src.Percentage))
		row++
	}
	_ = f.SetCellValue(sheet, cell("A", row), "Total")
	_ = f.SetCellValue(sheet, cell("B", row), summary.TotalLeads)
	row += 2

	_ = f.SetCellValue(sheet, cell("A", row), "Cotizaciones por Estado")
	row++
	for _, sc := range summary.QuotationsByStatus {
		_ = f.SetCellValue(sheet, cell("A", row), sc.Status)
		_ = f.SetCellValue(sheet, cell("B", row), sc.Count)
		row++
	}
	_ = f.SetCellValue(sheet, cell("A", row), "Total")
	_ = f.SetCellValue(sheet, cell("B", row), summary.TotalQuotations)
	row += 2

	_ = f.SetCellValue(sheet, cell("A", row), "Reservas por Estado")
	row++
	for _, sc := range summary.ReservationsByStatus {
		_ = f.SetCellValue(sheet, cell("A", row), sc.Status)
		_ = f.SetCellValue(sheet, cell("B", row), sc.Count)
		row++
	}
	_ = f.SetCellValue(sheet, cell("A", row), "Total")
	_ = f.SetCellValue(sheet, cell("B", row), summary.TotalReservations)
	row += 2

	_ = f.SetCellValue(sheet, cell("A", row), "Recaudación Mensual")
	row++
	for _, mr := range summary.RevenueByMonth {
		_ = f.SetCellValue(sheet, cell("A", row), monthNames[mr.Month-1])
		_ = f.SetCellValue(sheet, cell("B", row), mr.Amount)
		row++
	}
	_ = f.SetCellValue(sheet, cell("A", row), "Total Recaudado")
	_ = f.SetCellValue(sheet, cell("B", row), summary.TotalCollected)
	row += 2

	_ = f.SetCellValue(sheet, cell("A", row), "Distribución de Lotes")
	row++
	_ = f.SetCellValue(sheet, cell("A", row), "Disponible")
	_ = f.SetCellValue(sheet, cell("B", row), summary.LotDistribution.Available)
	row++
	_ = f.SetCellValue(sheet, cell("A", row), "Cotizado")
	_ = f.SetCellValue(sheet, cell("B", row), summary.LotDistribution.Quoted)
	row++
	_ = f.SetCellValue(sheet, cell("A", row), "Reservado")
	_ = f.SetCellValue(sheet, cell("B", row), summary.LotDistribution.Reserved)
	row++
	_ = f.SetCellValue(sheet, cell("A", row), "Vendido")
	_ = f.SetCellValue(sheet, cell("B", row), summary.LotDistribution.Sold)
	row++
	_ = f.SetCellValue(sheet, cell("A", row), "Tasa de Ocupación")
	_ = f.SetCellValue(sheet, cell("B", row), fmt.Sprintf("%.2f%%", summary.LotDistribution.OccupancyRate))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("sales_report_%d_%s.xlsx", year, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func (s *ExportService) ExportPDF(ctx context.Context, year int) ([]byte, string, error) {
	summary, err := s.dashboardSvc.Summary(ctx, year)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Reporte de Ventas %d", summary.Year))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Leads por Origen")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, src := range summary.LeadsBySource {
		pdf.Cell(60, 10, src.Source+":")
		pdf.Cell(40, 10, fmt.Sprintf("%d (%.2f%%)", src.Count, src.Percentage))
		pdf.Ln(6)
	}
	pdf.Cell(60, 10, "Total:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", summary.TotalLeads))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Cotizaciones por Estado")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, sc := range summary.QuotationsByStatus {
		pdf.Cell(60, 10, sc.Status+":")
		pdf.Cell(40, 10, fmt.Sprintf("%d", sc.Count))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Reservas por Estado")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, sc := range summary.ReservationsByStatus {
		pdf.Cell(60, 10, sc.Status+":")
		pdf.Cell(40, 10, fmt.Sprintf("%d", sc.Count))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Recaudacion")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, "Total Recaudado:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f", summary.TotalCollected))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Distribucion de Lotes")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, "Disponible:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", summary.LotDistribution.Available))
	pdf.Ln(6)
	pdf.Cell(60, 10, "Cotizado:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", summary.LotDistribution.Quoted))
	pdf.Ln(6)
	pdf.Cell(60, 10, "Reservado:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", summary.LotDistribution.Reserved))
	pdf.Ln(6)
	pdf.Cell(60, 10, "Vendido:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", summary.LotDistribution.Sold))
	pdf.Ln(6)
	pdf.Cell(60, 10, "Tasa de Ocupacion:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f%%", summary.LotDistribution.OccupancyRate))
	pdf.Ln(6)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("sales_report_%d_%s.pdf", year, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
