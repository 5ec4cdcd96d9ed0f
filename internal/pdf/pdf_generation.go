package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskshield/internal/models"
)

// Generator is an interface so report output can be mocked in tests.
type Generator interface {
	GenerateAuditReport(data AuditReportData) (string, error)
}

// ReportGenerator renders audit-trail reports as PDF files under RootDir.
type ReportGenerator struct {
	RootDir  string
	fontName string
}

type AuditReportData struct {
	Title     string
	From      time.Time
	To        time.Time
	Entries   []models.AuditLog
	CreatedAt time.Time
	Filename  string // name only; generated when empty
}

func NewReportGenerator(rootDir string) *ReportGenerator {
	return &ReportGenerator{
		RootDir:  filepath.Clean(rootDir),
		fontName: "Helvetica",
	}
}

func (g *ReportGenerator) GenerateAuditReport(data AuditReportData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("audit_report_%s.pdf", data.CreatedAt.Format("20060102_150405"))
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(data.Title, false)
	pdf.SetAuthor("TaskShield", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// header
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "AUDIT TRAIL REPORT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("%s  |  %s to %s",
		data.Title,
		data.From.Format("2006-01-02"),
		data.To.Format("2006-01-02"),
	)
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Summary")
	g.kvLine(pdf, "Entries", fmt.Sprintf("%d", len(data.Entries)))
	g.kvLine(pdf, "Generated", data.CreatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Entries")
	pdf.SetFont(g.fontName, "", 9)
	for _, entry := range data.Entries {
		pdf.MultiCell(0, 5, entry.Description(), "", "L", false)
		if entry.Details != "" {
			pdf.SetX(25)
			pdf.MultiCell(0, 5, "detail: "+entry.Details, "", "L", false)
		}
		pdf.Ln(1)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ===== helpers =====

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename)
	return filepath.Join(g.RootDir, filename), nil
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	pdf.SetLineWidth(0.3)
	y := pdf.GetY()
	pdf.Line(20, y, 190, y)
	pdf.Ln(2)
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(g.fontName, "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(55, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}
