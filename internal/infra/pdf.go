package infra

// pdf.go — composition report rendering using go-pdf/fpdf.
// Produces an A4 summary of a saved composition: header with name and
// status, item table, utilization figures, then violations, warnings and
// recommendations. The file is written to storagePath/composition-{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Joaovenera/wms-sub005/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerateCompositionPDF renders the report for a saved composition.
// storagePath is created if needed. Returns the absolute path of the file.
func GenerateCompositionPDF(comp *dto.CompositionResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("composition-%s.pdf", comp.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Pallet Composition Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, comp.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("ID: %s    Status: %s    Created: %s", comp.ID, comp.Status, comp.CreatedAt), "", 1, "L", false, 0, "")
	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.40 // packaging type id
	col2 := contentW * 0.20 // quantity
	col3 := contentW * 0.20 // layer
	col4 := contentW * 0.20 // disassembled

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Packaging Type", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Packages", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 6, "Layer", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Disassembled", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, item := range comp.Items {
		pdf.CellFormat(col1, 5, item.PackagingTypeID, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, item.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 5, fmt.Sprintf("%d", item.Layer), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, item.DisassembledQuantity.String(), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// ── Result summary ───────────────────────────────────────────────────────
	if r := comp.Result; r != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Calculation", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		half := contentW / 2
		row := func(label, value string) {
			pdf.CellFormat(half, 5, label, "", 0, "L", false, 0, "")
			pdf.CellFormat(half, 5, value, "", 1, "R", false, 0, "")
		}
		row("Pallet", r.PalletID)
		row("Total weight (kg)", fmt.Sprintf("%s / %s", r.TotalWeightKg, r.Limits.WeightKg))
		row("Total volume (m3)", fmt.Sprintf("%s / %s", r.TotalVolumeM3, r.Limits.VolumeM3))
		row("Max item height (cm)", fmt.Sprintf("%s / %s", r.MaxItemHeightCm, r.Limits.HeightCm))
		row("Stack height (cm)", r.StackHeightCm.String())
		row("Weight utilization", r.Utilization.Weight.String())
		row("Volume utilization", r.Utilization.Volume.String())
		row("Height utilization", r.Utilization.Height.String())
		row("Efficiency", r.Efficiency.String())
		row("Layers", fmt.Sprintf("%d", r.LayerCount))
		pdf.Ln(3)

		section := func(title string, lines []string) {
			if len(lines) == 0 {
				return
			}
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(contentW, 6, title, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 8)
			for _, line := range lines {
				pdf.MultiCell(contentW, 5, "- "+line, "", "L", false)
			}
			pdf.Ln(2)
		}
		section("Violations", r.Violations)
		section("Warnings", r.Warnings)
		section("Recommendations", r.Recommendations)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
