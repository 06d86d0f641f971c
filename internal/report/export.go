package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"wtodash/pkg/dataset"
)

var csvHeader = []string{"Year", "Reporter", "Product Group", "Value (Million USD)"}

// generateFilename builds "<base>_<timestamp>.<ext>" inside outputDir,
// creating the directory if needed.
func generateFilename(base, outputDir, ext string) (string, error) {
	if base == "" {
		base = "wto_imports"
	}
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return "", fmt.Errorf("error creating output directory: %w", err)
		}
	}
	stamp := time.Now().Format("20060102_1504")
	return filepath.Join(outputDir, fmt.Sprintf("%s_%s.%s", base, stamp, ext)), nil
}

// ExportToCSV writes the table as rows, one record per line.
func ExportToCSV(table dataset.Table, base, outputDir string) (string, error) {
	outputFilename, err := generateFilename(base, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return "", err
	}
	for _, rec := range table {
		row := []string{
			strconv.Itoa(rec.Year),
			rec.Reporter,
			rec.ProductGroup,
			strconv.FormatFloat(rec.Value, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	return filepath.Abs(outputFilename)
}

// ExportToJSON writes the table as an indented record array.
func ExportToJSON(table dataset.Table, base, outputDir string) (string, error) {
	outputFilename, err := generateFilename(base, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(table); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToPDF writes a one-page-per-economy summary: yearly totals
// followed by the product group breakdown.
func ExportToPDF(table dataset.Table, base, outputDir string) (string, error) {
	outputFilename, err := generateFilename(base, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, rows []string) {
		if len(rows) == 0 {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(0, 8, title)
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		for _, row := range rows {
			pdf.MultiCell(190, 5, tr(row), "", "L", false)
		}
		pdf.Ln(8)
	}

	for _, reporter := range dataset.Reporters(table) {
		perReporter := dataset.Query(table, dataset.Filter{Reporters: []string{reporter}})

		pdf.AddPage()
		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Merchandise Imports: %s", reporter)), "", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Total: %.2f M USD", dataset.Total(perReporter))), "", 1, "L", true, 0, "")
		pdf.Ln(10)

		var yearRows []string
		for _, row := range dataset.SortedTotals(dataset.Aggregate(perReporter, dataset.ByYear)) {
			yearRows = append(yearRows, fmt.Sprintf("%d: %.2f", row.Key.Year, row.Value))
		}
		drawSection("Value by Year (Million USD)", yearRows)

		var productRows []string
		for _, row := range dataset.SortedTotals(dataset.Aggregate(perReporter, dataset.ByProductGroup)) {
			productRows = append(productRows, fmt.Sprintf("%s: %.2f", row.Key.ProductGroup, row.Value))
		}
		drawSection("Value by Product Group (Million USD)", productRows)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}
