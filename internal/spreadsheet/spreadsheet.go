// Package spreadsheet reads and writes the inventory workbook format.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"edc-panorama-api-server/internal/inventory"
	"edc-panorama-api-server/internal/models"
)

// Sheet names of the generated workbooks.
const (
	InventorySheet = "Inventaire EDC"
	TemplateSheet  = "Modèle Import"
)

// ErrEmpty is returned when the first sheet has no data rows.
var ErrEmpty = errors.New("spreadsheet is empty or unreadable")

// Sheet is the first worksheet of an uploaded workbook.
type Sheet struct {
	Headers []string
	Rows    []map[string]string
}

// Read parses the first worksheet. Cells are read raw so dates arrive as
// serial numbers and numbers keep their full precision.
func Read(r io.Reader) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, ErrEmpty
	}
	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("read rows: %w", err)
	}
	if len(raw) < 2 {
		return Sheet{}, ErrEmpty
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}
	sheet := Sheet{Headers: headers}
	for _, cells := range raw[1:] {
		row := make(map[string]string, len(headers))
		empty := true
		for i, v := range cells {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			row[headers[i]] = v
			if strings.TrimSpace(v) != "" {
				empty = false
			}
		}
		if !empty {
			sheet.Rows = append(sheet.Rows, row)
		}
	}
	if len(sheet.Rows) == 0 {
		return Sheet{}, ErrEmpty
	}
	return sheet, nil
}

// WriteAssets renders assets as the export workbook.
func WriteAssets(w io.Writer, assets []models.Asset, cfg models.AppConfig) error {
	rows := make([][]any, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, assetRow(a, cfg))
	}
	return write(w, InventorySheet, inventory.Columns(cfg), rows, 10)
}

// WriteTemplate renders the import template with one example row.
func WriteTemplate(w io.Writer, cfg models.AppConfig) error {
	example := []any{
		"2024-EDC-AA-0001", "Agrafeuse géante", "AA - Matériel de bureau", "EDC", "2024",
		"2024-01-01", models.StateGood, "Jean Dupont", "Présent", "101",
		"Description...", "Observation...",
	}
	for _, f := range cfg.ActiveCustomFields() {
		if f.Type == models.FieldTypeDate {
			example = append(example, "2024-01-01")
		} else {
			example = append(example, "")
		}
	}
	return write(w, TemplateSheet, inventory.Columns(cfg), [][]any{example}, 5)
}

func assetRow(a models.Asset, cfg models.AppConfig) []any {
	row := []any{
		a.Code,
		a.Name,
		fmt.Sprintf("%s - %s", a.Category, cfg.CategoriesDescriptions[a.Category]),
		a.Location,
		a.AcquisitionYear,
		a.RegistrationDate,
		a.State,
		a.Holder,
		a.HolderPresence,
		a.Door,
		a.Description,
		a.Observation,
	}
	for _, f := range cfg.ActiveCustomFields() {
		row = append(row, a.CustomAttributes[f.ID])
	}
	return row
}

func write(w io.Writer, sheet string, headers []string, rows [][]any, padding float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(len([]rune(h)))+padding); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
