// Package export renders list screens for the terminal and for files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xuri/excelize/v2"

	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/catalog"
	"github.com/five82/brokerdesk/internal/tableview"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatTable, FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, csv, json, or xlsx)", name)
	}
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".txt":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("cannot export to %q files (use .csv, .json, .xlsx, or .txt)", ext)
	}
}

// Sheet is a rendered page of one screen: the displayed rows as text cells
// plus the summary line.
type Sheet struct {
	Screen  string
	Title   string
	Columns []string
	Rows    [][]string
	Records []brokerapi.Record
	Summary string
}

// FromResult renders the displayed rows of res through screen's columns.
func FromResult(screen catalog.Screen, res tableview.Result[brokerapi.Record]) Sheet {
	sheet := Sheet{
		Screen:  screen.ID,
		Title:   screen.Title,
		Columns: make([]string, len(screen.Columns)),
		Rows:    make([][]string, 0, len(res.Displayed)),
		Records: res.Displayed,
		Summary: res.Summary,
	}
	for i, col := range screen.Columns {
		sheet.Columns[i] = col.Title
	}
	for _, rec := range res.Displayed {
		row := make([]string, len(screen.Columns))
		for i, col := range screen.Columns {
			row[i] = col.Value(rec)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

// Write renders sheet to w in format.
func Write(w io.Writer, format Format, sheet Sheet) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, sheet)
	case FormatJSON:
		return writeJSON(w, sheet)
	case FormatXLSX:
		return writeXLSX(w, sheet)
	default:
		return writeTable(w, sheet)
	}
}

// WriteFile renders sheet to path, choosing the format from its extension.
func WriteFile(path string, sheet Sheet) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := Write(file, format, sheet); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	return nil
}

func writeTable(w io.Writer, sheet Sheet) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if sheet.Title != "" {
		t.SetTitle(sheet.Title)
	}

	header := make(table.Row, len(sheet.Columns))
	for i, col := range sheet.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, r := range sheet.Rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = cell
		}
		t.AppendRow(row)
	}

	t.Render()
	_, err := fmt.Fprintln(w, sheet.Summary)
	return err
}

// writeCSV writes the header, the rows, and a closing summary row. The
// summary row is padded to the column count so strict readers accept it.
func writeCSV(w io.Writer, sheet Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sheet.Columns); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, row := range sheet.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if sheet.Summary != "" {
		summary := make([]string, max(len(sheet.Columns), 1))
		summary[0] = sheet.Summary
		if err := cw.Write(summary); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

type jsonSheet struct {
	Screen  string             `json:"screen"`
	Summary string             `json:"summary"`
	Items   []brokerapi.Record `json:"items"`
}

func writeJSON(w io.Writer, sheet Sheet) error {
	items := sheet.Records
	if items == nil {
		items = []brokerapi.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonSheet{Screen: sheet.Screen, Summary: sheet.Summary, Items: items})
}

func writeXLSX(w io.Writer, sheet Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := sheetName(sheet.Title)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(sheet.Columns))
	for i, col := range sheet.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(sheet.Columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(sheet.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
			return fmt.Errorf("header style: %w", err)
		}
	}

	for i, r := range sheet.Rows {
		cells := make([]any, len(r))
		for j, cell := range r {
			cells[j] = cell
		}
		anchor, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, anchor, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	summaryCell, err := excelize.CoordinatesToCellName(1, len(sheet.Rows)+3)
	if err != nil {
		return err
	}
	if err := f.SetCellStr(name, summaryCell, sheet.Summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// sheetName trims a title to Excel's sheet-name rules.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, title)
	name = strings.TrimSpace(name)
	if name == "" {
		return "Export"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
