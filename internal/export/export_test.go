package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/catalog"
	"github.com/five82/brokerdesk/internal/tableview"
)

func developersSheet(t *testing.T) Sheet {
	t.Helper()
	screen, ok := catalog.Lookup(catalog.Developers)
	require.True(t, ok)
	raw := []brokerapi.Record{
		{"id": "1", "name": "Ayala Land", "address": "Makati", "email": "info@ayala.example"},
		{"id": "2", "name": "SMDC", "address": "Pasay, Metro Manila"},
		{"id": "3", "name": "Megaworld", "address": "Taguig"},
	}
	res := screen.Apply(raw, tableview.NewState(2))
	return FromResult(screen, res)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)
	_, err = ParseFormat("pdf")
	assert.Error(t, err)

	f, err = FormatForPath("out/Report.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	_, err = FormatForPath("out.pdf")
	assert.Error(t, err)
}

func TestFromResult(t *testing.T) {
	sheet := developersSheet(t)
	assert.Equal(t, []string{"Developer", "Address", "Contact", "Email"}, sheet.Columns)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, []string{"Ayala Land", "Makati", "", "info@ayala.example"}, sheet.Rows[0])
	assert.Equal(t, "Showing 1 to 2 of 3 entries", sheet.Summary)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, developersSheet(t)))
	out := buf.String()
	assert.Contains(t, out, "Ayala Land")
	assert.Contains(t, out, "SMDC")
	assert.NotContains(t, out, "Megaworld")
	assert.True(t, strings.HasSuffix(out, "Showing 1 to 2 of 3 entries\n"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, developersSheet(t)))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Pasay, Metro Manila", records[2][1])
	assert.Equal(t, []string{"Showing 1 to 2 of 3 entries", "", "", ""}, records[3])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, developersSheet(t)))
	var decoded struct {
		Screen  string           `json:"screen"`
		Summary string           `json:"summary"`
		Items   []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, catalog.Developers, decoded.Screen)
	assert.Len(t, decoded.Items, 2)
	assert.Equal(t, "Showing 1 to 2 of 3 entries", decoded.Summary)

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, Sheet{Summary: tableview.Summary(0, 0)}))
	assert.Contains(t, buf.String(), `"items": []`)
}

func TestWriteFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "developers.xlsx")
	require.NoError(t, WriteFile(path, developersSheet(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Developers")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Equal(t, "Developer", rows[0][0])
	assert.Equal(t, "SMDC", rows[2][0])
	assert.Equal(t, "Showing 1 to 2 of 3 entries", rows[4][0])
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Brokers & Agents", sheetName("Brokers & Agents"))
	assert.Equal(t, "Export", sheetName("[]"))
	assert.Len(t, []rune(sheetName(strings.Repeat("x", 40))), 31)
}

func TestReceipt(t *testing.T) {
	rec := brokerapi.Record{
		"id":              "SE-104",
		"clientName":      "Ricky Roa",
		"propertyName":    "Unit 12B",
		"developer":       map[string]any{"name": "SMDC"},
		"reservationDate": "2024-03-05",
		"totalPrice":      float64(4800000),
		"downPayment":     "480,000",
		"status":          "Pending",
		"createdAt":       "2024-03-05T08:00:00Z",
	}
	now := time.Date(2024, 3, 8, 8, 0, 0, 0, time.UTC)
	out := Receipt(rec, now)

	assert.Contains(t, out, "SALES ENCODING RECEIPT")
	assert.Contains(t, out, "Receipt no.:     SE-104")
	assert.Contains(t, out, "Developer:       SMDC")
	assert.Contains(t, out, "Contract price:  ₱4,800,000.00")
	assert.Contains(t, out, "Down payment:    ₱480,000.00")
	assert.Contains(t, out, "Reserved:        Mar 5, 2024")
	assert.Contains(t, out, "3 days ago")
	assert.NotContains(t, out, "Commission")
	assert.NotContains(t, out, "Agent:")
}
