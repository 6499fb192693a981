package rowcalc

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func cellValue(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(WorkbookSheet, cell)
	require.NoError(t, err)
	return v
}

func TestWriteWorkbook(t *testing.T) {
	s := NewSheet(nil)
	require.NoError(t, s.SetComment(1, "double"))

	var buf bytes.Buffer
	require.NoError(t, s.WriteWorkbook(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{WorkbookSheet}, f.GetSheetList())
	assert.Equal(t, "Variable", cellValue(t, f, "A1"))
	assert.Equal(t, "Expression", cellValue(t, f, "B1"))
	assert.Equal(t, "v0", cellValue(t, f, "A2"))
	assert.Equal(t, "123", cellValue(t, f, "B2"))
	assert.Equal(t, "123", cellValue(t, f, "C2"))
	assert.Equal(t, "v0*2", cellValue(t, f, "B3"))
	assert.Equal(t, "246", cellValue(t, f, "C3"))
	assert.Equal(t, "double", cellValue(t, f, "D3"))
	assert.Equal(t, "", cellValue(t, f, "B4"), "trailing blank row is empty")
	assert.Equal(t, "Status", cellValue(t, f, "F1"))
	assert.Equal(t, StatusOK, cellValue(t, f, "F2"))
}

func TestWriteWorkbook_FailedRowHasNoResult(t *testing.T) {
	s := NewSheet(&Settings{Rows: []SettingsRow{{Expression: "1+"}}})

	var buf bytes.Buffer
	require.NoError(t, s.WriteWorkbook(&buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "1+", cellValue(t, f, "B2"))
	assert.Equal(t, "", cellValue(t, f, "C2"))
	assert.Contains(t, cellValue(t, f, "F2"), "row 0")
}

func TestWorkbook_RoundTrip(t *testing.T) {
	s := NewSheet(&Settings{Rows: []SettingsRow{
		{Variable: "qty", Expression: "3", Comment: "units"},
		{},
		{Variable: "total", Expression: "qty * 2,5"},
	}})
	path := filepath.Join(t.TempDir(), "rows.xlsx")
	require.NoError(t, s.ExportWorkbook(path))

	imported, err := ImportWorkbook(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().Geometry(), imported.Geometry())
	assert.Equal(t, []SettingsRow{
		{Variable: "qty", Expression: "3", Comment: "units"},
		{},
		{Variable: "total", Expression: "qty * 2,5"},
	}, imported.Rows, "trailing blank rows are not materialized by the reader")

	again := NewSheet(imported)
	r, _ := again.Row(2)
	assert.Equal(t, "7.5", r.DisplayResult())
}

func TestReadWorkbook_HeaderInAnyOrder(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"comment", "EXPRESSION"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"note", "1+1"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	s, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	assert.Equal(t, []SettingsRow{{Expression: "1+1", Comment: "note"}}, s.Rows)
}

func TestReadWorkbook_MissingExpressionColumn(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Variable", "Formula"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ReadWorkbook(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing Expression column")
}
