package rowcalc

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WorkbookSheet is the worksheet name rows are exported to.
const WorkbookSheet = "Rows"

var workbookHeader = []string{"Variable", "Expression", "Result", "Comment"}

// WriteWorkbook writes the sheet's rows, results and status as an xlsx
// workbook. Results are written as numbers; rows without a value leave the
// Result cell empty.
func (s *Sheet) WriteWorkbook(w io.Writer) error {
	f, err := s.buildWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ExportWorkbook writes the workbook to path.
func (s *Sheet) ExportWorkbook(path string) error {
	f, err := s.buildWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}

func (s *Sheet) buildWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", WorkbookSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, title := range workbookHeader {
		if err := setCell(f, col+1, 1, title); err != nil {
			f.Close()
			return nil, err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(WorkbookSheet, "A1", "F1", bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("style header: %w", err)
	}

	rows := s.store.Rows()
	for i, r := range TrimRows(s.Snapshot().Rows) {
		line := i + 2
		cells := []any{r.Variable, r.Expression, nil, r.Comment}
		if v, ok := rows[i].Result(); ok {
			cells[2] = v
		}
		for col, v := range cells {
			if v == nil || v == "" {
				continue
			}
			if err := setCell(f, col+1, line, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if err := setCell(f, 6, 1, "Status"); err != nil {
		f.Close()
		return nil, err
	}
	if err := setCell(f, 6, 2, s.Status()); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(WorkbookSheet, "B", "B", 30); err != nil {
		f.Close()
		return nil, fmt.Errorf("set column width: %w", err)
	}
	return f, nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(WorkbookSheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}

// ReadWorkbook reads rows from the first worksheet of an xlsx workbook laid
// out like WriteWorkbook's output. Results in the workbook are ignored.
// Geometry comes from DefaultSettings.
func ReadWorkbook(r io.Reader) (*Settings, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return settingsFromWorkbook(f)
}

// ImportWorkbook reads rows from the workbook at path. See ReadWorkbook.
func ImportWorkbook(path string) (*Settings, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()
	return settingsFromWorkbook(f)
}

func settingsFromWorkbook(f *excelize.File) (*Settings, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %q: %w", sheets[0], err)
	}

	cols, err := headerColumns(grid)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], err)
	}

	s := DefaultSettings()
	s.Rows = []SettingsRow{}
	for _, line := range grid[1:] {
		s.Rows = append(s.Rows, SettingsRow{
			Variable:   cellAt(line, cols["Variable"]),
			Expression: cellAt(line, cols["Expression"]),
			Comment:    cellAt(line, cols["Comment"]),
		})
	}
	s.Rows = TrimRows(s.Rows)
	return s, nil
}

// headerColumns maps header titles to column indexes. Expression is required.
func headerColumns(grid [][]string) (map[string]int, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("missing header row")
	}
	cols := map[string]int{"Variable": -1, "Expression": -1, "Comment": -1}
	for i, title := range grid[0] {
		for name := range cols {
			if strings.EqualFold(strings.TrimSpace(title), name) {
				cols[name] = i
			}
		}
	}
	if cols["Expression"] < 0 {
		return nil, fmt.Errorf("missing Expression column")
	}
	return cols, nil
}

func cellAt(line []string, col int) string {
	if col < 0 || col >= len(line) {
		return ""
	}
	return line[col]
}
