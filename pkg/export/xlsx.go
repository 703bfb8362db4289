package export

import (
	"io"
	"log"
	"strings"

	"f1schedulebot/pkg/views"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	SheetResults = "Results"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []string{"Pos", "No", "Driver", "Team", "Laps", "Gap", "Points"}

var closeWorkbook = func(f *excelize.File) error { return f.Close() }

// ResultsXLSX builds a workbook with one row per classified driver. The team
// cell is filled with the team colour. The caller closes the returned file.
func ResultsXLSX(rows []views.ResultRow) (*excelize.File, error) {
	return newWorkbook(rows, fillResults)
}

func newWorkbook(rows []views.ResultRow, fill func(*excelize.File, []views.ResultRow) error) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fill(f, rows); err != nil {
		if cerr := closeWorkbook(f); cerr != nil {
			log.Printf("An error occured: %s", cerr)
		}
		return nil, err
	}
	return f, nil
}

func fillResults(f *excelize.File, rows []views.ResultRow) error {
	if err := f.SetSheetName("Sheet1", SheetResults); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"e10600"},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Font: &excelize.Font{
			Bold:  true,
			Color: "ffffff",
		},
	})
	if err != nil {
		return errors.Wrap(err, "create header style")
	}

	for col, title := range header {
		if err := setCell(f, col+1, 1, title); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetResults, "A1", "G1", headerStyle); err != nil {
		return errors.Wrap(err, "style header")
	}

	teamStyles := map[string]int{}
	for idx, row := range rows {
		r := idx + 2
		var pos interface{} = row.Position
		if row.Position <= 0 {
			pos = "-"
		}
		values := []interface{}{pos, row.DriverNumber, row.Name, row.Team, row.Laps, row.Gap, row.Points}
		for col, value := range values {
			if err := setCell(f, col+1, r, value); err != nil {
				return err
			}
		}

		colour := strings.TrimPrefix(row.TeamColour, "#")
		style, ok := teamStyles[colour]
		if !ok {
			style, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colour}},
				Font: &excelize.Font{Color: "ffffff", Bold: true},
			})
			if err != nil {
				return errors.Wrap(err, "create team style")
			}
			teamStyles[colour] = style
		}
		cell, _ := excelize.CoordinatesToCellName(4, r)
		if err := f.SetCellStyle(SheetResults, cell, cell, style); err != nil {
			return errors.Wrap(err, "style team cell")
		}
	}

	if err := f.SetColWidth(SheetResults, "C", "D", 24); err != nil {
		return errors.Wrap(err, "set column width")
	}
	return nil
}

// WriteResults writes the workbook for rows to w.
func WriteResults(w io.Writer, rows []views.ResultRow) error {
	f, err := ResultsXLSX(rows)
	if err != nil {
		return err
	}
	defer closeWorkbook(f)
	return errors.Wrap(f.Write(w), "write workbook")
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.Wrap(err, "cell name")
	}
	return errors.Wrapf(f.SetCellValue(SheetResults, cell, value), "set cell %s", cell)
}
