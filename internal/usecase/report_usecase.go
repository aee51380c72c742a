package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

var reportColumns = []string{"Roll Number", "Name", "Department", "Batch", "CGPA", "Placed", "Company", "Package (LPA)"}

type reportUsecase struct {
	students domain.StudentRepository
	now      func() time.Time
}

func NewReportUsecase(students domain.StudentRepository) domain.ReportUsecase {
	return &reportUsecase{students: students, now: time.Now}
}

// ExportPlacements renders the placement report and returns the file with its suggested name.
func (u *reportUsecase) ExportPlacements(ctx context.Context, actor domain.Actor, format string, batchYear int, departments []string) ([]byte, string, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, "", err
	}
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		return nil, "", apperror.BadRequest("Format must be xlsx or csv")
	}

	students, err := u.students.ListForAnalytics(ctx, batchYear, cleanList(departments))
	if err != nil {
		return nil, "", err
	}

	name := "placements"
	if batchYear > 0 {
		name = fmt.Sprintf("placements_%d", batchYear)
	}
	filename := fmt.Sprintf("%s_%s.%s", name, u.now().UTC().Format("20060102"), format)

	rows := make([][]string, 0, len(students))
	for i := range students {
		rows = append(rows, reportRow(&students[i]))
	}

	var data []byte
	if format == "csv" {
		data, err = exportCSV(rows)
	} else {
		data, err = exportExcel(rows)
	}
	if err != nil {
		return nil, "", err
	}
	return data, filename, nil
}

func reportRow(s *domain.Student) []string {
	placed := "No"
	company := ""
	pkg := ""
	if s.IsPlaced {
		placed = "Yes"
		if s.PlacedCompanyName != nil {
			company = *s.PlacedCompanyName
		}
		if s.PackageLPA != nil {
			pkg = strconv.FormatFloat(*s.PackageLPA, 'f', 2, 64)
		}
	}
	return []string{
		s.RollNumber,
		s.FullName,
		s.Department,
		strconv.Itoa(s.BatchYear),
		strconv.FormatFloat(s.CGPA, 'f', 2, 64),
		placed,
		company,
		pkg,
	}
}

func exportExcel(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Placements"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range reportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportColumns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
