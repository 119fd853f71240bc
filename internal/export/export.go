// Package export renders attendance logs as downloadable CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"valkiria-backend-go/internal/analytics"
	"valkiria-backend-go/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Asistencia"

var Header = []string{"Fecha", "Sede", "Modelo", "Plataforma", "Horas", "Tokens"}

// FileName is the download name for an export produced on day now.
func FileName(now time.Time, ext string) string {
	return "asistencia_" + now.Format("2006-01-02") + "." + ext
}

func record(item models.AttendanceLog) []string {
	return []string{
		displayDate(item.Date),
		item.SedeName,
		item.ModeloName,
		item.PlataformaName,
		strconv.FormatFloat(item.HorasConexion, 'f', -1, 64),
		strconv.FormatInt(item.TotalTokens, 10),
	}
}

func displayDate(raw string) string {
	t, err := analytics.ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}

func WriteCSV(w io.Writer, logs []models.AttendanceLog) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, item := range logs {
		if err := writer.Write(record(item)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a single-sheet workbook; hours and tokens are stored as
// numbers so the sheet can be summed.
func WriteXLSX(w io.Writer, logs []models.AttendanceLog) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetName); err != nil {
		return err
	}
	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}
	for rowIdx, item := range logs {
		values := []interface{}{
			displayDate(item.Date),
			item.SedeName,
			item.ModeloName,
			item.PlataformaName,
			item.HorasConexion,
			item.TotalTokens,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}
	_, err := f.WriteTo(w)
	return err
}
