package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type Exporter struct{}

// firstError remembers the first non-nil error of a run of excelize writes.
type firstError struct {
	err error
}

func (f *firstError) keep(err error) {
	if err != nil && f.err == nil {
		f.err = err
	}
}

func NewExporter() *Exporter {
	return &Exporter{}
}

// BestClients renders the best-clients report as an XLSX workbook.
func (e *Exporter) BestClients(r Range, clients []ClientPayment) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	sheet := "Best clients"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	var errs firstError
	set := func(cell string, value interface{}) {
		errs.keep(file.SetCellValue(sheet, cell, value))
	}

	set("A1", "Period start")
	set("B1", r.Start.Format("2006-01-02 15:04"))
	set("A2", "Period end")
	set("B2", r.End.Format("2006-01-02 15:04"))

	tableRow := 4
	headers := []string{"Rank", "Profile ID", "Full name", "Paid"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, tableRow)
		if err != nil {
			return nil, err
		}
		set(cell, header)
	}

	for i, client := range clients {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), i+1)
		set(fmt.Sprintf("B%d", row), client.ID)
		set(fmt.Sprintf("C%d", row), client.FullName)
		set(fmt.Sprintf("D%d", row), client.Paid.InexactFloat64())
	}

	errs.keep(file.SetColWidth(sheet, "A", "A", 14))
	errs.keep(file.SetColWidth(sheet, "B", "B", 12))
	errs.keep(file.SetColWidth(sheet, "C", "C", 36))
	errs.keep(file.SetColWidth(sheet, "D", "D", 14))
	if errs.err != nil {
		return nil, fmt.Errorf("fill best clients sheet: %w", errs.err)
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Exporter) FileName(r Range) string {
	return fmt.Sprintf("best-clients-%s-%s.xlsx", r.Start.Format("20060102"), r.End.Format("20060102"))
}
