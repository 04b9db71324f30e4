package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"homedash/internal/model"
)

// DevicesSheet is the name of the worksheet written by WriteDevicesXLSX.
const DevicesSheet = "Devices"

// ContentTypeXLSX is the MIME type of the generated workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var devicesHeader = []any{"ID", "Name", "Type", "Status", "Health"}

// WriteDevicesXLSX writes a workbook with one header row and one row per device.
func WriteDevicesXLSX(w io.Writer, devices []model.Device) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DevicesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(DevicesSheet, "A1", &devicesHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, d := range devices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{d.ID, d.Name, d.Type, d.Status, d.Health}
		if err := f.SetSheetRow(DevicesSheet, cell, &row); err != nil {
			return fmt.Errorf("write device %d: %w", d.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
