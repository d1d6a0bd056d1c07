package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"deskbook/internal/domain"
	"deskbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Desks"

// Exporter renders the full desk set into an xlsx occupancy report.
type Exporter struct {
	desks  domain.DeskStore
	logger *zerolog.Logger
}

func NewExporter(desks domain.DeskStore, logger *zerolog.Logger) *Exporter {
	return &Exporter{desks: desks, logger: logger}
}

// BuildReport pages through the store until the cursor is exhausted and
// returns the workbook. The caller owns closing the file.
func (e *Exporter) BuildReport(ctx context.Context) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Name", "Booked", "User email", "Sign in", "Sign out", "Hot desk", "ID"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheetName, "A1", lastHeader, style)

	row := 2
	pageToken := ""
	for {
		desks, next, err := e.desks.List(ctx, models.DefaultListBatchSize, pageToken)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("error listing desks: %w", err)
		}

		for _, desk := range desks {
			e.writeDeskRow(f, row, desk)
			row++
		}

		if next == "" {
			break
		}
		pageToken = next
	}

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	_ = f.SetColWidth(sheetName, "C", "C", 30)
	_ = f.SetColWidth(sheetName, "D", "E", 22)
	_ = f.SetColWidth(sheetName, "G", "G", 38)
	_ = f.DeleteSheet("Sheet1")

	e.logger.Info().Int("desks", row-2).Msg("desk report built")
	return f, nil
}

// SaveReport writes the report into dir with a timestamped name and
// returns the full path.
func (e *Exporter) SaveReport(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := e.BuildReport(ctx)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("desks_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(dir, fileName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving report: %w", err)
	}
	return path, nil
}

func (e *Exporter) writeDeskRow(f *excelize.File, row int, desk models.Desk) {
	values := []interface{}{
		desk.Name,
		desk.Booked,
		desk.UserEmail,
		formatTime(desk.SignInTime),
		formatTime(desk.SignOutTime),
		desk.HotDesk,
		desk.ID,
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
