package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"maestro/internal/models"

	"github.com/xuri/excelize/v2"
)

// exportBookingsToExcel создает Excel файл со всеми заявками
func (b *Bot) exportBookingsToExcel(ctx context.Context) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := b.repo.ListBookingsSince(ctx, time.Time{})
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Заявки"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Исполнитель", "Клиент", "Дата", "Услуга", "Цена", "Статус", "Создана", "Обновлена",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), booking.PublicID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), booking.PerformerName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), booking.CustomerName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), booking.Date.Format("02.01.2006"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), booking.Service)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), booking.Price)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), statusLabel(booking.Status))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), booking.CreatedAt.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), booking.UpdatedAt.Format("02.01.2006 15:04"))

		if styleID, err := statusCellStyle(f, booking.Status); err == nil {
			cell := fmt.Sprintf("G%d", row)
			_ = f.SetCellStyle(sheetName, cell, cell, styleID)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "C", 22)
	_ = f.SetColWidth(sheetName, "D", "G", 16)
	_ = f.SetColWidth(sheetName, "H", "I", 18)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Int("rows", len(bookings)).Msg("Excel file created")
	return filePath, nil
}

func statusLabel(status string) string {
	switch status {
	case models.BookingStatusPending:
		return "⏳ Ожидает"
	case models.BookingStatusConfirmed:
		return "✅ Подтверждена"
	case models.BookingStatusRejected:
		return "❌ Отклонена"
	case models.BookingStatusCancelledByCustomer:
		return "🚫 Отменена клиентом"
	}
	return status
}

// statusCellStyle возвращает стиль ячейки статуса
func statusCellStyle(f *excelize.File, status string) (int, error) {
	var color string
	switch status {
	case models.BookingStatusConfirmed:
		color = "#C6EFCE"
	case models.BookingStatusPending:
		color = "#FFEB9C"
	case models.BookingStatusRejected, models.BookingStatusCancelledByCustomer:
		color = "#FFC7CE"
	default:
		color = "#FFFFFF"
	}
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top"},
	})
}
