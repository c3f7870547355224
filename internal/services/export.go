package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/p2p60/intake-bot/internal/repositories"
)

type RequestExporter interface {
	ExportRange(start, end time.Time) ([]repositories.ExportRow, error)
}

var exportHeader = []string{
	"created_at", "direction", "from_currency", "to_currency", "amount",
	"payment_method", "city", "urgency", "phone", "priority",
}

// ExportCSV writes all requests created in [start, end] to a CSV file and
// returns its path. This is the operator export: contacts are not masked.
func ExportCSV(exporter RequestExporter, start, end time.Time, dir string) (string, error) {
	rows, err := exporter.ExportRange(start, end)
	if err != nil {
		return "", fmt.Errorf("failed to collect export rows: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := fmt.Sprintf("requests_%s_%s.csv", start.Format("2006-01-02"), end.Format("2006-01-02"))
	path := filepath.Join(dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(exportHeader); err != nil {
		return "", fmt.Errorf("failed to write export header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.CreatedAt, row.Direction, row.FromCurrency, row.ToCurrency,
			row.Amount, row.PaymentMethod, row.City, row.Urgency,
			row.Phone, row.Priority,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write export row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export file: %w", err)
	}
	return path, nil
}
