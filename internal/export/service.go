package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JaceG/dealbreaker-backend/internal/domain"
	"github.com/JaceG/dealbreaker-backend/internal/repository"

	"github.com/xuri/excelize/v2"
)

// Format selects the export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat interprets the format query parameter, defaulting to csv.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, raw)
	}
}

var exportHeaders = []string{
	"timestamp", "profileId", "profileName", "flagId", "flagTitle",
	"previousStatus", "newStatus", "previousCardType", "newCardType", "cardTypeChange",
	"reason", "creatorName", "creatorEmail", "userFullName", "userEmail", "attachments",
}

// Service renders filtered history as a downloadable table, newest first.
type Service struct {
	histories repository.HistoryRepository
}

// NewService creates an export service over the history store.
func NewService(histories repository.HistoryRepository) *Service {
	return &Service{histories: histories}
}

// Export writes the entries matching the filter to w in the requested format
// and returns the number of data rows written.
func (s *Service) Export(ctx context.Context, filter domain.AdvancedHistoryFilter, format Format, w io.Writer) (int, error) {
	entries, err := s.histories.Query(ctx, filter.Clauses())
	if err != nil {
		return 0, fmt.Errorf("failed to query history entries: %w", err)
	}

	switch format {
	case FormatCSV:
		return len(entries), writeCSV(w, entries)
	case FormatXLSX:
		return len(entries), writeXLSX(w, entries)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func writeCSV(w io.Writer, entries []domain.HistoryEntry) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(exportHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, entry := range entries {
		if err := csvWriter.Write(entryRow(entry)); err != nil {
			return fmt.Errorf("write entry row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, entries []domain.HistoryEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "History"
	f.SetSheetName("Sheet1", sheet)

	header := make([]any, len(exportHeaders))
	for i, name := range exportHeaders {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, entry := range entries {
		row := entryRow(entry)
		cells := make([]any, len(row))
		for j, value := range row {
			cells[j] = value
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write entry row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func entryRow(entry domain.HistoryEntry) []string {
	return []string{
		entry.Timestamp.Format("2006-01-02 15:04:05"),
		entry.ProfileID,
		entry.ProfileName,
		entry.FlagID,
		entry.FlagTitle,
		string(entry.PreviousStatus),
		string(entry.NewStatus),
		string(entry.PreviousCardType),
		string(entry.NewCardType),
		string(entry.CardTypeChange),
		entry.Reason,
		entry.CreatorName,
		entry.CreatorEmail,
		entry.UserFullName,
		entry.UserEmail,
		strings.Join(entry.Attachments, "; "),
	}
}
