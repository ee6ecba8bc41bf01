// Package sheets exports valuation snapshots to a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
)

const (
	valuationRange = "Valuation!A:F"
	dateLayout     = "2006-01-02"
)

// Appender is the one spreadsheet call the exporter needs.
type Appender interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// GoogleSheetRepository appends rows through the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ValuationExporter writes one summary row per valuation snapshot.
type ValuationExporter struct {
	sheet Appender
}

// NewValuationExporter wraps a sheet appender.
func NewValuationExporter(sheet Appender) *ValuationExporter {
	return &ValuationExporter{sheet: sheet}
}

// AppendSnapshot appends date, record count, quantity, value, low stock count
// and the export time.
func (e *ValuationExporter) AppendSnapshot(ctx context.Context, snapshot models.ValuationSnapshot) error {
	return e.sheet.WriteRow(ctx, valuationRange, snapshotRow(snapshot))
}

func snapshotRow(snapshot models.ValuationSnapshot) []interface{} {
	return []interface{}{
		snapshot.Date.Format(dateLayout),
		snapshot.TotalRecords,
		snapshot.TotalQuantity.String(),
		snapshot.TotalValue.StringFixed(2),
		len(snapshot.LowStock),
		snapshot.CreatedAt.Format(time.RFC3339),
	}
}
