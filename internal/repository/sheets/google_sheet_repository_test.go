package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

type recordingSheet struct {
	ranges []string
	rows   [][]interface{}
}

func (s *recordingSheet) WriteRow(_ context.Context, sheetRange string, values []interface{}) error {
	s.ranges = append(s.ranges, sheetRange)
	s.rows = append(s.rows, values)
	return nil
}

func TestValuationExporter_AppendSnapshot(t *testing.T) {
	sheet := &recordingSheet{}
	exporter := NewValuationExporter(sheet)

	snapshot := models.ValuationSnapshot{
		Date:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalRecords:  3,
		TotalQuantity: decimal.RequireFromString("74.5"),
		TotalValue:    decimal.RequireFromString("1300.456"),
		LowStock:      []models.LowStockItem{{ProductID: "NUT-000001-ABC"}},
		CreatedAt:     time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
	}
	require.NoError(t, exporter.AppendSnapshot(context.Background(), snapshot))

	require.Len(t, sheet.rows, 1)
	assert.Equal(t, "Valuation!A:F", sheet.ranges[0])
	assert.Equal(t, []interface{}{"2026-03-01", int64(3), "74.5", "1300.46", 1, "2026-03-01T20:00:00Z"}, sheet.rows[0])
}
