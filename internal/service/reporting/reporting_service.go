// Package reporting builds the daily inventory valuation and fans it out to
// storage, the spreadsheet export and the low stock webhook.
package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/pkg/clients/alerts"
)

const dateLayout = "2006-01-02"

// StatsSource computes the current inventory statistics.
type StatsSource interface {
	Stats(ctx context.Context) (models.StockStats, error)
}

// SnapshotStore persists valuation snapshots.
type SnapshotStore interface {
	SaveValuationSnapshot(ctx context.Context, snapshot models.ValuationSnapshot) error
}

// Exporter publishes a snapshot outside the service, e.g. to a spreadsheet.
type Exporter interface {
	AppendSnapshot(ctx context.Context, snapshot models.ValuationSnapshot) error
}

// Service produces valuation snapshots. Exporter and alerter are optional.
type Service struct {
	stats    StatsSource
	store    SnapshotStore
	exporter Exporter
	alerter  alerts.Client
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(stats StatsSource, store SnapshotStore, exporter Exporter, alerter alerts.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		stats:    stats,
		store:    store,
		exporter: exporter,
		alerter:  alerter,
		now:      time.Now,
		logger:   logger,
	}
}

// GenerateDailySnapshot values the inventory for the day containing at and
// saves the result. Export and alert failures are logged, not returned.
func (s *Service) GenerateDailySnapshot(ctx context.Context, at time.Time) (models.ValuationSnapshot, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return models.ValuationSnapshot{}, fmt.Errorf("load stock stats: %w", err)
	}

	y, m, d := at.Date()
	snapshot := models.ValuationSnapshot{
		Date:          time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		TotalRecords:  stats.Overview.TotalRecords,
		TotalQuantity: stats.Overview.TotalQuantity,
		TotalValue:    stats.Overview.TotalValue,
		ByCategory:    stats.ByCategory,
		LowStock:      stats.LowStock,
		CreatedAt:     s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.store.SaveValuationSnapshot(ctx, snapshot); err != nil {
		return models.ValuationSnapshot{}, fmt.Errorf("save valuation snapshot: %w", err)
	}
	s.logger.Info("valuation snapshot saved",
		zap.String("date", snapshot.Date.Format(dateLayout)),
		zap.Int64("records", snapshot.TotalRecords),
		zap.String("total_value", snapshot.TotalValue.String()),
		zap.Int("low_stock", len(snapshot.LowStock)))

	if s.exporter != nil {
		if err := s.exporter.AppendSnapshot(ctx, snapshot); err != nil {
			s.logger.Warn("failed to export valuation snapshot", zap.Error(err))
		}
	}

	if s.alerter != nil && len(snapshot.LowStock) > 0 {
		if err := s.alerter.SendLowStockAlert(ctx, lowStockAlert(snapshot)); err != nil {
			s.logger.Warn("failed to send low stock alert", zap.Error(err))
		}
	}

	return snapshot, nil
}

// FormatSummary renders a snapshot as a short plain-text report.
func FormatSummary(snapshot models.ValuationSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Inventory valuation %s: %d records, %s units, value %s.",
		snapshot.Date.Format(dateLayout),
		snapshot.TotalRecords,
		snapshot.TotalQuantity.String(),
		snapshot.TotalValue.StringFixed(2))

	for _, cat := range snapshot.ByCategory {
		fmt.Fprintf(&b, "\n- %s: %d records, value %s", cat.Category, cat.Count, cat.TotalValue.StringFixed(2))
	}

	if len(snapshot.LowStock) == 0 {
		b.WriteString("\nNo items below the low stock threshold.")
		return b.String()
	}

	fmt.Fprintf(&b, "\nLow stock (%d):", len(snapshot.LowStock))
	for _, item := range snapshot.LowStock {
		fmt.Fprintf(&b, "\n- %s %s: %s %s", item.ProductID, item.Name, item.Quantity.String(), item.Unit)
	}
	return b.String()
}

func lowStockAlert(snapshot models.ValuationSnapshot) alerts.LowStockAlert {
	items := make([]alerts.LowStockItem, 0, len(snapshot.LowStock))
	for _, item := range snapshot.LowStock {
		items = append(items, alerts.LowStockItem{
			ProductID:    item.ProductID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			Unit:         string(item.Unit),
			ReorderLevel: string(item.ReorderLevel),
		})
	}
	return alerts.LowStockAlert{
		Event:   "low_stock",
		Date:    snapshot.Date.Format(dateLayout),
		Summary: FormatSummary(snapshot),
		Items:   items,
	}
}
