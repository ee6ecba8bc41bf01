// Package memory keeps stock records in process memory. It backs the
// "memory" storage driver for local runs and the service tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
)

// StockRepository is a map-backed inventory.Repository. Records are cloned on
// the way in and out so callers never share state with the store.
type StockRepository struct {
	mu      sync.RWMutex
	records map[string]models.StockRecord
	now     func() time.Time
}

// NewStockRepository builds an empty repository.
func NewStockRepository() *StockRepository {
	return &StockRepository{
		records: make(map[string]models.StockRecord),
		now:     time.Now,
	}
}

// Insert stores a new record.
func (r *StockRepository) Insert(_ context.Context, record models.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.ProductID]; ok {
		return models.ErrDuplicateIdentifier
	}
	r.records[record.ProductID] = record.Clone()
	return nil
}

// InsertMany stores all records or none of them.
func (r *StockRepository) InsertMany(_ context.Context, records []models.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if _, ok := r.records[record.ProductID]; ok {
			return models.ErrDuplicateIdentifier
		}
		if _, ok := seen[record.ProductID]; ok {
			return models.ErrDuplicateIdentifier
		}
		seen[record.ProductID] = struct{}{}
	}
	for _, record := range records {
		r.records[record.ProductID] = record.Clone()
	}
	return nil
}

// FindByProductID returns a copy of the stored record.
func (r *StockRepository) FindByProductID(_ context.Context, productID string) (models.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[productID]
	if !ok {
		return models.StockRecord{}, models.ErrRecordNotFound
	}
	return record.Clone(), nil
}

// Exists reports whether productID is taken.
func (r *StockRepository) Exists(_ context.Context, productID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.records[productID]
	return ok, nil
}

// Replace swaps the stored record when its version still matches.
func (r *StockRepository) Replace(_ context.Context, record models.StockRecord, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.records[record.ProductID]
	if !ok {
		return models.ErrRecordNotFound
	}
	if current.Version != expectedVersion {
		return models.ErrConcurrentModification
	}
	r.records[record.ProductID] = record.Clone()
	return nil
}

// UpdateDetails replaces the catalog fields of a record.
func (r *StockRepository) UpdateDetails(_ context.Context, productID string, product models.Product, actor string) (models.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[productID]
	if !ok {
		return models.StockRecord{}, models.ErrRecordNotFound
	}
	record = record.Clone()
	record.Product = product
	record.LastModifiedBy = actor
	record.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
	record.Version++
	r.records[productID] = record
	return record.Clone(), nil
}

// Delete removes a record.
func (r *StockRepository) Delete(_ context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[productID]; !ok {
		return models.ErrRecordNotFound
	}
	delete(r.records, productID)
	return nil
}

// List filters, sorts and pages the stored records.
func (r *StockRepository) List(_ context.Context, query inventory.ListQuery) ([]models.StockRecord, int64, error) {
	r.mu.RLock()
	matched := make([]models.StockRecord, 0, len(r.records))
	for _, record := range r.records {
		if matches(record, query) {
			matched = append(matched, record.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b models.StockRecord) int {
		c := compareField(a, b, query.SortField)
		if c == 0 {
			c = strings.Compare(a.ProductID, b.ProductID)
		}
		if query.Descending {
			return -c
		}
		return c
	})

	total := int64(len(matched))
	start := min(query.Skip, total)
	end := min(start+query.Limit, total)
	return matched[start:end], total, nil
}

// Stats aggregates the stored records.
func (r *StockRepository) Stats(_ context.Context, lowStockThreshold decimal.Decimal) (models.StockStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := models.StockStats{
		ByCategory: []models.CategoryStats{},
		LowStock:   []models.LowStockItem{},
		Recent:     []models.RecentRecord{},
	}
	categories := make(map[string]*models.CategoryStats)
	priceSum := decimal.Zero

	for _, record := range r.records {
		value := record.Value()

		stats.Overview.TotalRecords++
		stats.Overview.TotalQuantity = stats.Overview.TotalQuantity.Add(record.Quantity)
		stats.Overview.TotalValue = stats.Overview.TotalValue.Add(value)
		priceSum = priceSum.Add(record.Price.Value)

		cat, ok := categories[record.Category]
		if !ok {
			cat = &models.CategoryStats{Category: record.Category}
			categories[record.Category] = cat
		}
		cat.Count++
		cat.TotalQuantity = cat.TotalQuantity.Add(record.Quantity)
		cat.TotalValue = cat.TotalValue.Add(value)

		if record.Quantity.LessThan(lowStockThreshold) {
			stats.LowStock = append(stats.LowStock, models.LowStockItem{
				ProductID:    record.ProductID,
				Name:         record.Name,
				Quantity:     record.Quantity,
				Unit:         record.Unit,
				ReorderLevel: record.ReorderLevel,
			})
		}
	}

	if stats.Overview.TotalRecords > 0 {
		stats.Overview.AveragePrice = priceSum.Div(decimal.NewFromInt(stats.Overview.TotalRecords))
	}
	for _, cat := range categories {
		stats.ByCategory = append(stats.ByCategory, *cat)
	}
	slices.SortFunc(stats.ByCategory, func(a, b models.CategoryStats) int {
		return strings.Compare(a.Category, b.Category)
	})
	slices.SortFunc(stats.LowStock, func(a, b models.LowStockItem) int {
		return a.Quantity.Cmp(b.Quantity)
	})

	for _, record := range r.records {
		stats.Recent = append(stats.Recent, models.RecentRecord{
			ProductID: record.ProductID,
			Name:      record.Name,
			Category:  record.Category,
			CreatedAt: record.CreatedAt,
		})
	}
	slices.SortFunc(stats.Recent, func(a, b models.RecentRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ProductID, a.ProductID)
	})
	if len(stats.Recent) > inventory.RecentRecordsLimit {
		stats.Recent = stats.Recent[:inventory.RecentRecordsLimit]
	}

	return stats, nil
}

func matches(record models.StockRecord, query inventory.ListQuery) bool {
	if query.Category != "" && !strings.EqualFold(query.Category, "All") && record.Category != query.Category {
		return false
	}
	if query.MinPrice != nil && record.Price.Value.LessThan(*query.MinPrice) {
		return false
	}
	if query.MaxPrice != nil && record.Price.Value.GreaterThan(*query.MaxPrice) {
		return false
	}
	if query.Search == "" {
		return true
	}

	needle := strings.ToLower(query.Search)
	for _, field := range []string{record.Name, record.ProductID, record.Brand, record.Description} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func compareField(a, b models.StockRecord, field string) int {
	switch field {
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "productId":
		return strings.Compare(a.ProductID, b.ProductID)
	case "category":
		return strings.Compare(a.Category, b.Category)
	case "quantity":
		return a.Quantity.Cmp(b.Quantity)
	case "price.value":
		return a.Price.Value.Cmp(b.Price.Value)
	default:
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	}
}
