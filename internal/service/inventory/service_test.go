package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/lock"
	"github.com/mamadbah2/stockledger/internal/repository/memory"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
	"github.com/mamadbah2/stockledger/internal/service/movements"
)

func newService(t *testing.T) (*inventory.Service, *memory.StockRepository) {
	t.Helper()
	repo := memory.NewStockRepository()
	svc := inventory.NewService(repo, movements.NewApplier(movements.PolicyProportional), lock.NewLocalLocker(), decimal.NewFromInt(10), nil)
	return svc, repo
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func newInput(name, category, qty, price string) models.NewStockRecord {
	return models.NewStockRecord{
		Product:  models.Product{Name: name, Category: category},
		Quantity: dec(qty),
		Price:    ptr(dec(price)),
	}
}

func TestCreate_GeneratesProductID(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, newInput("Copper wire", "Electrical", "100", "10"), "clerk")
	require.NoError(t, err)

	assert.Regexp(t, inventory.ProductIDPattern, record.ProductID)
	assert.Equal(t, "clerk", record.CreatedBy)

	stored, err := repo.FindByProductID(ctx, record.ProductID)
	require.NoError(t, err)
	assert.Len(t, stored.Movements, 1)
}

func TestCreate_RejectsDuplicateProductID(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	input := newInput("Copper wire", "Electrical", "1", "1")
	input.ProductID = "WIRE-01"

	_, err := svc.Create(ctx, input, "")
	require.NoError(t, err)

	_, err = svc.Create(ctx, input, "")
	assert.ErrorIs(t, err, models.ErrDuplicateIdentifier)
}

func TestCreate_IDGenerationExhausted(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	calls := 0
	inventory.SetIDGenerator(svc, func() string {
		calls++
		return "AAA-000000-AAA"
	})

	_, err := svc.Create(ctx, newInput("First", "Misc", "1", "1"), "")
	require.NoError(t, err)

	calls = 0
	_, err = svc.Create(ctx, newInput("Second", "Misc", "1", "1"), "")
	assert.ErrorIs(t, err, models.ErrIDGenerationExhausted)
	assert.Equal(t, 10, calls)
}

func TestCreateBulk(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	records, err := svc.CreateBulk(ctx, []models.NewStockRecord{
		newInput("A", "Misc", "1", "1"),
		newInput("B", "Misc", "2", "2"),
	}, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].ProductID, records[1].ProductID)

	_, err = svc.CreateBulk(ctx, nil, "")
	assert.ErrorIs(t, err, models.ErrInvalidBatch)

	tooMany := make([]models.NewStockRecord, 101)
	_, err = svc.CreateBulk(ctx, tooMany, "")
	assert.ErrorIs(t, err, models.ErrInvalidBatch)

	_, err = svc.CreateBulk(ctx, []models.NewStockRecord{
		newInput("C", "Misc", "1", "1"),
		{Product: models.Product{Name: "D", Category: "Misc"}, Quantity: dec("5")},
	}, "")
	assert.ErrorIs(t, err, models.ErrMissingPrice)

	_, total, err := repo.List(ctx, inventory.ListQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "a rejected batch must not write anything")
}

func TestApplyMovement_PersistsAndBumpsVersion(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, newInput("Bolts", "Hardware", "100", "10"), "")
	require.NoError(t, err)

	updated, err := svc.ApplyMovement(ctx, created.ProductID, models.MovementRequest{
		Direction: models.DirectionIncoming,
		Quantity:  dec("50"),
		UnitPrice: ptr(dec("16")),
	}, "clerk")
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, updated.Version)
	assert.True(t, dec("12").Equal(updated.Price.Value))

	stored, err := repo.FindByProductID(ctx, created.ProductID)
	require.NoError(t, err)
	assert.True(t, dec("150").Equal(stored.Quantity))
	assert.Len(t, stored.Movements, 2)
	assert.Equal(t, "clerk", stored.LastModifiedBy)
}

func TestApplyMovement_RejectedLeavesStoreUnchanged(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, newInput("Bolts", "Hardware", "5", "10"), "")
	require.NoError(t, err)

	_, err = svc.ApplyMovement(ctx, created.ProductID, models.MovementRequest{
		Direction: models.DirectionOutgoing,
		Quantity:  dec("6"),
	}, "")
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	stored, err := repo.FindByProductID(ctx, created.ProductID)
	require.NoError(t, err)
	assert.Equal(t, created.Version, stored.Version)
	assert.Len(t, stored.Movements, 1)
	assert.True(t, dec("5").Equal(stored.Quantity))
}

func TestApplyMovement_UnknownRecord(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.ApplyMovement(context.Background(), "NOPE", models.MovementRequest{
		Direction: models.DirectionOutgoing,
		Quantity:  dec("1"),
	}, "")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestApplyMovement_ConcurrentOutgoingNeverOverdraws(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, newInput("Bolts", "Hardware", "10", "1"), "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0

	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyMovement(ctx, created.ProductID, models.MovementRequest{
				Direction: models.DirectionOutgoing,
				Quantity:  dec("1"),
			}, "")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, models.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 15, rejected)

	stored, err := repo.FindByProductID(ctx, created.ProductID)
	require.NoError(t, err)
	assert.True(t, stored.Quantity.IsZero())
	assert.Len(t, stored.Movements, 11)
	assert.True(t, movements.Balance(stored).Equal(stored.Quantity))
}

func TestApplyMovement_StaleVersionIsRejected(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, newInput("Bolts", "Hardware", "10", "1"), "")
	require.NoError(t, err)

	_, err = repo.UpdateDetails(ctx, created.ProductID, created.Product, "other")
	require.NoError(t, err)

	err = repo.Replace(ctx, created, created.Version)
	assert.ErrorIs(t, err, models.ErrConcurrentModification)
}

func TestHistory_NewestFirst(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, newInput("Bolts", "Hardware", "10", "1"), "")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		_, err := svc.ApplyMovement(ctx, created.ProductID, models.MovementRequest{
			Direction: models.DirectionOutgoing,
			Quantity:  dec("1"),
			Reference: fmt.Sprintf("OUT-%d", i),
		}, "")
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, created.ProductID)
	require.NoError(t, err)
	require.Len(t, history.Movements, 4)
	assert.Equal(t, "Bolts", history.Name)
	assert.Equal(t, "OUT-3", history.Movements[0].Reference)
	assert.Equal(t, "OUT-2", history.Movements[1].Reference)
	assert.Equal(t, "OUT-1", history.Movements[2].Reference)
	assert.Equal(t, "INIT-"+created.ProductID, history.Movements[3].Reference)
}

func TestUpdateDetailsAndDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, newInput("Bolts", "Hardware", "10", "1"), "")
	require.NoError(t, err)

	details := created.Product
	details.Name = "Stainless bolts"
	details.ReorderLevel = ""

	updated, err := svc.UpdateDetails(ctx, created.ProductID, details, "")
	require.NoError(t, err)
	assert.Equal(t, "Stainless bolts", updated.Name)
	assert.Equal(t, models.ReorderNormal, updated.ReorderLevel)
	assert.Equal(t, "admin", updated.LastModifiedBy)
	assert.True(t, created.Quantity.Equal(updated.Quantity))
	assert.Len(t, updated.Movements, 1)

	require.NoError(t, svc.Delete(ctx, created.ProductID))
	_, err = svc.Get(ctx, created.ProductID)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ProductID), models.ErrRecordNotFound)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		category := "Hardware"
		if i%3 == 0 {
			category = "Electrical"
		}
		_, err := svc.Create(ctx, newInput(fmt.Sprintf("Item %02d", i), category, "1", fmt.Sprint(i)), "")
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, models.StockFilter{Category: "Hardware", SortBy: "name", SortOrder: "asc", Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(10), page.Pagination.TotalRecords)
	assert.Equal(t, int64(3), page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
	require.Len(t, page.Records, 4)
	assert.Equal(t, "Item 07", page.Records[0].Name)

	page, err = svc.List(ctx, models.StockFilter{Search: "item 1", MinPrice: ptr(dec("12"))})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Pagination.TotalRecords)
	assert.Equal(t, int64(10), page.Pagination.ItemsPerPage)
	assert.Equal(t, int64(1), page.Pagination.CurrentPage)
}

func TestStats(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, newInput("Bolts", "Hardware", "100", "2"), "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, newInput("Nuts", "Hardware", "4", "0.5"), "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, newInput("Cable", "Electrical", "20", "3"), "")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Overview.TotalRecords)
	assert.True(t, dec("124").Equal(stats.Overview.TotalQuantity))
	assert.True(t, dec("262").Equal(stats.Overview.TotalValue))
	require.Len(t, stats.ByCategory, 2)
	assert.Equal(t, "Electrical", stats.ByCategory[0].Category)
	assert.Equal(t, int64(2), stats.ByCategory[1].Count)
	require.Len(t, stats.LowStock, 1)
	assert.Equal(t, "Nuts", stats.LowStock[0].Name)

	require.Len(t, stats.Recent, 3)
	names := []string{stats.Recent[0].Name, stats.Recent[1].Name, stats.Recent[2].Name}
	assert.ElementsMatch(t, []string{"Bolts", "Nuts", "Cable"}, names)
}

func TestStats_RecentIsNewestFirstAndCapped(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		record := models.StockRecord{
			ProductID: fmt.Sprintf("REC-00000%d-AAA", i),
			Product:   models.Product{Name: fmt.Sprintf("Item %d", i), Category: "Misc"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Version:   1,
		}
		require.NoError(t, repo.Insert(ctx, record))
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	require.Len(t, stats.Recent, inventory.RecentRecordsLimit)
	assert.Equal(t, "Item 6", stats.Recent[0].Name)
	assert.Equal(t, "Item 2", stats.Recent[4].Name)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, inventory.IsClientError(models.ErrInvalidQuantity))
	assert.True(t, inventory.IsClientError(fmt.Errorf("save stock record P: %w", models.ErrConcurrentModification)))
	assert.True(t, inventory.IsClientError(&models.InsufficientStockError{ProductID: "P"}))
	assert.False(t, inventory.IsClientError(models.ErrIDGenerationExhausted))
	assert.False(t, inventory.IsClientError(errors.New("connection reset")))
}
