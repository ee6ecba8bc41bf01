package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
)

const stocksCollection = "stocks"

// StockRepository keeps one document per product with its movements embedded,
// so every movement is saved by a single atomic document write.
type StockRepository struct {
	coll   *mongo.Collection
	now    func() time.Time
	logger *zap.Logger
}

// NewStockRepository binds the stocks collection.
func NewStockRepository(client *Client, logger *zap.Logger) *StockRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockRepository{
		coll:   client.collection(stocksCollection),
		now:    time.Now,
		logger: logger,
	}
}

// EnsureIndexes creates the unique product id index and the listing indexes.
func (r *StockRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("productId_unique")},
		{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("createdAt")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create stock indexes: %w", err)
	}
	return nil
}

// Insert stores a new record.
func (r *StockRepository) Insert(ctx context.Context, record models.StockRecord) error {
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateIdentifier
		}
		return fmt.Errorf("failed to insert stock record: %w", err)
	}
	return nil
}

// InsertMany stores a batch of new records.
func (r *StockRepository) InsertMany(ctx context.Context, records []models.StockRecord) error {
	docs := make([]interface{}, 0, len(records))
	for _, record := range records {
		docs = append(docs, record)
	}

	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateIdentifier
		}
		return fmt.Errorf("failed to insert stock records: %w", err)
	}
	return nil
}

// FindByProductID loads a record.
func (r *StockRepository) FindByProductID(ctx context.Context, productID string) (models.StockRecord, error) {
	var record models.StockRecord
	err := r.coll.FindOne(ctx, bson.M{"productId": productID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockRecord{}, models.ErrRecordNotFound
	}
	if err != nil {
		return models.StockRecord{}, fmt.Errorf("failed to load stock record %s: %w", productID, err)
	}
	return record, nil
}

// Exists reports whether productID is taken.
func (r *StockRepository) Exists(ctx context.Context, productID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"productId": productID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count stock records: %w", err)
	}
	return n > 0, nil
}

// Replace overwrites the document only while its version equals
// expectedVersion. A miss is reported as not found or as a concurrent change.
func (r *StockRepository) Replace(ctx context.Context, record models.StockRecord, expectedVersion int64) error {
	filter := bson.M{"productId": record.ProductID, "version": expectedVersion}

	res, err := r.coll.ReplaceOne(ctx, filter, record)
	if err != nil {
		return fmt.Errorf("failed to replace stock record %s: %w", record.ProductID, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	exists, err := r.Exists(ctx, record.ProductID)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrRecordNotFound
	}

	r.logger.Warn("stale stock record version",
		zap.String("product_id", record.ProductID),
		zap.Int64("expected_version", expectedVersion))
	return models.ErrConcurrentModification
}

type detailsUpdate struct {
	models.Product `bson:",inline"`
	LastModifiedBy string    `bson:"lastModifiedBy"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

// UpdateDetails sets the catalog fields and returns the updated record.
func (r *StockRepository) UpdateDetails(ctx context.Context, productID string, product models.Product, actor string) (models.StockRecord, error) {
	update := bson.M{
		"$set": detailsUpdate{
			Product:        product,
			LastModifiedBy: actor,
			UpdatedAt:      r.now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	if product.ReorderDate == nil {
		update["$unset"] = bson.M{"reorderDate": ""}
	}

	var record models.StockRecord
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"productId": productID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockRecord{}, models.ErrRecordNotFound
	}
	if err != nil {
		return models.StockRecord{}, fmt.Errorf("failed to update stock record %s: %w", productID, err)
	}
	return record, nil
}

// Delete removes a record.
func (r *StockRepository) Delete(ctx context.Context, productID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"productId": productID})
	if err != nil {
		return fmt.Errorf("failed to delete stock record %s: %w", productID, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

// List runs a filtered, sorted, paged query.
func (r *StockRepository) List(ctx context.Context, query inventory.ListQuery) ([]models.StockRecord, int64, error) {
	filter := listFilter(query)

	direction := 1
	if query.Descending {
		direction = -1
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: query.SortField, Value: direction}, {Key: "productId", Value: direction}}).
		SetSkip(query.Skip).
		SetLimit(query.Limit)

	cursor, err := r.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query stock records: %w", err)
	}

	records := []models.StockRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode stock records: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count stock records: %w", err)
	}
	return records, total, nil
}

// Stats aggregates totals, per-category figures, the low stock list and the
// newest records.
func (r *StockRepository) Stats(ctx context.Context, lowStockThreshold decimal.Decimal) (models.StockStats, error) {
	stockValue := bson.D{{Key: "$multiply", Value: bson.A{"$quantity", "$price.value"}}}

	stats := models.StockStats{
		ByCategory: []models.CategoryStats{},
		LowStock:   []models.LowStockItem{},
		Recent:     []models.RecentRecord{},
	}

	overviewCursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalRecords", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalQuantity", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
			{Key: "totalValue", Value: bson.D{{Key: "$sum", Value: stockValue}}},
			{Key: "averagePrice", Value: bson.D{{Key: "$avg", Value: "$price.value"}}},
		}}},
	})
	if err != nil {
		return models.StockStats{}, fmt.Errorf("failed to aggregate stock overview: %w", err)
	}
	var overview []models.StockOverview
	if err := overviewCursor.All(ctx, &overview); err != nil {
		return models.StockStats{}, fmt.Errorf("failed to decode stock overview: %w", err)
	}
	if len(overview) > 0 {
		stats.Overview = overview[0]
	}

	categoryCursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalQuantity", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
			{Key: "totalValue", Value: bson.D{{Key: "$sum", Value: stockValue}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return models.StockStats{}, fmt.Errorf("failed to aggregate category stats: %w", err)
	}
	if err := categoryCursor.All(ctx, &stats.ByCategory); err != nil {
		return models.StockStats{}, fmt.Errorf("failed to decode category stats: %w", err)
	}

	lowCursor, err := r.coll.Find(ctx,
		bson.M{"quantity": bson.M{"$lt": lowStockThreshold}},
		options.Find().
			SetProjection(bson.M{"productId": 1, "name": 1, "quantity": 1, "unit": 1, "reorderLevel": 1}).
			SetSort(bson.D{{Key: "quantity", Value: 1}}),
	)
	if err != nil {
		return models.StockStats{}, fmt.Errorf("failed to query low stock records: %w", err)
	}
	if err := lowCursor.All(ctx, &stats.LowStock); err != nil {
		return models.StockStats{}, fmt.Errorf("failed to decode low stock records: %w", err)
	}

	recentCursor, err := r.coll.Find(ctx, bson.M{},
		options.Find().
			SetProjection(bson.M{"productId": 1, "name": 1, "category": 1, "createdAt": 1}).
			SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "productId", Value: -1}}).
			SetLimit(inventory.RecentRecordsLimit),
	)
	if err != nil {
		return models.StockStats{}, fmt.Errorf("failed to query recent stock records: %w", err)
	}
	if err := recentCursor.All(ctx, &stats.Recent); err != nil {
		return models.StockStats{}, fmt.Errorf("failed to decode recent stock records: %w", err)
	}

	return stats, nil
}

func listFilter(query inventory.ListQuery) bson.M {
	filter := bson.M{}

	if query.Category != "" && !strings.EqualFold(query.Category, "All") {
		filter["category"] = query.Category
	}

	if query.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"productId": pattern},
			bson.M{"brand": pattern},
			bson.M{"description": pattern},
		}
	}

	if query.MinPrice != nil || query.MaxPrice != nil {
		priceRange := bson.M{}
		if query.MinPrice != nil {
			priceRange["$gte"] = *query.MinPrice
		}
		if query.MaxPrice != nil {
			priceRange["$lte"] = *query.MaxPrice
		}
		filter["price.value"] = priceRange
	}

	return filter
}
