package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/lock"
	"github.com/mamadbah2/stockledger/internal/service/movements"
)

// RecentRecordsLimit is how many newest records the stats summary lists.
const RecentRecordsLimit = 5

const (
	defaultPage  int64 = 1
	defaultLimit int64 = 10
	maxLimit     int64 = 100
	maxBatch           = 100
)

var sortFields = map[string]string{
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
	"name":      "name",
	"productId": "productId",
	"category":  "category",
	"quantity":  "quantity",
	"price":     "price.value",
}

// Repository is the persistence the inventory service needs. Implementations
// return models.ErrRecordNotFound, models.ErrDuplicateIdentifier and
// models.ErrConcurrentModification so callers can match them.
type Repository interface {
	Insert(ctx context.Context, record models.StockRecord) error
	InsertMany(ctx context.Context, records []models.StockRecord) error
	FindByProductID(ctx context.Context, productID string) (models.StockRecord, error)
	Exists(ctx context.Context, productID string) (bool, error)
	// Replace stores record only if the stored version still equals expectedVersion.
	Replace(ctx context.Context, record models.StockRecord, expectedVersion int64) error
	UpdateDetails(ctx context.Context, productID string, product models.Product, actor string) (models.StockRecord, error)
	Delete(ctx context.Context, productID string) error
	List(ctx context.Context, query ListQuery) ([]models.StockRecord, int64, error)
	Stats(ctx context.Context, lowStockThreshold decimal.Decimal) (models.StockStats, error)
}

// ListQuery is a normalized StockFilter with the sort field resolved to a
// stored field name.
type ListQuery struct {
	Category   string
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortField  string
	Descending bool
	Skip       int64
	Limit      int64
}

// Service owns stock records: creation, movement application, ledger reads,
// catalog details and statistics.
type Service struct {
	repo     Repository
	applier  *movements.Applier
	locker   lock.Locker
	lowStock decimal.Decimal
	logger   *zap.Logger
	genID    func() string
}

// NewService wires an inventory service.
func NewService(repository Repository, applier *movements.Applier, locker lock.Locker, lowStockThreshold decimal.Decimal, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &Service{
		repo:     repository,
		applier:  applier,
		locker:   locker,
		lowStock: lowStockThreshold,
		logger:   logger,
		genID:    GenerateProductID,
	}
}

// Create validates input and stores a new record with its initial movement.
func (s *Service) Create(ctx context.Context, input models.NewStockRecord, actor string) (models.StockRecord, error) {
	productID := strings.TrimSpace(input.ProductID)
	if productID != "" {
		exists, err := s.repo.Exists(ctx, productID)
		if err != nil {
			return models.StockRecord{}, fmt.Errorf("check product id %s: %w", productID, err)
		}
		if exists {
			return models.StockRecord{}, models.ErrDuplicateIdentifier
		}
	} else {
		generated, err := s.uniqueProductID(ctx, nil)
		if err != nil {
			return models.StockRecord{}, err
		}
		productID = generated
	}

	input.ProductID = productID
	record, err := s.applier.NewRecord(input, actor)
	if err != nil {
		return models.StockRecord{}, err
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		return models.StockRecord{}, fmt.Errorf("insert stock record %s: %w", productID, err)
	}

	s.logger.Info("stock record created",
		zap.String("product_id", record.ProductID),
		zap.String("quantity", record.Quantity.String()),
		zap.String("price", record.Price.Value.String()))

	return record, nil
}

// CreateBulk creates up to 100 records with generated ids. Every input is
// validated before anything is written.
func (s *Service) CreateBulk(ctx context.Context, inputs []models.NewStockRecord, actor string) ([]models.StockRecord, error) {
	if len(inputs) == 0 || len(inputs) > maxBatch {
		return nil, models.ErrInvalidBatch
	}

	taken := make(map[string]struct{}, len(inputs))
	records := make([]models.StockRecord, 0, len(inputs))

	for i, input := range inputs {
		productID, err := s.uniqueProductID(ctx, taken)
		if err != nil {
			return nil, err
		}
		taken[productID] = struct{}{}

		input.ProductID = productID
		record, err := s.applier.NewRecord(input, actor)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, record)
	}

	if err := s.repo.InsertMany(ctx, records); err != nil {
		return nil, fmt.Errorf("insert %d stock records: %w", len(records), err)
	}

	s.logger.Info("stock records created in bulk", zap.Int("count", len(records)))
	return records, nil
}

// ApplyMovement runs one movement against a record. Movements on the same
// product id are serialized by the locker and the save is conditional on the
// version that was loaded.
func (s *Service) ApplyMovement(ctx context.Context, productID string, req models.MovementRequest, actor string) (models.StockRecord, error) {
	unlock, err := s.locker.Lock(ctx, productID)
	if err != nil {
		return models.StockRecord{}, fmt.Errorf("lock stock record %s: %w", productID, err)
	}
	defer unlock()

	record, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return models.StockRecord{}, err
	}

	next, err := s.applier.Apply(record, req, actor)
	if err != nil {
		s.logger.Info("movement rejected",
			zap.String("product_id", productID),
			zap.String("direction", string(req.Direction)),
			zap.String("quantity", req.Quantity.String()),
			zap.Error(err))
		return models.StockRecord{}, err
	}
	next.Version = record.Version + 1

	if err := s.repo.Replace(ctx, next, record.Version); err != nil {
		return models.StockRecord{}, fmt.Errorf("save stock record %s: %w", productID, err)
	}

	s.logger.Info("movement applied",
		zap.String("product_id", productID),
		zap.String("direction", string(req.Direction)),
		zap.String("quantity", req.Quantity.String()),
		zap.String("new_quantity", next.Quantity.String()),
		zap.String("new_price", next.Price.Value.String()))

	return next, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, productID string) (models.StockRecord, error) {
	return s.repo.FindByProductID(ctx, productID)
}

// History returns the record's movements newest first.
func (s *Service) History(ctx context.Context, productID string) (models.MovementHistory, error) {
	record, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return models.MovementHistory{}, err
	}
	return models.MovementHistory{
		ProductID: record.ProductID,
		Name:      record.Name,
		Movements: movements.History(record),
	}, nil
}

// UpdateDetails replaces the descriptive catalog fields of a record.
func (s *Service) UpdateDetails(ctx context.Context, productID string, product models.Product, actor string) (models.StockRecord, error) {
	if product.ReorderLevel == "" {
		product.ReorderLevel = models.ReorderNormal
	}
	if actor == "" {
		actor = "admin"
	}
	record, err := s.repo.UpdateDetails(ctx, productID, product, actor)
	if err != nil {
		return models.StockRecord{}, err
	}
	s.logger.Info("stock record details updated", zap.String("product_id", productID))
	return record, nil
}

// Delete removes a record and its history.
func (s *Service) Delete(ctx context.Context, productID string) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	s.logger.Info("stock record deleted", zap.String("product_id", productID))
	return nil
}

// List returns one page of records matching filter.
func (s *Service) List(ctx context.Context, filter models.StockFilter) (models.StockPage, error) {
	query, page := normalize(filter)

	records, total, err := s.repo.List(ctx, query)
	if err != nil {
		return models.StockPage{}, fmt.Errorf("list stock records: %w", err)
	}

	totalPages := (total + query.Limit - 1) / query.Limit
	return models.StockPage{
		Records: records,
		Pagination: models.Pagination{
			TotalRecords: total,
			TotalPages:   totalPages,
			CurrentPage:  page,
			ItemsPerPage: query.Limit,
			HasNext:      page*query.Limit < total,
			HasPrev:      page > 1,
		},
	}, nil
}

// Stats summarizes the whole inventory.
func (s *Service) Stats(ctx context.Context) (models.StockStats, error) {
	stats, err := s.repo.Stats(ctx, s.lowStock)
	if err != nil {
		return models.StockStats{}, fmt.Errorf("compute stock stats: %w", err)
	}
	return stats, nil
}

func (s *Service) uniqueProductID(ctx context.Context, taken map[string]struct{}) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate := s.genID()
		if _, dup := taken[candidate]; dup {
			continue
		}
		exists, err := s.repo.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check generated product id: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		s.logger.Debug("generated product id collided", zap.String("product_id", candidate), zap.Int("attempt", attempt+1))
	}
	return "", models.ErrIDGenerationExhausted
}

func normalize(filter models.StockFilter) (ListQuery, int64) {
	page := filter.Page
	if page < 1 {
		page = defaultPage
	}
	limit := filter.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	field, ok := sortFields[filter.SortBy]
	if !ok {
		field = sortFields["createdAt"]
	}

	return ListQuery{
		Category:   strings.TrimSpace(filter.Category),
		Search:     strings.TrimSpace(filter.Search),
		MinPrice:   filter.MinPrice,
		MaxPrice:   filter.MaxPrice,
		SortField:  field,
		Descending: !strings.EqualFold(filter.SortOrder, "asc"),
		Skip:       (page - 1) * limit,
		Limit:      limit,
	}, page
}

// IsClientError reports whether err was caused by the request rather than by
// storage or infrastructure.
func IsClientError(err error) bool {
	for _, target := range []error{
		models.ErrInvalidQuantity,
		models.ErrMissingPrice,
		models.ErrInvalidDirection,
		models.ErrInsufficientStock,
		models.ErrRecordNotFound,
		models.ErrDuplicateIdentifier,
		models.ErrConcurrentModification,
		models.ErrInvalidBatch,
		models.ErrInvalidUnit,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
