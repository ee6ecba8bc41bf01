package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
)

// actorHeader names the user recorded as creator or last modifier.
const actorHeader = "X-User"

// StockService is the inventory behavior exposed over HTTP.
type StockService interface {
	Create(ctx context.Context, input models.NewStockRecord, actor string) (models.StockRecord, error)
	CreateBulk(ctx context.Context, inputs []models.NewStockRecord, actor string) ([]models.StockRecord, error)
	ApplyMovement(ctx context.Context, productID string, req models.MovementRequest, actor string) (models.StockRecord, error)
	Get(ctx context.Context, productID string) (models.StockRecord, error)
	History(ctx context.Context, productID string) (models.MovementHistory, error)
	UpdateDetails(ctx context.Context, productID string, product models.Product, actor string) (models.StockRecord, error)
	Delete(ctx context.Context, productID string) error
	List(ctx context.Context, filter models.StockFilter) (models.StockPage, error)
	Stats(ctx context.Context) (models.StockStats, error)
}

// StockHandler serves the /api/stocks resource.
type StockHandler struct {
	svc    StockService
	logger *zap.Logger
}

// NewStockHandler constructs the HTTP handler adapter.
func NewStockHandler(svc StockService, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, logger: logger}
}

// Create stores a new stock record.
func (h *StockHandler) Create(c *gin.Context) {
	var req models.NewStockRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create payload", zap.Error(err))
		respondBindError(c, err)
		return
	}

	record, err := h.svc.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		h.fail(c, "create stock record", err)
		return
	}

	respondOK(c, http.StatusCreated, record)
}

// CreateBulk stores a batch of records with generated ids.
func (h *StockHandler) CreateBulk(c *gin.Context) {
	var req models.BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid bulk payload", zap.Error(err))
		respondBindError(c, err)
		return
	}

	records, err := h.svc.CreateBulk(c.Request.Context(), req.Records, actor(c))
	if err != nil {
		h.fail(c, "bulk create stock records", err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"count": len(records), "records": records})
}

// List returns a filtered page of records.
func (h *StockHandler) List(c *gin.Context) {
	var filter models.StockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	var err error
	if filter.MinPrice, err = decimalQuery(c, "minPrice"); err != nil {
		respondBindError(c, err)
		return
	}
	if filter.MaxPrice, err = decimalQuery(c, "maxPrice"); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "list stock records", err)
		return
	}

	respondOK(c, http.StatusOK, page)
}

// Stats returns inventory totals and the low stock list.
func (h *StockHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, "compute stock stats", err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// Get returns one record.
func (h *StockHandler) Get(c *gin.Context) {
	record, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get stock record", err)
		return
	}
	respondOK(c, http.StatusOK, record)
}

// UpdateDetails replaces the descriptive fields of a record.
func (h *StockHandler) UpdateDetails(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		h.logger.Warn("invalid update payload", zap.Error(err))
		respondBindError(c, err)
		return
	}

	record, err := h.svc.UpdateDetails(c.Request.Context(), c.Param("id"), product, actor(c))
	if err != nil {
		h.fail(c, "update stock record", err)
		return
	}
	respondOK(c, http.StatusOK, record)
}

// ApplyMovement records stock coming in or going out.
func (h *StockHandler) ApplyMovement(c *gin.Context) {
	var req models.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid movement payload", zap.Error(err))
		respondBindError(c, err)
		return
	}

	record, err := h.svc.ApplyMovement(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		h.fail(c, "apply movement", err)
		return
	}
	respondOK(c, http.StatusOK, record)
}

// History returns the movements of a record, newest first.
func (h *StockHandler) History(c *gin.Context) {
	history, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "load movement history", err)
		return
	}
	respondOK(c, http.StatusOK, history)
}

// Delete removes a record.
func (h *StockHandler) Delete(c *gin.Context) {
	productID := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), productID); err != nil {
		h.fail(c, "delete stock record", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"productId": productID, "deleted": true})
}

func (h *StockHandler) fail(c *gin.Context, op string, err error) {
	status, body := errorStatus(err)
	if inventory.IsClientError(err) {
		h.logger.Debug(op+" rejected", zap.String("product_id", c.Param("id")), zap.Error(err))
	} else {
		h.logger.Error("failed to "+op, zap.String("product_id", c.Param("id")), zap.Error(err))
	}
	respondError(c, status, body)
}

func actor(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(actorHeader))
}

func decimalQuery(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &value, nil
}
