// Package movements is the stock recomputation engine. It validates movement
// requests against a record, recomputes quantity and weighted-average price and
// appends the movement to the record's history. It performs no I/O: records go
// in, mutated copies come out.
package movements

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// PriceScale is the number of decimal places average prices are rounded to.
const PriceScale int32 = 8

const (
	defaultWarehouse    = "Main Warehouse"
	supplierLocation    = "Supplier"
	externalLocation    = "External"
	defaultPurpose      = "Stock adjustment"
	initialPurpose      = "Initial stock creation"
	initialNotes        = "Initial product setup"
	initialRefPrefix    = "INIT-"
	adjustmentRefPrefix = "REF-"
)

// Policy decides how outgoing stock affects the record price.
type Policy string

const (
	// PolicyProportional scales the price by the remaining share of stock and
	// records the removed value on the movement. An emptied record keeps its
	// last price.
	PolicyProportional Policy = "proportional"
	// PolicyUnchanged leaves the price alone and records it on the movement.
	PolicyUnchanged Policy = "unchanged"
)

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(value))); p {
	case PolicyProportional, PolicyUnchanged:
		return p, nil
	case "":
		return PolicyProportional, nil
	default:
		return "", fmt.Errorf("unknown outgoing price policy %q", value)
	}
}

// Applier applies movements to stock records under a single outgoing policy.
type Applier struct {
	policy Policy
	now    func() time.Time
	newID  func() string
}

// NewApplier builds an Applier. An empty policy falls back to PolicyProportional.
func NewApplier(policy Policy) *Applier {
	if policy == "" {
		policy = PolicyProportional
	}
	return &Applier{
		policy: policy,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Policy returns the outgoing price policy in effect.
func (a *Applier) Policy() Policy {
	return a.policy
}

// Apply validates req against record and returns the updated copy. The input
// record is never modified, so a rejected request leaves no trace.
func (a *Applier) Apply(record models.StockRecord, req models.MovementRequest, actor string) (models.StockRecord, error) {
	if err := validate(record, req); err != nil {
		return models.StockRecord{}, err
	}

	next := record.Clone()
	oldQty := record.Quantity
	oldPrice := record.Price.Value

	var applied decimal.Decimal

	switch req.Direction {
	case models.DirectionIncoming:
		applied = *req.UnitPrice
		newQty := oldQty.Add(req.Quantity)
		if oldQty.IsZero() {
			next.Price.Value = applied
		} else {
			total := oldQty.Mul(oldPrice).Add(req.Quantity.Mul(applied))
			next.Price.Value = total.DivRound(newQty, PriceScale)
		}
		next.Quantity = newQty
	case models.DirectionOutgoing:
		newQty := oldQty.Sub(req.Quantity)
		switch a.policy {
		case PolicyUnchanged:
			applied = oldPrice
		default:
			if !newQty.IsZero() {
				next.Price.Value = newQty.Mul(oldPrice).DivRound(oldQty, PriceScale)
			}
			applied = req.Quantity.Mul(oldPrice).DivRound(oldQty, PriceScale)
		}
		next.Quantity = newQty
	}

	now := a.timestamp()
	next.Movements = append(next.Movements, a.movement(record, req, applied, now))
	next.LastModifiedBy = actorOrDefault(actor)
	next.UpdatedAt = now

	return next, nil
}

// NewRecord builds a record from creation input. A positive initial quantity
// is recorded as a synthetic incoming movement from the supplier so the
// ledger always accounts for the full on-hand quantity.
func (a *Applier) NewRecord(input models.NewStockRecord, actor string) (models.StockRecord, error) {
	if input.ProductID == "" {
		return models.StockRecord{}, errors.New("product id must not be empty")
	}
	if input.Quantity.IsNegative() || !inBounds(input.Quantity) {
		return models.StockRecord{}, models.ErrInvalidQuantity
	}

	price := decimal.Zero
	switch {
	case input.Price != nil && (input.Price.IsNegative() || !inBounds(*input.Price)):
		return models.StockRecord{}, models.ErrMissingPrice
	case input.Price != nil:
		price = *input.Price
	case input.Quantity.IsPositive():
		return models.StockRecord{}, models.ErrMissingPrice
	}

	unit := input.Unit
	if unit == "" {
		unit = models.UnitCount
	}
	if !unit.Valid() {
		return models.StockRecord{}, fmt.Errorf("unit %q: %w", unit, models.ErrInvalidUnit)
	}

	product := input.Product
	if product.ReorderLevel == "" {
		product.ReorderLevel = models.ReorderNormal
	}

	createdBy := actorOrDefault(input.CreatedBy)
	if actor != "" {
		createdBy = actor
	}

	now := a.timestamp()
	record := models.StockRecord{
		ProductID:      input.ProductID,
		Product:        product,
		Quantity:       input.Quantity,
		Unit:           unit,
		Price:          models.Price{Value: price, Currency: models.CurrencyINR},
		Movements:      []models.Movement{},
		CreatedBy:      createdBy,
		LastModifiedBy: createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}

	if input.Quantity.IsPositive() {
		record.Movements = append(record.Movements, models.Movement{
			ID:           a.newID(),
			Direction:    models.DirectionIncoming,
			Quantity:     input.Quantity,
			Unit:         unit,
			UnitPrice:    record.Price,
			FromLocation: supplierLocation,
			ToLocation:   warehouseOf(record),
			Purpose:      initialPurpose,
			Reference:    initialRefPrefix + input.ProductID,
			Notes:        initialNotes,
			Timestamp:    now,
		})
	}

	return record, nil
}

func validate(record models.StockRecord, req models.MovementRequest) error {
	if !req.Direction.Valid() {
		return models.ErrInvalidDirection
	}
	if !req.Quantity.IsPositive() || !inBounds(req.Quantity) {
		return models.ErrInvalidQuantity
	}

	switch req.Direction {
	case models.DirectionIncoming:
		if req.UnitPrice == nil || req.UnitPrice.IsNegative() || !inBounds(*req.UnitPrice) {
			return models.ErrMissingPrice
		}
		if !inBounds(record.Quantity.Add(req.Quantity)) {
			return models.ErrInvalidQuantity
		}
	case models.DirectionOutgoing:
		if req.Quantity.GreaterThan(record.Quantity) {
			return &models.InsufficientStockError{
				ProductID: record.ProductID,
				Available: record.Quantity,
				Requested: req.Quantity,
			}
		}
	}
	return nil
}

func (a *Applier) movement(record models.StockRecord, req models.MovementRequest, applied decimal.Decimal, at time.Time) models.Movement {
	from, to := req.FromLocation, req.ToLocation
	if req.Direction == models.DirectionIncoming {
		from = orDefault(from, supplierLocation)
		to = orDefault(to, warehouseOf(record))
	} else {
		from = orDefault(from, warehouseOf(record))
		to = orDefault(to, externalLocation)
	}

	currency := record.Price.Currency
	if currency == "" {
		currency = models.CurrencyINR
	}

	return models.Movement{
		ID:           a.newID(),
		Direction:    req.Direction,
		Quantity:     req.Quantity,
		Unit:         record.Unit,
		UnitPrice:    models.Price{Value: applied, Currency: currency},
		FromLocation: from,
		ToLocation:   to,
		Purpose:      orDefault(req.Purpose, defaultPurpose),
		Reference:    orDefault(req.Reference, fmt.Sprintf("%s%d", adjustmentRefPrefix, at.UnixMilli())),
		Notes:        req.Notes,
		Timestamp:    at,
	}
}

// timestamp is truncated to milliseconds, the resolution the store keeps.
func (a *Applier) timestamp() time.Time {
	return a.now().UTC().Truncate(time.Millisecond)
}

func warehouseOf(record models.StockRecord) string {
	return orDefault(record.Location.Warehouse, defaultWarehouse)
}

func actorOrDefault(actor string) string {
	return orDefault(actor, "admin")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
