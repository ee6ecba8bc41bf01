package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether a movement adds stock to or removes stock from a record.
type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
)

// Valid reports whether d is a known movement direction.
func (d Direction) Valid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// Unit is the unit of measure a record is tracked in.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitCount    Unit = "nos"
	UnitLiter    Unit = "liters"
	UnitMeter    Unit = "meters"
	UnitBox      Unit = "boxes"
	UnitPack     Unit = "packs"
	UnitPiece    Unit = "units"
	UnitOther    Unit = "other"
)

// Valid reports whether u is a supported unit of measure.
func (u Unit) Valid() bool {
	switch u {
	case UnitKilogram, UnitCount, UnitLiter, UnitMeter, UnitBox, UnitPack, UnitPiece, UnitOther:
		return true
	}
	return false
}

// Currency tags monetary values. The warehouse runs on a single currency.
type Currency string

const CurrencyINR Currency = "INR"

// ReorderLevel is a descriptive urgency tag; nothing enforces it.
type ReorderLevel string

const (
	ReorderUrgent ReorderLevel = "Urgent"
	ReorderHigh   ReorderLevel = "High"
	ReorderNormal ReorderLevel = "Normal"
	ReorderLow    ReorderLevel = "Low"
)

// Valid reports whether l is a known reorder level.
func (l ReorderLevel) Valid() bool {
	switch l {
	case ReorderUrgent, ReorderHigh, ReorderNormal, ReorderLow:
		return true
	}
	return false
}

// Price is a unit price in the warehouse currency.
type Price struct {
	Value    decimal.Decimal `bson:"value" json:"value"`
	Currency Currency        `bson:"currency" json:"currency"`
}

// Movement is one stock-in or stock-out event. Movements are never edited once appended.
type Movement struct {
	ID           string          `bson:"id" json:"id"`
	Direction    Direction       `bson:"direction" json:"direction"`
	Quantity     decimal.Decimal `bson:"quantity" json:"quantity"`
	Unit         Unit            `bson:"unit" json:"unit"`
	UnitPrice    Price           `bson:"unitPrice" json:"unitPrice"`
	FromLocation string          `bson:"fromLocation" json:"fromLocation"`
	ToLocation   string          `bson:"toLocation" json:"toLocation"`
	Purpose      string          `bson:"purpose" json:"purpose"`
	Reference    string          `bson:"reference" json:"reference"`
	Notes        string          `bson:"notes" json:"notes"`
	Timestamp    time.Time       `bson:"timestamp" json:"timestamp"`
}

// Signed returns the movement quantity with incoming positive and outgoing negative.
func (m Movement) Signed() decimal.Decimal {
	if m.Direction == DirectionOutgoing {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// StockRecord is the per-product aggregate: on-hand quantity, running average
// price and the full movement history. One document per product.
type StockRecord struct {
	ProductID string `bson:"productId" json:"productId"`
	Product   `bson:",inline"`

	Quantity  decimal.Decimal `bson:"quantity" json:"quantity"`
	Unit      Unit            `bson:"unit" json:"unit"`
	Price     Price           `bson:"price" json:"price"`
	Movements []Movement      `bson:"movements" json:"movements"`

	CreatedBy      string    `bson:"createdBy" json:"createdBy"`
	LastModifiedBy string    `bson:"lastModifiedBy" json:"lastModifiedBy"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`

	// Version increments on every save and guards against lost updates.
	Version int64 `bson:"version" json:"version"`
}

// Clone returns a deep copy so callers can mutate it without touching r.
func (r StockRecord) Clone() StockRecord {
	out := r
	if r.Movements != nil {
		out.Movements = make([]Movement, len(r.Movements))
		copy(out.Movements, r.Movements)
	}
	if r.ReorderDate != nil {
		d := *r.ReorderDate
		out.ReorderDate = &d
	}
	return out
}

// Value is the stock value at the current average price.
func (r StockRecord) Value() decimal.Decimal {
	return r.Quantity.Mul(r.Price.Value)
}
