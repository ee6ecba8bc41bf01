package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockOverview aggregates all records.
type StockOverview struct {
	TotalRecords  int64           `bson:"totalRecords" json:"totalRecords"`
	TotalQuantity decimal.Decimal `bson:"totalQuantity" json:"totalQuantity"`
	TotalValue    decimal.Decimal `bson:"totalValue" json:"totalValue"`
	AveragePrice  decimal.Decimal `bson:"averagePrice" json:"averagePrice"`
}

// CategoryStats aggregates records of one category.
type CategoryStats struct {
	Category      string          `bson:"_id" json:"category"`
	Count         int64           `bson:"count" json:"count"`
	TotalQuantity decimal.Decimal `bson:"totalQuantity" json:"totalQuantity"`
	TotalValue    decimal.Decimal `bson:"totalValue" json:"totalValue"`
}

// LowStockItem is a record whose quantity fell below the alert threshold.
type LowStockItem struct {
	ProductID    string          `bson:"productId" json:"productId"`
	Name         string          `bson:"name" json:"name"`
	Quantity     decimal.Decimal `bson:"quantity" json:"quantity"`
	Unit         Unit            `bson:"unit" json:"unit"`
	ReorderLevel ReorderLevel    `bson:"reorderLevel" json:"reorderLevel"`
}

// RecentRecord is one of the most recently created records.
type RecentRecord struct {
	ProductID string    `bson:"productId" json:"productId"`
	Name      string    `bson:"name" json:"name"`
	Category  string    `bson:"category" json:"category"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// StockStats is the summary served by the stats endpoint.
type StockStats struct {
	Overview   StockOverview   `json:"overview"`
	ByCategory []CategoryStats `json:"byCategory"`
	LowStock   []LowStockItem  `json:"lowStockAlerts"`
	Recent     []RecentRecord  `json:"recentProducts"`
}

// ValuationSnapshot is the daily inventory valuation stored for reporting.
type ValuationSnapshot struct {
	Date          time.Time       `bson:"date" json:"date"`
	TotalRecords  int64           `bson:"totalRecords" json:"totalRecords"`
	TotalQuantity decimal.Decimal `bson:"totalQuantity" json:"totalQuantity"`
	TotalValue    decimal.Decimal `bson:"totalValue" json:"totalValue"`
	ByCategory    []CategoryStats `bson:"byCategory" json:"byCategory"`
	LowStock      []LowStockItem  `bson:"lowStock" json:"lowStock"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
}
