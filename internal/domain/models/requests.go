package models

import "github.com/shopspring/decimal"

// MovementRequest asks the engine to move stock in or out of a record.
// UnitPrice is required for incoming stock and ignored for outgoing stock.
type MovementRequest struct {
	Direction    Direction        `json:"direction" binding:"required,direction"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unitPrice"`
	FromLocation string           `json:"fromLocation"`
	ToLocation   string           `json:"toLocation"`
	Purpose      string           `json:"purpose"`
	Reference    string           `json:"reference"`
	Notes        string           `json:"notes"`
}

// NewStockRecord carries the fields a record is created from. An empty
// ProductID asks the service to generate one.
type NewStockRecord struct {
	ProductID string `json:"productId" binding:"omitempty,max=64"`
	Product

	Quantity  decimal.Decimal  `json:"quantity"`
	Unit      Unit             `json:"unit" binding:"omitempty,stockunit"`
	Price     *decimal.Decimal `json:"price"`
	CreatedBy string           `json:"createdBy"`
}

// BulkCreateRequest wraps a batch of records created in one call.
type BulkCreateRequest struct {
	Records []NewStockRecord `json:"records" binding:"required,min=1,max=100,dive"`
}

// StockFilter narrows and pages record listings.
type StockFilter struct {
	Category  string           `form:"category"`
	Search    string           `form:"search"`
	MinPrice  *decimal.Decimal `form:"-"`
	MaxPrice  *decimal.Decimal `form:"-"`
	SortBy    string           `form:"sortBy"`
	SortOrder string           `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Page      int64            `form:"page" binding:"omitempty,min=1"`
	Limit     int64            `form:"limit" binding:"omitempty,min=1"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	TotalRecords int64 `json:"totalRecords"`
	TotalPages   int64 `json:"totalPages"`
	CurrentPage  int64 `json:"currentPage"`
	ItemsPerPage int64 `json:"itemsPerPage"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// StockPage is a page of records plus its pagination.
type StockPage struct {
	Records    []StockRecord `json:"records"`
	Pagination Pagination    `json:"pagination"`
}

// MovementHistory is the ledger view of a single record.
type MovementHistory struct {
	ProductID string     `json:"productId"`
	Name      string     `json:"name"`
	Movements []Movement `json:"movements"`
}
