package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product holds the descriptive catalog fields of a stock record. None of these
// influence quantity or price.
type Product struct {
	Name            string          `bson:"name" json:"name" binding:"required,max=100"`
	Category        string          `bson:"category" json:"category" binding:"required"`
	Brand           string          `bson:"brand" json:"brand" binding:"max=50"`
	Description     string          `bson:"description" json:"description" binding:"max=500"`
	Size            string          `bson:"size" json:"size"`
	Color           string          `bson:"color" json:"color"`
	Weight          decimal.Decimal `bson:"weight" json:"weight"`
	Dimensions      Dimensions      `bson:"dimensions" json:"dimensions"`
	Supplier        Supplier        `bson:"supplier" json:"supplier"`
	Location        Location        `bson:"location" json:"location"`
	Notes           string          `bson:"notes" json:"notes"`
	ReorderLevel    ReorderLevel    `bson:"reorderLevel" json:"reorderLevel" binding:"omitempty,reorderlevel"`
	ReorderDate     *time.Time      `bson:"reorderDate,omitempty" json:"reorderDate,omitempty"`
	ReorderQuantity decimal.Decimal `bson:"reorderQuantity" json:"reorderQuantity"`
}

// Dimensions of a single unit.
type Dimensions struct {
	Length decimal.Decimal `bson:"length" json:"length"`
	Width  decimal.Decimal `bson:"width" json:"width"`
	Height decimal.Decimal `bson:"height" json:"height"`
}

// Supplier contact details.
type Supplier struct {
	Name    string `bson:"name" json:"name"`
	Contact string `bson:"contact" json:"contact"`
	Email   string `bson:"email" json:"email" binding:"omitempty,email"`
	Phone   string `bson:"phone" json:"phone"`
}

// Location is a free-text storage address inside a warehouse.
type Location struct {
	Warehouse string `bson:"warehouse" json:"warehouse"`
	Aisle     string `bson:"aisle" json:"aisle"`
	Shelf     string `bson:"shelf" json:"shelf"`
	Bin       string `bson:"bin" json:"bin"`
}
