package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity indicates a non-positive quantity or one with more than
	// 20 integer digits or 8 decimal places.
	ErrInvalidQuantity = errors.New("quantity must be a positive number with at most 20 integer digits and 8 decimals")
	// ErrMissingPrice indicates incoming stock without a usable unit price.
	ErrMissingPrice = errors.New("unit price is required for incoming stock and must be a non-negative amount with at most 20 integer digits and 8 decimals")
	// ErrInvalidDirection indicates a movement that is neither INCOMING nor OUTGOING.
	ErrInvalidDirection = errors.New("direction must be INCOMING or OUTGOING")
	// ErrInvalidUnit indicates a unit of measure outside the supported set.
	ErrInvalidUnit = errors.New("unsupported unit of measure")
	// ErrInsufficientStock indicates an outgoing movement larger than the on-hand quantity.
	ErrInsufficientStock = errors.New("not enough stock")
	// ErrRecordNotFound indicates an unknown product id.
	ErrRecordNotFound = errors.New("stock record not found")
	// ErrIDGenerationExhausted indicates no unique product id could be generated.
	ErrIDGenerationExhausted = errors.New("failed to generate unique product id")
	// ErrDuplicateIdentifier indicates a product id that is already taken.
	ErrDuplicateIdentifier = errors.New("product id already exists")
	// ErrConcurrentModification indicates the record changed between load and save.
	ErrConcurrentModification = errors.New("stock record was modified concurrently")
	// ErrInvalidBatch indicates a bulk request outside the accepted size.
	ErrInvalidBatch = errors.New("bulk create accepts between 1 and 100 records")
)

// InsufficientStockError carries the amounts of a rejected outgoing movement.
type InsufficientStockError struct {
	ProductID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock to remove from %s: available %s, requested %s",
		e.ProductID, e.Available.String(), e.Requested.String())
}

// Is lets errors.Is match the ErrInsufficientStock sentinel.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
