package movements

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// History returns the movements of a record newest first. Movements sharing a
// timestamp keep reverse append order, so the later append comes first. The
// record's own slice is left untouched.
func History(record models.StockRecord) []models.Movement {
	out := make([]models.Movement, len(record.Movements))
	for i, m := range record.Movements {
		out[len(out)-1-i] = m
	}

	slices.SortStableFunc(out, func(a, b models.Movement) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	return out
}

// Balance returns the signed sum of all movement quantities. For a consistent
// record it equals the on-hand quantity.
func Balance(record models.StockRecord) decimal.Decimal {
	total := decimal.Zero
	for _, m := range record.Movements {
		total = total.Add(m.Signed())
	}
	return total
}
