package memory

import (
	"context"
	"sync"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// SnapshotRepository keeps valuation snapshots in memory.
type SnapshotRepository struct {
	mu        sync.Mutex
	snapshots []models.ValuationSnapshot
}

// NewSnapshotRepository builds an empty snapshot store.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{}
}

// SaveValuationSnapshot appends a snapshot.
func (r *SnapshotRepository) SaveValuationSnapshot(_ context.Context, snapshot models.ValuationSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

// Snapshots returns every stored snapshot in insertion order.
func (r *SnapshotRepository) Snapshots() []models.ValuationSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ValuationSnapshot(nil), r.snapshots...)
}
