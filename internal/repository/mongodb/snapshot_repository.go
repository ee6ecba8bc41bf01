package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

const snapshotsCollection = "valuation_snapshots"

// SnapshotRepository stores daily valuation snapshots.
type SnapshotRepository struct {
	coll *mongo.Collection
}

// NewSnapshotRepository binds the snapshots collection.
func NewSnapshotRepository(client *Client) *SnapshotRepository {
	return &SnapshotRepository{coll: client.collection(snapshotsCollection)}
}

// SaveValuationSnapshot saves a valuation snapshot to the database.
func (r *SnapshotRepository) SaveValuationSnapshot(ctx context.Context, snapshot models.ValuationSnapshot) error {
	if _, err := r.coll.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert valuation snapshot: %w", err)
	}
	return nil
}
