package repository

import (
	"context"

	"query-desk/internal/domain"
)

// QueryRepository exposes persistence operations for submitted queries.
type QueryRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, msg *domain.QueryMessage) (int64, error)
	Get(ctx context.Context, id int64) (*domain.QueryMessage, error)
	List(ctx context.Context) ([]domain.QueryMessage, error)
	// Update applies only the fields set in patch and returns the number of rows touched.
	Update(ctx context.Context, id int64, patch domain.QueryPatch) (int64, error)
	// Delete returns the number of rows removed.
	Delete(ctx context.Context, id int64) (int64, error)
}
