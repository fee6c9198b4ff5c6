package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/willowmarket/willow-backend/pkg/db/models"
	"github.com/willowmarket/willow-backend/pkg/pagination"
)

// Repository defines persistence operations for the order ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	// UpdateGuarded applies updates only when the stored row still carries
	// expectedVersion. It returns the number of rows matched; zero means the
	// row is gone or was modified concurrently.
	UpdateGuarded(ctx context.Context, orderID uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error)
}
