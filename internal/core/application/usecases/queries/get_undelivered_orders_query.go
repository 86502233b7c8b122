package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrGetUndeliveredOrdersQueryIsNotConstructed = errors.New(
	"GetUndeliveredOrdersQuery must be created via NewGetUndeliveredOrdersQuery constructor",
)

// GetUndeliveredOrdersQuery lists the orders still waiting for delivery, that
// is Pending or InTransit, optionally restricted to one batch.
//
// Example:
//
//	query := NewGetUndeliveredOrdersQuery(nil)
//	orders, err := NewGetUndeliveredOrdersQueryHandler(db).Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list open orders: %w", err)
//	}
type GetUndeliveredOrdersQuery struct {
	batchID *kernel.UUID
	guard   guard.ConstructorGuard
}

// NewGetUndeliveredOrdersQuery creates the query. batchID may be nil for all
// batches.
func NewGetUndeliveredOrdersQuery(batchID *kernel.UUID) GetUndeliveredOrdersQuery {
	var id *kernel.UUID
	if batchID != nil {
		c := *batchID
		id = &c
	}
	return GetUndeliveredOrdersQuery{batchID: id, guard: guard.NewConstructorGuard()}
}

func (q GetUndeliveredOrdersQuery) BatchID() *kernel.UUID { return q.batchID }

func (q GetUndeliveredOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetUndeliveredOrdersQueryIsNotConstructed)
}

type GetUndeliveredOrdersQueryResponse struct {
	ID               kernel.UUID
	BatchID          kernel.UUID
	RouteID          *kernel.UUID
	DeliverySequence *int
	Status           string
	Street           string
	City             string
	Location         kernel.GeoPoint
	CreatedAt        time.Time
}
