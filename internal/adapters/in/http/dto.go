package http

import (
	"time"

	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type Created struct {
	ID uuid.UUID `json:"id"`
}

type Location struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

func (l Location) toDomain() (kernel.GeoPoint, error) {
	return kernel.NewGeoPoint(*l.Lat, *l.Lon)
}

func locationOf(p kernel.GeoPoint) Location {
	lat, lon := p.Latitude(), p.Longitude()
	return Location{Lat: &lat, Lon: &lon}
}

type Address struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderLine struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
}

type NewOrder struct {
	BatchID               *uuid.UUID         `json:"batchId"`
	CustomerID            uuid.UUID          `json:"customerId" validate:"required"`
	Address               Address            `json:"address"`
	Location              Location           `json:"location"`
	ScheduledDeliveryDate openapi_types.Date `json:"scheduledDeliveryDate"`
	Items                 []OrderLine        `json:"items" validate:"dive"`
}

type NewDriver struct {
	Name   string     `json:"name" validate:"required"`
	ZoneID *uuid.UUID `json:"zoneId"`
}

type NewRoute struct {
	BatchID       uuid.UUID          `json:"batchId" validate:"required"`
	ZoneID        *uuid.UUID         `json:"zoneId"`
	ScheduledDate openapi_types.Date `json:"scheduledDate"`
}

type DeliveryProof struct {
	DriverID uuid.UUID `json:"driverId" validate:"required"`
	Location Location  `json:"location"`
	Comments string    `json:"comments"`
	PhotoRef string    `json:"photoRef"`
}

type FailOrder struct {
	Reason string `json:"reason" validate:"required"`
}

type Incident struct {
	DriverID    uuid.UUID `json:"driverId" validate:"required"`
	Type        string    `json:"type" validate:"required"`
	Description string    `json:"description"`
}

type AssignDriver struct {
	DriverID uuid.UUID `json:"driverId" validate:"required"`
}

type PlanRoute struct {
	OrderIDs []uuid.UUID `json:"orderIds" validate:"required,min=1,dive,required"`
}

type Driver struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	ZoneID        *uuid.UUID `json:"zoneId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ActiveRouteID *uuid.UUID `json:"activeRouteId,omitempty"`
}

type PlannedStop struct {
	OrderID  uuid.UUID `json:"orderId"`
	Sequence int       `json:"sequence"`
}

type CompleteRouteResult struct {
	Completed bool `json:"completed"`
}

type OrderSummary struct {
	ID               uuid.UUID  `json:"id"`
	BatchID          uuid.UUID  `json:"batchId"`
	RouteID          *uuid.UUID `json:"routeId,omitempty"`
	DeliverySequence *int       `json:"deliverySequence,omitempty"`
	Status           string     `json:"status"`
	Street           string     `json:"street"`
	City             string     `json:"city"`
	Location         Location   `json:"location"`
}

type RouteStop struct {
	Sequence    int       `json:"sequence"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderStatus string    `json:"orderStatus"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	Location    Location  `json:"location"`
}

type Route struct {
	ID            uuid.UUID          `json:"id"`
	BatchID       uuid.UUID          `json:"batchId"`
	DriverID      *uuid.UUID         `json:"driverId,omitempty"`
	ZoneID        *uuid.UUID         `json:"zoneId,omitempty"`
	Status        string             `json:"status"`
	ScheduledDate openapi_types.Date `json:"scheduledDate"`
	StartedAt     *time.Time         `json:"startedAt,omitempty"`
	CompletedAt   *time.Time         `json:"completedAt,omitempty"`
	CancelledAt   *time.Time         `json:"cancelledAt,omitempty"`
	Stops         []RouteStop        `json:"stops"`
}

type ActiveRoute struct {
	RouteID        uuid.UUID `json:"routeId"`
	DriverID       uuid.UUID `json:"driverId"`
	StartedAt      time.Time `json:"startedAt"`
	TotalStops     int       `json:"totalStops"`
	FinishedStops  int       `json:"finishedStops"`
	RemainingStops int       `json:"remainingStops"`
}

func optionalID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	k, err := kernel.UUIDFromGoogle(*id)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func googleID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	g := id.Google()
	return &g
}

func orderSummaryOf(o queries.GetUndeliveredOrdersQueryResponse) OrderSummary {
	return OrderSummary{
		ID:               o.ID.Google(),
		BatchID:          o.BatchID.Google(),
		RouteID:          googleID(o.RouteID),
		DeliverySequence: o.DeliverySequence,
		Status:           o.Status,
		Street:           o.Street,
		City:             o.City,
		Location:         locationOf(o.Location),
	}
}

func routeOf(r queries.GetRouteQueryResponse) Route {
	stops := make([]RouteStop, len(r.Stops))
	for i, s := range r.Stops {
		stops[i] = RouteStop{
			Sequence:    s.Sequence,
			OrderID:     s.OrderID.Google(),
			OrderStatus: s.OrderStatus,
			Street:      s.Street,
			City:        s.City,
			Location:    locationOf(s.Location),
		}
	}
	return Route{
		ID:            r.ID.Google(),
		BatchID:       r.BatchID.Google(),
		DriverID:      googleID(r.DriverID),
		ZoneID:        googleID(r.ZoneID),
		Status:        r.Status,
		ScheduledDate: openapi_types.Date{Time: r.ScheduledDate},
		StartedAt:     r.StartedAt,
		CompletedAt:   r.CompletedAt,
		CancelledAt:   r.CancelledAt,
		Stops:         stops,
	}
}
