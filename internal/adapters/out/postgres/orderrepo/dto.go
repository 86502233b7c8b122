// Package orderrepo maps the order aggregate to the orders and order_items tables.
package orderrepo

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is one row of the orders table. Delivery proof and incident are
// flattened into nullable columns.
type OrderDTO struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey"`
	BatchID               uuid.UUID      `gorm:"type:uuid;not null;index"`
	CustomerID            uuid.UUID      `gorm:"type:uuid;not null"`
	RouteID               *uuid.UUID     `gorm:"type:uuid;index"`
	DeliverySequence      *int           `gorm:"type:int"`
	Status                string         `gorm:"type:varchar(16);not null;index"`
	ScheduledDeliveryDate time.Time      `gorm:"not null"`
	Address               AddressDTO     `gorm:"embedded;embeddedPrefix:address_"`
	Location              LocationDTO    `gorm:"embedded;embeddedPrefix:location_"`
	Delivery              DeliveryDTO    `gorm:"embedded;embeddedPrefix:delivery_"`
	Incident              IncidentDTO    `gorm:"embedded;embeddedPrefix:incident_"`
	FailureReason         string         `gorm:"type:text"`
	CreatedAt             time.Time      `gorm:"not null"`
	Version               int            `gorm:"not null"`
	Items                 []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type AddressDTO struct {
	Street     string `gorm:"type:varchar(255);not null"`
	City       string `gorm:"type:varchar(255);not null"`
	PostalCode string `gorm:"type:varchar(32)"`
	Country    string `gorm:"type:varchar(64)"`
}

type LocationDTO struct {
	Lat float64 `gorm:"type:double precision;not null"`
	Lon float64 `gorm:"type:double precision;not null"`
}

// DeliveryDTO is all-null until the order is delivered.
type DeliveryDTO struct {
	DriverID *uuid.UUID `gorm:"type:uuid"`
	Lat      *float64   `gorm:"type:double precision"`
	Lon      *float64   `gorm:"type:double precision"`
	At       *time.Time
	Comments string `gorm:"type:text"`
	PhotoRef string `gorm:"type:varchar(512)"`
}

// IncidentDTO holds the latest incident report, if any.
type IncidentDTO struct {
	DriverID    *uuid.UUID `gorm:"type:uuid"`
	Type        string     `gorm:"type:varchar(32)"`
	Description string     `gorm:"type:text"`
	ReportedAt  *time.Time
}

// OrderItemDTO is one product line. Position keeps the line order stable.
type OrderItemDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position  int       `gorm:"type:int;not null"`
	Quantity  int       `gorm:"type:int;not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()
	id := s.ID.Google()

	dto := OrderDTO{
		ID:                    id,
		BatchID:               s.BatchID.Google(),
		CustomerID:            s.CustomerID.Google(),
		DeliverySequence:      s.DeliverySequence,
		Status:                s.Status.String(),
		ScheduledDeliveryDate: s.ScheduledDeliveryDate,
		Address: AddressDTO{
			Street:     s.Address.Street(),
			City:       s.Address.City(),
			PostalCode: s.Address.PostalCode(),
			Country:    s.Address.Country(),
		},
		Location: LocationDTO{
			Lat: s.Location.Latitude(),
			Lon: s.Location.Longitude(),
		},
		FailureReason: s.FailureReason,
		CreatedAt:     s.CreatedAt,
		Version:       s.Version,
		Items:         make([]OrderItemDTO, 0, len(s.Items)),
	}
	if s.RouteID != nil {
		routeID := s.RouteID.Google()
		dto.RouteID = &routeID
	}
	if d := s.Delivery; d != nil {
		driverID := d.DriverID().Google()
		lat, lon, at := d.Location().Latitude(), d.Location().Longitude(), d.DeliveredAt()
		dto.Delivery = DeliveryDTO{
			DriverID: &driverID,
			Lat:      &lat,
			Lon:      &lon,
			At:       &at,
			Comments: d.Comments(),
			PhotoRef: d.PhotoRef(),
		}
	}
	if i := s.Incident; i != nil {
		driverID := i.DriverID().Google()
		at := i.ReportedAt()
		dto.Incident = IncidentDTO{
			DriverID:    &driverID,
			Type:        i.Type().String(),
			Description: i.Description(),
			ReportedAt:  &at,
		}
	}
	for pos, item := range s.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			OrderID:   id,
			ProductID: item.ProductID().Google(),
			Position:  pos,
			Quantity:  item.Quantity(),
		})
	}
	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	ids, err := convertIDs(dto.ID, dto.BatchID, dto.CustomerID)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	address, err := order.NewAddress(dto.Address.Street, dto.Address.City, dto.Address.PostalCode, dto.Address.Country)
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Location.Lat, dto.Location.Lon)
	if err != nil {
		return nil, err
	}

	var routeID *kernel.UUID
	if dto.RouteID != nil {
		id, idErr := kernel.UUIDFromGoogle(*dto.RouteID)
		if idErr != nil {
			return nil, idErr
		}
		routeID = &id
	}

	delivery, err := deliveryToDomain(dto.Delivery)
	if err != nil {
		return nil, err
	}

	incident, err := incidentToDomain(dto.Incident)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		productID, idErr := kernel.UUIDFromGoogle(itemDTO.ProductID)
		if idErr != nil {
			return nil, idErr
		}
		item, itemErr := order.NewItem(productID, itemDTO.Quantity)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(order.Snapshot{
		ID:                    ids[0],
		BatchID:               ids[1],
		CustomerID:            ids[2],
		RouteID:               routeID,
		DeliverySequence:      dto.DeliverySequence,
		Status:                status,
		ScheduledDeliveryDate: dto.ScheduledDeliveryDate.UTC(),
		Address:               address,
		Location:              location,
		Items:                 items,
		Delivery:              delivery,
		Incident:              incident,
		FailureReason:         dto.FailureReason,
		CreatedAt:             dto.CreatedAt.UTC(),
		Version:               dto.Version,
	})
}

func deliveryToDomain(dto DeliveryDTO) (*order.DeliveryProof, error) {
	if dto.DriverID == nil {
		return nil, nil
	}
	if dto.Lat == nil || dto.Lon == nil || dto.At == nil {
		return nil, errIncompleteColumns("delivery")
	}

	driverID, err := kernel.UUIDFromGoogle(*dto.DriverID)
	if err != nil {
		return nil, err
	}
	location, err := kernel.NewGeoPoint(*dto.Lat, *dto.Lon)
	if err != nil {
		return nil, err
	}

	proof, err := order.NewDeliveryProof(driverID, location, *dto.At, dto.Comments, dto.PhotoRef)
	if err != nil {
		return nil, err
	}
	return &proof, nil
}

func incidentToDomain(dto IncidentDTO) (*order.Incident, error) {
	if dto.DriverID == nil {
		return nil, nil
	}
	if dto.ReportedAt == nil {
		return nil, errIncompleteColumns("incident")
	}

	driverID, err := kernel.UUIDFromGoogle(*dto.DriverID)
	if err != nil {
		return nil, err
	}
	incidentType, err := order.ParseIncidentType(dto.Type)
	if err != nil {
		return nil, err
	}

	incident, err := order.NewIncident(driverID, incidentType, dto.Description, *dto.ReportedAt)
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

func convertIDs(raw ...uuid.UUID) ([]kernel.UUID, error) {
	out := make([]kernel.UUID, len(raw))
	for i, id := range raw {
		converted, err := kernel.UUIDFromGoogle(id)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}
