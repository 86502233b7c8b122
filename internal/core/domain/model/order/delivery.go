package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
)

// DeliveryProof records who handed the order over, where and when.
// Comments and PhotoRef are optional and empty when not provided.
type DeliveryProof struct {
	driverID    kernel.UUID
	location    kernel.GeoPoint
	deliveredAt time.Time
	comments    string
	photoRef    string
}

// NewDeliveryProof validates the mandatory parts of a proof of delivery.
func NewDeliveryProof(
	driverID kernel.UUID,
	location kernel.GeoPoint,
	deliveredAt time.Time,
	comments string,
	photoRef string,
) (DeliveryProof, error) {
	var errAt error
	if deliveredAt.IsZero() {
		errAt = errs.NewValueIsRequiredError("deliveredAt")
	}
	if err := errors.Join(driverID.Validate(), location.Validate(), errAt); err != nil {
		return DeliveryProof{}, err
	}

	return DeliveryProof{
		driverID:    driverID,
		location:    location,
		deliveredAt: deliveredAt.UTC(),
		comments:    strings.TrimSpace(comments),
		photoRef:    strings.TrimSpace(photoRef),
	}, nil
}

func (d DeliveryProof) DriverID() kernel.UUID     { return d.driverID }
func (d DeliveryProof) Location() kernel.GeoPoint { return d.location }
func (d DeliveryProof) DeliveredAt() time.Time    { return d.deliveredAt }
func (d DeliveryProof) Comments() string          { return d.comments }
func (d DeliveryProof) PhotoRef() string          { return d.photoRef }

// IncidentType classifies a problem reported by a driver.
type IncidentType int

const (
	// IncidentUnknown is the zero value and never valid.
	IncidentUnknown IncidentType = iota
	// IncidentDamaged means the goods were damaged.
	IncidentDamaged
	// IncidentCustomerAbsent means nobody was available to receive the order.
	IncidentCustomerAbsent
	// IncidentAddressNotFound means the driver could not locate the address.
	IncidentAddressNotFound
	// IncidentRefused means the customer refused the delivery.
	IncidentRefused
	// IncidentOther covers everything else; the description carries the details.
	IncidentOther
)

func getIncidentTypeStrings() map[IncidentType]string {
	return map[IncidentType]string{
		IncidentUnknown:         "Unknown",
		IncidentDamaged:         "Damaged",
		IncidentCustomerAbsent:  "CustomerAbsent",
		IncidentAddressNotFound: "AddressNotFound",
		IncidentRefused:         "Refused",
		IncidentOther:           "Other",
	}
}

func (t IncidentType) String() string {
	if s, ok := getIncidentTypeStrings()[t]; ok {
		return s
	}
	return "Unknown"
}

// Validate rejects IncidentUnknown and undefined values.
func (t IncidentType) Validate() error {
	if t < IncidentDamaged || t > IncidentOther {
		return errs.NewValueIsInvalidErrorWithCause("incidentType", fmt.Errorf("%d is not a valid incident type", t))
	}
	return nil
}

// ParseIncidentType converts a name such as "CustomerAbsent" to an IncidentType.
func ParseIncidentType(name string) (IncidentType, error) {
	for t, s := range getIncidentTypeStrings() {
		if s == name && t != IncidentUnknown {
			return t, nil
		}
	}
	return IncidentUnknown, errs.NewValueIsInvalidErrorWithCause("incidentType",
		fmt.Errorf("%q is not a valid incident type", name))
}

// Incident is a problem reported by the driver. Reporting an incident does not
// change the order status.
type Incident struct {
	driverID     kernel.UUID
	incidentType IncidentType
	description  string
	reportedAt   time.Time
}

// NewIncident validates an incident report.
func NewIncident(driverID kernel.UUID, incidentType IncidentType, description string, reportedAt time.Time) (Incident, error) {
	var errAt error
	if reportedAt.IsZero() {
		errAt = errs.NewValueIsRequiredError("reportedAt")
	}
	if err := errors.Join(driverID.Validate(), incidentType.Validate(), errAt); err != nil {
		return Incident{}, err
	}

	return Incident{
		driverID:     driverID,
		incidentType: incidentType,
		description:  strings.TrimSpace(description),
		reportedAt:   reportedAt.UTC(),
	}, nil
}

func (i Incident) DriverID() kernel.UUID { return i.driverID }
func (i Incident) Type() IncidentType    { return i.incidentType }
func (i Incident) Description() string   { return i.description }
func (i Incident) ReportedAt() time.Time { return i.reportedAt }

// MarshalText encodes the incident type by name.
func (t IncidentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
