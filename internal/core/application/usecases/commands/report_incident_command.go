package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrReportIncidentCommandIsNotConstructed = errors.New(
	"ReportIncidentCommand must be created via NewReportIncidentCommand constructor",
)

// ReportIncidentCommand records a problem a driver ran into with an order.
type ReportIncidentCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	driverID     kernel.UUID
	incidentType order.IncidentType
	description  string

	guard guard.ConstructorGuard
}

func NewReportIncidentCommand(
	orderID kernel.UUID,
	driverID kernel.UUID,
	incidentType order.IncidentType,
	description string,
) (ReportIncidentCommand, error) {
	var errDriver error
	if err := driverID.Validate(); err != nil {
		errDriver = errs.NewValueIsRequiredErrorWithCause("driverID", err)
	}
	if err := errors.Join(orderID.Validate(), errDriver, incidentType.Validate()); err != nil {
		return ReportIncidentCommand{}, err
	}

	return ReportIncidentCommand{
		orderID:      orderID,
		driverID:     driverID,
		incidentType: incidentType,
		description:  strings.TrimSpace(description),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c ReportIncidentCommand) Validate() error {
	return c.guard.Validate(ErrReportIncidentCommandIsNotConstructed)
}

func (c ReportIncidentCommand) OrderID() kernel.UUID             { return c.orderID }
func (c ReportIncidentCommand) DriverID() kernel.UUID            { return c.driverID }
func (c ReportIncidentCommand) IncidentType() order.IncidentType { return c.incidentType }
func (c ReportIncidentCommand) Description() string              { return c.description }
