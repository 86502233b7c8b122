// Package http exposes the delivery use cases over a JSON API built on echo.
package http

import (
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Handlers groups the use cases served by the API.
type Handlers struct {
	CreateBatch    commands.CreateBatchCommandHandler
	CloseBatch     commands.CloseBatchCommandHandler
	CreateDriver   commands.CreateDriverCommandHandler
	CreateOrder    commands.CreateOrderCommandHandler
	AddOrderItem   commands.AddOrderItemCommandHandler
	DeliverOrder   commands.DeliverOrderCommandHandler
	FailOrder      commands.FailOrderCommandHandler
	CancelOrder    commands.CancelOrderCommandHandler
	ReportIncident commands.ReportIncidentCommandHandler
	CreateRoute    commands.CreateRouteCommandHandler
	AssignDriver   commands.AssignDriverCommandHandler
	PlanRoute      commands.PlanRouteCommandHandler
	StartRoute     commands.StartRouteCommandHandler
	CancelRoute    commands.CancelRouteCommandHandler
	CompleteRoute  commands.CompleteRouteCommandHandler

	GetAllDrivers        queries.GetAllDriversQueryHandler
	GetRoute             queries.GetRouteQueryHandler
	GetUndeliveredOrders queries.GetUndeliveredOrdersQueryHandler
	GetActiveRouteByZone queries.GetActiveRouteByZoneQueryHandler
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	h Handlers
}

func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

// Register mounts the API routes on g.
func (s *Server) Register(g *echo.Group) {
	g.POST("/batches", s.CreateBatch)
	g.POST("/batches/:batchId/close", s.CloseBatch)

	g.GET("/drivers", s.GetAllDrivers)
	g.POST("/drivers", s.CreateDriver)

	g.GET("/orders", s.GetUndeliveredOrders)
	g.POST("/orders", s.CreateOrder)
	g.POST("/orders/:orderId/items", s.AddOrderItem)
	g.POST("/orders/:orderId/deliver", s.DeliverOrder)
	g.POST("/orders/:orderId/fail", s.FailOrder)
	g.POST("/orders/:orderId/cancel", s.CancelOrder)
	g.POST("/orders/:orderId/incidents", s.ReportIncident)

	g.POST("/routes", s.CreateRoute)
	g.GET("/routes/:routeId", s.GetRoute)
	g.POST("/routes/:routeId/driver", s.AssignDriver)
	g.POST("/routes/:routeId/plan", s.PlanRoute)
	g.POST("/routes/:routeId/start", s.StartRoute)
	g.POST("/routes/:routeId/cancel", s.CancelRoute)
	g.POST("/routes/:routeId/complete", s.CompleteRoute)

	g.GET("/zones/:zoneId/active-route", s.GetActiveRouteByZone)
}

// CreateBatch handles POST /api/v1/batches - opens a new batch.
func (s *Server) CreateBatch(c echo.Context) error {
	cmd, err := commands.NewCreateBatchCommand(kernel.NewUUID())
	if err != nil {
		return err
	}
	if err := s.h.CreateBatch.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, Created{ID: cmd.BatchID().Google()})
}

// CloseBatch handles POST /api/v1/batches/{batchId}/close.
func (s *Server) CloseBatch(c echo.Context) error {
	batchID, err := pathID(c, "batchId")
	if err != nil {
		return err
	}
	cmd, err := commands.NewCloseBatchCommand(batchID)
	if err != nil {
		return err
	}
	if err := s.h.CloseBatch.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateDriver handles POST /api/v1/drivers.
func (s *Server) CreateDriver(c echo.Context) error {
	var body NewDriver
	if err := bind(c, &body); err != nil {
		return err
	}
	zoneID, err := optionalID(body.ZoneID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateDriverCommand(kernel.NewUUID(), body.Name, zoneID)
	if err != nil {
		return err
	}
	if err := s.h.CreateDriver.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, Created{ID: cmd.DriverID().Google()})
}

// GetAllDrivers handles GET /api/v1/drivers.
func (s *Server) GetAllDrivers(c echo.Context) error {
	drivers, err := s.h.GetAllDrivers.Handle(c.Request().Context(), queries.NewGetAllDriversQuery())
	if err != nil {
		return err
	}

	response := make([]Driver, len(drivers))
	for i, d := range drivers {
		response[i] = Driver{
			ID:            d.ID.Google(),
			Name:          d.Name,
			ZoneID:        googleID(d.ZoneID),
			CreatedAt:     d.CreatedAt,
			ActiveRouteID: googleID(d.ActiveRouteID),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetUndeliveredOrders handles GET /api/v1/orders - lists orders waiting for
// delivery, optionally of one batch.
func (s *Server) GetUndeliveredOrders(c echo.Context) error {
	var batchID *openapi_types.UUID
	if err := runtime.BindQueryParameter("form", true, false, "batchId", c.QueryParams(), &batchID); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("batchId", err)
	}
	filter, err := optionalID(batchID)
	if err != nil {
		return err
	}

	orders, err := s.h.GetUndeliveredOrders.Handle(c.Request().Context(), queries.NewGetUndeliveredOrdersQuery(filter))
	if err != nil {
		return err
	}

	response := make([]OrderSummary, len(orders))
	for i, o := range orders {
		response[i] = orderSummaryOf(o)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var body NewOrder
	if err := bind(c, &body); err != nil {
		return err
	}

	batchID, err := optionalID(body.BatchID)
	if err != nil {
		return err
	}
	customerID, err := kernel.UUIDFromGoogle(body.CustomerID)
	if err != nil {
		return err
	}
	address, err := order.NewAddress(body.Address.Street, body.Address.City, body.Address.PostalCode, body.Address.Country)
	if err != nil {
		return err
	}
	location, err := body.Location.toDomain()
	if err != nil {
		return err
	}
	lines := make([]commands.OrderLine, 0, len(body.Items))
	for _, item := range body.Items {
		productID, idErr := kernel.UUIDFromGoogle(item.ProductID)
		if idErr != nil {
			return idErr
		}
		lines = append(lines, commands.OrderLine{ProductID: productID, Quantity: item.Quantity})
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), batchID, customerID, address, location,
		body.ScheduledDeliveryDate.Time, lines)
	if err != nil {
		return err
	}
	if err := s.h.CreateOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, Created{ID: cmd.OrderID().Google()})
}

// AddOrderItem handles POST /api/v1/orders/{orderId}/items.
func (s *Server) AddOrderItem(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	var body OrderLine
	if err := bind(c, &body); err != nil {
		return err
	}
	productID, err := kernel.UUIDFromGoogle(body.ProductID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAddOrderItemCommand(orderID, productID, body.Quantity)
	if err != nil {
		return err
	}
	if err := s.h.AddOrderItem.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeliverOrder handles POST /api/v1/orders/{orderId}/deliver.
func (s *Server) DeliverOrder(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	var body DeliveryProof
	if err := bind(c, &body); err != nil {
		return err
	}
	driverID, err := kernel.UUIDFromGoogle(body.DriverID)
	if err != nil {
		return err
	}
	location, err := body.Location.toDomain()
	if err != nil {
		return err
	}

	cmd, err := commands.NewDeliverOrderCommand(orderID, driverID, location, body.Comments, body.PhotoRef)
	if err != nil {
		return err
	}
	if err := s.h.DeliverOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// FailOrder handles POST /api/v1/orders/{orderId}/fail.
func (s *Server) FailOrder(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	var body FailOrder
	if err := bind(c, &body); err != nil {
		return err
	}

	cmd, err := commands.NewFailOrderCommand(orderID, body.Reason)
	if err != nil {
		return err
	}
	if err := s.h.FailOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	cmd, err := commands.NewCancelOrderCommand(orderID)
	if err != nil {
		return err
	}
	if err := s.h.CancelOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ReportIncident handles POST /api/v1/orders/{orderId}/incidents.
func (s *Server) ReportIncident(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	var body Incident
	if err := bind(c, &body); err != nil {
		return err
	}
	driverID, err := kernel.UUIDFromGoogle(body.DriverID)
	if err != nil {
		return err
	}
	incidentType, err := order.ParseIncidentType(body.Type)
	if err != nil {
		return err
	}

	cmd, err := commands.NewReportIncidentCommand(orderID, driverID, incidentType, body.Description)
	if err != nil {
		return err
	}
	if err := s.h.ReportIncident.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateRoute handles POST /api/v1/routes.
func (s *Server) CreateRoute(c echo.Context) error {
	var body NewRoute
	if err := bind(c, &body); err != nil {
		return err
	}
	batchID, err := kernel.UUIDFromGoogle(body.BatchID)
	if err != nil {
		return err
	}
	zoneID, err := optionalID(body.ZoneID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateRouteCommand(kernel.NewUUID(), batchID, zoneID, body.ScheduledDate.Time)
	if err != nil {
		return err
	}
	if err := s.h.CreateRoute.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, Created{ID: cmd.RouteID().Google()})
}

// GetRoute handles GET /api/v1/routes/{routeId}.
func (s *Server) GetRoute(c echo.Context) error {
	routeID, err := pathID(c, "routeId")
	if err != nil {
		return err
	}
	query, err := queries.NewGetRouteQuery(routeID)
	if err != nil {
		return err
	}

	route, err := s.h.GetRoute.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, routeOf(route))
}

// AssignDriver handles POST /api/v1/routes/{routeId}/driver.
func (s *Server) AssignDriver(c echo.Context) error {
	routeID, err := pathID(c, "routeId")
	if err != nil {
		return err
	}
	var body AssignDriver
	if err := bind(c, &body); err != nil {
		return err
	}
	driverID, err := kernel.UUIDFromGoogle(body.DriverID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignDriverCommand(routeID, driverID)
	if err != nil {
		return err
	}
	if err := s.h.AssignDriver.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PlanRoute handles POST /api/v1/routes/{routeId}/plan and returns the stops in
// visiting order.
func (s *Server) PlanRoute(c echo.Context) error {
	routeID, err := pathID(c, "routeId")
	if err != nil {
		return err
	}
	var body PlanRoute
	if err := bind(c, &body); err != nil {
		return err
	}
	orderIDs := make([]kernel.UUID, 0, len(body.OrderIDs))
	for _, id := range body.OrderIDs {
		orderID, idErr := kernel.UUIDFromGoogle(id)
		if idErr != nil {
			return idErr
		}
		orderIDs = append(orderIDs, orderID)
	}

	cmd, err := commands.NewPlanRouteCommand(routeID, orderIDs)
	if err != nil {
		return err
	}
	ordered, err := s.h.PlanRoute.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	stops := ordered.Stops()
	response := make([]PlannedStop, len(stops))
	for i, stop := range stops {
		response[i] = PlannedStop{OrderID: stop.WaypointID().Google(), Sequence: stop.Sequence()}
	}
	return c.JSON(http.StatusOK, response)
}

// StartRoute handles POST /api/v1/routes/{routeId}/start.
func (s *Server) StartRoute(c echo.Context) error {
	routeID, err := pathID(c, "routeId")
	if err != nil {
		return err
	}
	cmd, err := commands.NewStartRouteCommand(routeID)
	if err != nil {
		return err
	}
	if err := s.h.StartRoute.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelRoute handles POST /api/v1/routes/{routeId}/cancel.
func (s *Server) CancelRoute(c echo.Context) error {
	routeID, err := pathID(c, "routeId")
	if err != nil {
		return err
	}
	cmd, err := commands.NewCancelRouteCommand(routeID)
	if err != nil {
		return err
	}
	if err := s.h.CancelRoute.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CompleteRoute handles POST /api/v1/routes/{routeId}/complete. It reports
// whether this call completed the route; unfinished routes answer false.
func (s *Server) CompleteRoute(c echo.Context) error {
	routeID, err := pathID(c, "routeId")
	if err != nil {
		return err
	}
	cmd, err := commands.NewCompleteRouteCommand(routeID)
	if err != nil {
		return err
	}
	completed, err := s.h.CompleteRoute.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CompleteRouteResult{Completed: completed})
}

// GetActiveRouteByZone handles GET /api/v1/zones/{zoneId}/active-route.
func (s *Server) GetActiveRouteByZone(c echo.Context) error {
	zoneID, err := pathID(c, "zoneId")
	if err != nil {
		return err
	}
	query, err := queries.NewGetActiveRouteByZoneQuery(zoneID)
	if err != nil {
		return err
	}

	active, err := s.h.GetActiveRouteByZone.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ActiveRoute{
		RouteID:        active.RouteID.Google(),
		DriverID:       active.DriverID.Google(),
		StartedAt:      active.StartedAt,
		TotalStops:     active.TotalStops,
		FinishedStops:  active.FinishedStops,
		RemainingStops: active.RemainingStops,
	})
}

func pathID(c echo.Context, name string) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return kernel.UUIDFromGoogle(id)
}

func bind(c echo.Context, body any) error {
	if err := c.Bind(body); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	return c.Validate(body)
}
