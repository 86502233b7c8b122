package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpapi "lastmile/internal/adapters/in/http"
	"lastmile/internal/adapters/out/calculator"
	"lastmile/internal/adapters/out/kafka"
	"lastmile/internal/adapters/out/outbox"
	"lastmile/internal/adapters/out/postgres"
	"lastmile/internal/adapters/out/postgres/outboxrepo"
	"lastmile/internal/core/application/eventhandlers"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/jobs"
	"lastmile/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	outboxRelayTimeout = 10 * time.Second
	sweepTimeout       = time.Minute
)

// CompositionRoot builds the object graph of the service.
type CompositionRoot struct {
	cfg     Config
	gormDB  *gorm.DB
	logger  *slog.Logger
	metrics *metrics.Metrics

	uows       commands.UoWFactory
	drivers    commands.DriverUoWFactory
	completion services.RouteCompletionService
	calculator ports.RouteCalculator
	depot      kernel.GeoPoint
	publisher  ports.MessagePublisher
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger, m *metrics.Metrics) (*CompositionRoot, error) {
	depot, err := cfg.Depot()
	if err != nil {
		return nil, err
	}

	factory := postgres.NewGormUnitOfWorkFactory(gormDB, nil, postgres.WithMetrics(m))
	completion := services.NewRouteCompletionService(nil)
	registry := eventhandlers.NewRegistry(logger)
	eventhandlers.RegisterDeliveryReactions(registry, completion, m, logger)
	factory.SetDispatcher(registry)
	uows, drivers := commands.AdaptFactory(factory)

	calc, err := newCalculator(cfg, m, logger)
	if err != nil {
		return nil, err
	}

	root := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		logger:     logger,
		metrics:    m,
		uows:       uows,
		drivers:    drivers,
		completion: completion,
		calculator: calc,
		depot:      depot,
	}

	if len(cfg.KafkaBrokers) > 0 {
		root.publisher, err = kafka.NewPublisher(kafka.Config{
			Brokers:     cfg.KafkaBrokers,
			TopicPrefix: cfg.KafkaTopicPrefix,
		})
		if err != nil {
			return nil, err
		}
	}
	return root, nil
}

func newCalculator(cfg Config, m *metrics.Metrics, logger *slog.Logger) (ports.RouteCalculator, error) {
	switch cfg.RoutingProvider {
	case RoutingProviderORS:
		return calculator.NewORSCalculator(calculator.ORSConfig{
			BaseURL: cfg.ORSBaseURL,
			APIKey:  cfg.ORSAPIKey,
			Profile: cfg.ORSProfile,
		}, nil, m, logger)
	case RoutingProviderNearest:
		return calculator.NewNearestNeighborCalculator(m), nil
	default:
		return nil, fmt.Errorf("unknown routing provider %q", cfg.RoutingProvider)
	}
}

func (c *CompositionRoot) CreateCompleteRouteCommandHandler() commands.CompleteRouteCommandHandler {
	return commands.NewCompleteRouteCommandHandler(c.uows, c.completion)
}

func (c *CompositionRoot) CreatePlanRouteCommandHandler() commands.PlanRouteCommandHandler {
	return commands.NewPlanRouteCommandHandler(c.uows, c.calculator, c.depot, c.cfg.RoutingTimeout)
}

// Handlers returns every use case served over HTTP.
func (c *CompositionRoot) Handlers() httpapi.Handlers {
	return httpapi.Handlers{
		CreateBatch:    commands.NewCreateBatchCommandHandler(c.uows),
		CloseBatch:     commands.NewCloseBatchCommandHandler(c.uows),
		CreateDriver:   commands.NewCreateDriverCommandHandler(c.drivers),
		CreateOrder:    commands.NewCreateOrderCommandHandler(c.uows),
		AddOrderItem:   commands.NewAddOrderItemCommandHandler(c.uows),
		DeliverOrder:   commands.NewDeliverOrderCommandHandler(c.uows),
		FailOrder:      commands.NewFailOrderCommandHandler(c.uows),
		CancelOrder:    commands.NewCancelOrderCommandHandler(c.uows),
		ReportIncident: commands.NewReportIncidentCommandHandler(c.uows),
		CreateRoute:    commands.NewCreateRouteCommandHandler(c.uows),
		AssignDriver:   commands.NewAssignDriverCommandHandler(c.uows),
		PlanRoute:      c.CreatePlanRouteCommandHandler(),
		StartRoute:     commands.NewStartRouteCommandHandler(c.uows),
		CancelRoute:    commands.NewCancelRouteCommandHandler(c.uows),
		CompleteRoute:  c.CreateCompleteRouteCommandHandler(),

		GetAllDrivers:        queries.NewGetAllDriversQueryHandler(c.gormDB),
		GetRoute:             queries.NewGetRouteQueryHandler(c.gormDB),
		GetUndeliveredOrders: queries.NewGetUndeliveredOrdersQueryHandler(c.gormDB),
		GetActiveRouteByZone: queries.NewGetActiveRouteByZoneQueryHandler(c.gormDB),
	}
}

// NewEcho builds the HTTP server.
func (c *CompositionRoot) NewEcho(ctx context.Context) (*echo.Echo, error) {
	doc, err := httpapi.LoadOpenAPI(ctx)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	return httpapi.NewEcho(httpapi.NewServer(c.Handlers()), doc, c.logger, c.metrics)
}

// JobManager returns the background jobs. Without kafka brokers the outbox is
// only written, never relayed.
func (c *CompositionRoot) JobManager() (*jobs.JobManager, error) {
	background := []jobs.Job{
		jobs.NewRouteCompletionSweepJob(c.uows, c.CreateCompleteRouteCommandHandler(), sweepTimeout, c.logger),
	}

	if c.publisher == nil {
		c.logger.Warn("KAFKA_BROKERS is empty, outbox relay is disabled")
		return jobs.NewJobManager(background...), nil
	}

	relay, err := outbox.NewRelay(outboxrepo.NewGormOutboxRepository(c.gormDB), c.publisher,
		c.cfg.OutboxBatchSize, c.metrics, c.logger)
	if err != nil {
		return nil, err
	}
	background = append([]jobs.Job{jobs.NewOutboxRelayJob(relay, outboxRelayTimeout, c.logger)}, background...)
	return jobs.NewJobManager(background...), nil
}

// Close releases the broker producer and the database pool.
func (c *CompositionRoot) Close() error {
	var closeErrs []error
	if c.publisher != nil {
		closeErrs = append(closeErrs, c.publisher.Close())
	}
	if sqlDB, err := c.gormDB.DB(); err == nil {
		closeErrs = append(closeErrs, sqlDB.Close())
	} else {
		closeErrs = append(closeErrs, err)
	}
	return errors.Join(closeErrs...)
}
