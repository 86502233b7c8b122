// Package pgtest starts a disposable PostgreSQL container with the delivery
// schema for integration tests.
package pgtest

import (
	"context"
	"testing"
	"time"

	postgres_adapter "lastmile/internal/adapters/out/postgres"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	fake = faker.New()
	// Day is the scheduled delivery date of the fixtures.
	Day = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
)

// Database is a migrated PostgreSQL instance running in a container.
type Database struct {
	Container *postgres.PostgresContainer
	DB        *gorm.DB
}

// Start runs postgres:15-alpine and applies the schema.
func Start(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := postgres_adapter.Migrate(db); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return &Database{Container: container, DB: db}, nil
}

// Truncate empties every table.
func (d *Database) Truncate() error {
	return d.DB.Exec("TRUNCATE TABLE order_items, orders, route_stops, routes, batches, drivers, outbox_messages").Error
}

func (d *Database) Terminate(ctx context.Context) error {
	if d == nil || d.Container == nil {
		return nil
	}
	return d.Container.Terminate(ctx)
}

// NewOrder returns a Pending order on batchID with one item and a random
// address in central Berlin.
func NewOrder(t *testing.T, batchID kernel.UUID) *order.Order {
	t.Helper()
	a := fake.Address()
	address, err := order.NewAddress(a.StreetAddress(), a.City(), a.PostCode(), a.CountryAbbr())
	require.NoError(t, err)
	location := kernel.MustGeoPoint(52.48+fake.Float64(4, 0, 1)/10, 13.35+fake.Float64(4, 0, 1)/10)

	o, err := order.NewOrder(kernel.NewUUID(), batchID, kernel.NewUUID(), address, location, Day,
		time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, err)
	require.NoError(t, o.AddItem(kernel.NewUUID(), fake.IntBetween(1, 5)))
	return o
}
