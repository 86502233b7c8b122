// Package driver contains the Driver entity: the person assigned to drive a
// route, optionally bound to a delivery zone.
package driver

import (
	"errors"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/ddd"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// ErrDriverIsNotConstructed is returned when a Driver was not created through
// NewDriver or RestoreDriver.
var ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver or RestoreDriver")

// Driver is a plain entity without domain events; it embeds ddd.BaseAggregate
// for its persisted version only.
type Driver struct {
	ddd.BaseAggregate

	id        kernel.UUID
	name      string
	zoneID    *kernel.UUID
	createdAt time.Time

	guard guard.ConstructorGuard
}

// NewDriver creates a driver. zoneID is optional.
func NewDriver(id kernel.UUID, name string, zoneID *kernel.UUID, createdAt time.Time) (*Driver, error) {
	d := &Driver{
		createdAt: createdAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}
	if err := errors.Join(d.setID(id), d.setName(name), d.setZone(zoneID)); err != nil {
		return nil, err
	}
	return d, nil
}

// RestoreDriver rebuilds a persisted driver.
func RestoreDriver(id kernel.UUID, name string, zoneID *kernel.UUID, createdAt time.Time, version int) (*Driver, error) {
	d, err := NewDriver(id, name, zoneID, createdAt)
	if err != nil {
		return nil, err
	}
	d.createdAt = createdAt
	d.SetVersion(version)
	return d, nil
}

// Validate ensures the driver was built through a constructor.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) ID() kernel.UUID      { return d.id }
func (d *Driver) Name() string         { return d.name }
func (d *Driver) CreatedAt() time.Time { return d.createdAt }

// ZoneID returns the zone the driver works in, or nil.
func (d *Driver) ZoneID() *kernel.UUID {
	if d.zoneID == nil {
		return nil
	}
	z := *d.zoneID
	return &z
}

// MoveToZone binds the driver to zoneID; nil unbinds.
func (d *Driver) MoveToZone(zoneID *kernel.UUID) error {
	return d.setZone(zoneID)
}

// Rename replaces the display name.
func (d *Driver) Rename(name string) error {
	return d.setName(name)
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	d.name = name
	return nil
}

func (d *Driver) setZone(zoneID *kernel.UUID) error {
	if zoneID == nil {
		d.zoneID = nil
		return nil
	}
	if err := zoneID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("zoneID", err)
	}
	z := *zoneID
	d.zoneID = &z
	return nil
}
