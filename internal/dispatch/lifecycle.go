// README: Mission lifecycle controller; launch, complete and cancel against the backend.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"fleetops/internal/api"
	"fleetops/internal/fleet"
)

// Backend is the slice of the REST client the controller mutates through.
type Backend interface {
	CreateTrip(ctx context.Context, req api.TripRequest) (fleet.Trip, error)
	CompleteTrip(ctx context.Context, tripID int, finalOdometer float64) (fleet.Trip, error)
	DeleteTrip(ctx context.Context, tripID int) error
}

// ConfirmFunc asks the operator to confirm an irrevocable action.
type ConfirmFunc func(prompt string) bool

var ErrCancelDeclined = errors.New("cancel declined")

// ErrSyncFailed wraps a refresh failure after the backend already
// acknowledged a mutation: the change took effect, only the local
// snapshot is stale.
var ErrSyncFailed = errors.New("snapshot sync failed")

// Controller orchestrates trip state transitions. It never mutates local
// state optimistically; every acknowledged mutation triggers a full
// snapshot refresh and the backend stays the source of truth.
type Controller struct {
	backend Backend
	cache   *Cache
	confirm ConfirmFunc
}

func NewController(backend Backend, cache *Cache, confirm ConfirmFunc) *Controller {
	return &Controller{backend: backend, cache: cache, confirm: confirm}
}

// Launch validates the candidate against the current snapshot. Any
// violation is returned without touching the network. A backend
// rejection comes back as *api.RejectionError with the backend's detail
// text intact; the caller keeps the form populated for correction.
func (c *Controller) Launch(ctx context.Context, cand Candidate) (Violations, error) {
	snap := c.cache.Snapshot()
	if v := Validate(cand, snap.Vehicles, snap.Drivers); len(v) > 0 {
		return v, nil
	}

	_, err := c.backend.CreateTrip(ctx, api.TripRequest{
		VehicleID:   cand.VehicleID,
		DriverID:    cand.DriverID,
		CargoWeight: cand.CargoWeight,
		Origin:      cand.Origin,
		Destination: cand.Destination,
	})
	if err != nil {
		return nil, err
	}
	return nil, c.refreshAfterMutation(ctx)
}

// Complete marks a Dispatched trip Completed. The final odometer is a
// required operator input; the backend records it on the vehicle.
func (c *Controller) Complete(ctx context.Context, tripID int, finalOdometer float64) error {
	if finalOdometer < 0 {
		return fmt.Errorf("final odometer must not be negative")
	}
	if _, err := c.backend.CompleteTrip(ctx, tripID, finalOdometer); err != nil {
		return err
	}
	return c.refreshAfterMutation(ctx)
}

// Cancel aborts a trip after interactive confirmation. Declining makes
// no backend call at all.
func (c *Controller) Cancel(ctx context.Context, tripID int) error {
	if c.confirm != nil && !c.confirm(fmt.Sprintf("Abort mission TRP-%04d? This cannot be undone.", tripID)) {
		return ErrCancelDeclined
	}
	if err := c.backend.DeleteTrip(ctx, tripID); err != nil {
		return err
	}
	return c.refreshAfterMutation(ctx)
}

func (c *Controller) refreshAfterMutation(ctx context.Context) error {
	if err := c.cache.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return nil
}
