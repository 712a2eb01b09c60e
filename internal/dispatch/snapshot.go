// README: Request-scoped snapshot cache; full-replace refresh after every mutation.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"fleetops/internal/fleet"
)

// Fetcher lists backend-owned entities. Implemented by api.Client; tests
// supply doubles.
type Fetcher interface {
	Vehicles(ctx context.Context) ([]fleet.Vehicle, error)
	Drivers(ctx context.Context) ([]fleet.Driver, error)
	Trips(ctx context.Context) ([]fleet.Trip, error)
}

// Snapshot is a point-in-time copy of the backend registries. It is
// replaced wholesale, never patched in place.
type Snapshot struct {
	Vehicles []fleet.Vehicle
	Drivers  []fleet.Driver
	Trips    []fleet.Trip
}

// Cache holds the current snapshot. Each refresh carries a sequence
// number; a slow refresh that finishes after a newer one has landed is
// discarded, so the installed snapshot can only move forward.
type Cache struct {
	fetcher Fetcher

	mu      sync.RWMutex
	seq     uint64
	applied uint64
	snap    Snapshot
}

func NewCache(fetcher Fetcher) *Cache {
	return &Cache{fetcher: fetcher}
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Refresh refetches all three registries and installs them atomically.
// Any fetch error leaves the previous snapshot untouched.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	vehicles, err := c.fetcher.Vehicles(ctx)
	if err != nil {
		return fmt.Errorf("refresh vehicles: %w", err)
	}
	drivers, err := c.fetcher.Drivers(ctx)
	if err != nil {
		return fmt.Errorf("refresh drivers: %w", err)
	}
	trips, err := c.fetcher.Trips(ctx)
	if err != nil {
		return fmt.Errorf("refresh trips: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.applied {
		// A newer refresh already landed; this one is stale.
		return nil
	}
	c.applied = seq
	c.snap = Snapshot{Vehicles: vehicles, Drivers: drivers, Trips: trips}
	return nil
}
