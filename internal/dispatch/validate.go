// README: Pre-flight mission validation against the local snapshot; pure, no I/O.
package dispatch

import (
	"fmt"
	"time"

	"fleetops/internal/fleet"
)

// Candidate is a proposed mission as entered in the dispatch form.
type Candidate struct {
	VehicleID   int
	DriverID    int
	CargoWeight float64
	Origin      string
	Destination string
}

// Form field keys violations attach to.
const (
	FieldVehicle = "vehicle_id"
	FieldDriver  = "driver_id"
	FieldCargo   = "cargo_weight"
)

// Violations maps a form field to a human-readable reason the mission
// cannot launch. Empty means valid.
type Violations map[string]string

// Validate evaluates every rule against the supplied snapshots and
// collects all violations; it never short-circuits, because the form
// shows every problem at once. An id missing from the snapshot is not a
// violation here — the snapshot may be stale and the backend has the
// final word.
func Validate(c Candidate, vehicles []fleet.Vehicle, drivers []fleet.Driver) Violations {
	return validateAt(c, vehicles, drivers, time.Now())
}

func validateAt(c Candidate, vehicles []fleet.Vehicle, drivers []fleet.Driver, now time.Time) Violations {
	v := Violations{}

	var vehicle *fleet.Vehicle
	for i := range vehicles {
		if vehicles[i].ID == c.VehicleID {
			vehicle = &vehicles[i]
			break
		}
	}
	var driver *fleet.Driver
	for i := range drivers {
		if drivers[i].ID == c.DriverID {
			driver = &drivers[i]
			break
		}
	}

	if vehicle != nil && c.CargoWeight > vehicle.Capacity {
		v[FieldCargo] = fmt.Sprintf("Payload violation: %gkg exceeds %gkg limit", c.CargoWeight, vehicle.Capacity)
	}
	if driver != nil && driver.LicenseExpiry.Before(now) {
		v[FieldDriver] = "Compliance block: driver license expired"
	}
	if vehicle != nil && vehicle.Status != fleet.VehicleAvailable {
		v[FieldVehicle] = fmt.Sprintf("Asset locked: current state is %s", vehicle.Status)
	}
	return v
}
