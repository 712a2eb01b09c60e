// README: Fleet domain model; vehicle, driver and trip records as served by the backend.
package fleet

import "time"

type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "Available"
	VehicleOnTrip    VehicleStatus = "On Trip"
	VehicleInShop    VehicleStatus = "In Shop"
	VehicleRetired   VehicleStatus = "Retired"
)

type VehicleType string

const (
	TypeTruck VehicleType = "Truck"
	TypeVan   VehicleType = "Van"
	TypeBike  VehicleType = "Bike"
)

type DriverStatus string

const (
	DriverOnDuty    DriverStatus = "On Duty"
	DriverOffDuty   DriverStatus = "Off Duty"
	DriverOnTrip    DriverStatus = "On Trip"
	DriverSuspended DriverStatus = "Suspended"
)

type TripStatus string

const (
	TripDraft      TripStatus = "Draft"
	TripDispatched TripStatus = "Dispatched"
	TripCompleted  TripStatus = "Completed"
	TripCancelled  TripStatus = "Cancelled"
)

type Vehicle struct {
	ID              int           `json:"id"`
	Name            string        `json:"name"`
	Plate           string        `json:"plate"`
	Type            VehicleType   `json:"vehicle_type"`
	Capacity        float64       `json:"capacity"`
	Odometer        float64       `json:"odometer"`
	Status          VehicleStatus `json:"status"`
	AcquisitionCost float64       `json:"acquisition_cost"`
}

type Driver struct {
	ID              int          `json:"id"`
	Name            string       `json:"name"`
	LicenseNumber   string       `json:"license_number"`
	LicenseCategory VehicleType  `json:"license_category"`
	LicenseExpiry   Date         `json:"license_expiry"`
	SafetyScore     float64      `json:"safety_score"`
	Status          DriverStatus `json:"status"`
}

type Trip struct {
	ID          int        `json:"id"`
	VehicleID   int        `json:"vehicle_id"`
	DriverID    int        `json:"driver_id"`
	CargoWeight float64    `json:"cargo_weight"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Status      TripStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Vehicle     *Vehicle   `json:"vehicle,omitempty"`
	Driver      *Driver    `json:"driver,omitempty"`
}

type MaintenanceLog struct {
	ID          int     `json:"id"`
	VehicleID   int     `json:"vehicle_id"`
	ServiceType string  `json:"service_type"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	ServiceDate Date    `json:"service_date"`
	NextDueDate Date    `json:"next_due_date"`
}

type FuelLog struct {
	ID              int     `json:"id"`
	VehicleID       int     `json:"vehicle_id"`
	Liters          float64 `json:"liters"`
	Cost            float64 `json:"cost"`
	Date            Date    `json:"date"`
	OdometerReading float64 `json:"odometer_reading"`
}

// AllowedTransitions represents the one-directional trip state flow as code.
// Completed and Cancelled are terminal; there is no resurrecting a trip.
var AllowedTransitions = map[TripStatus][]TripStatus{
	TripDraft:      {TripDispatched, TripCancelled},
	TripDispatched: {TripCompleted, TripCancelled},
}

func CanTransition(from, to TripStatus) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
