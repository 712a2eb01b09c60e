// README: Deterministic demo data for the simulator.
package sim

import (
	"time"

	"fleetops/internal/fleet"
)

// Seed loads a small deterministic fleet: enough variety to exercise
// every dispatch rule (unavailable vehicles, off-duty drivers, an
// expired license) without randomness.
func (s *Server) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextYear := time.Now().AddDate(1, 0, 0)
	lastYear := time.Now().AddDate(-1, 0, 0)

	vehicles := []*fleet.Vehicle{
		{ID: 1, Name: "Unit Alpha", Plate: "FLT-1000", Type: fleet.TypeTruck, Capacity: 15000, Odometer: 42180, Status: fleet.VehicleAvailable, AcquisitionCost: 118000},
		{ID: 2, Name: "Unit Beta", Plate: "FLT-1001", Type: fleet.TypeVan, Capacity: 3500, Odometer: 15990, Status: fleet.VehicleAvailable, AcquisitionCost: 46000},
		{ID: 3, Name: "Unit Gamma", Plate: "FLT-1002", Type: fleet.TypeVan, Capacity: 3200, Odometer: 28740, Status: fleet.VehicleInShop, AcquisitionCost: 43500},
		{ID: 4, Name: "Unit Delta", Plate: "FLT-1003", Type: fleet.TypeBike, Capacity: 180, Odometer: 6120, Status: fleet.VehicleOnTrip, AcquisitionCost: 4200},
	}
	for _, v := range vehicles {
		s.vehicles[v.ID] = v
	}

	drivers := []*fleet.Driver{
		{ID: 1, Name: "James Smith", LicenseNumber: "DL-900000", LicenseCategory: fleet.TypeTruck,
			LicenseExpiry: fleet.NewDate(nextYear.Year(), nextYear.Month(), nextYear.Day()),
			SafetyScore:   94.5, Status: fleet.DriverOnDuty},
		{ID: 2, Name: "Mary Johnson", LicenseNumber: "DL-900001", LicenseCategory: fleet.TypeVan,
			LicenseExpiry: fleet.NewDate(nextYear.Year(), nextYear.Month(), nextYear.Day()),
			SafetyScore:   88.0, Status: fleet.DriverOffDuty},
		{ID: 3, Name: "John Williams", LicenseNumber: "DL-900002", LicenseCategory: fleet.TypeVan,
			LicenseExpiry: fleet.NewDate(lastYear.Year(), lastYear.Month(), lastYear.Day()),
			SafetyScore:   79.3, Status: fleet.DriverOnDuty},
		{ID: 4, Name: "Patricia Brown", LicenseNumber: "DL-900003", LicenseCategory: fleet.TypeBike,
			LicenseExpiry: fleet.NewDate(nextYear.Year(), nextYear.Month(), nextYear.Day()),
			SafetyScore:   97.1, Status: fleet.DriverOnTrip},
	}
	for _, d := range drivers {
		s.drivers[d.ID] = d
	}

	s.maintenance = []fleet.MaintenanceLog{
		{ID: 1, VehicleID: 3, ServiceType: "Brake Service", Description: "Front pads and rotors", Cost: 640,
			ServiceDate: fleet.NewDate(lastYear.Year(), lastYear.Month(), lastYear.Day()),
			NextDueDate: fleet.NewDate(nextYear.Year(), nextYear.Month(), nextYear.Day())},
	}
	s.fuel = []fleet.FuelLog{
		{ID: 1, VehicleID: 1, Liters: 210.5, Cost: 356.85, OdometerReading: 42100,
			Date: fleet.NewDate(lastYear.Year(), lastYear.Month(), lastYear.Day())},
	}
}
