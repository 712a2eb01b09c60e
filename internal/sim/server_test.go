// README: End-to-end tests: dispatch engine against the simulated backend.
package sim

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"fleetops/internal/api"
	"fleetops/internal/auth"
	"fleetops/internal/dispatch"
	"fleetops/internal/fleet"
)

type env struct {
	server     *Server
	client     *api.Client
	cache      *dispatch.Cache
	controller *dispatch.Controller
	confirm    bool
}

func setup(t *testing.T) *env {
	t.Helper()

	server := New("test-secret")
	server.Seed()
	server.AddAccount("dispatcher@fleetops.local", "dispatch", "Dispatcher")

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	session := auth.NewSession()
	client := api.New(ts.URL, session)

	ctx := context.Background()
	if err := client.Login(ctx, "dispatcher@fleetops.local", "dispatch"); err != nil {
		t.Fatalf("login: %v", err)
	}

	e := &env{server: server, client: client, cache: dispatch.NewCache(client), confirm: true}
	e.controller = dispatch.NewController(client, e.cache, func(string) bool { return e.confirm })
	if err := e.cache.Refresh(ctx); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	return e
}

func (e *env) vehicle(t *testing.T, id int) fleet.Vehicle {
	t.Helper()
	for _, v := range e.cache.Snapshot().Vehicles {
		if v.ID == id {
			return v
		}
	}
	t.Fatalf("vehicle %d not in snapshot", id)
	return fleet.Vehicle{}
}

func TestDispatchFlowHappyPath(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	violations, err := e.controller.Launch(ctx, dispatch.Candidate{
		VehicleID: 1, DriverID: 1, CargoWeight: 5000, Origin: "New York", Destination: "Boston",
	})
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected violations %v", violations)
	}

	snap := e.cache.Snapshot()
	if len(snap.Trips) != 1 || snap.Trips[0].Status != fleet.TripDispatched {
		t.Fatalf("trips after launch: %+v", snap.Trips)
	}
	if got := e.vehicle(t, 1).Status; got != fleet.VehicleOnTrip {
		t.Fatalf("vehicle status = %s, want %s", got, fleet.VehicleOnTrip)
	}
	if trip := snap.Trips[0]; trip.Driver == nil || trip.Driver.Name != "James Smith" {
		t.Fatalf("trip missing nested driver: %+v", trip)
	}
}

// Overweight cargo never leaves the client: the simulator sees no trip.
func TestDispatchRejectedLocally(t *testing.T) {
	e := setup(t)

	violations, err := e.controller.Launch(context.Background(), dispatch.Candidate{
		VehicleID: 1, DriverID: 1, CargoWeight: 99999, Origin: "New York", Destination: "Boston",
	})
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if _, ok := violations[dispatch.FieldCargo]; !ok {
		t.Fatalf("expected cargo violation, got %v", violations)
	}
	if trips := e.cache.Snapshot().Trips; len(trips) != 0 {
		t.Fatalf("no trip may exist after a local rejection: %+v", trips)
	}
}

// A competing dispatcher takes the vehicle after our snapshot: local
// validation passes, the backend rejects, and its reason comes through
// verbatim.
func TestDispatchStaleSnapshotRace(t *testing.T) {
	e := setup(t)

	e.server.SetVehicleStatus(1, fleet.VehicleOnTrip)

	violations, err := e.controller.Launch(context.Background(), dispatch.Candidate{
		VehicleID: 1, DriverID: 1, CargoWeight: 5000, Origin: "New York", Destination: "Boston",
	})
	if violations != nil {
		t.Fatalf("stale snapshot must pass local validation, got %v", violations)
	}
	var rej *api.RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	if rej.Detail != "Vehicle is currently On Trip" {
		t.Fatalf("detail = %q, want the backend's reason verbatim", rej.Detail)
	}
}

func TestCompleteRecordsOdometerAndFreesAssets(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	if _, err := e.controller.Launch(ctx, dispatch.Candidate{
		VehicleID: 1, DriverID: 1, CargoWeight: 5000, Origin: "New York", Destination: "Boston",
	}); err != nil {
		t.Fatalf("launch: %v", err)
	}
	tripID := e.cache.Snapshot().Trips[0].ID

	if err := e.controller.Complete(ctx, tripID, 43000); err != nil {
		t.Fatalf("complete: %v", err)
	}

	snap := e.cache.Snapshot()
	if snap.Trips[0].Status != fleet.TripCompleted {
		t.Fatalf("trip status = %s", snap.Trips[0].Status)
	}
	v := e.vehicle(t, 1)
	if v.Status != fleet.VehicleAvailable || v.Odometer != 43000 {
		t.Fatalf("vehicle after complete: %+v", v)
	}

	// Completed is terminal.
	err := e.controller.Complete(ctx, tripID, 44000)
	var rej *api.RejectionError
	if !errors.As(err, &rej) || rej.Detail != "Only dispatched trips can be completed" {
		t.Fatalf("expected terminal-state rejection, got %v", err)
	}
}

func TestCancelFreesAssetsAfterConfirmation(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	if _, err := e.controller.Launch(ctx, dispatch.Candidate{
		VehicleID: 1, DriverID: 1, CargoWeight: 5000, Origin: "New York", Destination: "Boston",
	}); err != nil {
		t.Fatalf("launch: %v", err)
	}
	tripID := e.cache.Snapshot().Trips[0].ID

	e.confirm = false
	if err := e.controller.Cancel(ctx, tripID); !errors.Is(err, dispatch.ErrCancelDeclined) {
		t.Fatalf("expected decline, got %v", err)
	}
	if len(e.cache.Snapshot().Trips) != 1 {
		t.Fatal("declined cancel must leave the trip alone")
	}

	e.confirm = true
	if err := e.controller.Cancel(ctx, tripID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(e.cache.Snapshot().Trips) != 0 {
		t.Fatal("trip still present after cancel")
	}
	if got := e.vehicle(t, 1).Status; got != fleet.VehicleAvailable {
		t.Fatalf("vehicle not freed after cancel: %s", got)
	}
}

// Purging a completed record must not touch assets that a newer mission
// is holding.
func TestDeleteCompletedTripLeavesAssetsAlone(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	if _, err := e.controller.Launch(ctx, dispatch.Candidate{
		VehicleID: 1, DriverID: 1, CargoWeight: 5000, Origin: "New York", Destination: "Boston",
	}); err != nil {
		t.Fatalf("launch: %v", err)
	}
	tripID := e.cache.Snapshot().Trips[0].ID
	if err := e.controller.Complete(ctx, tripID, 43000); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// The same pair goes straight back out on a new mission.
	if _, err := e.controller.Launch(ctx, dispatch.Candidate{
		VehicleID: 1, DriverID: 1, CargoWeight: 4000, Origin: "Boston", Destination: "Albany",
	}); err != nil {
		t.Fatalf("second launch: %v", err)
	}

	if err := e.controller.Cancel(ctx, tripID); err != nil {
		t.Fatalf("delete completed trip: %v", err)
	}
	if got := e.vehicle(t, 1).Status; got != fleet.VehicleOnTrip {
		t.Fatalf("vehicle after purging the old record = %s, want %s", got, fleet.VehicleOnTrip)
	}
}

func TestMaintenanceAndFuelHistory(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	logs, err := e.client.MaintenanceLogs(ctx)
	if err != nil {
		t.Fatalf("maintenance: %v", err)
	}
	if len(logs) != 1 || logs[0].VehicleID != 3 || logs[0].ServiceType != "Brake Service" {
		t.Fatalf("unexpected maintenance logs %+v", logs)
	}

	fuel, err := e.client.FuelLogs(ctx)
	if err != nil {
		t.Fatalf("fuel: %v", err)
	}
	if len(fuel) != 1 || fuel[0].VehicleID != 1 || fuel[0].Liters != 210.5 {
		t.Fatalf("unexpected fuel logs %+v", fuel)
	}
}

func TestExpiredLicenseBlockedBeforeDispatch(t *testing.T) {
	e := setup(t)

	// Driver 3 is On Duty but seeded with a lapsed license; the local
	// validator flags it before any network call.
	violations, err := e.controller.Launch(context.Background(), dispatch.Candidate{
		VehicleID: 1, DriverID: 3, CargoWeight: 5000, Origin: "New York", Destination: "Boston",
	})
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if _, ok := violations[dispatch.FieldDriver]; !ok {
		t.Fatalf("expected driver violation, got %v", violations)
	}
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	server := New("test-secret")
	server.Seed()
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	session := auth.NewSession()
	session.SignIn("forged-token", auth.User{})
	client := api.New(ts.URL, session)

	if _, err := client.Vehicles(context.Background()); !errors.Is(err, auth.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestKPIsReflectFleetState(t *testing.T) {
	e := setup(t)

	kpis, err := e.client.KPIs(context.Background())
	if err != nil {
		t.Fatalf("kpis: %v", err)
	}
	// Seed: 4 vehicles, 1 On Trip, 1 In Shop.
	if kpis.TotalVehicles != 4 || kpis.ActiveFleet != 1 || kpis.MaintenanceAlerts != 1 {
		t.Fatalf("unexpected KPIs %+v", kpis)
	}
}
