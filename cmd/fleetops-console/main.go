// README: Interactive dispatcher console; hosts the dispatch engine against a real backend.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fleetops/internal/api"
	"fleetops/internal/auth"
	"fleetops/internal/config"
	"fleetops/internal/dispatch"
	"fleetops/internal/fleet"
	"fleetops/internal/routing"
)

// consoleRenderer draws the single route overlay as text. It stands in
// for the map widget; the coordinator guarantees it only ever sees the
// latest non-superseded result.
type consoleRenderer struct{}

func (consoleRenderer) RenderRoute(r routing.Route) {
	fmt.Printf("[route] %s — %s, %s\n", r.Summary, r.DistanceHuman, r.Duration)
}

func (consoleRenderer) ClearRoute() {
	fmt.Println("[route] cleared")
}

func (consoleRenderer) Notice(message string) {
	fmt.Println("[notice] " + message)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	provider, err := routing.NewGoogleProvider(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("route provider init: %v", err)
	}

	session := auth.NewSession()
	client := api.New(cfg.API.BaseURL, session)
	cache := dispatch.NewCache(client)

	stdin := bufio.NewReader(os.Stdin)
	confirm := func(prompt string) bool {
		fmt.Printf("%s [y/N]: ", prompt)
		line, _ := stdin.ReadString('\n')
		return strings.EqualFold(strings.TrimSpace(line), "y")
	}

	controller := dispatch.NewController(client, cache, confirm)
	preview := dispatch.NewPreviewCoordinator(provider, consoleRenderer{}, cfg.Preview.Debounce)
	defer preview.Close()

	ctx := context.Background()
	form := dispatch.Candidate{}

	fmt.Println("fleetops console — type 'help' for commands")
	for {
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			printHelp()
		case "login":
			if len(args) != 3 {
				fmt.Println("usage: login <email> <password>")
				continue
			}
			if err := client.Login(ctx, args[1], args[2]); err != nil {
				fmt.Println("login failed:", err)
				continue
			}
			if err := cache.Refresh(ctx); err != nil {
				fmt.Println("initial sync failed:", err)
				continue
			}
			fmt.Printf("signed in as %s\n", session.User().Email)
		case "vehicles":
			for _, v := range cache.Snapshot().Vehicles {
				fmt.Printf("  %3d  %-12s %-9s %-6s cap %.0fkg  odo %.0f  %s\n",
					v.ID, v.Name, v.Plate, v.Type, v.Capacity, v.Odometer, v.Status)
			}
		case "drivers":
			for _, d := range cache.Snapshot().Drivers {
				fmt.Printf("  %3d  %-18s %-10s %s  expiry %s (%s)  %s\n",
					d.ID, d.Name, d.LicenseNumber, d.LicenseCategory,
					d.LicenseExpiry.Format("2006-01-02"), d.ComplianceAt(nowUTC()), d.Status)
			}
		case "trips":
			for _, t := range cache.Snapshot().Trips {
				fmt.Printf("  TRP-%04d  %-11s %.0fkg  %s -> %s\n",
					t.ID, t.Status, t.CargoWeight, t.Origin, t.Destination)
			}
		case "origin":
			form.Origin = strings.TrimSpace(strings.TrimPrefix(line, "origin"))
			preview.SetOrigin(form.Origin)
		case "dest":
			form.Destination = strings.TrimSpace(strings.TrimPrefix(line, "dest"))
			preview.SetDestination(form.Destination)
		case "preview":
			trip, ok := findTrip(cache, args)
			if !ok {
				fmt.Println("usage: preview <trip-id>")
				continue
			}
			preview.PreviewNow(trip.Origin, trip.Destination)
		case "dispatch":
			if len(args) != 4 {
				fmt.Println("usage: dispatch <vehicle-id> <driver-id> <cargo-kg>")
				continue
			}
			form.VehicleID, _ = strconv.Atoi(args[1])
			form.DriverID, _ = strconv.Atoi(args[2])
			form.CargoWeight, _ = strconv.ParseFloat(args[3], 64)

			violations, err := controller.Launch(ctx, form)
			switch {
			case len(violations) > 0:
				for field, msg := range violations {
					fmt.Printf("  %s: %s\n", field, msg)
				}
			case errors.Is(err, auth.ErrSessionExpired):
				fmt.Println("session expired — sign in again")
			case errors.Is(err, dispatch.ErrSyncFailed):
				form = dispatch.Candidate{}
				fmt.Println("mission dispatched, but snapshot sync failed — run 'sync':", err)
			case err != nil:
				fmt.Println("dispatch rejected:", err)
			default:
				form = dispatch.Candidate{}
				fmt.Println("mission dispatched")
			}
		case "complete":
			if len(args) != 3 {
				fmt.Println("usage: complete <trip-id> <final-odometer>")
				continue
			}
			id, _ := strconv.Atoi(args[1])
			odo, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				fmt.Println("final odometer must be a number")
				continue
			}
			switch err := controller.Complete(ctx, id, odo); {
			case errors.Is(err, dispatch.ErrSyncFailed):
				fmt.Println("mission completed, but snapshot sync failed — run 'sync':", err)
			case err != nil:
				fmt.Println("complete failed:", err)
			default:
				fmt.Println("mission completed")
			}
		case "cancel":
			if len(args) != 2 {
				fmt.Println("usage: cancel <trip-id>")
				continue
			}
			id, _ := strconv.Atoi(args[1])
			err := controller.Cancel(ctx, id)
			switch {
			case errors.Is(err, dispatch.ErrCancelDeclined):
				fmt.Println("kept")
			case errors.Is(err, dispatch.ErrSyncFailed):
				fmt.Println("mission aborted, but snapshot sync failed — run 'sync':", err)
			case err != nil:
				fmt.Println("cancel failed:", err)
			default:
				fmt.Println("mission aborted")
			}
		case "maintenance":
			logs, err := client.MaintenanceLogs(ctx)
			if err != nil {
				fmt.Println("maintenance failed:", err)
				continue
			}
			for _, m := range logs {
				fmt.Printf("  %3d  vehicle %d  %-16s $%.2f  done %s  next due %s\n",
					m.ID, m.VehicleID, m.ServiceType, m.Cost,
					m.ServiceDate.Format("2006-01-02"), m.NextDueDate.Format("2006-01-02"))
			}
		case "fuel":
			logs, err := client.FuelLogs(ctx)
			if err != nil {
				fmt.Println("fuel failed:", err)
				continue
			}
			for _, f := range logs {
				fmt.Printf("  %3d  vehicle %d  %.1fL  $%.2f  odo %.0f  %s\n",
					f.ID, f.VehicleID, f.Liters, f.Cost, f.OdometerReading, f.Date.Format("2006-01-02"))
			}
		case "kpis":
			kpis, err := client.KPIs(ctx)
			if err != nil {
				fmt.Println("kpis failed:", err)
				continue
			}
			fmt.Printf("  fleet %d  active %d  in shop %d  utilization %.1f%%  pending cargo %d\n",
				kpis.TotalVehicles, kpis.ActiveFleet, kpis.MaintenanceAlerts, kpis.UtilizationRate, kpis.PendingCargo)
		case "sync":
			if err := cache.Refresh(ctx); err != nil {
				fmt.Println("sync failed:", err)
				continue
			}
			fmt.Println("snapshot refreshed")
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command; type 'help'")
		}
	}
}

func findTrip(cache *dispatch.Cache, args []string) (fleet.Trip, bool) {
	if len(args) != 2 {
		return fleet.Trip{}, false
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return fleet.Trip{}, false
	}
	for _, t := range cache.Snapshot().Trips {
		if t.ID == id {
			return t, true
		}
	}
	return fleet.Trip{}, false
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func printHelp() {
	fmt.Println(`commands:
  login <email> <password>            sign in and sync snapshots
  vehicles | drivers | trips          list current snapshot
  origin <text> / dest <text>         edit form fields (debounced route preview)
  preview <trip-id>                   preview an existing trip's route now
  dispatch <vehicle> <driver> <kg>    validate and launch the mission
  complete <trip-id> <odometer>       mark a dispatched mission completed
  cancel <trip-id>                    abort a mission (asks for confirmation)
  maintenance | fuel                  list service and fuel history
  kpis | sync | quit`)
}
