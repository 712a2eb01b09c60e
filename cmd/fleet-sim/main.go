// README: Entry point for the in-memory fleet backend simulator.
package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"fleetops/internal/config"
	"fleetops/internal/sim"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.LoadSim()
	if err != nil {
		log.Fatal(err)
	}

	server := sim.New(cfg.Secret)
	server.Seed()
	server.AddAccount("dispatcher@fleetops.local", "dispatch", "Dispatcher")

	log.Printf("fleet-sim listening on %s (demo login dispatcher@fleetops.local / dispatch)", cfg.Addr)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
