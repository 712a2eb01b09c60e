// README: In-memory fleet backend simulator; implements the REST contract the engine consumes.
package sim

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"fleetops/internal/fleet"
)

const tokenTTL = 30 * time.Minute

type account struct {
	id       int
	email    string
	password string
	role     string
}

// Server keeps the whole fleet in process memory behind one mutex.
// It is a development and test stand-in, deliberately not a storage
// design: restart and everything is gone.
type Server struct {
	secret []byte

	mu          sync.Mutex
	vehicles    map[int]*fleet.Vehicle
	drivers     map[int]*fleet.Driver
	trips       map[int]*fleet.Trip
	maintenance []fleet.MaintenanceLog
	fuel        []fleet.FuelLog
	accounts    map[string]*account
	nextTripID  int
	nextUserID  int
}

func New(secret string) *Server {
	return &Server{
		secret:     []byte(secret),
		vehicles:   make(map[int]*fleet.Vehicle),
		drivers:    make(map[int]*fleet.Driver),
		trips:      make(map[int]*fleet.Trip),
		accounts:   make(map[string]*account),
		nextTripID: 1,
		nextUserID: 1,
	}
}

// AddAccount registers demo credentials. Passwords are plain text on
// purpose; the simulator holds nothing worth protecting.
func (s *Server) AddAccount(email, password, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &account{id: s.nextUserID, email: email, password: password, role: role}
	s.nextUserID++
}

// SetVehicleStatus flips a vehicle out from under connected clients,
// simulating a competing dispatcher.
func (s *Server) SetVehicleStatus(vehicleID int, status fleet.VehicleStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.vehicles[vehicleID]; ok {
		v.Status = status
	}
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/auth/login/access-token", s.handleLogin)

	authed := r.Group("/", s.requireToken)
	authed.GET("/auth/me", s.handleMe)
	authed.GET("/vehicles/", s.handleListVehicles)
	authed.GET("/drivers/", s.handleListDrivers)
	authed.GET("/trips/", s.handleListTrips)
	authed.POST("/trips/", s.handleCreateTrip)
	authed.PATCH("/trips/:id/complete", s.handleCompleteTrip)
	authed.DELETE("/trips/:id", s.handleDeleteTrip)
	authed.GET("/maintenance/", s.handleListMaintenance)
	authed.GET("/fuel/", s.handleListFuel)
	authed.GET("/stats/dashboard-kpis", s.handleKPIs)

	return r
}

func reject(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func (s *Server) handleLogin(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")

	s.mu.Lock()
	acct, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok || acct.password != password {
		reject(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	claims := jwt.MapClaims{
		"sub": strconv.Itoa(acct.id),
		"exp": jwt.NewNumericDate(time.Now().Add(tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		reject(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (s *Server) requireToken(c *gin.Context) {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		reject(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	token, err := jwt.Parse(header[len(prefix):], func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		reject(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	sub, _ := token.Claims.GetSubject()
	c.Set("user_id", sub)
	c.Next()
}

func (s *Server) handleMe(c *gin.Context) {
	sub, _ := c.Get("user_id")
	id, _ := strconv.Atoi(sub.(string))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.id == id {
			c.JSON(http.StatusOK, gin.H{"id": acct.id, "email": acct.email, "role": acct.role})
			return
		}
	}
	reject(c, http.StatusUnauthorized, "Could not validate credentials")
}

func (s *Server) handleListVehicles(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fleet.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListDrivers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fleet.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListTrips(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fleet.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		out = append(out, s.renderTrip(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, out)
}

// renderTrip attaches nested vehicle/driver copies, caller holds s.mu.
func (s *Server) renderTrip(t *fleet.Trip) fleet.Trip {
	out := *t
	if v, ok := s.vehicles[t.VehicleID]; ok {
		cp := *v
		out.Vehicle = &cp
	}
	if d, ok := s.drivers[t.DriverID]; ok {
		cp := *d
		out.Driver = &cp
	}
	return out
}

type tripCreate struct {
	VehicleID   int     `json:"vehicle_id"`
	DriverID    int     `json:"driver_id"`
	CargoWeight float64 `json:"cargo_weight"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
}

func (s *Server) handleCreateTrip(c *gin.Context) {
	var req tripCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "Invalid trip payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[req.VehicleID]
	if !ok {
		reject(c, http.StatusNotFound, "Vehicle not found")
		return
	}
	if vehicle.Status != fleet.VehicleAvailable {
		reject(c, http.StatusBadRequest, "Vehicle is currently "+string(vehicle.Status))
		return
	}

	driver, ok := s.drivers[req.DriverID]
	if !ok {
		reject(c, http.StatusNotFound, "Driver not found")
		return
	}
	if driver.Status != fleet.DriverOnDuty {
		reject(c, http.StatusBadRequest, "Driver level status is "+string(driver.Status))
		return
	}
	if driver.LicenseExpiry.Before(time.Now()) {
		reject(c, http.StatusBadRequest, "Driver license has expired")
		return
	}

	if req.CargoWeight > vehicle.Capacity {
		reject(c, http.StatusBadRequest,
			"Load ("+strconv.FormatFloat(req.CargoWeight, 'f', -1, 64)+"kg) exceeds vehicle capacity ("+
				strconv.FormatFloat(vehicle.Capacity, 'f', -1, 64)+"kg)")
		return
	}

	trip := &fleet.Trip{
		ID:          s.nextTripID,
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		CargoWeight: req.CargoWeight,
		Origin:      req.Origin,
		Destination: req.Destination,
		Status:      fleet.TripDispatched,
		CreatedAt:   time.Now().UTC(),
	}
	s.nextTripID++
	s.trips[trip.ID] = trip

	vehicle.Status = fleet.VehicleOnTrip
	driver.Status = fleet.DriverOnTrip

	c.JSON(http.StatusOK, s.renderTrip(trip))
}

func (s *Server) handleCompleteTrip(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		reject(c, http.StatusNotFound, "Trip not found")
		return
	}
	rawOdo := c.Query("final_odometer")
	if rawOdo == "" {
		reject(c, http.StatusBadRequest, "final_odometer is required")
		return
	}
	finalOdometer, err := strconv.ParseFloat(rawOdo, 64)
	if err != nil {
		reject(c, http.StatusBadRequest, "final_odometer must be a number")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trip, ok := s.trips[id]
	if !ok {
		reject(c, http.StatusNotFound, "Trip not found")
		return
	}
	if !fleet.CanTransition(trip.Status, fleet.TripCompleted) {
		reject(c, http.StatusBadRequest, "Only dispatched trips can be completed")
		return
	}

	now := time.Now().UTC()
	trip.Status = fleet.TripCompleted
	trip.CompletedAt = &now

	if vehicle, ok := s.vehicles[trip.VehicleID]; ok {
		vehicle.Status = fleet.VehicleAvailable
		vehicle.Odometer = finalOdometer
	}
	if driver, ok := s.drivers[trip.DriverID]; ok {
		driver.Status = fleet.DriverOnDuty
	}

	c.JSON(http.StatusOK, s.renderTrip(trip))
}

func (s *Server) handleDeleteTrip(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		reject(c, http.StatusNotFound, "Trip not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trip, ok := s.trips[id]
	if !ok {
		reject(c, http.StatusNotFound, "Trip not found")
		return
	}
	// Live trips hold their assets until cancelled; deleting a terminal
	// record must not free anything.
	if fleet.CanTransition(trip.Status, fleet.TripCancelled) {
		if vehicle, ok := s.vehicles[trip.VehicleID]; ok {
			vehicle.Status = fleet.VehicleAvailable
		}
		if driver, ok := s.drivers[trip.DriverID]; ok {
			driver.Status = fleet.DriverOnDuty
		}
	}
	delete(s.trips, id)

	c.JSON(http.StatusOK, gin.H{"detail": "Trip deleted successfully"})
}

func (s *Server) handleListMaintenance(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fleet.MaintenanceLog, len(s.maintenance))
	copy(out, s.maintenance)
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListFuel(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fleet.FuelLog, len(s.fuel))
	copy(out, s.fuel)
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleKPIs(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.vehicles)
	active, alerts := 0, 0
	for _, v := range s.vehicles {
		switch v.Status {
		case fleet.VehicleOnTrip:
			active++
		case fleet.VehicleInShop:
			alerts++
		}
	}
	pending := 0
	for _, t := range s.trips {
		if t.Status == fleet.TripDraft {
			pending++
		}
	}
	utilization := 0.0
	if total > 0 {
		utilization = float64(active) / float64(total) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"active_fleet":       active,
		"maintenance_alerts": alerts,
		"utilization_rate":   utilization,
		"pending_cargo":      pending,
		"total_vehicles":     total,
	})
}
