// README: REST client for the fleet backend; attaches the session bearer token and maps rejections.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fleetops/internal/auth"
	"fleetops/internal/fleet"
)

// RejectionError carries the backend's human-readable detail message
// verbatim; the UI surfaces it without rewording.
type RejectionError struct {
	StatusCode int
	Detail     string
}

func (e *RejectionError) Error() string {
	return e.Detail
}

type Client struct {
	baseURL string
	http    *http.Client
	session *auth.Session
}

func New(baseURL string, session *auth.Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token and stores it on the
// session together with the signed-in user identity.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/login/access-token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readRejection(resp)
	}
	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("login: decode token: %w", err)
	}

	c.session.SignIn(tok.AccessToken, auth.User{})
	user, err := c.Me(ctx)
	if err != nil {
		return err
	}
	c.session.SignIn(tok.AccessToken, user)
	return nil
}

func (c *Client) Me(ctx context.Context) (auth.User, error) {
	var u auth.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u)
	return u, err
}

func (c *Client) Vehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	var out []fleet.Vehicle
	err := c.do(ctx, http.MethodGet, "/vehicles/", nil, nil, &out)
	return out, err
}

func (c *Client) Drivers(ctx context.Context) ([]fleet.Driver, error) {
	var out []fleet.Driver
	err := c.do(ctx, http.MethodGet, "/drivers/", nil, nil, &out)
	return out, err
}

func (c *Client) Trips(ctx context.Context) ([]fleet.Trip, error) {
	var out []fleet.Trip
	err := c.do(ctx, http.MethodGet, "/trips/", nil, nil, &out)
	return out, err
}

type TripRequest struct {
	VehicleID   int     `json:"vehicle_id"`
	DriverID    int     `json:"driver_id"`
	CargoWeight float64 `json:"cargo_weight"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
}

func (c *Client) CreateTrip(ctx context.Context, req TripRequest) (fleet.Trip, error) {
	var out fleet.Trip
	err := c.do(ctx, http.MethodPost, "/trips/", nil, req, &out)
	return out, err
}

func (c *Client) CompleteTrip(ctx context.Context, tripID int, finalOdometer float64) (fleet.Trip, error) {
	q := url.Values{}
	q.Set("final_odometer", strconv.FormatFloat(finalOdometer, 'f', -1, 64))
	var out fleet.Trip
	path := fmt.Sprintf("/trips/%d/complete", tripID)
	err := c.do(ctx, http.MethodPatch, path, q, nil, &out)
	return out, err
}

func (c *Client) DeleteTrip(ctx context.Context, tripID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/trips/%d", tripID), nil, nil, nil)
}

func (c *Client) MaintenanceLogs(ctx context.Context) ([]fleet.MaintenanceLog, error) {
	var out []fleet.MaintenanceLog
	err := c.do(ctx, http.MethodGet, "/maintenance/", nil, nil, &out)
	return out, err
}

func (c *Client) FuelLogs(ctx context.Context) ([]fleet.FuelLog, error) {
	var out []fleet.FuelLog
	err := c.do(ctx, http.MethodGet, "/fuel/", nil, nil, &out)
	return out, err
}

type DashboardKPIs struct {
	ActiveFleet       int     `json:"active_fleet"`
	MaintenanceAlerts int     `json:"maintenance_alerts"`
	UtilizationRate   float64 `json:"utilization_rate"`
	PendingCargo      int     `json:"pending_cargo"`
	TotalVehicles     int     `json:"total_vehicles"`
}

func (c *Client) KPIs(ctx context.Context) (DashboardKPIs, error) {
	var out DashboardKPIs
	err := c.do(ctx, http.MethodGet, "/stats/dashboard-kpis", nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.session.Token()
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: marshal body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return auth.ErrSessionExpired
	case resp.StatusCode >= 400:
		return readRejection(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func readRejection(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Detail == "" {
		payload.Detail = http.StatusText(resp.StatusCode)
	}
	return &RejectionError{StatusCode: resp.StatusCode, Detail: payload.Detail}
}
