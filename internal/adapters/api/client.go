package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/config"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/ports"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 5
	defaultBackoffBase = time.Second
)

// Game server error codes carried in 4xx payloads
const (
	codeCooldown          = 4000
	codeInsufficientFunds = 4203
)

// Client implements ports.GameAPI against the remote game HTTP server
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	token       string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
}

// NewClient creates a game API client from configuration.
// If clock is nil, uses RealClock for production.
func NewClient(cfg *config.APIConfig, clock shared.Clock) *Client {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxRetries := cfg.Retry.MaxAttempts
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	backoffBase := cfg.Retry.BackoffBase
	if backoffBase == 0 {
		backoffBase = defaultBackoffBase
	}
	requests := cfg.RateLimit.Requests
	if requests == 0 {
		requests = 2
	}
	burst := cfg.RateLimit.Burst
	if burst == 0 {
		burst = requests
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(requests), burst),
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		clock:       clock,
	}
}

// shipJSON is the wire shape of a ship in API responses
type shipJSON struct {
	Symbol string `json:"symbol"`
	Nav    struct {
		SystemSymbol   string `json:"systemSymbol"`
		WaypointSymbol string `json:"waypointSymbol"`
		Status         string `json:"status"`
		Route          *struct {
			Arrival string `json:"arrival"`
		} `json:"route,omitempty"`
	} `json:"nav"`
	Fuel struct {
		Current  int `json:"current"`
		Capacity int `json:"capacity"`
	} `json:"fuel"`
	Cargo struct {
		Capacity  int `json:"capacity"`
		Units     int `json:"units"`
		Inventory []struct {
			Symbol string `json:"symbol"`
			Units  int    `json:"units"`
		} `json:"inventory"`
	} `json:"cargo"`
	Cooldown *struct {
		Expiration string `json:"expiration"`
	} `json:"cooldown,omitempty"`
	Mounts []struct {
		Symbol string `json:"symbol"`
	} `json:"mounts"`
	Registration struct {
		Role string `json:"role"`
	} `json:"registration"`
}

func (c *Client) shipToSnapshot(ship *shipJSON) *ports.ShipSnapshot {
	snapshot := &ports.ShipSnapshot{
		Symbol:         ship.Symbol,
		WaypointSymbol: ship.Nav.WaypointSymbol,
		SystemSymbol:   ship.Nav.SystemSymbol,
		NavStatus:      ship.Nav.Status,
		FuelCurrent:    ship.Fuel.Current,
		FuelCapacity:   ship.Fuel.Capacity,
		CargoCapacity:  ship.Cargo.Capacity,
		CargoUnits:     ship.Cargo.Units,
		Role:           ship.Registration.Role,
	}

	for _, item := range ship.Cargo.Inventory {
		snapshot.Inventory = append(snapshot.Inventory, ports.InventoryItem{
			Symbol: item.Symbol,
			Units:  item.Units,
		})
	}
	for _, mount := range ship.Mounts {
		snapshot.Mounts = append(snapshot.Mounts, mount.Symbol)
	}

	if ship.Nav.Route != nil {
		if arrival, err := time.Parse(time.RFC3339, ship.Nav.Route.Arrival); err == nil {
			snapshot.ArrivalTime = &arrival
		}
	}
	if ship.Cooldown != nil && ship.Cooldown.Expiration != "" {
		if expiry, err := time.Parse(time.RFC3339, ship.Cooldown.Expiration); err == nil {
			snapshot.CooldownExpiresAt = &expiry
		}
	}

	return snapshot
}

// GetShip retrieves ship details
func (c *Client) GetShip(ctx context.Context, shipSymbol string) (*ports.ShipSnapshot, error) {
	path := fmt.Sprintf("/my/ships/%s", shipSymbol)

	var response struct {
		Data shipJSON `json:"data"`
	}
	if err := c.request(ctx, "GET", path, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get ship: %w", err)
	}

	return c.shipToSnapshot(&response.Data), nil
}

// ListShips retrieves all ships for the authenticated agent.
// Uses pagination to fetch all ships (20 per page).
func (c *Client) ListShips(ctx context.Context) ([]*ports.ShipSnapshot, error) {
	var allShips []*ports.ShipSnapshot
	page := 1
	limit := 20

	for {
		path := fmt.Sprintf("/my/ships?page=%d&limit=%d", page, limit)

		var response struct {
			Data []shipJSON `json:"data"`
			Meta struct {
				Total int `json:"total"`
				Page  int `json:"page"`
				Limit int `json:"limit"`
			} `json:"meta"`
		}
		if err := c.request(ctx, "GET", path, nil, &response); err != nil {
			return nil, fmt.Errorf("failed to list ships (page %d): %w", page, err)
		}

		if len(response.Data) == 0 {
			break
		}

		for i := range response.Data {
			allShips = append(allShips, c.shipToSnapshot(&response.Data[i]))
		}
		page++
	}

	return allShips, nil
}

// Navigate sends a ship toward a destination waypoint
func (c *Client) Navigate(ctx context.Context, shipSymbol, destinationSymbol string) (*ports.NavigationResult, error) {
	path := fmt.Sprintf("/my/ships/%s/navigate", shipSymbol)

	body := map[string]string{
		"waypointSymbol": destinationSymbol,
	}

	var response struct {
		Data struct {
			Fuel struct {
				Current int `json:"current"`
			} `json:"fuel"`
			Nav struct {
				Status string `json:"status"`
				Route  struct {
					Arrival string `json:"arrival"`
				} `json:"route"`
			} `json:"nav"`
		} `json:"data"`
	}
	if err := c.request(ctx, "POST", path, body, &response); err != nil {
		return nil, fmt.Errorf("failed to navigate ship: %w", err)
	}

	arrival, err := time.Parse(time.RFC3339, response.Data.Nav.Route.Arrival)
	if err != nil {
		return nil, fmt.Errorf("failed to parse arrival time %q: %w", response.Data.Nav.Route.Arrival, err)
	}

	return &ports.NavigationResult{
		NavStatus:   response.Data.Nav.Status,
		ArrivalTime: arrival,
		FuelCurrent: response.Data.Fuel.Current,
	}, nil
}

// Orbit puts a ship into orbit
func (c *Client) Orbit(ctx context.Context, shipSymbol string) error {
	path := fmt.Sprintf("/my/ships/%s/orbit", shipSymbol)

	// Empty JSON object {} required by the API
	if err := c.request(ctx, "POST", path, map[string]interface{}{}, nil); err != nil {
		return fmt.Errorf("failed to orbit ship: %w", err)
	}
	return nil
}

// Dock docks a ship
func (c *Client) Dock(ctx context.Context, shipSymbol string) error {
	path := fmt.Sprintf("/my/ships/%s/dock", shipSymbol)

	if err := c.request(ctx, "POST", path, map[string]interface{}{}, nil); err != nil {
		return fmt.Errorf("failed to dock ship: %w", err)
	}
	return nil
}

// Refuel fills a docked ship's tank at the local market
func (c *Client) Refuel(ctx context.Context, shipSymbol string) (*ports.RefuelResult, error) {
	path := fmt.Sprintf("/my/ships/%s/refuel", shipSymbol)

	var response struct {
		Data struct {
			Fuel struct {
				Current  int `json:"current"`
				Capacity int `json:"capacity"`
			} `json:"fuel"`
			Transaction struct {
				TotalPrice int `json:"totalPrice"`
			} `json:"transaction"`
		} `json:"data"`
	}
	if err := c.request(ctx, "POST", path, map[string]interface{}{}, &response); err != nil {
		return nil, fmt.Errorf("failed to refuel ship: %w", err)
	}

	return &ports.RefuelResult{
		FuelCurrent:  response.Data.Fuel.Current,
		FuelCapacity: response.Data.Fuel.Capacity,
		CreditsCost:  response.Data.Transaction.TotalPrice,
	}, nil
}

// Extract mines resources at the ship's current waypoint
func (c *Client) Extract(ctx context.Context, shipSymbol string) (*ports.ExtractionResult, error) {
	path := fmt.Sprintf("/my/ships/%s/extract", shipSymbol)

	var response struct {
		Data struct {
			Extraction struct {
				Yield struct {
					Symbol string `json:"symbol"`
					Units  int    `json:"units"`
				} `json:"yield"`
			} `json:"extraction"`
			Cargo struct {
				Units int `json:"units"`
			} `json:"cargo"`
			Cooldown struct {
				Expiration string `json:"expiration"`
			} `json:"cooldown"`
		} `json:"data"`
	}
	if err := c.request(ctx, "POST", path, map[string]interface{}{}, &response); err != nil {
		return nil, fmt.Errorf("failed to extract: %w", err)
	}

	result := &ports.ExtractionResult{
		ItemSymbol: response.Data.Extraction.Yield.Symbol,
		Units:      response.Data.Extraction.Yield.Units,
		CargoUnits: response.Data.Cargo.Units,
	}
	if expiry, err := time.Parse(time.RFC3339, response.Data.Cooldown.Expiration); err == nil {
		result.CooldownExpiresAt = expiry
	}

	return result, nil
}

// Sell sells cargo at the ship's current market
func (c *Client) Sell(ctx context.Context, shipSymbol, itemSymbol string, units int) (*ports.TransactionResult, error) {
	return c.trade(ctx, shipSymbol, itemSymbol, units, "sell")
}

// Purchase buys cargo at the ship's current market
func (c *Client) Purchase(ctx context.Context, shipSymbol, itemSymbol string, units int) (*ports.TransactionResult, error) {
	return c.trade(ctx, shipSymbol, itemSymbol, units, "purchase")
}

func (c *Client) trade(ctx context.Context, shipSymbol, itemSymbol string, units int, action string) (*ports.TransactionResult, error) {
	path := fmt.Sprintf("/my/ships/%s/%s", shipSymbol, action)

	body := map[string]interface{}{
		"symbol": itemSymbol,
		"units":  units,
	}

	var response struct {
		Data struct {
			Cargo struct {
				Units int `json:"units"`
			} `json:"cargo"`
			Transaction struct {
				TradeSymbol  string `json:"tradeSymbol"`
				Units        int    `json:"units"`
				PricePerUnit int    `json:"pricePerUnit"`
				TotalPrice   int    `json:"totalPrice"`
			} `json:"transaction"`
		} `json:"data"`
	}
	if err := c.request(ctx, "POST", path, body, &response); err != nil {
		return nil, fmt.Errorf("failed to %s cargo: %w", action, err)
	}

	return &ports.TransactionResult{
		ItemSymbol:   response.Data.Transaction.TradeSymbol,
		Units:        response.Data.Transaction.Units,
		PricePerUnit: response.Data.Transaction.PricePerUnit,
		TotalPrice:   response.Data.Transaction.TotalPrice,
		CargoUnits:   response.Data.Cargo.Units,
	}, nil
}

// Jettison discards cargo overboard
func (c *Client) Jettison(ctx context.Context, shipSymbol, itemSymbol string, units int) error {
	path := fmt.Sprintf("/my/ships/%s/jettison", shipSymbol)

	body := map[string]interface{}{
		"symbol": itemSymbol,
		"units":  units,
	}
	if err := c.request(ctx, "POST", path, body, nil); err != nil {
		return fmt.Errorf("failed to jettison cargo: %w", err)
	}
	return nil
}

// GetMarket retrieves market data for a waypoint
func (c *Client) GetMarket(ctx context.Context, systemSymbol, waypointSymbol string) (*ports.MarketSnapshot, error) {
	path := fmt.Sprintf("/systems/%s/waypoints/%s/market", systemSymbol, waypointSymbol)

	var response struct {
		Data struct {
			Symbol  string `json:"symbol"`
			Imports []struct {
				Symbol string `json:"symbol"`
			} `json:"imports"`
			Exports []struct {
				Symbol string `json:"symbol"`
			} `json:"exports"`
			TradeGoods []struct {
				Symbol        string `json:"symbol"`
				SellPrice     int    `json:"sellPrice"`
				PurchasePrice int    `json:"purchasePrice"`
			} `json:"tradeGoods"`
		} `json:"data"`
	}
	if err := c.request(ctx, "GET", path, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}

	snapshot := &ports.MarketSnapshot{
		WaypointSymbol: response.Data.Symbol,
	}
	for _, imp := range response.Data.Imports {
		snapshot.Imports = append(snapshot.Imports, imp.Symbol)
	}
	for _, exp := range response.Data.Exports {
		snapshot.Exports = append(snapshot.Exports, exp.Symbol)
	}
	for _, good := range response.Data.TradeGoods {
		snapshot.TradeGoods = append(snapshot.TradeGoods, ports.TradeGood{
			Symbol:        good.Symbol,
			SellPrice:     good.SellPrice,
			PurchasePrice: good.PurchasePrice,
		})
	}

	return snapshot, nil
}

// contractJSON is the wire shape of a contract in API responses
type contractJSON struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Accepted  bool   `json:"accepted"`
	Fulfilled bool   `json:"fulfilled"`
	Terms     struct {
		Deadline string `json:"deadline"`
		Deliver  []struct {
			TradeSymbol       string `json:"tradeSymbol"`
			DestinationSymbol string `json:"destinationSymbol"`
			UnitsRequired     int    `json:"unitsRequired"`
			UnitsFulfilled    int    `json:"unitsFulfilled"`
		} `json:"deliver"`
	} `json:"terms"`
}

func contractToSnapshot(contract *contractJSON) *ports.ContractSnapshot {
	snapshot := &ports.ContractSnapshot{
		ID:        contract.ID,
		Type:      contract.Type,
		Accepted:  contract.Accepted,
		Fulfilled: contract.Fulfilled,
	}
	if deadline, err := time.Parse(time.RFC3339, contract.Terms.Deadline); err == nil {
		snapshot.Deadline = deadline
	}
	for _, d := range contract.Terms.Deliver {
		snapshot.Deliveries = append(snapshot.Deliveries, ports.DeliverySnapshot{
			ItemSymbol:        d.TradeSymbol,
			DestinationSymbol: d.DestinationSymbol,
			UnitsRequired:     d.UnitsRequired,
			UnitsFulfilled:    d.UnitsFulfilled,
		})
	}
	return snapshot
}

// GetContract retrieves contract details
func (c *Client) GetContract(ctx context.Context, contractID string) (*ports.ContractSnapshot, error) {
	path := fmt.Sprintf("/my/contracts/%s", contractID)

	var response struct {
		Data contractJSON `json:"data"`
	}
	if err := c.request(ctx, "GET", path, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return contractToSnapshot(&response.Data), nil
}

// ListContracts retrieves all contracts for the authenticated agent
func (c *Client) ListContracts(ctx context.Context) ([]*ports.ContractSnapshot, error) {
	var all []*ports.ContractSnapshot
	page := 1
	limit := 20

	for {
		path := fmt.Sprintf("/my/contracts?page=%d&limit=%d", page, limit)

		var response struct {
			Data []contractJSON `json:"data"`
		}
		if err := c.request(ctx, "GET", path, nil, &response); err != nil {
			return nil, fmt.Errorf("failed to list contracts (page %d): %w", page, err)
		}

		if len(response.Data) == 0 {
			break
		}
		for i := range response.Data {
			all = append(all, contractToSnapshot(&response.Data[i]))
		}
		page++
	}

	return all, nil
}

// AcceptContract accepts a contract
func (c *Client) AcceptContract(ctx context.Context, contractID string) (*ports.ContractSnapshot, error) {
	path := fmt.Sprintf("/my/contracts/%s/accept", contractID)

	var response struct {
		Data struct {
			Contract contractJSON `json:"contract"`
		} `json:"data"`
	}
	if err := c.request(ctx, "POST", path, map[string]interface{}{}, &response); err != nil {
		return nil, fmt.Errorf("failed to accept contract: %w", err)
	}
	return contractToSnapshot(&response.Data.Contract), nil
}

// DeliverContractItem delivers cargo toward a contract requirement
func (c *Client) DeliverContractItem(ctx context.Context, contractID, shipSymbol, itemSymbol string, units int) (*ports.DeliveryResult, error) {
	path := fmt.Sprintf("/my/contracts/%s/deliver", contractID)

	body := map[string]interface{}{
		"shipSymbol":  shipSymbol,
		"tradeSymbol": itemSymbol,
		"units":       units,
	}

	var response struct {
		Data struct {
			Contract contractJSON `json:"contract"`
		} `json:"data"`
	}
	if err := c.request(ctx, "POST", path, body, &response); err != nil {
		return nil, fmt.Errorf("failed to deliver contract cargo: %w", err)
	}

	result := &ports.DeliveryResult{ItemSymbol: itemSymbol}
	for _, d := range response.Data.Contract.Terms.Deliver {
		if d.TradeSymbol == itemSymbol {
			result.UnitsDelivered = d.UnitsFulfilled
			result.UnitsRequired = d.UnitsRequired
			break
		}
	}
	return result, nil
}

// FulfillContract fulfills a contract whose deliveries are complete
func (c *Client) FulfillContract(ctx context.Context, contractID string) (*ports.ContractSnapshot, error) {
	path := fmt.Sprintf("/my/contracts/%s/fulfill", contractID)

	var response struct {
		Data struct {
			Contract contractJSON `json:"contract"`
		} `json:"data"`
	}
	if err := c.request(ctx, "POST", path, map[string]interface{}{}, &response); err != nil {
		return nil, fmt.Errorf("failed to fulfill contract: %w", err)
	}
	return contractToSnapshot(&response.Data.Contract), nil
}

// GetWaypoints retrieves all waypoints in a system, optionally filtered by
// traits. Uses pagination to fetch every page.
func (c *Client) GetWaypoints(ctx context.Context, systemSymbol string, traits ...string) ([]*ports.WaypointSnapshot, error) {
	var all []*ports.WaypointSnapshot
	page := 1
	limit := 20

	traitsQuery := ""
	for _, trait := range traits {
		traitsQuery += "&traits=" + trait
	}

	for {
		path := fmt.Sprintf("/systems/%s/waypoints?page=%d&limit=%d%s", systemSymbol, page, limit, traitsQuery)

		var response struct {
			Data []struct {
				Symbol       string  `json:"symbol"`
				SystemSymbol string  `json:"systemSymbol"`
				Type         string  `json:"type"`
				X            float64 `json:"x"`
				Y            float64 `json:"y"`
				Traits       []struct {
					Symbol string `json:"symbol"`
				} `json:"traits"`
			} `json:"data"`
		}
		if err := c.request(ctx, "GET", path, nil, &response); err != nil {
			return nil, fmt.Errorf("failed to list waypoints (page %d): %w", page, err)
		}

		if len(response.Data) == 0 {
			break
		}

		for _, wp := range response.Data {
			snapshot := &ports.WaypointSnapshot{
				Symbol:       wp.Symbol,
				SystemSymbol: wp.SystemSymbol,
				Type:         wp.Type,
				X:            wp.X,
				Y:            wp.Y,
			}
			for _, trait := range wp.Traits {
				snapshot.Traits = append(snapshot.Traits, trait.Symbol)
			}
			all = append(all, snapshot)
		}
		page++
	}

	return all, nil
}

// addJitter returns a duration between 50% and 150% of the original value
// to avoid thundering herd on retries.
func addJitter(d time.Duration) time.Duration {
	jitter := 0.5 + rand.Float64()
	return time.Duration(float64(d) * jitter)
}

// apiErrorBody is the error envelope the game server wraps 4xx payloads in
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			Cooldown struct {
				RemainingSeconds int `json:"remainingSeconds"`
			} `json:"cooldown"`
			Required  int `json:"creditsRequired"`
			Available int `json:"creditsAvailable"`
		} `json:"data"`
	} `json:"error"`
}

// mapClientError converts a non-retryable 4xx response into a typed ports error
func mapClientError(shipOrPath string, statusCode int, respBody []byte) error {
	var parsed apiErrorBody
	_ = json.Unmarshal(respBody, &parsed)

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &ports.AuthError{Message: parsed.Error.Message}

	case statusCode == http.StatusNotFound:
		return &ports.NotFoundError{Resource: "resource", Symbol: shipOrPath}

	case parsed.Error.Code == codeCooldown:
		remaining := time.Duration(parsed.Error.Data.Cooldown.RemainingSeconds) * time.Second
		return &ports.CooldownError{ShipSymbol: shipOrPath, Remaining: remaining}

	case parsed.Error.Code == codeInsufficientFunds:
		return &ports.InsufficientFundsError{Required: parsed.Error.Data.Required, Available: parsed.Error.Data.Available}

	default:
		message := parsed.Error.Message
		if message == "" {
			message = string(respBody)
		}
		return &ports.InvalidStateError{Reason: fmt.Sprintf("API error (status %d): %s", statusCode, message)}
	}
}

// request makes an HTTP request with rate limiting and exponential backoff retries
func (c *Client) request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		var reqBody io.Reader
		if body != nil {
			jsonData, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
			reqBody = bytes.NewBuffer(jsonData)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network error - retryable
			lastErr = &ports.ServerError{StatusCode: 0, Message: fmt.Sprintf("network error: %v", err)}
			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("failed to read response: %w", readErr)
		}

		// 429 Too Many Requests - retryable, honoring Retry-After
		if resp.StatusCode == http.StatusTooManyRequests {
			var retryAfterDuration time.Duration
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					retryAfterDuration = time.Duration(seconds) * time.Second
				}
			}
			lastErr = &ports.RateLimitedError{RetryAfter: retryAfterDuration}

			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}

			backoffDelay := addJitter(c.backoffBase * time.Duration(1<<attempt))
			if retryAfterDuration > 0 {
				// Server-provided Retry-After wins, without jitter
				backoffDelay = retryAfterDuration
			}
			c.clock.Sleep(backoffDelay)
			continue
		}

		// 5xx server errors - retryable
		if resp.StatusCode >= 500 {
			lastErr = &ports.ServerError{StatusCode: resp.StatusCode, Message: string(respBody)}
			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		// Remaining 4xx client errors - NOT retryable
		if resp.StatusCode >= 400 {
			return mapClientError(path, resp.StatusCode, respBody)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &ports.InvalidStateError{Reason: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(respBody))}
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to unmarshal response: %w", err)
			}
		}
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return fmt.Errorf("max retries exceeded")
}
