package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/what-to-eat/client/internal/client/settings"
	"github.com/what-to-eat/client/internal/logging"
)

// HTTPClient is the Client implementation speaking the envelope protocol
// over HTTP. A single instance is shared by all controllers.
type HTTPClient struct {
	http *http.Client
	log  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds the shared API client. Bearer injection and dynamic
// host rewrite are applied to every outgoing request via the transport
// chain; timeout bounds each whole request.
func NewHTTPClient(store settings.Store, log logging.Logger, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		http: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(store, log),
		},
		log: log.With("component", "api"),
	}
}

// envelope is the {code, message, data} wrapper around every non-health
// response body. code zero means success.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do sends one request and returns the decoded envelope. A non-2xx status
// or a nonzero envelope code is an AppError carrying the server's message;
// lower-level failures are classified onto the taxonomy.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, placeholderBaseURL+path, reader)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		err = classifyTransportErr(err)
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := decodeBody(resp, &env); err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Code != 0 {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed: %s", resp.Status)
		}
		c.log.Debug(ctx, "server rejected request", "path", path, "status", resp.StatusCode, "code", env.Code)
		return nil, &AppError{Code: env.Code, Message: msg}
	}
	return &env, nil
}

func decodeBody(resp *http.Response, v any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportErr(err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &AppError{Message: "malformed server response"}
	}
	return nil
}

// decodeData unmarshals the envelope payload into T. An absent payload is
// an AppError because every caller of this helper expects one.
func decodeData[T any](env *envelope) (*T, error) {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, &AppError{Message: "empty server response"}
	}
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, &AppError{Message: "malformed server response"}
	}
	return &out, nil
}

// decodeList unmarshals the envelope payload into a slice, treating an
// absent payload as an empty list.
func decodeList[T any](env *envelope) ([]T, error) {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, &AppError{Message: "malformed server response"}
	}
	return out, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, placeholderBaseURL+"/health", nil)
	if err != nil {
		return &TransportError{Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportErr(err)
	}
	defer resp.Body.Close()

	var hr healthResponse
	if err := decodeBody(resp, &hr); err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || hr.Status != "ok" {
		return &AppError{Message: "server is not healthy"}
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) (*User, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/register", registerRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	return decodeData[User](env)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	return decodeData[LoginResult](env)
}

func (c *HTTPClient) GuestLogin(ctx context.Context) (*LoginResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/guest", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[LoginResult](env)
}

func (c *HTTPClient) ListMenus(ctx context.Context) ([]Menu, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/menus", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Menu](env)
}

func (c *HTTPClient) CreateMenu(ctx context.Context, restaurantName, dishName string) (*CreateMenuResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/menus", createMenuRequest{RestaurantName: restaurantName, DishName: dishName})
	if err != nil {
		return nil, err
	}
	return decodeData[CreateMenuResult](env)
}

func (c *HTTPClient) DeleteMenu(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/menus/%d", id), nil)
	return err
}

func (c *HTTPClient) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/restaurants", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Restaurant](env)
}

func (c *HTTPClient) Decide(ctx context.Context, menuIDs []int64) (*Decision, error) {
	if menuIDs == nil {
		menuIDs = []int64{}
	}
	env, err := c.do(ctx, http.MethodPost, "/api/decide", decideRequest{MenuIDs: menuIDs})
	if err != nil {
		return nil, err
	}
	return decodeData[Decision](env)
}

// History downgrades every failure to an empty page: the history read is
// non-critical and must never block the rest of the client.
func (c *HTTPClient) History(ctx context.Context) (*HistoryPage, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/history", nil)
	if err != nil {
		c.log.Warn(ctx, "history fetch failed, returning empty page", "err", err)
		return &HistoryPage{Records: []DecisionRecord{}}, nil
	}
	page, err := decodeData[HistoryPage](env)
	if err != nil {
		return &HistoryPage{Records: []DecisionRecord{}}, nil
	}
	if page.Records == nil {
		page.Records = []DecisionRecord{}
	}
	return page, nil
}
