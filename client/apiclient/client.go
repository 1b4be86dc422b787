// Package apiclient talks to the delivery backend over REST.
//
// Every call is bounded by the client timeout. Transport failures and timeouts come back
// as apperr.ErrNetwork; non-2xx responses are mapped back to their apperr kind.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"

	log "github.com/sirupsen/logrus"
)

const DefaultTimeout = 10 * time.Second

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	http    HTTPClient
}

// New builds a client for baseURL. A nil httpClient gets a plain http.Client with the
// given timeout (DefaultTimeout when zero).
func New(baseURL string, httpClient HTTPClient, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type SubmittedOrder struct {
	RestaurantID   string            `json:"restaurantId"`
	RestaurantName string            `json:"restaurantName"`
	CustomerName   string            `json:"customerName"`
	OrderItems     []model.OrderItem `json:"orderItems"`
}

// CreateOrder submits the cart as a single order. The cart must already be known to be
// single-restaurant and non-empty.
func (c *Client) CreateOrder(ctx context.Context, customer model.Identity, cart []model.CartLine) (*model.Order, error) {
	if len(cart) == 0 {
		return nil, apperr.Validation("createOrder", "cart is empty")
	}
	submitted := SubmittedOrder{
		RestaurantID:   cart[0].RestaurantID,
		RestaurantName: cart[0].RestaurantName,
		CustomerName:   customer.FullName,
	}
	for _, line := range cart {
		submitted.OrderItems = append(submitted.OrderItems, model.OrderItem{
			MenuItemID: line.ItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			Price:      line.Price,
		})
	}

	var created []model.Order
	body := map[string][]SubmittedOrder{"orders": {submitted}}
	if err := c.do(ctx, "createOrder", http.MethodPost, "/orders/"+url.PathEscape(customer.ID), body, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, apperr.New(apperr.ErrNetwork, "createOrder", "empty response")
	}
	return &created[0], nil
}

func (c *Client) ListOrders(ctx context.Context, actorID string, role model.Role, activeOnly bool) ([]model.Order, error) {
	q := url.Values{}
	q.Set("type", strings.ToLower(string(role)))
	if activeOnly {
		q.Set("active", "true")
	}
	var orders []model.Order
	err := c.do(ctx, "listOrders", http.MethodGet, "/orders/"+url.PathEscape(actorID)+"?"+q.Encode(), nil, &orders)
	return orders, err
}

func (c *Client) ListAvailable(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := c.do(ctx, "listAvailable", http.MethodGet, "/orders/available", nil, &orders)
	return orders, err
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, "getOrder", http.MethodGet, "/orders/detail/"+url.PathEscape(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type statusRequest struct {
	Status      model.Status `json:"status"`
	UserID      string       `json:"userId,omitempty"`
	CourierID   string       `json:"courierId,omitempty"`
	CourierName string       `json:"courierName,omitempty"`
	Role        model.Role   `json:"role,omitempty"`
}

func (c *Client) UpdateStatus(ctx context.Context, orderID string, status model.Status, actor model.Identity) (*model.Order, error) {
	req := statusRequest{Status: status, Role: actor.Role}
	if actor.Role == model.RoleCourier {
		req.CourierID, req.CourierName = actor.ID, actor.FullName
	} else {
		req.UserID = actor.ID
	}
	var order model.Order
	if err := c.do(ctx, "updateStatus", http.MethodPut, "/orders/"+url.PathEscape(orderID)+"/status", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) Claim(ctx context.Context, orderID string, courier model.Identity) (*model.Order, error) {
	req := statusRequest{CourierID: courier.ID, CourierName: courier.FullName}
	var order model.Order
	if err := c.do(ctx, "claimOrder", http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/claim", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) Restaurants(ctx context.Context) ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	err := c.do(ctx, "listRestaurants", http.MethodGet, "/restaurants", nil, &restaurants)
	return restaurants, err
}

func (c *Client) UpsertRestaurant(ctx context.Context, r model.Restaurant) (*model.Restaurant, error) {
	var saved model.Restaurant
	if err := c.do(ctx, "upsertRestaurant", http.MethodPost, "/restaurants", r, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) Menu(ctx context.Context, restaurantID string) ([]model.MenuItem, error) {
	var items []model.MenuItem
	err := c.do(ctx, "getMenu", http.MethodGet, "/menus/"+url.PathEscape(restaurantID), nil, &items)
	return items, err
}

func (c *Client) CreateMenuItem(ctx context.Context, item model.MenuItem) (*model.MenuItem, error) {
	var saved model.MenuItem
	if err := c.do(ctx, "createMenuItem", http.MethodPost, "/menus/"+url.PathEscape(item.RestaurantID), item, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) SendMessage(ctx context.Context, msg model.Message) (*model.Message, error) {
	if msg.ClientID == "" {
		msg.ClientID = msg.ID
	}
	var saved model.Message
	if err := c.do(ctx, "sendMessage", http.MethodPost, "/messages/"+url.PathEscape(msg.OrderID), msg, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) Messages(ctx context.Context, orderID string, chatType model.ChatType) ([]model.Message, error) {
	path := "/messages/" + url.PathEscape(orderID)
	if chatType != "" {
		path += "?type=" + url.QueryEscape(string(chatType))
	}
	var msgs []model.Message
	err := c.do(ctx, "getMessages", http.MethodGet, path, nil, &msgs)
	return msgs, err
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warnf("%s %s failed: %v", method, path, err)
		return apperr.Network(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return apperr.FromStatus(op, resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Network(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
