package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const requestTimeout = 10 * time.Second

type City struct {
	Ref             string `json:"Ref"`
	Description     string `json:"Description"`
	AreaDescription string `json:"AreaDescription"`
}

type Warehouse struct {
	Ref             string `json:"Ref"`
	Description     string `json:"Description"`
	ShortAddress    string `json:"ShortAddress"`
	Number          string `json:"Number"`
	TypeOfWarehouse string `json:"TypeOfWarehouse"`
}

// Carrier is the upstream address directory.
type Carrier interface {
	Cities(ctx context.Context, query string) ([]City, error)
	Warehouses(ctx context.Context, cityRef string) ([]Warehouse, error)
}

// Client talks to the Nova Poshta JSON API.
type Client struct {
	URL    string
	APIKey string
}

func NewClient(url, apiKey string) *Client { return &Client{URL: url, APIKey: apiKey} }

type rpcRequest struct {
	APIKey           string            `json:"apiKey"`
	ModelName        string            `json:"modelName"`
	CalledMethod     string            `json:"calledMethod"`
	MethodProperties map[string]string `json:"methodProperties"`
}

type rpcResponse[T any] struct {
	Success bool     `json:"success"`
	Data    []T      `json:"data"`
	Errors  []string `json:"errors"`
}

func call[T any](ctx context.Context, c *Client, method string, props map[string]string) ([]T, error) {
	timeout := requestTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	var out rpcResponse[T]
	code, _, errs := fiber.Post(c.URL).
		JSON(rpcRequest{APIKey: c.APIKey, ModelName: "Address", CalledMethod: method, MethodProperties: props}).
		Timeout(timeout).
		Struct(&out)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("nova poshta %s: http %d", method, code)
	}
	if !out.Success {
		return nil, fmt.Errorf("nova poshta %s: %s", method, strings.Join(out.Errors, "; "))
	}
	if out.Data == nil {
		out.Data = []T{}
	}
	return out.Data, nil
}

func (c *Client) Cities(ctx context.Context, query string) ([]City, error) {
	return call[City](ctx, c, "getCities", map[string]string{"FindByString": query, "Limit": "20"})
}

func (c *Client) Warehouses(ctx context.Context, cityRef string) ([]Warehouse, error) {
	return call[Warehouse](ctx, c, "getWarehouses", map[string]string{"CityRef": cityRef, "Limit": "100"})
}
