package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the external remote-resource REST API. Resources live under
// {baseUrl}/api/resource/{resourceType}; authentication is a bearer token.
type Client struct {
	baseUrl    string
	token      string
	httpClient *http.Client
}

func NewClient(baseUrl string, token string) *Client {
	return &Client{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Get(ctx context.Context, resourceType string, filters map[string]any, fields []string) (map[string]any, error) {
	params := url.Values{}
	if len(filters) > 0 {
		data, err := json.Marshal(filters)
		if err != nil {
			return nil, err
		}
		params.Set("filters", string(data))
	}
	if len(fields) > 0 {
		data, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		params.Set("fields", string(data))
	}
	resourceUrl := c.resourceUrl(resourceType, "")
	if len(params) > 0 {
		resourceUrl = resourceUrl + "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, resourceUrl, nil)
}

func (c *Client) Create(ctx context.Context, resourceType string, data map[string]any) (map[string]any, error) {
	return c.do(ctx, http.MethodPost, c.resourceUrl(resourceType, ""), data)
}

func (c *Client) Update(ctx context.Context, resourceType string, name string, data map[string]any) (map[string]any, error) {
	return c.do(ctx, http.MethodPut, c.resourceUrl(resourceType, name), data)
}

func (c *Client) Delete(ctx context.Context, resourceType string, name string) (map[string]any, error) {
	return c.do(ctx, http.MethodDelete, c.resourceUrl(resourceType, name), nil)
}

func (c *Client) resourceUrl(resourceType string, name string) string {
	if name == "" {
		return fmt.Sprintf("%s/api/resource/%s", c.baseUrl, url.PathEscape(resourceType))
	}
	return fmt.Sprintf("%s/api/resource/%s/%s", c.baseUrl, url.PathEscape(resourceType), url.PathEscape(name))
}

func (c *Client) do(ctx context.Context, method string, requestUrl string, body map[string]any) (map[string]any, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestUrl, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("remote resource call failed: %s %s returned %d", method, requestUrl, resp.StatusCode)
	}
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result, nil
}
