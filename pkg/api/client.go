/*
Package api talks to the remote fare service.

One base URL serves both operations:

	GET  <base>                                   -> {"cities": [...], "quarters": [...]}
	POST <base> {"city1","city2","quarter"}      -> {"prediction": 412.5}

Either field of the metadata reply may be missing or of the wrong type; the
client degrades it to a default instead of failing. A prediction reply
without a numeric "prediction" is ErrUnexpectedResponse.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultQuarters is used when the metadata reply carries no quarter list.
var DefaultQuarters = []int{1, 2, 3, 4}

// Meta is the decoded metadata reply.
type Meta struct {
	Cities   []string
	Quarters []int
}

// PredictRequest is the body of a prediction call.
type PredictRequest struct {
	City1   string `json:"city1"`
	City2   string `json:"city2"`
	Quarter int    `json:"quarter"`
}

// Client is an HTTP client for the fare service. A Client with an empty
// base URL is valid and fails every call with ErrConfigMissing.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. timeout <= 0 means no timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP lets callers supply their own transport.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: hc}
}

// Configured reports whether a base URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Meta fetches the place names and quarter list.
func (c *Client) Meta(ctx context.Context) (Meta, error) {
	if !c.Configured() {
		return Meta{}, ErrConfigMissing
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Meta{}, fmt.Errorf("build metadata request: %w", err)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to load cities: %w", err)
	}
	defer res.Body.Close()
	log.Debugf("GET %s -> %d in %v", c.baseURL, res.StatusCode, time.Since(start))

	if !ok(res.StatusCode) {
		return Meta{}, fmt.Errorf("failed to load cities: HTTP %d", res.StatusCode)
	}

	var body json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Meta{}, fmt.Errorf("failed to decode metadata: %w", err)
	}
	// A valid reply that is not an object has neither field.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		log.Debugf("Metadata reply is not an object: %s", body)
	}
	return Meta{
		Cities:   decodeCities(fields["cities"]),
		Quarters: decodeQuarters(fields["quarters"]),
	}, nil
}

// Predict asks for a fare estimate.
func (c *Client) Predict(ctx context.Context, p PredictRequest) (float64, error) {
	if !c.Configured() {
		return 0, ErrConfigMissing
	}
	body, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("encode prediction request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("prediction request failed: %w", err)
	}
	defer res.Body.Close()
	log.Debugf("POST %s -> %d in %v", c.baseURL, res.StatusCode, time.Since(start))

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, fmt.Errorf("read prediction response: %w", err)
	}
	if !ok(res.StatusCode) {
		return 0, &RequestError{Status: res.StatusCode, Body: string(data)}
	}

	var reply struct {
		Prediction any `json:"prediction"`
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		return 0, ErrUnexpectedResponse
	}
	v, isNum := reply.Prediction.(float64)
	if !isNum {
		return 0, ErrUnexpectedResponse
	}
	return v, nil
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

// decodeCities keeps the string members of a JSON array, dropping repeats.
func decodeCities(raw json.RawMessage) []string {
	var items []any
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return []string{}
	}
	seen := make(map[string]bool, len(items))
	cities := make([]string, 0, len(items))
	for _, it := range items {
		s, isStr := it.(string)
		if !isStr || seen[s] {
			continue
		}
		seen[s] = true
		cities = append(cities, s)
	}
	return cities
}

// decodeQuarters keeps integral numbers; anything but an array yields the defaults.
func decodeQuarters(raw json.RawMessage) []int {
	var items []any
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return append([]int(nil), DefaultQuarters...)
	}
	quarters := make([]int, 0, len(items))
	for _, it := range items {
		f, isNum := it.(float64)
		if !isNum || f != float64(int(f)) {
			continue
		}
		quarters = append(quarters, int(f))
	}
	return quarters
}
