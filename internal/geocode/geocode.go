// Package geocode resolves a free-text location to a coordinate pair via an
// external geocoding service. The first returned hit wins.
package geocode

import (
	"context"       // Request-scoped cancellation
	"encoding/json" // Response decoding
	"errors"        // Sentinel errors
	"net/http"      // HTTP client
	"net/url"       // Query encoding
	"strconv"       // Coordinate parsing
	"time"          // Client timeout
)

// ErrNoResult is returned when the service resolves nothing for the location
var ErrNoResult = errors.New("location did not geocode")

// Point is a longitude/latitude pair
type Point struct {
	Longitude float64 // Longitude of the first hit
	Latitude  float64 // Latitude of the first hit
}

// Geocoder is the contract the controllers depend on
type Geocoder interface {
	Geocode(ctx context.Context, location string) (*Point, error)
}

// Client calls a Nominatim-style search endpoint
type Client struct {
	baseURL string       // Search endpoint URL
	http    *http.Client // Underlying HTTP client
}

// NewClient builds a geocoding client against the given search endpoint
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// nominatim search results carry coordinates as strings
type result struct {
	Lon string `json:"lon"` // Longitude
	Lat string `json:"lat"` // Latitude
}

// Geocode resolves the location string to the first returned coordinate pair
func (c *Client) Geocode(ctx context.Context, location string) (*Point, error) {
	q := url.Values{}
	q.Set("q", location) // Free-text query
	q.Set("format", "json")
	q.Set("limit", "1") // Only the first hit is used
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("geocoder returned " + resp.Status)
	}
	var results []result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResult // Nothing matched the location
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, err
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, err
	}
	return &Point{Longitude: lon, Latitude: lat}, nil
}
