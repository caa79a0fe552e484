// Package geocoder resolves free-text addresses to coordinates through the
// Kakao local address search API.
package geocoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultURL is the Kakao address search endpoint.
const DefaultURL = "https://dapi.kakao.com/v2/local/search/address.json"

var (
	// ErrNoResult is returned when the provider knows no location for an address.
	ErrNoResult = errors.New("geocoder: no result for address")

	// ErrDisabled is returned when no API key is configured.
	ErrDisabled = errors.New("geocoder: disabled")
)

// Coordinates is a resolved location.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (Coordinates, error)
}

// Kakao implements Geocoder against the Kakao REST API.
type Kakao struct {
	client  *http.Client
	baseURL string
	restKey string
}

// NewKakao creates a Kakao geocoder. An empty baseURL selects DefaultURL.
func NewKakao(baseURL, restKey string, timeout time.Duration) *Kakao {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Kakao{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		restKey: restKey,
	}
}

// Resolve implements Geocoder.
func (k *Kakao) Resolve(ctx context.Context, address string) (Coordinates, error) {
	if k.restKey == "" {
		return Coordinates{}, ErrDisabled
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.baseURL+"?query="+url.QueryEscape(address), nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocoder: build request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+k.restKey)

	resp, err := k.client.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocoder: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocoder: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geocoder: unexpected status %d: %s", resp.StatusCode, gjson.GetBytes(body, "message").String())
	}

	// documents[].y is the latitude and documents[].x the longitude, both as strings
	doc := gjson.GetBytes(body, "documents.0")
	if !doc.Exists() {
		return Coordinates{}, ErrNoResult
	}
	lat, err := strconv.ParseFloat(doc.Get("y").String(), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocoder: invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(doc.Get("x").String(), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocoder: invalid longitude: %w", err)
	}

	return Coordinates{Latitude: lat, Longitude: lng}, nil
}
