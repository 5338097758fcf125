// Package client talks to the breach-data provider. Both calls it exposes
// are slow, rate-limited and fallible; callers own retry and pacing policy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cocodedk/publix"
)

const (
	defaultTimeout  = 30 * time.Second
	contentCacheTTL = 10 * time.Minute
)

type Client struct {
	client    *http.Client
	cache     *cache.Cache
	endpoint  string
	apiKey    string
	userAgent string
}

func New(endpoint, apiKey string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(contentCacheTTL, 15*time.Minute),
		endpoint:  endpoint,
		apiKey:    apiKey,
		userAgent: "publix",
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("x-key", c.apiKey)
	return http.DefaultTransport.RoundTrip(req)
}

type searchRequest struct {
	Term       string   `json:"term"`
	MaxResults int      `json:"maxresults"`
	Buckets    []string `json:"buckets"`
}

// Search runs a provider search and returns the matching leak records.
func (c *Client) Search(ctx context.Context, term string, maxResults int, buckets []string) (publix.SearchResponse, error) {

	body, err := json.Marshal(searchRequest{
		Term:       term,
		MaxResults: maxResults,
		Buckets:    buckets,
	})
	if err != nil {
		return publix.SearchResponse{}, fmt.Errorf("failed to encode search request: %w", err)
	}

	url := c.endpoint + "/intelligent/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return publix.SearchResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return publix.SearchResponse{}, fmt.Errorf("failed to perform search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return publix.SearchResponse{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var response publix.SearchResponse
	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return publix.SearchResponse{}, fmt.Errorf("failed to decode search response: %w", err)
	}

	return response, nil
}

// FetchContent retrieves the raw text of one leak document. Responses are
// cached by storage id so a re-run does not burn the provider quota twice.
func (c *Client) FetchContent(ctx context.Context, media int, storageID, bucket string) (string, error) {

	if cached, found := c.cache.Get(storageID); found {
		return cached.(string), nil
	}

	url := c.endpoint + "/file/view" +
		"?f=1&storageid=" + storageID +
		"&bucket=" + bucket +
		"&media=" + strconv.Itoa(media)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	content := string(raw)
	c.cache.Set(storageID, content, cache.DefaultExpiration)
	return content, nil
}
