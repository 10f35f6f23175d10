package orcid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the public ORCID API.
	BaseURL = "https://pub.orcid.org"

	// RateLimit is the request rate allowed on the public API per client.
	RateLimit = 24.0

	// DefaultTimeout for a single lookup.
	DefaultTimeout = 30 * time.Second

	lpORCID = "ORCID"
)

// Client performs lookups against the ORCID public API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets the API base URL, e.g. the sandbox registry.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithRateLimit sets the number of requests per second. A value of zero or
// less disables pacing.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new ORCID API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the public person record of the given ORCID iD. It returns
// ErrInvalidID if the iD is malformed or unknown to the registry and
// ErrFetchFailed for any transport or decoding failure. Fields missing from
// the record are returned as empty strings. The request is made exactly once.
func (c *Client) Lookup(ctx context.Context, orcidID string) (*Person, error) {
	id := Normalise(orcidID)
	if !Valid(id) {
		log.WithFields(log.Fields{
			"source": lpORCID,
			"orcid":  orcidID,
		}).Debug("Rejected malformed iD")
		return nil, ErrInvalidID
	}

	if err := c.limiter.Wait(ctx); err != nil {
		log.WithFields(log.Fields{
			"source": lpORCID,
			"error":  err,
		}).Error("Rate limiter wait failed")
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, err.Error())
	}

	url := fmt.Sprintf("%s/v3.0/%s/person", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, err.Error())
	}
	req.Header.Set("Accept", "application/json")

	log.WithFields(log.Fields{
		"source": lpORCID,
		"url":    url,
	}).Debug("Fetching person record")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithFields(log.Fields{
			"source": lpORCID,
			"orcid":  id,
			"error":  err,
		}).Error("Request failed")
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(log.Fields{
			"source": lpORCID,
			"orcid":  id,
			"status": resp.Status,
		}).Info("Registry rejected iD")
		return nil, ErrInvalidID
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithFields(log.Fields{
			"source": lpORCID,
			"orcid":  id,
			"error":  err,
		}).Error("Could not read response")
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, err.Error())
	}
	log.WithFields(log.Fields{
		"source": lpORCID,
		"orcid":  id,
	}).Debugf("Received %s", humanize.Bytes(uint64(len(body))))

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		log.WithFields(log.Fields{
			"source": lpORCID,
			"orcid":  id,
			"error":  err,
		}).Error("Could not decode person record")
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, err.Error())
	}
	return rec.person(), nil
}
