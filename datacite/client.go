package datacite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// APIURL is the production DataCite REST API.
	APIURL = "https://api.datacite.org"
	// TestAPIURL is the DataCite test system.
	TestAPIURL = "https://api.test.datacite.org"

	contentTypeJSONAPI = "application/vnd.api+json"

	lpDataCite = "DataCite"
)

var (
	// ErrConnect is returned when the DataCite API could not be reached or
	// answered with an unreadable body.
	ErrConnect = errors.New("failed to connect to DataCite API")
	// ErrNotConfigured is returned when a mint is attempted without
	// credentials or prefix.
	ErrNotConfigured = errors.New("DataCite client is not configured")
)

// MsgMintFailed is the message used when the API rejects a request without
// giving a reason.
const MsgMintFailed = "Failed to mint DOI"

// APIError is a rejection by the DataCite API.
type APIError struct {
	StatusCode int
	// Detail is the first error detail of the response, if any.
	Detail string
}

func (e *APIError) Error() string {
	return e.Message()
}

// Message returns the text shown to the user for this error.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return MsgMintFailed
}

// Client registers DOIs with the DataCite REST API.
type Client struct {
	httpClient *http.Client
	apiURL     string
	username   string
	password   string
	prefix     string
}

// NewClient returns a client for the API at apiURL that authenticates with the
// given repository account and mints DOIs below prefix.
func NewClient(apiURL, username, password, prefix string) *Client {
	if apiURL == "" {
		apiURL = APIURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		username:   username,
		password:   password,
		prefix:     prefix,
	}
}

// SetHTTPClient replaces the HTTP client used for requests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Configured returns true if credentials and prefix are set.
func (c *Client) Configured() bool {
	return c.username != "" && c.password != "" && c.prefix != ""
}

// Prefix returns the DOI prefix of the client.
func (c *Client) Prefix() string {
	return c.prefix
}

type doiRequest struct {
	Data doiRequestData `json:"data"`
}

type doiRequestData struct {
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes"`
}

type doiResponse struct {
	Data struct {
		Attributes DOIRecord `json:"attributes"`
	} `json:"data"`
}

type errorResponse struct {
	Errors []struct {
		Status string `json:"status"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// draftAttributes merges the caller's attributes over the fixed prefix and
// draft event.
func (c *Client) draftAttributes(metadata map[string]interface{}) map[string]interface{} {
	attrs := map[string]interface{}{
		"prefix": c.prefix,
		"event":  "draft",
	}
	for key, value := range metadata {
		attrs[key] = value
	}
	return attrs
}

// Mint creates a draft DOI with the given metadata attributes. Draft DOIs are
// reserved but not findable. Every call reserves a new DOI; the request is not
// retried.
//
// A rejection by the API is returned as *APIError. Transport failures and
// unreadable responses are returned as ErrConnect.
func (c *Client) Mint(ctx context.Context, metadata map[string]interface{}) (*DOIRecord, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(doiRequest{
		Data: doiRequestData{
			Type:       "dois",
			Attributes: c.draftAttributes(metadata),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/dois", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConnect, err.Error())
	}
	req.Header.Set("Content-Type", contentTypeJSONAPI)
	req.SetBasicAuth(c.username, c.password)

	log.WithFields(log.Fields{
		"source": lpDataCite,
		"prefix": c.prefix,
	}).Info("Requesting draft DOI")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithFields(log.Fields{
			"source": lpDataCite,
			"error":  err,
		}).Error("Request failed")
		return nil, fmt.Errorf("%w: %s", ErrConnect, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithFields(log.Fields{
			"source": lpDataCite,
			"error":  err,
		}).Error("Could not read response")
		return nil, fmt.Errorf("%w: %s", ErrConnect, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apierr := &APIError{StatusCode: resp.StatusCode}
		errresp := errorResponse{}
		if err := json.Unmarshal(body, &errresp); err == nil && len(errresp.Errors) > 0 {
			apierr.Detail = errresp.Errors[0].Detail
		}
		log.WithFields(log.Fields{
			"source": lpDataCite,
			"status": resp.Status,
			"detail": apierr.Detail,
		}).Warn("DOI request rejected")
		return nil, apierr
	}

	doiresp := doiResponse{}
	if err := json.Unmarshal(body, &doiresp); err != nil {
		log.WithFields(log.Fields{
			"source": lpDataCite,
			"error":  err,
		}).Error("Could not decode response")
		return nil, fmt.Errorf("%w: %s", ErrConnect, err.Error())
	}

	record := doiresp.Data.Attributes
	if record.DOI == "" {
		log.WithFields(log.Fields{
			"source": lpDataCite,
			"status": resp.Status,
		}).Error("Response carries no DOI")
		return nil, fmt.Errorf("%w: response carries no DOI", ErrConnect)
	}
	log.WithFields(log.Fields{
		"source": lpDataCite,
		"doi":    record.DOI,
	}).Info("Draft DOI reserved")
	return &record, nil
}
