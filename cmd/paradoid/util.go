package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// isURL returns true if a URL scheme part can be identfied
// within a passed string. Returns false in any other case.
func isURL(str string) bool {
	if purl, err := url.Parse(str); err == nil {
		return purl.Scheme == "http" || purl.Scheme == "https"
	}
	return false
}

// readFileAtPath returns the content of a file at a given path.
func readFileAtPath(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// readFileAtURL returns the contents of a file at a given URL.
func readFileAtURL(url string) ([]byte, error) {
	client := newHTTPClient(30 * time.Second)
	log.Debugf("Fetching file at %q", url)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Debugf("Request failed: %s", err.Error())
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request returned non-OK status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// readSource returns the contents of a file given as a path, a URL, or "-"
// for stdin.
func readSource(source string) ([]byte, error) {
	switch {
	case source == "-":
		return io.ReadAll(os.Stdin)
	case isURL(source):
		return readFileAtURL(source)
	default:
		return readFileAtPath(source)
	}
}

// newHTTPClient returns the client used for calls to external services.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// unwrapMetadata returns the document of a request body of the form
// {"metadata": {...}}. Bodies without a metadata key are returned as they are.
func unwrapMetadata(doc interface{}) interface{} {
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return doc
	}
	if md, ok := obj["metadata"]; ok {
		return md
	}
	return doc
}

// writeJSON writes value as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.WithFields(log.Fields{
			"source": lpWeb,
			"error":  err,
		}).Error("Failed to write response")
	}
}

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response with a single message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
