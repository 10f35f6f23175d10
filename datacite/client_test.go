package datacite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintDraft(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/dois", r.URL.Path)
		assert.Equal(t, "application/vnd.api+json", r.Header.Get("Content-Type"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "missing basic auth")
		assert.Equal(t, "PARADIM.TEST", user)
		assert.Equal(t, "secret", pass)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/vnd.api+json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"id":"10.34863/abcd-1234","type":"dois","attributes":{"doi":"10.34863/abcd-1234","url":null,"state":"draft"}}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "PARADIM.TEST", "secret", "10.34863")
	require.True(t, client.Configured())

	rec, err := client.Mint(context.Background(), map[string]interface{}{
		"publisher":       "PARADIM",
		"publicationYear": 2024,
	})
	require.NoError(t, err)
	assert.Equal(t, &DOIRecord{DOI: "10.34863/abcd-1234", URL: ""}, rec)

	data, ok := received["data"].(map[string]interface{})
	require.True(t, ok, "request has no data object")
	assert.Equal(t, "dois", data["type"])
	attrs, ok := data["attributes"].(map[string]interface{})
	require.True(t, ok, "request has no attributes")
	assert.Equal(t, "10.34863", attrs["prefix"])
	assert.Equal(t, "draft", attrs["event"])
	assert.Equal(t, "PARADIM", attrs["publisher"])
	assert.Equal(t, 2024.0, attrs["publicationYear"])
}

func TestMintAttributesOverride(t *testing.T) {
	client := NewClient("", "u", "p", "10.34863")
	attrs := client.draftAttributes(map[string]interface{}{"doi": "10.34863/fixed", "prefix": "10.9999"})
	assert.Equal(t, "draft", attrs["event"])
	assert.Equal(t, "10.34863/fixed", attrs["doi"])
	// caller attributes are merged last
	assert.Equal(t, "10.9999", attrs["prefix"])
	assert.Equal(t, APIURL, client.apiURL)
}

func TestMintDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := doiRequest{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		titles, ok := req.Data.Attributes["titles"].([]interface{})
		assert.True(t, ok && len(titles) == 1, "titles not forwarded")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"attributes":{"doi":"10.34863/x","url":"https://data.paradim.org/doi/10.34863/x"}}}`)
	}))
	defer server.Close()

	md := Assemble(FormInput{Title: "Data", Creators: []FormCreator{{Name: "A"}}})
	attrs, err := md.Attributes()
	require.NoError(t, err)

	client := NewClient(server.URL+"/", "u", "p", "10.34863")
	rec, err := client.Mint(context.Background(), attrs)
	require.NoError(t, err)
	assert.Equal(t, "10.34863/x", rec.DOI)
	assert.Equal(t, "https://data.paradim.org/doi/10.34863/x", rec.URL)
}

func TestMintRejected(t *testing.T) {
	tests := []struct {
		status int
		body   string
		msg    string
	}{
		{http.StatusUnprocessableEntity, `{"errors":[{"source":"doi","title":"This DOI has already been taken","detail":"This DOI has already been taken"},{"detail":"second"}]}`, "This DOI has already been taken"},
		{http.StatusUnauthorized, `{"errors":[{"status":"401","title":"Bad credentials."}]}`, MsgMintFailed},
		{http.StatusForbidden, `{"errors":[]}`, MsgMintFailed},
		{http.StatusInternalServerError, `<html>oops</html>`, MsgMintFailed},
	}
	for _, test := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(test.status)
			io.WriteString(w, test.body)
		}))

		client := NewClient(server.URL, "u", "p", "10.34863")
		rec, err := client.Mint(context.Background(), nil)
		server.Close()

		assert.Nil(t, rec)
		var apierr *APIError
		require.True(t, errors.As(err, &apierr), "expected APIError, got %v", err)
		assert.Equal(t, test.status, apierr.StatusCode)
		assert.Equal(t, test.msg, apierr.Message())
		assert.Equal(t, test.msg, apierr.Error())
	}
}

func TestMintConnectFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "u", "p", "10.34863")
	_, err := client.Mint(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrConnect), "expected ErrConnect, got %v", err)

	// unreadable success body
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, "not json")
	}))
	defer server.Close()
	client = NewClient(server.URL, "u", "p", "10.34863")
	_, err = client.Mint(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrConnect), "expected ErrConnect, got %v", err)
}

func TestMintResponseWithoutDOI(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"data": null}`,
		`{"data": {"id": "x", "type": "dois"}}`,
		`{"data": {"attributes": {"doi": "", "url": "https://example.org"}}}`,
	}
	for _, body := range bodies {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, body)
		}))
		client := NewClient(server.URL, "u", "p", "10.34863")
		rec, err := client.Mint(context.Background(), nil)
		server.Close()
		assert.Nil(t, rec, body)
		assert.True(t, errors.Is(err, ErrConnect), "expected ErrConnect for %s, got %v", body, err)
	}
}

func TestMintNotConfigured(t *testing.T) {
	for _, client := range []*Client{
		NewClient("", "", "p", "10.34863"),
		NewClient("", "u", "", "10.34863"),
		NewClient("", "u", "p", ""),
	} {
		assert.False(t, client.Configured())
		_, err := client.Mint(context.Background(), nil)
		assert.True(t, errors.Is(err, ErrNotConfigured))
	}
}
