package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paradim/paradoid/datacite"
	"github.com/paradim/paradoid/orcid"
)

func postForm(handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// filledForm returns the values of a form with a reserved DOI and a single
// complete creator row.
func filledForm() url.Values {
	return url.Values{
		"doi":                 {"10.80000/abcd-1234"},
		"title":               {"Thin film growth of LuFe2O4"},
		"description":         {"MBE growth series"},
		"keywords":            {"MBE, thin films"},
		"relateddoi":          {"10.1103/PhysRevB.00.000000"},
		"creator_orcid":       {"0000-0002-1825-0097"},
		"creator_firstname":   {"Jane"},
		"creator_lastname":    {"Doe"},
		"creator_name":        {""},
		"creator_affiliation": {"Cornell University"},
		"creator_type":        {"Person"},
	}
}

func TestPrepareTemplates(t *testing.T) {
	tmpl, err := prepareTemplates("FormPage")
	if err != nil {
		t.Fatalf("Failed to parse FormPage template: %s", err.Error())
	}
	if tmpl.Lookup("FormPage") == nil {
		t.Fatal("FormPage template not defined")
	}
	if _, err := prepareTemplates("LandingPage"); err == nil {
		t.Fatal("Expected error on unknown template")
	}
}

func TestRenderForm(t *testing.T) {
	handler := newTestHandler(&fakeLookup{}, &fakeMinter{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Start DOI Creation")
	assert.NotContains(t, body, `name="title"`)
}

// TestPageAssets checks that every asset linked from the rendered pages is
// shipped in the assets directory.
func TestPageAssets(t *testing.T) {
	handler := newTestHandler(&fakeLookup{}, &fakeMinter{})
	form := filledForm()
	form.Set("action", actionGenerate)
	pages := []*httptest.ResponseRecorder{
		postForm(handler, "/", url.Values{"action": {actionMint}}),
		postForm(handler, "/", form),
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	start := httptest.NewRecorder()
	handler.ServeHTTP(start, req)
	pages = append(pages, start)

	assetRE := regexp.MustCompile(`(?:href|src)="/assets/([^"]+)"`)
	for _, page := range pages {
		links := assetRE.FindAllStringSubmatch(page.Body.String(), -1)
		require.NotEmpty(t, links, "page links no assets")
		for _, link := range links {
			_, err := os.Stat(filepath.Join("..", "..", "assets", filepath.FromSlash(link[1])))
			assert.NoError(t, err, "linked asset %q missing", link[1])
		}
	}
}

func TestParseFormInput(t *testing.T) {
	form := filledForm()
	form["creator_firstname"] = append(form["creator_firstname"], "ACME")
	form["creator_name"] = append(form["creator_name"], "ACME Labs")
	form["creator_type"] = append(form["creator_type"], "Organization")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	in, err := parseFormInput(httptest.NewRecorder(), req)
	require.NoError(t, err)

	assert.Equal(t, "Thin film growth of LuFe2O4", in.Title)
	assert.Equal(t, "10.80000/abcd-1234", in.DOI)
	require.Len(t, in.Creators, 2)
	assert.Equal(t, datacite.FormCreator{
		FirstName:   "Jane",
		LastName:    "Doe",
		Affiliation: "Cornell University",
		Type:        "Person",
		ORCID:       "0000-0002-1825-0097",
	}, in.Creators[0])
	// short fields are padded with empty values
	assert.Equal(t, datacite.FormCreator{FirstName: "ACME", Name: "ACME Labs", Type: "Organization"}, in.Creators[1])
}

func TestFormMint(t *testing.T) {
	minter := &fakeMinter{
		configured: true,
		rec:        &datacite.DOIRecord{DOI: "10.80000/abcd-1234", URL: "https://data.paradim.org/doi/10.80000/abcd-1234"},
	}
	handler := newTestHandler(&fakeLookup{}, minter)

	rec := postForm(handler, "/", url.Values{"action": {actionMint}})
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "DOI: 10.80000/abcd-1234")
	assert.Contains(t, body, `name="title"`)

	require.Len(t, minter.attrs, 1)
	assert.Equal(t, "PARADIM", minter.attrs[0]["publisher"])
	assert.Contains(t, minter.attrs[0], "publicationYear")

	t.Run("failure", func(t *testing.T) {
		handler := newTestHandler(&fakeLookup{}, &fakeMinter{configured: true, err: fmt.Errorf("boom")})
		rec := postForm(handler, "/", url.Values{"action": {actionMint}})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), msgMintRetry)
		assert.Contains(t, rec.Body.String(), "Start DOI Creation")
	})

	t.Run("not configured", func(t *testing.T) {
		handler := newTestHandler(&fakeLookup{}, &fakeMinter{})
		rec := postForm(handler, "/", url.Values{"action": {actionMint}})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "DOI registration is not configured")
	})
}

func TestFormAddCreator(t *testing.T) {
	handler := newTestHandler(&fakeLookup{}, &fakeMinter{})
	form := filledForm()
	form.Set("action", actionAddCreator)
	rec := postForm(handler, "/", form)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), `name="creator_lastname"`))
	assert.Contains(t, rec.Body.String(), `value="Doe"`)
}

func TestFormORCID(t *testing.T) {
	lookup := &fakeLookup{person: &orcid.Person{FirstName: "Josiah", LastName: "Carberry"}}
	handler := newTestHandler(lookup, &fakeMinter{})

	form := filledForm()
	form.Set("action", actionORCID+"0")
	rec := postForm(handler, "/", form)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="Josiah"`)
	assert.Contains(t, body, `value="Carberry"`)
	// the record has no affiliation; the form value stays
	assert.Contains(t, body, `value="Cornell University"`)
	assert.Equal(t, []string{"0000-0002-1825-0097"}, lookup.ids)

	t.Run("lookup error", func(t *testing.T) {
		handler := newTestHandler(&fakeLookup{err: orcid.ErrInvalidID}, &fakeMinter{})
		form := filledForm()
		form.Set("action", actionORCID+"0")
		rec := postForm(handler, "/", form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "ORCID Error: "+msgInvalidORCID)
		assert.Contains(t, rec.Body.String(), `value="Jane"`)
	})

	t.Run("bad row", func(t *testing.T) {
		lookup := &fakeLookup{}
		handler := newTestHandler(lookup, &fakeMinter{})
		for _, action := range []string{"orcid-1", "orcid--1", "orcid-x"} {
			form := filledForm()
			form.Set("action", action)
			rec := postForm(handler, "/", form)
			assert.Equal(t, http.StatusBadRequest, rec.Code, action)
		}
		assert.Empty(t, lookup.ids)
	})
}

func TestFormGenerate(t *testing.T) {
	handler := newTestHandler(&fakeLookup{}, &fakeMinter{})

	form := filledForm()
	form.Set("action", actionGenerate)
	rec := postForm(handler, "/", form)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="output"`)
	assert.Contains(t, body, "Doe, Jane")
	assert.Contains(t, body, "https://data.paradim.org/doi/10.80000/abcd-1234")
	assert.NotContains(t, body, `id="validation"`)

	form = filledForm()
	form.Set("action", actionGenerate)
	form.Set("title", " ")
	form.Set("creator_lastname", "")
	rec = postForm(handler, "/", form)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, `id="validation"`)
	assert.Contains(t, body, "Title is required")
	assert.Contains(t, body, "Creator 1 must have both first and last name")
	assert.NotContains(t, body, `id="output"`)
}

func TestDownload(t *testing.T) {
	handler := newTestHandler(&fakeLookup{}, &fakeMinter{})

	rec := postForm(handler, "/download", filledForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="datacite-metadata.json"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	md := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &md))
	assert.True(t, datacite.Validate(md).OK())
	assert.Equal(t, "PARADIM", md["publisher"])

	form := filledForm()
	form.Del("title")
	rec = postForm(handler, "/download", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), datacite.MsgInvalidTitle)
}
