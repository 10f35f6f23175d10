// Package orcid looks up researcher names and affiliations in the public
// ORCID registry.
package orcid

import (
	"errors"
	"regexp"
	"strings"
)

// SchemeURI is the scheme URI of ORCID name identifiers.
const SchemeURI = "https://orcid.org"

var (
	// ErrInvalidID is returned when the registry rejects the identifier or
	// the identifier is not an ORCID iD at all.
	ErrInvalidID = errors.New("invalid ORCID iD")
	// ErrFetchFailed is returned when the registry could not be reached or
	// its response could not be read.
	ErrFetchFailed = errors.New("failed to fetch ORCID data")
)

var idRE = regexp.MustCompile(`^([[:digit:]]{4}-){3}[[:digit:]]{3}[[:digit:]Xx]$`)

// idPrefixes are stripped from a value before it is matched as a bare iD.
var idPrefixes = []string{
	"https://orcid.org/",
	"http://orcid.org/",
	"https://www.orcid.org/",
	"http://www.orcid.org/",
	"orcid.org/",
	"orcid:",
}

// Normalise extracts the bare iD from a value that may be given as an
// orcid.org URL or with an "orcid:" prefix. Values that are not an ORCID-like
// iD are returned trimmed.
func Normalise(value string) string {
	value = strings.TrimSpace(value)
	id := strings.TrimSuffix(value, "/")
	lower := strings.ToLower(id)
	for _, prefix := range idPrefixes {
		if strings.HasPrefix(lower, prefix) {
			id = id[len(prefix):]
			break
		}
	}
	if idRE.MatchString(id) {
		return strings.ToUpper(id)
	}
	return value
}

// Valid returns true if value is a bare ORCID-like iD.
func Valid(value string) bool {
	return idRE.MatchString(value)
}

// Person is the part of an ORCID record used to fill in a creator.
type Person struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Affiliation string `json:"affiliation"`
}

// record is a decoded /person response. Any level may be missing from a
// response or carry an unexpected type; both read as empty.
type record map[string]interface{}

// person extracts the names and the organisation of the first employment.
func (r record) person() *Person {
	root := map[string]interface{}(r)
	return &Person{
		FirstName:   stringAt(root, "name", "given-names", "value"),
		LastName:    stringAt(root, "name", "family-name", "value"),
		Affiliation: stringAt(root, "employments", "affiliation-group", 0, "summaries", 0, "employment-summary", "organization", "name"),
	}
}

// stringAt follows path through nested objects (string keys) and arrays
// (int indices) and returns the string found at its end, or "".
func stringAt(v interface{}, path ...interface{}) string {
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := v.(map[string]interface{})
			if !ok {
				return ""
			}
			v = obj[key]
		case int:
			arr, ok := v.([]interface{})
			if !ok || key >= len(arr) {
				return ""
			}
			v = arr[key]
		}
	}
	str, _ := v.(string)
	return str
}
