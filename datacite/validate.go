package datacite

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Validation messages returned to the user.
const (
	MsgNoMetadata         = "No metadata provided"
	MsgMissingField       = "Missing required field: %s"
	MsgInvalidTitles      = "Titles must be a non-empty array"
	MsgInvalidTitle       = "Each title must have a non-empty title property"
	MsgInvalidCreators    = "Creators must be a non-empty array"
	MsgInvalidCreator     = "Each creator must have either a name or both givenName and familyName"
	MsgInvalidYear        = "Publication year must be a four-digit year"
	MsgInvalidResource    = "ResourceType must include both resourceTypeGeneral and resourceType"
	MsgInvalidIdentifiers = "Identifiers must be an array"
	MsgInvalidIdentifier  = "Each identifier must have both identifier and identifierType"
)

// requiredFields of a metadata document, in reporting order.
var requiredFields = []string{
	"titles",
	"creators",
	"publisher",
	"publicationYear",
	"resourceType",
}

// Result is the outcome of a validation. Exactly one of the fields is set:
// Valid when the document passed, Errors with the collected violations, or
// Error when no document was provided at all.
type Result struct {
	Valid  bool     `json:"valid,omitempty"`
	Errors []string `json:"errors,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// OK returns true if the document passed validation.
func (r *Result) OK() bool {
	return r.Valid && len(r.Errors) == 0 && r.Error == ""
}

// Messages returns all messages of the result as a flat list.
func (r *Result) Messages() []string {
	if r.Error != "" {
		return []string{r.Error}
	}
	return r.Errors
}

// ValidateJSON decodes a JSON document and validates it. A body that does not
// decode is reported like a missing document.
func ValidateJSON(data []byte) *Result {
	var metadata interface{}
	if err := json.Unmarshal(data, &metadata); err != nil {
		return Validate(nil)
	}
	return Validate(metadata)
}

// Validate checks a decoded metadata document against the supported subset of
// the DataCite schema. All checks run independently and every violation is
// reported; only an absent document short circuits.
//
// Required fields are tested for truthiness: absent, null, false, zero and
// empty string values are all reported as missing. A publication year of 0 is
// therefore reported as missing rather than malformed.
func Validate(metadata interface{}) *Result {
	if !truthy(metadata) {
		return &Result{Error: MsgNoMetadata}
	}
	doc, ok := metadata.(map[string]interface{})
	if !ok {
		// Non-object documents carry none of the fields.
		doc = map[string]interface{}{}
	}

	errors := make([]string, 0, len(requiredFields))
	for _, field := range requiredFields {
		if !truthy(doc[field]) {
			errors = append(errors, fmt.Sprintf(MsgMissingField, field))
		}
	}

	if titles := doc["titles"]; truthy(titles) {
		list, ok := titles.([]interface{})
		if !ok || len(list) == 0 {
			errors = append(errors, MsgInvalidTitles)
		} else if !all(list, validTitle) {
			errors = append(errors, MsgInvalidTitle)
		}
	}

	if creators := doc["creators"]; truthy(creators) {
		list, ok := creators.([]interface{})
		if !ok || len(list) == 0 {
			errors = append(errors, MsgInvalidCreators)
		} else if !all(list, validCreator) {
			errors = append(errors, MsgInvalidCreator)
		}
	}

	if year := doc["publicationYear"]; truthy(year) && !validYear(year) {
		errors = append(errors, MsgInvalidYear)
	}

	if rt := doc["resourceType"]; truthy(rt) {
		obj, _ := rt.(map[string]interface{})
		if !truthy(obj["resourceTypeGeneral"]) || !truthy(obj["resourceType"]) {
			errors = append(errors, MsgInvalidResource)
		}
	}

	if ids := doc["identifiers"]; truthy(ids) {
		list, ok := ids.([]interface{})
		if !ok {
			errors = append(errors, MsgInvalidIdentifiers)
		} else if !all(list, validIdentifier) {
			errors = append(errors, MsgInvalidIdentifier)
		}
	}

	if len(errors) > 0 {
		return &Result{Errors: errors}
	}
	return &Result{Valid: true}
}

func all(list []interface{}, check func(map[string]interface{}) bool) bool {
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok || !check(obj) {
			return false
		}
	}
	return true
}

func validTitle(title map[string]interface{}) bool {
	s, ok := title["title"].(string)
	return ok && s != ""
}

func validCreator(creator map[string]interface{}) bool {
	if truthy(creator["name"]) {
		return true
	}
	return truthy(creator["givenName"]) && truthy(creator["familyName"])
}

func validIdentifier(id map[string]interface{}) bool {
	return truthy(id["identifier"]) && truthy(id["identifierType"])
}

// validYear accepts integers in [1000, 9999] given either as a number or as a
// string in canonical form. "2024" and 2024 are valid; "02024", "2024.0",
// " 2024" and "abcd" are not.
func validYear(value interface{}) bool {
	var repr string
	switch v := value.(type) {
	case string:
		repr = v
	case float64:
		repr = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		repr = v.String()
	case int:
		repr = strconv.Itoa(v)
	case int64:
		repr = strconv.FormatInt(v, 10)
	default:
		return false
	}
	year, ok := parseLeadingInt(repr)
	if !ok || strconv.Itoa(year) != repr {
		return false
	}
	return year >= 1000 && year <= 9999
}

// parseLeadingInt reads an optionally signed decimal integer from the start of
// s, skipping leading whitespace and ignoring anything after the digits.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// truthy reports whether a decoded JSON value counts as present.
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case json.Number:
		f, err := v.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}
