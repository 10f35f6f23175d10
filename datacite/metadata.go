// Package datacite holds the DataCite metadata document used for dataset DOI
// registration: the document types, the schema validation, the assembly of
// documents from form input and the client for the DataCite REST API.
package datacite

import (
	"encoding/json"
)

// NameType is the type of a creator.
type NameType string

// Supported creator name types.
const (
	Person       NameType = "Person"
	Organization NameType = "Organization"
	Unknown      NameType = "Unknown"
)

// ParseNameType returns the NameType matching the given string. Empty or
// unrecognised values map to Person, which is the default form choice.
func ParseNameType(s string) NameType {
	switch NameType(s) {
	case Organization:
		return Organization
	case Unknown:
		return Unknown
	default:
		return Person
	}
}

// Title is a single entry of the titles list.
type Title struct {
	Title string `json:"title"`
}

// Affiliation of a creator.
type Affiliation struct {
	Name string `json:"name"`
}

// NameIdentifier identifies a creator in an external scheme (ORCID).
type NameIdentifier struct {
	NameIdentifier       string `json:"nameIdentifier"`
	NameIdentifierScheme string `json:"nameIdentifierScheme"`
	SchemeURI            string `json:"schemeUri"`
}

// Creator is a person or organisation credited with creating the dataset.
// Either Name or both GivenName and FamilyName identify the creator.
type Creator struct {
	Name            string           `json:"name,omitempty"`
	GivenName       string           `json:"givenName,omitempty"`
	FamilyName      string           `json:"familyName,omitempty"`
	NameType        NameType         `json:"nameType,omitempty"`
	Affiliation     []Affiliation    `json:"affiliation,omitempty"`
	NameIdentifiers []NameIdentifier `json:"nameIdentifiers,omitempty"`
}

// ResourceType describes the kind of resource being registered.
type ResourceType struct {
	ResourceTypeGeneral string `json:"resourceTypeGeneral"`
	ResourceType        string `json:"resourceType"`
}

// Description of the resource; the form only produces abstracts.
type Description struct {
	Description     string `json:"description"`
	DescriptionType string `json:"descriptionType"`
}

// Subject is a free text keyword.
type Subject struct {
	Subject string `json:"subject"`
}

// RelatedIdentifier links the dataset to another resource.
type RelatedIdentifier struct {
	RelatedIdentifier     string `json:"relatedIdentifier"`
	RelatedIdentifierType string `json:"relatedIdentifierType"`
	RelationType          string `json:"relationType"`
}

// Identifier is an alternate identifier of the resource.
type Identifier struct {
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifierType"`
}

// Metadata is the DataCite shaped document for a dataset.
type Metadata struct {
	Titles             []Title             `json:"titles"`
	Creators           []Creator           `json:"creators"`
	Publisher          string              `json:"publisher"`
	PublicationYear    int                 `json:"publicationYear"`
	URL                string              `json:"url"`
	Descriptions       []Description       `json:"descriptions"`
	Subjects           []Subject           `json:"subjects"`
	RelatedIdentifiers []RelatedIdentifier `json:"relatedIdentifiers"`
	Identifiers        []Identifier        `json:"identifiers,omitempty"`
	ResourceType       *ResourceType       `json:"resourceType,omitempty"`
}

// Attributes returns the document as a generic attribute map, the shape
// consumed by Validate and by the minting request.
func (md *Metadata) Attributes() (map[string]interface{}, error) {
	data, err := json.Marshal(md)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]interface{})
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// Validate checks the document. See Validate for the rules.
func (md *Metadata) Validate() *Result {
	if md == nil {
		return Validate(nil)
	}
	attrs, err := md.Attributes()
	if err != nil {
		return Validate(nil)
	}
	return Validate(attrs)
}

// MarshalIndent returns the pretty printed JSON document as it is offered for
// download.
func (md *Metadata) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(md, "", "  ")
}

// DOIRecord is the identifier and landing URL returned for a minted DOI.
type DOIRecord struct {
	DOI string `json:"doi"`
	URL string `json:"url"`
}
