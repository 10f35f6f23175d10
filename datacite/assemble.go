package datacite

import (
	"fmt"
	"strings"
	"time"

	"github.com/paradim/paradoid/orcid"
)

const (
	// DefaultPublisher is the publisher of every dataset registered through
	// the form.
	DefaultPublisher = "PARADIM"
	// DefaultLandingBase is the URL prefix of the dataset landing pages.
	DefaultLandingBase = "https://data.paradim.org/doi/"

	msgNoTitle          = "Title is required"
	msgIncompleteAuthor = "Creator %d must have both first and last name"
	msgNoCreatorName    = "Creator %d must have a name"
	msgInvalidORCID     = "Creator %d has an invalid ORCID iD"
)

// FormCreator holds the raw form values of one creator row.
type FormCreator struct {
	FirstName   string `json:"firstName" yaml:"firstname"`
	LastName    string `json:"lastName" yaml:"lastname"`
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
	Type        string `json:"type" yaml:"type"`
	ORCID       string `json:"orcid" yaml:"orcid"`
}

// blank returns true if no value of the row was filled in. The creator type
// has a default and does not count.
func (c FormCreator) blank() bool {
	return strings.TrimSpace(c.FirstName) == "" &&
		strings.TrimSpace(c.LastName) == "" &&
		strings.TrimSpace(c.Name) == "" &&
		strings.TrimSpace(c.Affiliation) == "" &&
		strings.TrimSpace(c.ORCID) == ""
}

// named returns true if any of the name fields of the row is filled in.
func (c FormCreator) named() bool {
	return strings.TrimSpace(c.FirstName) != "" ||
		strings.TrimSpace(c.LastName) != "" ||
		strings.TrimSpace(c.Name) != ""
}

// FormInput is a snapshot of the form values a document is assembled from.
// A new value is built for every update of the form; Assemble never modifies
// it.
type FormInput struct {
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Keywords    string        `json:"keywords" yaml:"keywords"`
	RelatedDOI  string        `json:"relatedDoi" yaml:"relateddoi"`
	Creators    []FormCreator `json:"creators" yaml:"creators"`
	// DOI is the draft DOI reserved for the dataset, if any.
	DOI string `json:"doi" yaml:"doi"`
	// Publisher defaults to DefaultPublisher.
	Publisher string `json:"publisher" yaml:"publisher"`
	// PublicationYear defaults to the current year.
	PublicationYear int `json:"publicationYear" yaml:"publicationyear"`
	// LandingBase defaults to DefaultLandingBase.
	LandingBase string `json:"-" yaml:"-"`
}

// Check returns the problems that are reported directly on the form, before a
// document is assembled. The returned slice is empty if the input is
// complete.
func (in *FormInput) Check() []string {
	missing := make([]string, 0)
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, msgNoTitle)
	}
	for idx, c := range in.Creators {
		if id := strings.TrimSpace(c.ORCID); id != "" && !orcid.Valid(orcid.Normalise(id)) {
			missing = append(missing, fmt.Sprintf(msgInvalidORCID, idx+1))
		}
		if c.blank() || strings.TrimSpace(c.Name) != "" {
			continue
		}
		if ParseNameType(c.Type) != Person {
			if !c.named() {
				missing = append(missing, fmt.Sprintf(msgNoCreatorName, idx+1))
			}
			continue
		}
		if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
			missing = append(missing, fmt.Sprintf(msgIncompleteAuthor, idx+1))
		}
	}
	return missing
}

// Assemble builds the metadata document for the given form values.
func Assemble(in FormInput) *Metadata {
	md := &Metadata{
		Titles:             []Title{{Title: in.Title}},
		Creators:           make([]Creator, 0, len(in.Creators)),
		Publisher:          in.Publisher,
		PublicationYear:    in.PublicationYear,
		Descriptions:       []Description{},
		Subjects:           SplitKeywords(in.Keywords),
		RelatedIdentifiers: []RelatedIdentifier{},
		ResourceType: &ResourceType{
			ResourceTypeGeneral: "Dataset",
			ResourceType:        "Dataset",
		},
	}
	if md.Publisher == "" {
		md.Publisher = DefaultPublisher
	}
	if md.PublicationYear == 0 {
		md.PublicationYear = time.Now().Year()
	}

	// Rows without any name are reported by Check and left out here.
	for _, fc := range in.Creators {
		if !fc.named() {
			continue
		}
		md.Creators = append(md.Creators, AssembleCreator(fc))
	}

	if in.Description != "" {
		md.Descriptions = append(md.Descriptions, Description{
			Description:     in.Description,
			DescriptionType: "Abstract",
		})
	}

	if reldoi := strings.TrimSpace(in.RelatedDOI); reldoi != "" {
		md.RelatedIdentifiers = append(md.RelatedIdentifiers, RelatedIdentifier{
			RelatedIdentifier:     reldoi,
			RelatedIdentifierType: "DOI",
			RelationType:          "IsSupplementTo",
		})
	}

	if in.DOI != "" {
		base := in.LandingBase
		if base == "" {
			base = DefaultLandingBase
		}
		md.URL = LandingURL(base, in.DOI)
	}

	return md
}

// AssembleCreator maps one form row to a creator. When both first and last
// name are given the creator is named "Last, First" and carries the split
// names as well; otherwise the single name field is used, falling back to
// whichever part of the split name is present.
func AssembleCreator(fc FormCreator) Creator {
	first := strings.TrimSpace(fc.FirstName)
	last := strings.TrimSpace(fc.LastName)

	creator := Creator{NameType: ParseNameType(fc.Type)}
	switch {
	case first != "" && last != "":
		creator.Name = fmt.Sprintf("%s, %s", last, first)
		creator.GivenName = first
		creator.FamilyName = last
	case strings.TrimSpace(fc.Name) != "":
		creator.Name = strings.TrimSpace(fc.Name)
	default:
		creator.Name = last + first
	}

	if affiliation := strings.TrimSpace(fc.Affiliation); affiliation != "" {
		creator.Affiliation = []Affiliation{{Name: affiliation}}
	}

	// values that are not an ORCID iD are never sent as name identifiers
	if id := orcid.Normalise(fc.ORCID); orcid.Valid(id) {
		creator.NameIdentifiers = []NameIdentifier{{
			NameIdentifier:       id,
			NameIdentifierScheme: "ORCID",
			SchemeURI:            orcid.SchemeURI,
		}}
	}
	return creator
}

// SplitKeywords splits a comma separated keyword string into subjects.
// Whitespace around keywords is removed and empty entries are dropped.
func SplitKeywords(keywords string) []Subject {
	subjects := []Subject{}
	for _, kw := range strings.Split(keywords, ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		subjects = append(subjects, Subject{Subject: kw})
	}
	return subjects
}

// LandingURL returns the landing page URL of a DOI below base.
func LandingURL(base, doi string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + doi
}
