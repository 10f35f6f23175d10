package main

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/paradim/paradoid/datacite"
	pdtmpl "github.com/paradim/paradoid/templates"
)

const downloadFilename = "datacite-metadata.json"

// Form actions submitted through the buttons of the form page.
const (
	actionMint       = "mint"
	actionAddCreator = "addcreator"
	actionGenerate   = "generate"
	actionORCID      = "orcid-"
)

var templateMap = map[string]string{
	"Head":     pdtmpl.Head,
	"Nav":      pdtmpl.Nav,
	"Footer":   pdtmpl.Footer,
	"FormPage": pdtmpl.FormPage,
}

// prepareTemplates initialises and parses a sequence of templates in the order
// they appear in the arguments. It always adds the Head, Nav and Footer
// templates first.
func prepareTemplates(templateNames ...string) (*template.Template, error) {
	tmpl := template.New("base")
	for _, tName := range append([]string{"Head", "Nav", "Footer"}, templateNames...) {
		tContent, ok := templateMap[tName]
		if !ok {
			return nil, fmt.Errorf("unknown template with name %q", tName)
		}
		var err error
		tmpl, err = tmpl.New(tName).Parse(tContent)
		if err != nil {
			log.WithFields(log.Fields{
				"source":   lpForm,
				"template": tName,
				"error":    err,
			}).Error("Could not parse template")
			return nil, err
		}
	}
	return tmpl, nil
}

// formPage is the data rendered by the FormPage template.
type formPage struct {
	Error     string
	Input     datacite.FormInput
	NameTypes []datacite.NameType
	Messages  []string
	JSON      string
}

func newFormPage(in datacite.FormInput) *formPage {
	if len(in.Creators) == 0 {
		in.Creators = []datacite.FormCreator{newFormCreator()}
	}
	return &formPage{
		Input:     in,
		NameTypes: []datacite.NameType{datacite.Person, datacite.Organization, datacite.Unknown},
	}
}

func newFormCreator() datacite.FormCreator {
	return datacite.FormCreator{Type: string(datacite.Person)}
}

// formValue returns the idx-th value of a repeated form field or an empty
// string if the field has fewer values.
func formValue(values []string, idx int) string {
	if idx < len(values) {
		return values[idx]
	}
	return ""
}

// parseFormInput reads the submitted form fields. Creator fields are submitted
// once per row and are matched up by position.
func parseFormInput(w http.ResponseWriter, r *http.Request) (datacite.FormInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		return datacite.FormInput{}, err
	}
	in := datacite.FormInput{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		Keywords:    r.PostForm.Get("keywords"),
		RelatedDOI:  r.PostForm.Get("relateddoi"),
		DOI:         strings.TrimSpace(r.PostForm.Get("doi")),
	}

	fields := []string{"creator_orcid", "creator_firstname", "creator_lastname", "creator_name", "creator_affiliation", "creator_type"}
	rows := 0
	for _, field := range fields {
		if n := len(r.PostForm[field]); n > rows {
			rows = n
		}
	}
	in.Creators = make([]datacite.FormCreator, 0, rows)
	for idx := 0; idx < rows; idx++ {
		in.Creators = append(in.Creators, datacite.FormCreator{
			ORCID:       formValue(r.PostForm["creator_orcid"], idx),
			FirstName:   formValue(r.PostForm["creator_firstname"], idx),
			LastName:    formValue(r.PostForm["creator_lastname"], idx),
			Name:        formValue(r.PostForm["creator_name"], idx),
			Affiliation: formValue(r.PostForm["creator_affiliation"], idx),
			Type:        formValue(r.PostForm["creator_type"], idx),
		})
	}
	return in, nil
}

// renderPage renders the form page. Rendering failures are reported as plain
// text.
func renderPage(w http.ResponseWriter, status int, page *formPage) {
	tmpl, err := prepareTemplates("FormPage")
	if err != nil {
		http.Error(w, msgRenderFailed, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "FormPage", page); err != nil {
		log.WithFields(log.Fields{
			"source": lpForm,
			"error":  err,
		}).Error("Error rendering form page")
	}
}

// renderForm shows an empty form.
func (srv *server) renderForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, newFormPage(datacite.FormInput{}))
}

// submitForm applies the action of a submitted form and renders the updated
// form.
func (srv *server) submitForm(w http.ResponseWriter, r *http.Request) {
	in, err := parseFormInput(w, r)
	if err != nil {
		log.WithFields(log.Fields{
			"source": lpForm,
			"error":  err,
		}).Info("Could not parse form")
		page := newFormPage(datacite.FormInput{})
		page.Error = msgInvalidRequest
		renderPage(w, http.StatusBadRequest, page)
		return
	}

	action := r.PostForm.Get("action")
	page := newFormPage(in)
	status := http.StatusOK
	switch {
	case action == actionMint:
		status = srv.formMint(r, page)
	case action == actionAddCreator:
		page.Input.Creators = append(page.Input.Creators, newFormCreator())
	case action == actionGenerate:
		srv.formGenerate(page)
	case strings.HasPrefix(action, actionORCID):
		status = srv.formORCID(r, page, strings.TrimPrefix(action, actionORCID))
	}
	renderPage(w, status, page)
}

// formMint reserves the draft DOI the form is filled in for.
func (srv *server) formMint(r *http.Request, page *formPage) int {
	attrs := map[string]interface{}{
		"publisher":       srv.conf.Publisher,
		"publicationYear": time.Now().Year(),
	}
	rec, err := srv.mint(r.Context(), attrs)
	if err != nil {
		status, msg := mintErrorMessage(err)
		if status == http.StatusInternalServerError {
			msg = msgMintRetry
		}
		page.Error = msg
		return status
	}
	log.WithFields(log.Fields{
		"source": lpForm,
		"doi":    rec.DOI,
	}).Info("Reserved draft DOI")
	page.Input.DOI = rec.DOI
	return http.StatusOK
}

// formORCID fills in the name and affiliation of a creator row from its
// ORCID record. Fields the record does not provide keep their values.
func (srv *server) formORCID(r *http.Request, page *formPage, idxstr string) int {
	idx, err := strconv.Atoi(idxstr)
	if err != nil || idx < 0 || idx >= len(page.Input.Creators) {
		page.Error = msgInvalidRequest
		return http.StatusBadRequest
	}
	creator := &page.Input.Creators[idx]
	person, err := srv.lookup(r.Context(), creator.ORCID)
	if err != nil {
		status, msg := orcidErrorMessage(err)
		page.Error = fmt.Sprintf(msgORCIDError, msg)
		return status
	}
	if person.FirstName != "" {
		creator.FirstName = person.FirstName
	}
	if person.LastName != "" {
		creator.LastName = person.LastName
	}
	if person.Affiliation != "" {
		creator.Affiliation = person.Affiliation
	}
	return http.StatusOK
}

// formGenerate assembles and validates the document and shows it, or the
// problems found.
func (srv *server) formGenerate(page *formPage) {
	if missing := page.Input.Check(); len(missing) > 0 {
		page.Messages = missing
		return
	}
	md := datacite.Assemble(srv.formInput(page.Input))
	res := md.Validate()
	observeValidation(res.Valid, res.Error != "")
	if !res.OK() {
		page.Messages = res.Messages()
		return
	}
	data, err := md.MarshalIndent()
	if err != nil {
		log.WithFields(log.Fields{
			"source": lpForm,
			"error":  err,
		}).Error("Could not serialise metadata")
		page.Error = msgValidationFailed
		return
	}
	page.JSON = string(data)
}

// download serves the document of the submitted form as a file.
func (srv *server) download(w http.ResponseWriter, r *http.Request) {
	in, err := parseFormInput(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	md := datacite.Assemble(srv.formInput(in))
	res := md.Validate()
	observeValidation(res.Valid, res.Error != "")
	if !res.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	data, err := md.MarshalIndent()
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgValidationFailed)
		return
	}

	log.WithFields(log.Fields{
		"source": lpForm,
		"doi":    in.DOI,
		"size":   humanize.Bytes(uint64(len(data))),
	}).Debug("Serving metadata download")
	downloadBytes.Observe(float64(len(data)))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadFilename))
	w.Write(data)
}
