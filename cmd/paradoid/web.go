package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/paradim/paradoid/datacite"
	"github.com/paradim/paradoid/orcid"
)

// maxBodySize limits request bodies of the API and the form.
const maxBodySize = 1 << 20

// orcidLookup retrieves public ORCID person records.
type orcidLookup interface {
	Lookup(ctx context.Context, orcidID string) (*orcid.Person, error)
}

// doiMinter reserves draft DOIs.
type doiMinter interface {
	Configured() bool
	Mint(ctx context.Context, metadata map[string]interface{}) (*datacite.DOIRecord, error)
}

// server holds the collaborators of the HTTP handlers. Handlers don't share
// any mutable state.
type server struct {
	conf   *Configuration
	orcid  orcidLookup
	minter doiMinter
}

func newServer(conf *Configuration, lookup orcidLookup, minter doiMinter) *server {
	return &server{conf: conf, orcid: lookup, minter: minter}
}

// routes sets up the router of the service.
func (srv *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate-schema", srv.validateSchema)
		r.Post("/fetch-orcid", srv.fetchORCID)
		r.Post("/mint-draft-doi", srv.mintDraftDOI)
		r.Post("/assemble", srv.assemble)
	})

	r.Get("/", srv.renderForm)
	r.Post("/", srv.submitForm)
	r.Post("/download", srv.download)

	r.Handle("/metrics", promhttp.Handler())

	// assets fetches static assets using a custom FileSystem
	assetserver := http.FileServer(newAssetFS(srv.conf.Assets))
	r.Handle("/assets/*", http.StripPrefix("/assets/", assetserver))

	return r
}

// requestLogger logs every request with its duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"source":   lpWeb,
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
			"request":  middleware.GetReqID(r.Context()),
		}).Debug("Handled request")
	})
}

// decodeBody decodes the JSON request body into value.
func decodeBody(w http.ResponseWriter, r *http.Request, value interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(value)
}

// validateSchema checks the document in the metadata key of the request body.
func (srv *server) validateSchema(w http.ResponseWriter, r *http.Request) {
	body := make(map[string]interface{})
	if err := decodeBody(w, r, &body); err != nil {
		log.WithFields(log.Fields{
			"source": lpWeb,
			"error":  err,
		}).Info("Invalid validation request")
		observeValidation(false, true)
		writeError(w, http.StatusBadRequest, msgNoMetadata)
		return
	}

	res := datacite.Validate(body["metadata"])
	observeValidation(res.Valid, res.Error != "")
	if res.Error != "" {
		writeJSON(w, http.StatusBadRequest, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type orcidRequest struct {
	ORCID   string `json:"orcid"`
	ORCIDID string `json:"orcidId"`
}

// orcidErrorMessage maps a lookup error to the response status and message.
func orcidErrorMessage(err error) (int, string) {
	if errors.Is(err, orcid.ErrInvalidID) {
		return http.StatusBadRequest, msgInvalidORCID
	}
	return http.StatusBadGateway, msgORCIDFetchFailed
}

// fetchORCID looks up the person record of an ORCID iD.
func (srv *server) fetchORCID(w http.ResponseWriter, r *http.Request) {
	req := orcidRequest{}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	id := req.ORCID
	if id == "" {
		id = req.ORCIDID
	}

	person, err := srv.lookup(r.Context(), id)
	if err != nil {
		status, msg := orcidErrorMessage(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// lookup retrieves an ORCID record and counts the outcome.
func (srv *server) lookup(ctx context.Context, id string) (*orcid.Person, error) {
	person, err := srv.orcid.Lookup(ctx, id)
	switch {
	case errors.Is(err, orcid.ErrInvalidID):
		orcidLookupsTotal.WithLabelValues(resultRejected).Inc()
	case err != nil:
		orcidLookupsTotal.WithLabelValues(resultFailed).Inc()
	default:
		orcidLookupsTotal.WithLabelValues(resultSuccess).Inc()
	}
	return person, err
}

// mintErrorMessage maps a mint error to the response status and message.
func mintErrorMessage(err error) (int, string) {
	var apierr *datacite.APIError
	switch {
	case errors.As(err, &apierr):
		return http.StatusBadGateway, apierr.Message()
	case errors.Is(err, datacite.ErrConnect):
		return http.StatusBadGateway, msgMintConnect
	case errors.Is(err, datacite.ErrNotConfigured):
		return http.StatusServiceUnavailable, msgMintNotReady
	default:
		return http.StatusInternalServerError, msgMintFailed
	}
}

// mint reserves a draft DOI and counts the outcome.
func (srv *server) mint(ctx context.Context, metadata map[string]interface{}) (*datacite.DOIRecord, error) {
	if !srv.minter.Configured() {
		log.WithFields(log.Fields{
			"source":  lpWeb,
			"missing": strings.Join(srv.conf.missingMintSettings(), ", "),
		}).Error("Mint requested but DataCite account is not configured")
		mintsTotal.WithLabelValues(resultFailed).Inc()
		return nil, datacite.ErrNotConfigured
	}
	rec, err := srv.minter.Mint(ctx, metadata)
	if err != nil {
		var apierr *datacite.APIError
		if errors.As(err, &apierr) {
			mintsTotal.WithLabelValues(resultRejected).Inc()
		} else {
			mintsTotal.WithLabelValues(resultFailed).Inc()
		}
		return nil, err
	}
	mintsTotal.WithLabelValues(resultSuccess).Inc()
	return rec, nil
}

type mintRequest struct {
	Metadata map[string]interface{} `json:"metadata"`
}

// mintDraftDOI reserves a draft DOI with the metadata of the request body.
func (srv *server) mintDraftDOI(w http.ResponseWriter, r *http.Request) {
	req := mintRequest{}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	rec, err := srv.mint(r.Context(), req.Metadata)
	if err != nil {
		status, msg := mintErrorMessage(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// formInput applies the server defaults to form values.
func (srv *server) formInput(in datacite.FormInput) datacite.FormInput {
	if in.Publisher == "" {
		in.Publisher = srv.conf.Publisher
	}
	in.LandingBase = srv.conf.LandingBase
	return in
}

type assembleResponse struct {
	Metadata   *datacite.Metadata `json:"metadata"`
	Validation *datacite.Result   `json:"validation"`
}

// assemble builds and validates the document for the form values of the
// request body.
func (srv *server) assemble(w http.ResponseWriter, r *http.Request) {
	in := datacite.FormInput{}
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	md := datacite.Assemble(srv.formInput(in))
	res := md.Validate()
	observeValidation(res.Valid, res.Error != "")
	writeJSON(w, http.StatusOK, assembleResponse{Metadata: md, Validation: res})
}

func web(cmd *cobra.Command, args []string) {
	conf := loadconfigOrExit(cmd)

	log.Printf("Starting up %s", cmd.Root().Version)

	// Pretty print configuration for debugging, but hide sensitive stuff
	j, _ := json.MarshalIndent(conf.hidden(), "", "  ")
	log.Debug(string(j))

	if missing := conf.missingMintSettings(); len(missing) > 0 {
		log.WithFields(log.Fields{
			"source":  lpConfig,
			"missing": strings.Join(missing, ", "),
		}).Warn("DOI minting is disabled")
	}

	srv := newServer(conf, conf.newORCIDClient(), conf.newDataCiteClient())

	fmt.Printf("Listening for connections on port %d\n", conf.Port)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", conf.Port), srv.routes()))
}
