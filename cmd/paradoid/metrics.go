package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels of the counters.
const (
	resultValid    = "valid"
	resultInvalid  = "invalid"
	resultMissing  = "missing"
	resultSuccess  = "success"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

var (
	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paradoid_validations_total",
		Help: "Metadata validations by outcome",
	}, []string{"result"})

	orcidLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paradoid_orcid_lookups_total",
		Help: "ORCID record lookups by outcome",
	}, []string{"result"})

	mintsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paradoid_mints_total",
		Help: "Draft DOI requests to DataCite by outcome",
	}, []string{"result"})

	downloadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "paradoid_download_bytes",
		Help:    "Size of downloaded metadata documents",
		Buckets: prometheus.ExponentialBuckets(256, 2, 8),
	})
)

// observeValidation counts the outcome of a validation.
func observeValidation(valid, missing bool) {
	switch {
	case missing:
		validationsTotal.WithLabelValues(resultMissing).Inc()
	case valid:
		validationsTotal.WithLabelValues(resultValid).Inc()
	default:
		validationsTotal.WithLabelValues(resultInvalid).Inc()
	}
}
