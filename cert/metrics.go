package cert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// extractionTotal tracks metadata extraction outcomes
	// Labels: result (ok, or the rejection code)
	extractionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peercert_extractions_total",
			Help: "Total number of peer certificate metadata extractions grouped by result",
		},
		[]string{"result"},
	)

	// fingerprintTotal tracks fingerprint calculations
	// Labels: algorithm (sha1, sha256, invalid), result (ok, or the rejection code)
	fingerprintTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peercert_fingerprints_total",
			Help: "Total number of peer certificate fingerprint calculations",
		},
		[]string{"algorithm", "result"},
	)

	// altNameTotal tracks decoded subject alternative names
	// Labels: type (dns, email, uri, ipv4, ipv6)
	altNameTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peercert_alt_names_total",
			Help: "Total number of decoded subject alternative names grouped by type",
		},
		[]string{"type"},
	)
)

// recordExtraction records the outcome of a metadata extraction
func recordExtraction(result string) {
	extractionTotal.WithLabelValues(result).Inc()
}

// recordFingerprint records the outcome of a fingerprint calculation
func recordFingerprint(algorithm, result string) {
	fingerprintTotal.WithLabelValues(algorithm, result).Inc()
}

// recordAltName records a decoded subject alternative name
func recordAltName(nameType string) {
	altNameTotal.WithLabelValues(nameType).Inc()
}
