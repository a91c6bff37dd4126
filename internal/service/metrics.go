package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SignRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_sign_requests_total",
			Help: "Score signing requests by result",
		},
		[]string{"result"},
	)
	ScoreSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_submissions_total",
			Help: "Score submissions by outcome",
		},
		[]string{"result"},
	)
	ReceiptFetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receipt_fetch_failures_total",
			Help: "Failed transaction receipt lookups, including not-yet-indexed",
		},
	)
	MintsReconciled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mints_reconciled_total",
			Help: "Unverified mints settled by reconciliation, by new status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(SignRequests)
	prometheus.MustRegister(ScoreSubmissions)
	prometheus.MustRegister(ReceiptFetchFailures)
	prometheus.MustRegister(MintsReconciled)
}

// resultLabel collapses an error into a low-cardinality metric label.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch Kind(err) {
	case ErrInvalidInput, ErrMissingFields, ErrInvalidAddress:
		return "invalid"
	case ErrNotConfigured:
		return "not_configured"
	case ErrTransactionMismatch:
		return "mismatch"
	case ErrDuplicateGame:
		return "duplicate"
	case ErrReceiptUnavailable:
		return "receipt_unavailable"
	case ErrSigningFailure:
		return "signing_failure"
	case ErrPersistenceFailure:
		return "persistence_failure"
	}
	return "error"
}
