// Package metrics exposes the billing service's Prometheus instruments.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pharmapos/internal/domain"
)

// Metrics holds the tax engine counters. A nil *Metrics is a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	invoicesIssued    *prometheus.CounterVec
	creditNotesIssued *prometheus.CounterVec
	rateResolutions   *prometheus.CounterVec
	numberRetries     *prometheus.CounterVec
	roundOffPaise     prometheus.Histogram
}

// New registers the instruments on a fresh registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the instruments on registerer and serves gatherer.
func NewWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		gatherer: gatherer,
		invoicesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmapos_invoices_issued_total",
			Help: "Invoices issued, by supply type.",
		}, []string{"supply_type"}),
		creditNotesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmapos_credit_notes_issued_total",
			Help: "Credit notes issued, by supply type.",
		}, []string{"supply_type"}),
		rateResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmapos_rate_resolutions_total",
			Help: "Line rate resolutions, by the rule that produced the rate.",
		}, []string{"source"}),
		numberRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmapos_document_number_retries_total",
			Help: "Transactions retried after a document number collision.",
		}, []string{"kind"}),
		roundOffPaise: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pharmapos_invoice_round_off_paise",
			Help:    "Absolute rupee round-off applied to issued invoices.",
			Buckets: []float64{0, 5, 10, 20, 30, 40, 50},
		}),
	}
	registerer.MustRegister(m.invoicesIssued, m.creditNotesIssued, m.rateResolutions, m.numberRetries, m.roundOffPaise)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) InvoiceIssued(supply domain.SupplyType, roundOff domain.Paise) {
	if m == nil {
		return
	}
	m.invoicesIssued.WithLabelValues(string(supply)).Inc()
	if roundOff < 0 {
		roundOff = -roundOff
	}
	m.roundOffPaise.Observe(float64(roundOff))
}

func (m *Metrics) CreditNoteIssued(supply domain.SupplyType) {
	if m == nil {
		return
	}
	m.creditNotesIssued.WithLabelValues(string(supply)).Inc()
}

func (m *Metrics) RateResolved(source domain.RateSource) {
	if m == nil {
		return
	}
	m.rateResolutions.WithLabelValues(string(source)).Inc()
}

func (m *Metrics) NumberRetry(kind domain.DocumentKind) {
	if m == nil {
		return
	}
	m.numberRetries.WithLabelValues(string(kind)).Inc()
}
