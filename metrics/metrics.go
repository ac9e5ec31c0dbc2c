package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	PostsAnalyzed *prometheus.CounterVec
	AlertsCreated *prometheus.CounterVec
	EmailsSent    *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PostsAnalyzed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posts_analyzed_total",
				Help: "Total number of analyzed posts and texts by sentiment label",
			},
			[]string{"sentiment"},
		),
		AlertsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alerts_created_total",
				Help: "Total number of review alerts by source",
			},
			[]string{"source"},
		),
		EmailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emails_sent_total",
				Help: "Total number of notification emails by result",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"path", "status"},
		),
	}

	reg.MustRegister(m.PostsAnalyzed)
	reg.MustRegister(m.AlertsCreated)
	reg.MustRegister(m.EmailsSent)
	reg.MustRegister(m.HTTPRequests)

	return m
}

// The helpers below accept a nil receiver so callers can run without metrics.

func (m *Metrics) Analyzed(sentiment string) {
	if m != nil {
		m.PostsAnalyzed.WithLabelValues(sentiment).Inc()
	}
}

func (m *Metrics) AlertCreated(source string) {
	if m != nil {
		m.AlertsCreated.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) EmailResult(err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.EmailsSent.WithLabelValues(result).Inc()
}

func (m *Metrics) Request(path, status string) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(path, status).Inc()
	}
}
