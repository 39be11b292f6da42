package metrics

import "github.com/prometheus/client_golang/prometheus"

// RequestMetrics counts request lifecycle outcomes.
type RequestMetrics struct {
	created   *prometheus.CounterVec
	duplicate prometheus.Counter
	treated   prometheus.Counter
}

// NewRequestMetrics registers the request lifecycle metrics.
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	if reg == nil {
		return &RequestMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "requests_created",
		Help: "Requests created, labeled by request type.",
	}, []string{"type"})
	duplicate := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "requests_duplicate_rejected",
		Help: "Request creations rejected as duplicates.",
	})
	treated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "requests_treated",
		Help: "Requests transitioned to TREATED.",
	})
	reg.MustRegister(created, duplicate, treated)
	return &RequestMetrics{
		created:   created,
		duplicate: duplicate,
		treated:   treated,
	}
}

// IncCreated counts a successful creation for the request type.
func (r *RequestMetrics) IncCreated(requestType string) {
	if r == nil || r.created == nil {
		return
	}
	r.created.WithLabelValues(normalizeLabel(requestType)).Inc()
}

// IncDuplicate counts a duplicate rejection.
func (r *RequestMetrics) IncDuplicate() {
	if r == nil || r.duplicate == nil {
		return
	}
	r.duplicate.Inc()
}

// IncTreated counts a PENDING to TREATED transition.
func (r *RequestMetrics) IncTreated() {
	if r == nil || r.treated == nil {
		return
	}
	r.treated.Inc()
}
