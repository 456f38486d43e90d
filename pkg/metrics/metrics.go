package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface services use to record business outcomes.
type Recorder interface {
	RecordSignupSuccess()
	RecordSignupRejected()
	// RecordSignupDegraded counts signups where the identity committed but the
	// role binding failed. A non-zero rate is the alerting signal for the
	// reconciliation path.
	RecordSignupDegraded()
	RecordLoginAttempt(success bool)
	RecordHTTPStatus(statusCode int)
}

// Collector records outcomes as Prometheus metrics.
type Collector struct {
	signupSuccess  prometheus.Counter
	signupRejected prometheus.Counter
	signupDegraded prometheus.Counter
	loginAttempts  *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signupSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopauth_signup_success_total",
			Help: "Total signups that created an identity and bound a role",
		}),
		signupRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopauth_signup_rejected_total",
			Help: "Total signups rejected before an identity was created",
		}),
		signupDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopauth_signup_degraded_total",
			Help: "Total signups where the identity committed but role binding failed",
		}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopauth_login_attempts_total",
			Help: "Total login attempts by outcome",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopauth_http_status_total",
			Help: "Total HTTP responses by status code",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.signupSuccess, c.signupRejected, c.signupDegraded, c.loginAttempts, c.httpStatus)
	return c
}

func (c *Collector) RecordSignupSuccess()  { c.signupSuccess.Inc() }
func (c *Collector) RecordSignupRejected() { c.signupRejected.Inc() }
func (c *Collector) RecordSignupDegraded() { c.signupDegraded.Inc() }

func (c *Collector) RecordLoginAttempt(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.loginAttempts.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the HTTP handler exposing the registry's metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Noop is a Recorder that discards all observations. Used where no registry
// is wired, including tests.
type Noop struct{}

func (Noop) RecordSignupSuccess()        {}
func (Noop) RecordSignupRejected()       {}
func (Noop) RecordSignupDegraded()       {}
func (Noop) RecordLoginAttempt(bool)     {}
func (Noop) RecordHTTPStatus(int)        {}
