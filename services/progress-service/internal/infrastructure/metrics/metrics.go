package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups the service's prometheus metrics. A nil *Collectors is
// valid and records nothing.
type Collectors struct {
	LessonCompletions      prometheus.Counter
	ProgressReads          prometheus.Counter
	CertificateClaims      *prometheus.CounterVec
	CertificateConstraints *prometheus.CounterVec
	Verifications          *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		LessonCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "progress",
			Name:      "lesson_completions_total",
			Help:      "Lesson completion upserts.",
		}),
		ProgressReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "progress",
			Name:      "course_progress_reads_total",
			Help:      "Course progress summaries computed.",
		}),
		CertificateClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "progress",
			Name:      "certificate_claims_total",
			Help:      "Certificate claims by outcome.",
		}, []string{"outcome"}),
		CertificateConstraints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "progress",
			Name:      "certificate_constraint_recoveries_total",
			Help:      "Unique constraint violations recovered during issuance.",
		}, []string{"kind"}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "progress",
			Name:      "certificate_verifications_total",
			Help:      "Public certificate verifications by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(c.LessonCompletions, c.ProgressReads, c.CertificateClaims, c.CertificateConstraints, c.Verifications)
	return c
}

func (c *Collectors) LessonCompleted() {
	if c != nil {
		c.LessonCompletions.Inc()
	}
}

func (c *Collectors) ProgressRead() {
	if c != nil {
		c.ProgressReads.Inc()
	}
}

// Claim outcomes: issued, existing, not_eligible, error.
func (c *Collectors) Claim(outcome string) {
	if c != nil {
		c.CertificateClaims.WithLabelValues(outcome).Inc()
	}
}

// Constraint kinds: user_course, number.
func (c *Collectors) Constraint(kind string) {
	if c != nil {
		c.CertificateConstraints.WithLabelValues(kind).Inc()
	}
}

// Verification results: found, not_found, error.
func (c *Collectors) Verification(result string) {
	if c != nil {
		c.Verifications.WithLabelValues(result).Inc()
	}
}
