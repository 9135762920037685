// Package metrics define las métricas Prometheus del dominio. Vive aparte para
// evitar ciclos entre los servicios y el paquete http.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthLogins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smartsurvey_auth_logins_total",
		Help: "Callbacks OAuth por proveedor y resultado",
	}, []string{"provider", "result"}) // result: success|failed

	SurveysSaved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smartsurvey_surveys_saved_total",
		Help: "Encuestas guardadas por resultado",
	}, []string{"outcome"}) // created|updated|claimed|generated

	ResultsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smartsurvey_results_submitted_total",
		Help: "Respuestas recibidas",
	})

	LLMRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smartsurvey_llm_requests_total",
		Help: "Llamadas a proveedores LLM por resultado",
	}, []string{"provider", "result"}) // success|failed|fallback

	LLMLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smartsurvey_llm_latency_seconds",
		Help:    "Latencia de las llamadas LLM",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider"})

	SurveyCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smartsurvey_survey_cache_total",
		Help: "Lecturas de la caché de encuestas",
	}, []string{"result"}) // hit|miss|error
)

// Register registra las métricas de dominio en reg (o el default si nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{AuthLogins, SurveysSaved, ResultsSubmitted, LLMRequests, LLMLatency, SurveyCache} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
