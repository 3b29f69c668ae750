package metrics

import "github.com/prometheus/client_golang/prometheus"

var CandleEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "atkcore_candle_events_total",
		Help: "candle store mutation events",
	}, []string{"event"})

var IndicatorJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "atkcore_indicator_jobs_total",
		Help: "computation jobs submitted per indicator kind and job type",
	}, []string{"kind", "job"})

var IndicatorJobErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "atkcore_indicator_job_errors_total",
		Help: "computation jobs that finished with an error",
	}, []string{"kind", "job"})

var IndicatorDroppedEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "atkcore_indicator_dropped_events_total",
		Help: "upstream events dropped because a job was already in flight",
	}, []string{"kind", "event"})

var IndicatorInflight = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "atkcore_indicator_inflight",
		Help: "computation jobs currently in flight",
	}, []string{"kind"})

func init() {
	prometheus.MustRegister(
		CandleEventsTotal,
		IndicatorJobsTotal,
		IndicatorJobErrorsTotal,
		IndicatorDroppedEventsTotal,
		IndicatorInflight,
	)
}
