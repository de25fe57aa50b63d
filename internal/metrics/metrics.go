// Package metrics registra as métricas de uma execução do job e as envia ao
// Pushgateway no final, quando configurado.
package metrics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "meta_ads_etl"
	jobName   = "meta_ads_etl"
)

type Recorder struct {
	registry      *prometheus.Registry
	rowsExtracted *prometheus.CounterVec
	rowsLoaded    *prometheus.CounterVec
	loadDuration  *prometheus.HistogramVec
	failedJobs    *prometheus.CounterVec
	lastSuccess   prometheus.Gauge
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		rowsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_extracted_total",
			Help:      "Linhas extraídas da API por entidade",
		}, []string{"entity"}),
		rowsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Linhas carregadas no banco por entidade",
		}, []string{"entity"}),
		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_job_duration_seconds",
			Help:      "Duração dos jobs de carga",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"entity"}),
		failedJobs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_jobs_total",
			Help:      "Jobs de carga que falharam",
		}, []string{"entity"}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Horário da última execução completa",
		}),
	}
}

func (r *Recorder) RowsExtracted(entity string, rows int) {
	r.rowsExtracted.WithLabelValues(entity).Add(float64(rows))
}

func (r *Recorder) JobSucceeded(entity string, rows int64, duration time.Duration) {
	r.rowsLoaded.WithLabelValues(entity).Add(float64(rows))
	r.loadDuration.WithLabelValues(entity).Observe(duration.Seconds())
}

func (r *Recorder) JobFailed(entity string) {
	r.failedJobs.WithLabelValues(entity).Inc()
}

func (r *Recorder) RunSucceeded(at time.Time) {
	r.lastSuccess.Set(float64(at.Unix()))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Push envia todas as métricas ao Pushgateway agrupadas pelo id da conta
func (r *Recorder) Push(ctx context.Context, url, accountID string) error {
	pusher := push.New(url, jobName).Gatherer(r.registry)
	if accountID != "" {
		pusher = pusher.Grouping("account_id", accountID)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return errors.Wrap(err, "metrics: erro ao enviar para o pushgateway")
	}
	return nil
}
