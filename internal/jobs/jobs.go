// Package jobs espera jobs de carga e consolida as falhas em um único erro.
package jobs

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/vfg2006/meta-ads-etl/infrastructure/warehouse"
	"github.com/vfg2006/meta-ads-etl/pkg/log"
)

// AggregateFailure indica que Failed dos Total jobs falharam
type AggregateFailure struct {
	Failed int
	Total  int
}

func (e *AggregateFailure) Error() string {
	return fmt.Sprintf("%d of %d jobs failed", e.Failed, e.Total)
}

type options struct {
	onSuccess func(*warehouse.Result)
	onFailure func(warehouse.FailureResponse)
	logger    log.Logger
}

type Option func(*options)

func WithSuccessAction(fn func(*warehouse.Result)) Option {
	return func(o *options) {
		o.onSuccess = fn
	}
}

// WithFailureAction substitui o log de erro padrão de cada job que falhar
func WithFailureAction(fn func(warehouse.FailureResponse)) Option {
	return func(o *options) {
		o.onFailure = fn
	}
}

func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Process bloqueia em cada job, na ordem, e devolve *AggregateFailure se algum falhar
func Process(ctx context.Context, handles []warehouse.Job, opts ...Option) error {
	o := &options{logger: log.ForContext(ctx)}
	for _, opt := range opts {
		opt(o)
	}

	failed := 0
	for _, job := range handles {
		result, err := job.Wait(ctx)
		if err == nil {
			if o.onSuccess != nil {
				o.onSuccess(result)
			}
			continue
		}

		failed++
		response := failureResponse(job.ID(), err)

		if o.onFailure != nil {
			o.onFailure(response)
			continue
		}

		o.logger.WithField("job_id", response.ID()).
			Errorf("falha no job: o job com ID '%s' falhou com a mensagem de erro %s", response.ID(), response.Message())
	}

	if failed > 0 {
		return &AggregateFailure{Failed: failed, Total: len(handles)}
	}

	return nil
}

// ProcessOne é Process para um único job
func ProcessOne(ctx context.Context, job warehouse.Job, opts ...Option) error {
	return Process(ctx, []warehouse.Job{job}, opts...)
}

// failureResponse usa a resposta do job ou monta uma a partir de erros de espera
func failureResponse(id string, err error) warehouse.FailureResponse {
	var failure *warehouse.JobFailure
	if errors.As(err, &failure) {
		return failure.Response
	}
	return warehouse.FailureResponse{"id": id, "error": err.Error()}
}
