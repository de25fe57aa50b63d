package warehouse

import (
	"context"
	"time"

	"github.com/vfg2006/meta-ads-etl/pkg/utils"
)

const jobIDPrefix = "load"

// asyncJob executa a carga em uma goroutine e expõe o resultado via Wait
type asyncJob struct {
	id     string
	done   chan struct{}
	result *Result
	err    error
}

func newJobID() (string, error) {
	return utils.GenerateID(jobIDPrefix)
}

func startJob(ctx context.Context, id string, table TableName, load func(ctx context.Context) (int64, error)) *asyncJob {
	job := &asyncJob{
		id:   id,
		done: make(chan struct{}),
	}

	go func() {
		defer close(job.done)

		start := time.Now()
		rows, err := load(ctx)
		if err != nil {
			job.err = NewFailure(id, err)
			return
		}

		job.result = &Result{
			JobID:    id,
			Table:    table,
			Rows:     rows,
			Duration: time.Since(start),
		}
	}()

	return job
}

func (j *asyncJob) ID() string {
	return j.id
}

func (j *asyncJob) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-j.done:
		return j.result, j.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
