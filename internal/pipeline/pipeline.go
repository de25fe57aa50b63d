// Package pipeline executa extração, escrita, carga e espera para cada entidade,
// em sequência.
package pipeline

//go:generate mockgen -source=pipeline.go -destination=mocks/pipeline.go -package=mocks

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/vfg2006/meta-ads-etl/infrastructure/warehouse"
	"github.com/vfg2006/meta-ads-etl/internal/config"
	"github.com/vfg2006/meta-ads-etl/internal/domain"
	"github.com/vfg2006/meta-ads-etl/internal/jobs"
	"github.com/vfg2006/meta-ads-etl/internal/metrics"
	"github.com/vfg2006/meta-ads-etl/pkg/log"
	"github.com/vfg2006/meta-ads-etl/pkg/tabular"
)

type Extractor interface {
	Extract(ctx context.Context, entity domain.Entity, emit func(domain.Row) error) error
}

type Runner struct {
	cfg       *config.Config
	extractor Extractor
	loader    warehouse.Loader
	metrics   *metrics.Recorder
}

// New monta o Runner; recorder pode ser nil
func New(cfg *config.Config, extractor Extractor, loader warehouse.Loader, recorder *metrics.Recorder) *Runner {
	return &Runner{
		cfg:       cfg,
		extractor: extractor,
		loader:    loader,
		metrics:   recorder,
	}
}

// Run processa as entidades na ordem recebida e para no primeiro erro
func (r *Runner) Run(ctx context.Context, entities []domain.Entity) error {
	for _, entity := range entities {
		if err := r.RunEntity(ctx, entity); err != nil {
			return err
		}
	}

	if r.metrics != nil {
		r.metrics.RunSucceeded(time.Now())
	}
	return nil
}

// RunEntity extrai a entidade para um CSV temporário, carrega na tabela
// {schema}.{prefix}_{suffix} substituindo o conteúdo e espera o job.
func (r *Runner) RunEntity(ctx context.Context, entity domain.Entity) error {
	logger := log.ForContext(ctx).WithField("entity", entity.String())
	logger.Info(entity.String())

	return tabular.WithTempFile(r.cfg.App.TempDir, entity.String()+"-*.csv", func(file *os.File) error {
		rows, err := r.write(ctx, entity, file)
		if err != nil {
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}

		if r.metrics != nil {
			r.metrics.RowsExtracted(entity.String(), rows)
		}
		logger.WithField("rows", rows).Debug("pipeline: arquivo gerado")

		table, err := r.table(entity)
		if err != nil {
			return err
		}

		job, err := r.loader.Import(ctx, warehouse.ImportRequest{
			Path:         file.Name(),
			Database:     r.cfg.Warehouse.DatabaseName,
			Table:        table,
			Headers:      true,
			ExistingRows: warehouse.Drop,
		})
		if err != nil {
			return err
		}

		err = jobs.ProcessOne(ctx, job,
			jobs.WithLogger(logger),
			jobs.WithSuccessAction(func(result *warehouse.Result) {
				logger.WithFields(log.Fields{
					"job_id":   result.JobID,
					"table":    result.Table.String(),
					"rows":     result.Rows,
					"duration": result.Duration.String(),
				}).Info("pipeline: carga concluída")

				if r.metrics != nil {
					r.metrics.JobSucceeded(entity.String(), result.Rows, result.Duration)
				}
			}),
		)

		var aggregate *jobs.AggregateFailure
		if r.metrics != nil && errors.As(err, &aggregate) {
			r.metrics.JobFailed(entity.String())
		}

		return err
	})
}

func (r *Runner) write(ctx context.Context, entity domain.Entity, file *os.File) (int, error) {
	writer := tabular.NewWriter(file, entity.Fields())
	if err := writer.WriteHeader(); err != nil {
		return 0, err
	}

	if err := r.extractor.Extract(ctx, entity, func(row domain.Row) error {
		return writer.Write(row)
	}); err != nil {
		return 0, err
	}

	if err := writer.Flush(); err != nil {
		return 0, err
	}

	return writer.Rows(), nil
}

func (r *Runner) table(entity domain.Entity) (warehouse.TableName, error) {
	schema, err := config.Require(config.SchemaNameKey, r.cfg.Warehouse.SchemaName)
	if err != nil {
		return warehouse.TableName{}, err
	}

	prefix, err := config.Require(config.TableNamePrefixKey, r.cfg.Warehouse.TableNamePrefix)
	if err != nil {
		return warehouse.TableName{}, err
	}

	return warehouse.NewTableName(schema, prefix, entity.TableSuffix()), nil
}
