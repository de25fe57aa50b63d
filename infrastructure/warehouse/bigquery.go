package warehouse

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/vfg2006/meta-ads-etl/internal/config"
)

// BigQueryLoader usa load jobs nativos. DATABASE_NAME é o projeto e SCHEMA_NAME o dataset.
type BigQueryLoader struct {
	cfg     config.Warehouse
	mu      sync.Mutex
	clients map[string]*bigquery.Client
	storage *storage.Client
}

func NewBigQueryLoader(cfg config.Warehouse) *BigQueryLoader {
	return &BigQueryLoader{
		cfg:     cfg,
		clients: make(map[string]*bigquery.Client),
	}
}

func (l *BigQueryLoader) options() []option.ClientOption {
	var opts []option.ClientOption
	if l.cfg.BigQueryCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(l.cfg.BigQueryCredentialsFile))
	}
	return opts
}

func (l *BigQueryLoader) client(ctx context.Context, project string) (*bigquery.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if client, ok := l.clients[project]; ok {
		return client, nil
	}

	client, err := bigquery.NewClient(ctx, project, l.options()...)
	if err != nil {
		return nil, errors.Wrap(err, "bigquery: erro ao criar cliente")
	}
	if l.cfg.BigQueryLocation != "" {
		client.Location = l.cfg.BigQueryLocation
	}
	l.clients[project] = client

	return client, nil
}

func (l *BigQueryLoader) storageClient(ctx context.Context) (*storage.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.storage != nil {
		return l.storage, nil
	}

	client, err := storage.NewClient(ctx, l.options()...)
	if err != nil {
		return nil, errors.Wrap(err, "gcs: erro ao criar cliente")
	}
	l.storage = client

	return client, nil
}

func (l *BigQueryLoader) Import(ctx context.Context, req ImportRequest) (Job, error) {
	project, err := config.Require(config.DatabaseNameKey, req.Database)
	if err != nil {
		return nil, err
	}

	columns, err := columnsFor(req)
	if err != nil {
		return nil, err
	}

	client, err := l.client(ctx, project)
	if err != nil {
		return nil, err
	}

	source, cleanup, err := l.source(ctx, req, columns)
	if err != nil {
		return nil, err
	}

	loader := client.Dataset(req.Table.Schema).Table(req.Table.Name).LoaderFrom(source)
	loader.CreateDisposition = bigquery.CreateIfNeeded
	loader.WriteDisposition = writeDisposition(req.ExistingRows)
	loader.Labels = map[string]string{"origin": "meta-ads-etl"}

	start := time.Now()
	job, err := loader.Run(ctx)
	if err != nil {
		cleanup(ctx)
		return nil, errors.Wrapf(err, "bigquery: erro ao iniciar carga de %s", req.Table)
	}

	logrus.WithFields(logrus.Fields{
		"job_id": job.ID(),
		"table":  req.Table.String(),
		"mode":   req.ExistingRows.String(),
	}).Debug("bigquery: carga iniciada")

	return &bigQueryJob{
		job:     job,
		table:   req.Table,
		start:   start,
		cleanup: cleanup,
	}, nil
}

// source devolve o arquivo local ou, com GCS_STAGING_BUCKET, o objeto gzip no GCS
func (l *BigQueryLoader) source(ctx context.Context, req ImportRequest, columns []string) (bigquery.LoadSource, func(context.Context), error) {
	noop := func(context.Context) {}

	if l.cfg.GCSStagingBucket == "" {
		reader, err := bareNullsReader(req.Path)
		if err != nil {
			return nil, noop, err
		}
		source := bigquery.NewReaderSource(reader)
		configureCSV(&source.FileConfig, columns)
		// o upload acontece dentro de loader.Run
		return source, func(context.Context) { _ = reader.Close() }, nil
	}

	object := stagingObjectName(req.Table, req.Path)
	uri, err := l.stage(ctx, req.Path, object)
	if err != nil {
		return nil, noop, err
	}

	source := bigquery.NewGCSReference(uri)
	source.Compression = bigquery.Gzip
	configureCSV(&source.FileConfig, columns)

	cleanup := func(ctx context.Context) {
		client, err := l.storageClient(ctx)
		if err != nil {
			return
		}
		if err := client.Bucket(l.cfg.GCSStagingBucket).Object(object).Delete(ctx); err != nil {
			logrus.WithError(err).WithField("object", uri).Warn("gcs: erro ao remover arquivo de staging")
		}
	}

	return source, cleanup, nil
}

func (l *BigQueryLoader) stage(ctx context.Context, path, object string) (string, error) {
	client, err := l.storageClient(ctx)
	if err != nil {
		return "", err
	}

	reader, err := bareNullsReader(path)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	writer := client.Bucket(l.cfg.GCSStagingBucket).Object(object).NewWriter(ctx)
	writer.ContentType = "application/gzip"

	gz := gzip.NewWriter(writer)
	if _, err := io.Copy(gz, reader); err != nil {
		_ = writer.Close()
		return "", errors.Wrap(err, "gcs: erro ao comprimir arquivo")
	}
	if err := gz.Close(); err != nil {
		_ = writer.Close()
		return "", errors.Wrap(err, "gcs: erro ao finalizar gzip")
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "gcs: erro ao enviar arquivo")
	}

	return fmt.Sprintf("gs://%s/%s", l.cfg.GCSStagingBucket, object), nil
}

func stagingObjectName(table TableName, path string) string {
	return fmt.Sprintf("meta-ads-etl/%s/%s.gz", table.String(), filepath.Base(path))
}

func configureCSV(fc *bigquery.FileConfig, columns []string) {
	fc.SourceFormat = bigquery.CSV
	fc.SkipLeadingRows = 1
	fc.AllowQuotedNewlines = true
	fc.Schema = stringSchema(columns)
}

// stringSchema declara todas as colunas do cabeçalho como STRING anulável
func stringSchema(columns []string) bigquery.Schema {
	schema := make(bigquery.Schema, len(columns))
	for i, column := range columns {
		schema[i] = &bigquery.FieldSchema{
			Name: column,
			Type: bigquery.StringFieldType,
		}
	}
	return schema
}

func writeDisposition(existing ExistingRows) bigquery.TableWriteDisposition {
	if existing == Drop {
		return bigquery.WriteTruncate
	}
	return bigquery.WriteAppend
}

func (l *BigQueryLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for project, client := range l.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(l.clients, project)
	}
	if l.storage != nil {
		if err := l.storage.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.storage = nil
	}
	return firstErr
}

type bigQueryJob struct {
	job     *bigquery.Job
	table   TableName
	start   time.Time
	cleanup func(context.Context)
	once    sync.Once
}

func (j *bigQueryJob) ID() string {
	return j.job.ID()
}

func (j *bigQueryJob) Wait(ctx context.Context) (*Result, error) {
	status, err := j.job.Wait(ctx)
	j.once.Do(func() { j.cleanup(ctx) })
	if err != nil {
		return nil, err
	}

	if err := status.Err(); err != nil {
		return nil, NewFailure(j.job.ID(), err)
	}

	result := &Result{
		JobID:    j.job.ID(),
		Table:    j.table,
		Duration: time.Since(j.start),
	}
	if status.Statistics != nil {
		if stats, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
			result.Rows = stats.OutputRows
		}
	}

	return result, nil
}
