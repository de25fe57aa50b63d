package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/meta-ads-etl/infrastructure/warehouse"
	whmocks "github.com/vfg2006/meta-ads-etl/infrastructure/warehouse/mocks"
	"github.com/vfg2006/meta-ads-etl/internal/config"
	"github.com/vfg2006/meta-ads-etl/internal/domain"
	"github.com/vfg2006/meta-ads-etl/internal/jobs"
	"github.com/vfg2006/meta-ads-etl/internal/metrics"
	"github.com/vfg2006/meta-ads-etl/internal/pipeline/mocks"
)

type fixture struct {
	cfg       *config.Config
	ctrl      *gomock.Controller
	extractor *mocks.MockExtractor
	loader    *whmocks.MockLoader
	recorder  *metrics.Recorder
	runner    *Runner
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.App.TempDir = t.TempDir()
	cfg.Warehouse.DatabaseName = "analytics"
	cfg.Warehouse.SchemaName = "marketing"
	cfg.Warehouse.TableNamePrefix = "meta"

	f := &fixture{
		cfg:       cfg,
		ctrl:      ctrl,
		extractor: mocks.NewMockExtractor(ctrl),
		loader:    whmocks.NewMockLoader(ctrl),
		recorder:  metrics.NewRecorder(),
	}
	f.runner = New(cfg, f.extractor, f.loader, f.recorder)
	return f
}

func emitting(rows ...domain.Row) func(context.Context, domain.Entity, func(domain.Row) error) error {
	return func(_ context.Context, _ domain.Entity, emit func(domain.Row) error) error {
		for _, row := range rows {
			if err := emit(row); err != nil {
				return err
			}
		}
		return nil
	}
}

func (f *fixture) job(id string, err error) *whmocks.MockJob {
	job := whmocks.NewMockJob(f.ctrl)
	job.EXPECT().ID().Return(id).AnyTimes()
	if err != nil {
		job.EXPECT().Wait(gomock.Any()).Return(nil, err)
	} else {
		job.EXPECT().Wait(gomock.Any()).Return(&warehouse.Result{JobID: id, Rows: 1}, nil)
	}
	return job
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestRunner_AccountWithoutTimezone(t *testing.T) {
	f := newFixture(t)
	hook := test.NewGlobal()
	defer hook.Reset()

	f.extractor.EXPECT().
		Extract(gomock.Any(), domain.Account, gomock.Any()).
		DoAndReturn(emitting(domain.Row{
			"account_id":     "123",
			"name":           "Loja",
			"account_status": json.Number("1"),
			"age":            json.Number("10"),
			"created_time":   "2022-01-01T00:00:00-0300",
			"currency":       "BRL",
			"id":             "act_123",
		}))

	var path string
	f.loader.EXPECT().
		Import(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req warehouse.ImportRequest) (warehouse.Job, error) {
			path = req.Path
			assert.Equal(t, "analytics", req.Database)
			assert.Equal(t, "marketing.meta_accounts", req.Table.String())
			assert.True(t, req.Headers)
			assert.Equal(t, warehouse.Drop, req.ExistingRows)

			lines := readLines(t, req.Path)
			require.Len(t, lines, 2)
			assert.Equal(t, `"account_id","name","account_status","age","created_time","currency","timezone_name"`, lines[0])
			assert.Equal(t, `"123","Loja","1","10","2022-01-01T00:00:00-0300","BRL",""`, lines[1])

			return f.job("load_acc", nil), nil
		})

	err := f.runner.Run(context.Background(), []domain.Entity{domain.Account})
	require.NoError(t, err)

	assert.NoFileExists(t, path)

	var progress []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.InfoLevel {
			progress = append(progress, entry.Message)
		}
	}
	assert.Contains(t, progress, "account")

	expected := `
# HELP meta_ads_etl_rows_extracted_total Linhas extraídas da API por entidade
# TYPE meta_ads_etl_rows_extracted_total counter
meta_ads_etl_rows_extracted_total{entity="account"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.recorder.Registry(), strings.NewReader(expected), "meta_ads_etl_rows_extracted_total"))
}

func TestRunner_NoCampaigns(t *testing.T) {
	f := newFixture(t)

	f.extractor.EXPECT().
		Extract(gomock.Any(), domain.Campaign, gomock.Any()).
		DoAndReturn(emitting())

	f.loader.EXPECT().
		Import(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req warehouse.ImportRequest) (warehouse.Job, error) {
			assert.Equal(t, "marketing.meta_campaigns", req.Table.String())

			lines := readLines(t, req.Path)
			require.Len(t, lines, 1)
			assert.True(t, strings.HasPrefix(lines[0], `"id","account_id","name","objective"`))

			return f.job("load_cmp", nil), nil
		})

	require.NoError(t, f.runner.Run(context.Background(), []domain.Entity{domain.Campaign}))
}

func TestRunner_AllEntitiesInOrder(t *testing.T) {
	f := newFixture(t)

	var tables []string
	calls := make([]any, 0, 10)
	for _, entity := range domain.Entities() {
		calls = append(calls,
			f.extractor.EXPECT().Extract(gomock.Any(), entity, gomock.Any()).DoAndReturn(emitting(domain.Row{"id": "1"})),
			f.loader.EXPECT().Import(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, req warehouse.ImportRequest) (warehouse.Job, error) {
					tables = append(tables, req.Table.String())
					return f.job(entity.String(), nil), nil
				}),
		)
	}
	gomock.InOrder(calls...)

	require.NoError(t, f.runner.Run(context.Background(), domain.Entities()))
	assert.Equal(t, []string{
		"marketing.meta_accounts",
		"marketing.meta_campaigns",
		"marketing.meta_adsets",
		"marketing.meta_ads",
		"marketing.meta_ad_insights",
	}, tables)
}

func TestRunner_HaltsAfterFailedJob(t *testing.T) {
	f := newFixture(t)
	hook := test.NewGlobal()
	defer hook.Reset()

	f.extractor.EXPECT().
		Extract(gomock.Any(), domain.Account, gomock.Any()).
		DoAndReturn(emitting(domain.Row{"account_id": "1"}))
	f.loader.EXPECT().
		Import(gomock.Any(), gomock.Any()).
		Return(f.job("123", &warehouse.JobFailure{Response: warehouse.FailureResponse{"id": "123", "error": "disk full"}}), nil)

	// campaigns não pode ser extraída depois da falha
	err := f.runner.Run(context.Background(), []domain.Entity{domain.Account, domain.Campaign})
	require.Error(t, err)
	assert.Equal(t, "1 of 1 jobs failed", err.Error())

	var aggregate *jobs.AggregateFailure
	assert.True(t, errors.As(err, &aggregate))

	var failures []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			failures = append(failures, entry)
		}
	}
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Message, "123")
	assert.Contains(t, failures[0].Message, "disk full")
	assert.Equal(t, "account", failures[0].Data["entity"])

	expected := `
# HELP meta_ads_etl_failed_jobs_total Jobs de carga que falharam
# TYPE meta_ads_etl_failed_jobs_total counter
meta_ads_etl_failed_jobs_total{entity="account"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.recorder.Registry(), strings.NewReader(expected), "meta_ads_etl_failed_jobs_total"))
}

func TestRunner_ExtractionErrorSkipsUpload(t *testing.T) {
	f := newFixture(t)
	apiErr := errors.New("meta api: token expirado")

	f.extractor.EXPECT().
		Extract(gomock.Any(), domain.Ad, gomock.Any()).
		Return(apiErr)

	err := f.runner.Run(context.Background(), []domain.Entity{domain.Ad, domain.AdInsight})
	assert.ErrorIs(t, err, apiErr)

	entries, readErr := os.ReadDir(f.cfg.App.TempDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunner_MissingTableSettings(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(cfg *config.Config)
		missing string
	}{
		{name: "sem schema", setup: func(cfg *config.Config) { cfg.Warehouse.SchemaName = "" }, missing: "SCHEMA_NAME"},
		{name: "sem prefixo", setup: func(cfg *config.Config) { cfg.Warehouse.TableNamePrefix = "" }, missing: "TABLE_NAME_PREFIX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f.cfg)

			f.extractor.EXPECT().
				Extract(gomock.Any(), domain.AdSet, gomock.Any()).
				DoAndReturn(emitting())

			err := f.runner.Run(context.Background(), []domain.Entity{domain.AdSet})
			assert.ErrorIs(t, err, config.ErrMissingSetting)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestRunner_ImportError(t *testing.T) {
	f := newFixture(t)
	importErr := errors.New("conexão recusada")

	f.extractor.EXPECT().
		Extract(gomock.Any(), domain.Ad, gomock.Any()).
		DoAndReturn(emitting())
	f.loader.EXPECT().
		Import(gomock.Any(), gomock.Any()).
		Return(nil, importErr)

	err := New(f.cfg, f.extractor, f.loader, nil).Run(context.Background(), []domain.Entity{domain.Ad})
	assert.ErrorIs(t, err, importErr)
}
