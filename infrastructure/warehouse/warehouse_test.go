package warehouse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/lib/pq"
	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/meta-ads-etl/internal/config"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ads.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewTableName(t *testing.T) {
	table := NewTableName("marketing", "meta", "ad_insights")
	assert.Equal(t, "marketing", table.Schema)
	assert.Equal(t, "meta_ad_insights", table.Name)
	assert.Equal(t, "marketing.meta_ad_insights", table.String())
}

func TestFailureResponse_Message(t *testing.T) {
	tests := []struct {
		name     string
		response FailureResponse
		expected string
	}{
		{
			name:     "exception tem prioridade",
			response: FailureResponse{"id": "1", "exception": "relation does not exist", "error": "load failed"},
			expected: "relation does not exist",
		},
		{
			name:     "error quando não há exception",
			response: FailureResponse{"id": "123", "error": "disk full"},
			expected: "disk full",
		},
		{
			name:     "vazio sem exception nem error",
			response: FailureResponse{"id": "9"},
			expected: "",
		},
		{
			name:     "valor não textual",
			response: FailureResponse{"id": 7, "error": 42},
			expected: "42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.response.Message())
		})
	}

	assert.Equal(t, "7", FailureResponse{"id": 7}.ID())
	assert.Equal(t, "", FailureResponse{}.ID())
}

func TestNewFailure(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		exception string
		message   string
	}{
		{
			name:      "erro do postgres",
			err:       fmt.Errorf("copy: %w", &pq.Error{Code: "42P01", Message: `relation "x" does not exist`}),
			exception: `relation "x" does not exist`,
			message:   `relation "x" does not exist`,
		},
		{
			name:      "erro do bigquery",
			err:       &bigquery.Error{Reason: "invalid", Message: "Too many errors"},
			exception: "Too many errors",
			message:   "Too many errors",
		},
		{
			name:      "erro do snowflake",
			err:       &gosnowflake.SnowflakeError{Number: 2003, Message: "object does not exist", QueryID: "q1"},
			exception: "object does not exist",
			message:   "object does not exist",
		},
		{
			name:    "erro genérico",
			err:     errors.New("disk full"),
			message: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failure := NewFailure("load_1", tt.err)

			assert.Equal(t, "load_1", failure.Response.ID())
			assert.Equal(t, tt.message, failure.Response.Message())
			if tt.exception != "" {
				assert.Equal(t, tt.exception, failure.Response["exception"])
			} else {
				assert.NotContains(t, failure.Response, "exception")
			}
			assert.ErrorIs(t, failure, tt.err)
			assert.Contains(t, failure.Error(), "load_1")
		})
	}

	t.Run("mantém falha existente", func(t *testing.T) {
		existing := &JobFailure{Response: FailureResponse{"id": "a", "error": "x"}}
		assert.Same(t, existing, NewFailure("b", fmt.Errorf("wrap: %w", existing)))
	})
}

func TestAsyncJob(t *testing.T) {
	table := NewTableName("s", "p", "ads")

	t.Run("sucesso", func(t *testing.T) {
		job := startJob(context.Background(), "load_ok", table, func(context.Context) (int64, error) {
			return 3, nil
		})

		result, err := job.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "load_ok", job.ID())
		assert.Equal(t, "load_ok", result.JobID)
		assert.Equal(t, int64(3), result.Rows)
		assert.Equal(t, table, result.Table)
	})

	t.Run("falha", func(t *testing.T) {
		job := startJob(context.Background(), "123", table, func(context.Context) (int64, error) {
			return 0, errors.New("disk full")
		})

		result, err := job.Wait(context.Background())
		assert.Nil(t, result)

		var failure *JobFailure
		require.True(t, errors.As(err, &failure))
		assert.Equal(t, "123", failure.Response.ID())
		assert.Equal(t, "disk full", failure.Response.Message())
	})

	t.Run("contexto cancelado na espera", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		job := startJob(context.Background(), "lento", table, func(context.Context) (int64, error) {
			<-release
			return 0, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := job.Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestReadHeader(t *testing.T) {
	path := writeFile(t, "\"id\",\"name\",\"status\"\n\"1\",\"a\",\"\"\n")

	header, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "status"}, header)

	_, err = ReadHeader(writeFile(t, ""))
	assert.Error(t, err)

	_, err = ReadHeader(filepath.Join(t.TempDir(), "nao-existe.csv"))
	assert.Error(t, err)
}

func TestColumnsFor_RequiresHeader(t *testing.T) {
	path := writeFile(t, "\"id\"\n")

	_, err := columnsFor(ImportRequest{Path: path, Headers: false, Table: NewTableName("s", "p", "ads")})
	assert.Error(t, err)

	columns, err := columnsFor(ImportRequest{Path: path, Headers: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, columns)
}

func TestNew(t *testing.T) {
	tests := []struct {
		driver   string
		expected Loader
	}{
		{driver: "", expected: &PostgresLoader{}},
		{driver: "postgres", expected: &PostgresLoader{}},
		{driver: "bigquery", expected: &BigQueryLoader{}},
		{driver: "snowflake", expected: &SnowflakeLoader{}},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			loader, err := New(config.Warehouse{Driver: tt.driver})
			require.NoError(t, err)
			assert.IsType(t, tt.expected, loader)
			assert.NoError(t, loader.Close())
		})
	}

	_, err := New(config.Warehouse{Driver: "redshift"})
	assert.Error(t, err)
}

func TestImport_MissingDatabase(t *testing.T) {
	path := writeFile(t, "\"id\"\n")
	req := ImportRequest{Path: path, Table: NewTableName("s", "p", "ads"), Headers: true, ExistingRows: Drop}

	for _, loader := range []Loader{
		NewPostgresLoader(config.Warehouse{}),
		NewBigQueryLoader(config.Warehouse{}),
		NewSnowflakeLoader(config.Warehouse{}),
	} {
		job, err := loader.Import(context.Background(), req)
		assert.Nil(t, job)
		assert.ErrorIs(t, err, config.ErrMissingSetting)
		assert.Contains(t, err.Error(), "DATABASE_NAME")
	}
}
