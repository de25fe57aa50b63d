package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/meta-ads-etl/infrastructure/database"
	"github.com/vfg2006/meta-ads-etl/internal/config"
	"github.com/vfg2006/meta-ads-etl/pkg/tabular"
)

const snowflakeFileFormat = `FILE_FORMAT = (TYPE = CSV SKIP_HEADER = 1 FIELD_OPTIONALLY_ENCLOSED_BY = '"' EMPTY_FIELD_AS_NULL = TRUE NULL_IF = (''))`

// SnowflakeLoader envia o arquivo para o stage da tabela e faz DELETE + COPY INTO na mesma transação
type SnowflakeLoader struct {
	cfg   config.Warehouse
	mu    sync.Mutex
	conns map[string]*database.Connection
}

func NewSnowflakeLoader(cfg config.Warehouse) *SnowflakeLoader {
	return &SnowflakeLoader{
		cfg:   cfg,
		conns: make(map[string]*database.Connection),
	}
}

func (l *SnowflakeLoader) Import(ctx context.Context, req ImportRequest) (Job, error) {
	dbName, err := config.Require(config.DatabaseNameKey, req.Database)
	if err != nil {
		return nil, err
	}

	columns, err := columnsFor(req)
	if err != nil {
		return nil, err
	}

	conn, err := l.connection(ctx, dbName, req.Table.Schema)
	if err != nil {
		return nil, err
	}

	id, err := newJobID()
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"job_id": id,
		"table":  req.Table.String(),
		"mode":   req.ExistingRows.String(),
	}).Debug("snowflake: iniciando carga")

	return startJob(ctx, id, req.Table, func(ctx context.Context) (int64, error) {
		return l.load(ctx, conn, id, req, columns)
	}), nil
}

func (l *SnowflakeLoader) connection(ctx context.Context, dbName, schema string) (*database.Connection, error) {
	key := dbName + "/" + schema

	l.mu.Lock()
	defer l.mu.Unlock()

	if conn, ok := l.conns[key]; ok {
		return conn, nil
	}

	dsn, err := database.SnowflakeDSN(l.cfg, dbName, schema)
	if err != nil {
		return nil, err
	}

	conn, err := database.Open(ctx, database.SnowflakeDriver, dsn)
	if err != nil {
		return nil, err
	}
	l.conns[key] = conn

	return conn, nil
}

// load envia uma cópia do arquivo com nulos sem aspas para um caminho
// exclusivo do job no stage da tabela, assim o COPY nunca lê arquivos
// deixados por cargas anteriores.
func (l *SnowflakeLoader) load(ctx context.Context, conn database.Conn, jobID string, req ImportRequest, columns []string) (int64, error) {
	var rows int64
	err := tabular.WithTempFile(filepath.Dir(req.Path), stagedPattern(req.Path), func(staged *os.File) error {
		if err := writeBareNulls(staged, req.Path); err != nil {
			return err
		}

		var err error
		rows, err = l.copyStaged(ctx, conn, jobID, staged.Name(), req, columns)
		return err
	})
	if err != nil {
		return 0, err
	}

	return rows, nil
}

func (l *SnowflakeLoader) copyStaged(ctx context.Context, conn database.Conn, jobID, path string, req ImportRequest, columns []string) (int64, error) {
	if _, err := conn.ExecContext(ctx, snowflakePutQuery(req.Table, jobID, path)); err != nil {
		return 0, errors.Wrapf(err, "erro ao enviar %s para o stage", filepath.Base(req.Path))
	}

	copyQuery, err := snowflakeCopyQuery(req.Table, jobID, columns)
	if err != nil {
		l.removeStaged(ctx, conn, req.Table, jobID)
		return 0, err
	}

	var rows int64
	err = conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if req.ExistingRows == Drop {
			query, args, err := sq.Delete(req.Table.String()).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return errors.Wrapf(err, "erro ao limpar %s", req.Table)
			}
		}

		result, err := tx.ExecContext(ctx, copyQuery)
		if err != nil {
			return err
		}
		rows, _ = result.RowsAffected()
		return nil
	})
	if err != nil {
		// PURGE só roda quando o COPY termina com sucesso
		l.removeStaged(ctx, conn, req.Table, jobID)
		return 0, err
	}

	return rows, nil
}

func (l *SnowflakeLoader) removeStaged(ctx context.Context, conn database.Conn, table TableName, jobID string) {
	if _, err := conn.ExecContext(ctx, snowflakeRemoveQuery(table, jobID)); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"job_id": jobID,
			"stage":  jobStage(table, jobID),
		}).Warn("snowflake: erro ao remover arquivo do stage")
	}
}

// tableStage é o stage interno da tabela: @schema.%tabela
func tableStage(table TableName) string {
	return fmt.Sprintf("@%s.%%%s", table.Schema, table.Name)
}

// jobStage é o caminho do job dentro do stage da tabela
func jobStage(table TableName, jobID string) string {
	return fmt.Sprintf("%s/%s/", tableStage(table), jobID)
}

func snowflakePutQuery(table TableName, jobID, path string) string {
	path = strings.ReplaceAll(filepath.ToSlash(path), "'", `\'`)
	return fmt.Sprintf("PUT 'file://%s' %s AUTO_COMPRESS = TRUE OVERWRITE = TRUE", path, jobStage(table, jobID))
}

func snowflakeRemoveQuery(table TableName, jobID string) string {
	return fmt.Sprintf("REMOVE %s", jobStage(table, jobID))
}

// snowflakeCopyQuery mapeia cada coluna do cabeçalho para a posição no arquivo
func snowflakeCopyQuery(table TableName, jobID string, columns []string) (string, error) {
	positions := make([]string, len(columns))
	for i := range columns {
		positions[i] = fmt.Sprintf("$%d", i+1)
	}

	selectQuery, _, err := sq.Select(positions...).From(jobStage(table, jobID)).ToSql()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("COPY INTO %s (%s) FROM (%s) %s PURGE = TRUE",
		table, strings.Join(columns, ", "), selectQuery, snowflakeFileFormat), nil
}

func (l *SnowflakeLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for key, conn := range l.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(l.conns, key)
	}
	return firstErr
}
