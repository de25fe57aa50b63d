package warehouse

import (
	"context"
	"database/sql"
	"encoding/csv"
	"io"
	"os"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/meta-ads-etl/infrastructure/database"
	"github.com/vfg2006/meta-ads-etl/internal/config"
)

// PostgresLoader substitui o conteúdo da tabela com DELETE + COPY na mesma transação
type PostgresLoader struct {
	cfg   config.Warehouse
	mu    sync.Mutex
	conns map[string]*database.Connection
}

func NewPostgresLoader(cfg config.Warehouse) *PostgresLoader {
	return &PostgresLoader{
		cfg:   cfg,
		conns: make(map[string]*database.Connection),
	}
}

func (l *PostgresLoader) Import(ctx context.Context, req ImportRequest) (Job, error) {
	dbName, err := config.Require(config.DatabaseNameKey, req.Database)
	if err != nil {
		return nil, err
	}

	columns, err := columnsFor(req)
	if err != nil {
		return nil, err
	}

	conn, err := l.connection(ctx, dbName)
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
	}).Debug("postgres: iniciando carga")

	return startJob(ctx, id, req.Table, func(ctx context.Context) (int64, error) {
		return l.load(ctx, conn, req, columns)
	}), nil
}

func (l *PostgresLoader) connection(ctx context.Context, dbName string) (*database.Connection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if conn, ok := l.conns[dbName]; ok {
		return conn, nil
	}

	conn, err := database.Open(ctx, database.PostgresDriver, database.PostgresDSN(l.cfg, dbName))
	if err != nil {
		return nil, err
	}
	l.conns[dbName] = conn

	return conn, nil
}

func (l *PostgresLoader) load(ctx context.Context, conn database.Conn, req ImportRequest, columns []string) (int64, error) {
	file, err := os.Open(req.Path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.ReuseRecord = true
	// cabeçalho já lido em columnsFor
	if _, err := reader.Read(); err != nil {
		return 0, err
	}

	var rows int64
	err = conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if req.ExistingRows == Drop {
			query, args, err := postgresDeleteQuery(req.Table)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return errors.Wrapf(err, "erro ao limpar %s", req.Table)
			}
		}

		stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(req.Table.Schema, req.Table.Name, columns...))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return errors.Wrapf(err, "erro ao ler linha %d", rows+2)
			}

			if _, err := stmt.ExecContext(ctx, copyArgs(record)...); err != nil {
				return err
			}
			rows++
		}

		// Exec sem argumentos finaliza o COPY
		_, err = stmt.ExecContext(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	return rows, nil
}

func postgresDeleteQuery(table TableName) (string, []interface{}, error) {
	return sq.Delete(pq.QuoteIdentifier(table.Schema) + "." + pq.QuoteIdentifier(table.Name)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

// copyArgs converte células vazias em NULL
func copyArgs(record []string) []interface{} {
	args := make([]interface{}, len(record))
	for i, value := range record {
		if value == "" {
			args[i] = nil
			continue
		}
		args[i] = value
	}
	return args
}

func (l *PostgresLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for name, conn := range l.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(l.conns, name)
	}
	return firstErr
}
