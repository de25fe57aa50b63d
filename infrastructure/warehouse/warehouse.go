// Package warehouse carrega arquivos CSV em tabelas do banco analítico.
// Import inicia a carga e devolve um Job; o chamador bloqueia em Job.Wait.
package warehouse

//go:generate mockgen -source=warehouse.go -destination=mocks/warehouse.go -package=mocks

import (
	"context"
	"time"
)

// ExistingRows define o que fazer com as linhas já presentes na tabela
type ExistingRows int

const (
	Append ExistingRows = iota
	// Drop descarta todas as linhas antes de inserir as do arquivo
	Drop
)

func (e ExistingRows) String() string {
	if e == Drop {
		return "drop"
	}
	return "append"
}

type ImportRequest struct {
	Path         string
	Database     string
	Table        TableName
	Headers      bool
	ExistingRows ExistingRows
}

type Result struct {
	JobID    string
	Table    TableName
	Rows     int64
	Duration time.Duration
}

type Loader interface {
	// Import inicia a carga do arquivo e não espera o término
	Import(ctx context.Context, req ImportRequest) (Job, error)
	Close() error
}

type Job interface {
	ID() string
	// Wait bloqueia até o estado terminal. Falhas do job vêm como *JobFailure.
	Wait(ctx context.Context) (*Result, error)
}
