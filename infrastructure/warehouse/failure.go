package warehouse

import (
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/snowflakedb/gosnowflake"
)

const (
	idKey        = "id"
	exceptionKey = "exception"
	errorKey     = "error"
)

// FailureResponse é a resposta estruturada de um job que falhou
type FailureResponse map[string]any

func (f FailureResponse) ID() string {
	return f.text(idKey)
}

// Message prioriza "exception", depois "error", senão vazio
func (f FailureResponse) Message() string {
	for _, key := range []string{exceptionKey, errorKey} {
		if _, ok := f[key]; ok {
			return f.text(key)
		}
	}
	return ""
}

func (f FailureResponse) text(key string) string {
	value, ok := f[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

type JobFailure struct {
	Response FailureResponse
	cause    error
}

func (e *JobFailure) Error() string {
	return fmt.Sprintf("job %s falhou: %s", e.Response.ID(), e.Response.Message())
}

func (e *JobFailure) Unwrap() error {
	return e.cause
}

// NewFailure converte o erro de um driver na resposta de falha do job.
// Erros reportados pelo próprio banco vão em "exception", os demais em "error".
func NewFailure(jobID string, err error) *JobFailure {
	var failure *JobFailure
	if errors.As(err, &failure) {
		return failure
	}

	response := FailureResponse{idKey: jobID}

	var (
		pqErr *pq.Error
		bqErr *bigquery.Error
		sfErr *gosnowflake.SnowflakeError
	)
	switch {
	case errors.As(err, &pqErr):
		response[exceptionKey] = pqErr.Message
		response["code"] = string(pqErr.Code)
		if pqErr.Detail != "" {
			response["detail"] = pqErr.Detail
		}
	case errors.As(err, &bqErr):
		response[exceptionKey] = bqErr.Message
		response["reason"] = bqErr.Reason
		if bqErr.Location != "" {
			response["location"] = bqErr.Location
		}
	case errors.As(err, &sfErr):
		response[exceptionKey] = sfErr.Message
		response["code"] = sfErr.Number
		response["query_id"] = sfErr.QueryID
	default:
		response[errorKey] = err.Error()
	}

	return &JobFailure{Response: response, cause: err}
}
