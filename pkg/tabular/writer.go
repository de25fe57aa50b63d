// Package tabular escreve registros heterogêneos em CSV com todas as colunas
// entre aspas e um marcador nulo para campos ausentes.
package tabular

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Null é o marcador escrito para campos registrados ausentes no registro
const Null = `""`

const (
	separator = ','
	newline   = '\n'
)

var nested = jsoniter.ConfigCompatibleWithStandardLibrary

// Record é qualquer registro com acesso total por nome de campo
type Record interface {
	Get(field string) (any, bool)
}

type Writer struct {
	w      *bufio.Writer
	fields []string
	rows   int
}

func NewWriter(w io.Writer, fields []string) *Writer {
	return &Writer{
		w:      bufio.NewWriter(w),
		fields: fields,
	}
}

// WriteHeader escreve os nomes dos campos na ordem registrada
func (w *Writer) WriteHeader() error {
	values := make([]string, len(w.fields))
	copy(values, w.fields)
	return w.writeLine(values, nil)
}

// Write escreve uma linha com os campos registrados. Campos extras do
// registro são descartados e os ausentes viram Null.
func (w *Writer) Write(record Record) error {
	values := make([]string, len(w.fields))
	missing := make([]bool, len(w.fields))

	for i, field := range w.fields {
		value, ok := record.Get(field)
		if !ok || value == nil {
			missing[i] = true
			continue
		}

		text, err := Format(value)
		if err != nil {
			return fmt.Errorf("tabular: campo %s: %w", field, err)
		}
		values[i] = text
	}

	if err := w.writeLine(values, missing); err != nil {
		return err
	}
	w.rows++
	return nil
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Rows devolve quantas linhas de dados foram escritas, sem o cabeçalho
func (w *Writer) Rows() int {
	return w.rows
}

func (w *Writer) writeLine(values []string, missing []bool) error {
	for i, value := range values {
		if i > 0 {
			if err := w.w.WriteByte(separator); err != nil {
				return err
			}
		}

		if missing != nil && missing[i] {
			if _, err := w.w.WriteString(Null); err != nil {
				return err
			}
			continue
		}

		if err := w.writeQuoted(value); err != nil {
			return err
		}
	}
	return w.w.WriteByte(newline)
}

func (w *Writer) writeQuoted(value string) error {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, `"`, `""`)

	if err := w.w.WriteByte('"'); err != nil {
		return err
	}
	if _, err := w.w.WriteString(value); err != nil {
		return err
	}
	return w.w.WriteByte('"')
}

// Format converte um valor devolvido pela API no texto da célula
func Format(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		out, err := nested.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}
