package warehouse

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// ReadHeader lê a primeira linha do arquivo e devolve os nomes das colunas
func ReadHeader(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	header, err := csv.NewReader(file).Read()
	if err == io.EOF {
		return nil, fmt.Errorf("warehouse: arquivo %s sem cabeçalho", path)
	}
	if err != nil {
		return nil, fmt.Errorf("warehouse: erro ao ler cabeçalho de %s: %w", path, err)
	}

	return header, nil
}

func columnsFor(req ImportRequest) ([]string, error) {
	if !req.Headers {
		return nil, fmt.Errorf("warehouse: carga de %s exige arquivo com cabeçalho", req.Table)
	}
	return ReadHeader(req.Path)
}
