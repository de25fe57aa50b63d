package tabular

import (
	"os"

	"github.com/sirupsen/logrus"
)

// WithTempFile cria um arquivo temporário, entrega para fn e remove o arquivo
// em qualquer saída de fn, inclusive erro e panic.
func WithTempFile(dir, pattern string, fn func(file *os.File) error) (err error) {
	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}

	defer func() {
		// Close pode falhar se fn já fechou o arquivo
		_ = file.Close()
		if rmErr := os.Remove(file.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
			logrus.WithError(rmErr).WithField("path", file.Name()).Warn("tabular: erro ao remover arquivo temporário")
		}
	}()

	return fn(file)
}
