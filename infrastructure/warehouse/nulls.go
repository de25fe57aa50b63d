package warehouse

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/vfg2006/meta-ads-etl/pkg/tabular"
)

// stagedPattern mantém o nome da entidade no arquivo enviado ao warehouse
func stagedPattern(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "-staged-*.csv"
}

// writeBareNulls grava em dst a versão do arquivo com nulos sem aspas
func writeBareNulls(dst *os.File, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := tabular.BareNulls(dst, src); err != nil {
		return errors.Wrapf(err, "erro ao preparar %s", filepath.Base(path))
	}
	return dst.Sync()
}

// bareNullsReader entrega a versão com nulos sem aspas sem gravar em disco.
// Fechar o reader devolvido libera o arquivo de origem.
func bareNullsReader(path string) (io.ReadCloser, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		defer src.Close()
		pw.CloseWithError(tabular.BareNulls(pw, src))
	}()

	return pr, nil
}
