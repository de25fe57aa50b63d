package tabular

import (
	"bufio"
	"encoding/csv"
	"io"
)

// BareNulls reescreve um arquivo deste pacote deixando as células vazias sem
// aspas. Warehouses que só tratam campos vazios sem aspas como NULL recebem
// essa versão; células com valor continuam entre aspas.
func BareNulls(dst io.Writer, src io.Reader) error {
	reader := csv.NewReader(src)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	out := &Writer{w: bufio.NewWriter(dst)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if err := out.writeBare(record); err != nil {
			return err
		}
	}
	return out.Flush()
}

func (w *Writer) writeBare(values []string) error {
	for i, value := range values {
		if i > 0 {
			if err := w.w.WriteByte(separator); err != nil {
				return err
			}
		}
		if value == "" {
			continue
		}
		if err := w.writeQuoted(value); err != nil {
			return err
		}
	}
	return w.w.WriteByte(newline)
}
