package dump

import (
	"bufio"
	"io"
	"strings"
)

// quotedWriter writes CSV records with every field quoted.
type quotedWriter struct {
	w *bufio.Writer
}

func newQuotedWriter(w io.Writer) *quotedWriter {
	return &quotedWriter{w: bufio.NewWriter(w)}
}

func (q *quotedWriter) Write(fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := q.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := q.w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := q.w.WriteString(strings.ReplaceAll(f, `"`, `""`)); err != nil {
			return err
		}
		if err := q.w.WriteByte('"'); err != nil {
			return err
		}
	}
	return q.w.WriteByte('\n')
}

func (q *quotedWriter) Flush() error {
	return q.w.Flush()
}
