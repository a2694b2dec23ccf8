package output

import (
	"bufio"
	"io"

	"github.com/jmylchreest/clipbox/internal/model"
)

// idsFormatter prints one snippet id per line, the input "clipbox rm --stdin"
// expects.
type idsFormatter struct{}

func (idsFormatter) Format(w io.Writer, snippets []model.Snippet) error {
	bw := bufio.NewWriter(w)
	for _, sn := range snippets {
		bw.WriteString(sn.ID)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
