package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter writes every message to all of its writers, e.g. stdout and
// a rotating log file. A failing writer does not stop the others.
type CombinedWriter struct {
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	cw := &CombinedWriter{}
	for _, w := range writers {
		if w != nil {
			cw.writers = append(cw.writers, w)
		}
	}
	return cw
}

func (cw *CombinedWriter) Len() int {
	return len(cw.writers)
}

// Write reports len(p) when at least one writer took the whole message.
// Errors from all failing writers are combined.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	delivered := false
	for _, w := range cw.writers {
		written, werr := w.Write(p)
		if werr == nil && written < len(p) {
			werr = io.ErrShortWrite
		}
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		delivered = true
	}

	if !delivered && len(cw.writers) > 0 {
		return 0, err
	}
	return len(p), err
}
