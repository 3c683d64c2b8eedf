package scripting

import "bytes"

// LoggerFunc receives one line of script output, without the trailing
// newline.
type LoggerFunc func(line string)

// LineWriter adapts a stream-style io.Writer into per-line LoggerFunc
// calls. Partial lines are buffered until a newline arrives; Close flushes
// any remainder.
type LineWriter struct {
	fn  LoggerFunc
	buf []byte
}

// NewLineWriter creates a LineWriter emitting lines to fn.
func NewLineWriter(fn LoggerFunc) *LineWriter {
	return &LineWriter{fn: fn}
}

// Write implements io.Writer. It never fails.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.fn(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Close flushes a trailing partial line, if any.
func (w *LineWriter) Close() error {
	if len(w.buf) > 0 {
		w.fn(string(w.buf))
		w.buf = w.buf[:0]
	}
	return nil
}

// printer routes console output into the System's current stream callbacks.
type printer struct {
	s *System
}

func (p printer) Log(line string)   { p.s.stdout(line) }
func (p printer) Warn(line string)  { p.s.stderr(line) }
func (p printer) Error(line string) { p.s.stderr(line) }
