package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// pacedWriter sleeps after every write so a listing scrolls at a readable
// speed. The printer writes one instruction per call.
type pacedWriter struct {
	w     io.Writer
	delay time.Duration
}

func (p *pacedWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	time.Sleep(p.delay)
	return n, err
}

// pacedOutput paces w only when it is an interactive terminal.
func pacedOutput(w io.Writer, delay time.Duration) io.Writer {
	if delay <= 0 {
		return w
	}
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return w
	}
	return &pacedWriter{w: w, delay: delay}
}
