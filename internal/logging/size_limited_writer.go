package logging

import (
	"fmt"
	"os"
	"sync"
)

// sizeLimitedWriter appends to a log file. A write that would take the file
// past maxBytes first shifts path.1..path.N-1 up by one, moves the file to
// path.1 and starts an empty one. At most backups old files are kept.
type sizeLimitedWriter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	backups  int
	f        *os.File
	written  int64
}

func newSizeLimitedWriter(path string, maxMB, backups int) (*sizeLimitedWriter, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	if backups < 1 {
		backups = 1
	}
	w := &sizeLimitedWriter{path: path, maxBytes: int64(maxMB) << 20, backups: backups}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *sizeLimitedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	if w.written > 0 && w.written+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotate %s: %w", w.path, err)
		}
	}
	n, err := w.f.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *sizeLimitedWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func (w *sizeLimitedWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f, w.written = f, st.Size()
	return nil
}

func (w *sizeLimitedWriter) backup(i int) string {
	return fmt.Sprintf("%s.%d", w.path, i)
}

func (w *sizeLimitedWriter) rotate() error {
	_ = w.f.Close()
	w.f = nil
	for i := w.backups - 1; i >= 1; i-- {
		if err := os.Rename(w.backup(i), w.backup(i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if err := os.Rename(w.path, w.backup(1)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return w.open()
}
