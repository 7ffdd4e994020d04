package internal

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter records the status and body size of a response. Hooks
// registered with OnBeforeWrite run once, just before the header is sent,
// and Tee copies the body to extra writers. The page cache uses both.
type ResponseWriter struct {
	http.ResponseWriter

	mu      sync.Mutex
	hooks   []func()
	tees    []io.Writer
	status  int
	size    int64
	written bool
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers fn to run before the header is sent. Hooks may
// still change headers.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	w.hooks = append(w.hooks, fn)
	w.mu.Unlock()
}

// Tee copies every body byte written from now on to dst.
func (w *ResponseWriter) Tee(dst io.Writer) {
	w.mu.Lock()
	w.tees = append(w.tees, dst)
	w.mu.Unlock()
}

// commit sends the header once with code and reports whether this call did.
func (w *ResponseWriter) commit(code int) bool {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return false
	}
	w.written, w.status = true, code
	hooks := w.hooks
	w.hooks = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(code)
	return true
}

// WriteHeader ignores all calls after the first.
func (w *ResponseWriter) WriteHeader(code int) {
	w.commit(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.commit(w.Status())
	n, err := w.ResponseWriter.Write(b)

	w.mu.Lock()
	w.size += int64(n)
	tees := w.tees
	w.mu.Unlock()
	for _, t := range tees {
		_, _ = t.Write(b[:n])
	}
	return n, err
}

func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *ResponseWriter) Flush() {
	w.commit(w.Status())
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
