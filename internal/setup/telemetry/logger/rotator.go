package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Rotator is an io.Writer for a log file that only ever keeps the most
// recent maxLines lines on disk. Lines are appended as they arrive and the
// file is rewritten from the in-memory tail once it has grown to twice the limit.
type Rotator struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	tail     *tail
	appended int
}

// NewRotator opens (or creates) the log file at path.
func NewRotator(path string, maxLines int) (*Rotator, error) {
	if maxLines <= 0 {
		maxLines = 1
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	return &Rotator{
		file: file,
		path: path,
		tail: newTail(maxLines),
	}, nil
}

// Write implements io.Writer.
func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.file.Write(p)
	if err != nil {
		return n, err
	}

	for line := range bytes.SplitSeq(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		r.tail.push(string(line))
		r.appended++
	}

	if r.appended >= r.tail.limit*2 {
		if err := r.truncate(); err != nil {
			return n, fmt.Errorf("failed to rotate log file: %w", err)
		}

		r.appended = r.tail.len()
	}

	return n, nil
}

// Sync flushes the underlying file.
func (r *Rotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.file.Sync()
}

// Close closes the underlying file.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.file.Close()
}

// truncate replaces the file with the retained tail.
func (r *Rotator) truncate() error {
	temp, err := os.CreateTemp(filepath.Dir(r.path), "rotate-")
	if err != nil {
		return err
	}

	tempPath := temp.Name()

	if err := r.tail.writeTo(temp); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	r.file.Close()

	// Windows refuses to rename over an existing file.
	os.Remove(r.path)

	if err := os.Rename(tempPath, r.path); err != nil {
		return err
	}

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	r.file = file

	return nil
}

// tail is a fixed-size circular window over the last lines written.
type tail struct {
	lines []string
	limit int
	next  int
	full  bool
}

func newTail(limit int) *tail {
	return &tail{lines: make([]string, limit), limit: limit}
}

func (t *tail) push(line string) {
	t.lines[t.next] = line

	t.next++
	if t.next == t.limit {
		t.next = 0
		t.full = true
	}
}

func (t *tail) len() int {
	if t.full {
		return t.limit
	}

	return t.next
}

// ordered returns the retained lines oldest first.
func (t *tail) ordered() []string {
	if !t.full {
		return append([]string(nil), t.lines[:t.next]...)
	}

	out := make([]string, 0, t.limit)
	out = append(out, t.lines[t.next:]...)

	return append(out, t.lines[:t.next]...)
}

func (t *tail) writeTo(w io.Writer) error {
	var buf bytes.Buffer
	for _, line := range t.ordered() {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	_, err := w.Write(buf.Bytes())

	return err
}
