package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/krzko/tracegen/pkg/fixture"
)

// FileOptions selects where and how JSON lines are written.
type FileOptions struct {
	// Path is the fixture file; "-" writes to stdout.
	Path string
	// Compress wraps the file in an lz4 frame.
	Compress bool
	// MaxSizeMB enables size-based rotation when positive.
	MaxSizeMB  int
	MaxBackups int
}

// JSONLines writes one sample per line.
type JSONLines struct {
	mu sync.Mutex
	w  io.Writer
	// closers run in order on Close.
	closers []io.Closer
}

// NewJSONLines writes samples to w. Closing the sink closes w when it is an io.Closer.
func NewJSONLines(w io.Writer) *JSONLines {
	s := &JSONLines{w: w}
	if c, ok := w.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	return s
}

// ErrUnsupportedOptions is returned for file options that cannot be combined.
var ErrUnsupportedOptions = errors.New("unsupported file sink options")

// NewFileSink opens a JSON lines sink according to opts.
func NewFileSink(opts FileOptions) (*JSONLines, error) {
	stdout := opts.Path == "-" || opts.Path == ""
	if opts.Compress && opts.MaxSizeMB > 0 {
		return nil, fmt.Errorf("%w: rotation of compressed files", ErrUnsupportedOptions)
	}
	if opts.Compress && stdout {
		return nil, fmt.Errorf("%w: compressed output needs a file path", ErrUnsupportedOptions)
	}
	if stdout {
		return &JSONLines{w: os.Stdout}, nil
	}

	if opts.MaxSizeMB > 0 {
		return NewJSONLines(&lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}), nil
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("create fixture file: %w", err)
	}
	if !opts.Compress {
		return NewJSONLines(f), nil
	}

	zw := lz4.NewWriter(f)
	return &JSONLines{w: zw, closers: []io.Closer{zw, f}}, nil
}

func (s *JSONLines) Write(_ context.Context, rec Record) error {
	line, err := encodeSample(rec.Sample)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return nil
}

func (s *JSONLines) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}

// encodeSample renders a sample as one JSON line. HTML escaping is off so
// payloads stay byte-identical to what the request carried.
func encodeSample(s fixture.Sample) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode sample: %w", err)
	}
	return buf.Bytes(), nil
}
