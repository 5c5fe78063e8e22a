package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync"

	"quillstream/internal/models"
)

// ErrParse marks a single malformed frame. It is logged and never ends a stream.
var ErrParse = errors.New("stream parse error")

// ErrRead marks a failure reading the upstream body after the stream started.
var ErrRead = errors.New("upstream read failed")

const readChunkSize = 4096

// ParseFunc extracts the text fragment carried by one trimmed line. An empty
// result with a nil error means the line carries no text.
type ParseFunc func(line string) (string, error)

// SkipFunc reports whether a trimmed line is a control or termination frame.
type SkipFunc func(line string) bool

// Normalizer holds the provider specific strategy applied to each line.
type Normalizer struct {
	Provider string
	Parse    ParseFunc
	Skip     SkipFunc
	Logger   *slog.Logger
	// OnParseError, when set, is called for every malformed frame.
	OnParseError func(err error)
}

// Stream turns a provider body into TextDeltas. It owns the body.
type Stream struct {
	body     io.ReadCloser
	norm     Normalizer
	once     sync.Once
	closeErr error
}

// New wraps body. The caller must either range over Deltas or call Close.
func New(body io.ReadCloser, norm Normalizer) *Stream {
	if norm.Logger == nil {
		norm.Logger = slog.Default()
	}
	return &Stream{body: body, norm: norm}
}

// Provider reports the provider whose frames this stream parses.
func (s *Stream) Provider() string {
	return s.norm.Provider
}

// Close releases the upstream body. It is safe to call more than once; the body
// is closed exactly once.
func (s *Stream) Close() error {
	s.once.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

// Deltas yields each extracted fragment as soon as its line completes. A non-nil
// error is terminal and is the last value yielded. The body is closed when
// iteration ends for any reason.
func (s *Stream) Deltas(ctx context.Context) iter.Seq2[models.TextDelta, error] {
	return func(yield func(models.TextDelta, error) bool) {
		defer s.Close()

		var lines LineSplitter
		buf := make([]byte, readChunkSize)

		for {
			if err := ctx.Err(); err != nil {
				yield(models.TextDelta{}, err)
				return
			}

			n, readErr := s.body.Read(buf)
			if n > 0 {
				overflows := lines.Overflows()
				for _, line := range lines.Feed(buf[:n]) {
					if !s.emit(line, yield) {
						return
					}
				}
				lines.Done()
				if lines.Overflows() > overflows {
					s.parseFailed("", fmt.Errorf("line exceeds %d bytes", maxLineSize))
				}
			}

			if readErr == nil {
				continue
			}
			if errors.Is(readErr, io.EOF) {
				if rest, ok := lines.Close(); ok {
					s.emit(rest, yield)
				}
				return
			}
			lines.Close()
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield(models.TextDelta{}, ctxErr)
				return
			}
			yield(models.TextDelta{}, fmt.Errorf("%w: %v", ErrRead, readErr))
			return
		}
	}
}

// emit processes one line and reports whether iteration should continue.
func (s *Stream) emit(line string, yield func(models.TextDelta, error) bool) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if s.norm.Skip != nil && s.norm.Skip(trimmed) {
		return true
	}

	text, err := s.norm.Parse(trimmed)
	if err != nil {
		s.parseFailed(trimmed, err)
		return true
	}
	if text == "" {
		return true
	}
	return yield(models.TextDelta{Text: text}, nil)
}

func (s *Stream) parseFailed(line string, err error) {
	wrapped := fmt.Errorf("%w: %v", ErrParse, err)
	s.norm.Logger.Warn("skipping malformed frame",
		"provider", s.norm.Provider,
		"err", err,
		"line", truncate(line, 200),
	)
	if s.norm.OnParseError != nil {
		s.norm.OnParseError(wrapped)
	}
}

// Collect drains the stream, returning every delta received before the first error.
func Collect(ctx context.Context, s *Stream) ([]models.TextDelta, error) {
	var out []models.TextDelta
	for delta, err := range s.Deltas(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, delta)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
