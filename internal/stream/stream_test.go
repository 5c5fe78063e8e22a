package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"quillstream/internal/models"
)

// chunkedBody returns one chunk per Read call and counts Close calls.
type chunkedBody struct {
	chunks [][]byte
	err    error
	closes int
}

func (b *chunkedBody) Read(p []byte) (int, error) {
	if len(b.chunks) == 0 {
		if b.err != nil {
			return 0, b.err
		}
		return 0, io.EOF
	}
	n := copy(p, b.chunks[0])
	if n < len(b.chunks[0]) {
		b.chunks[0] = b.chunks[0][n:]
	} else {
		b.chunks = b.chunks[1:]
	}
	return n, nil
}

func (b *chunkedBody) Close() error {
	b.closes++
	return nil
}

func splitAt(data string, cuts ...int) [][]byte {
	var out [][]byte
	prev := 0
	for _, c := range cuts {
		out = append(out, []byte(data[prev:c]))
		prev = c
	}
	return append(out, []byte(data[prev:]))
}

func sseParse(line string) (string, error) {
	if !strings.HasPrefix(line, "data: ") {
		return "", nil
	}
	var evt struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(line[len("data: "):]), &evt); err != nil {
		return "", err
	}
	if len(evt.Choices) == 0 {
		return "", nil
	}
	return evt.Choices[0].Delta.Content, nil
}

func sseSkip(line string) bool {
	return line == "data: [DONE]" ||
		strings.Contains(line, `"finish_reason":"stop"`) ||
		strings.Contains(line, `"finish_reason":"length"`)
}

func frame(content string) string {
	b, _ := json.Marshal(map[string]any{"choices": []any{map[string]any{"delta": map[string]any{"content": content}}}})
	return "data: " + string(b) + "\n\n"
}

func quietNormalizer() Normalizer {
	return Normalizer{
		Provider: "test",
		Parse:    sseParse,
		Skip:     sseSkip,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func collect(t *testing.T, body *chunkedBody, norm Normalizer) ([]models.TextDelta, error) {
	t.Helper()
	return Collect(context.Background(), New(body, norm))
}

func texts(deltas []models.TextDelta) []string {
	out := make([]string, len(deltas))
	for i, d := range deltas {
		out[i] = d.Text
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReassemblyIsIndependentOfChunkBoundaries(t *testing.T) {
	payload := frame("Hello") + frame(", wor") + frame("ld! ✓ 日本語") + "data: [DONE]\n\n"
	want := []string{"Hello", ", wor", "ld! ✓ 日本語"}

	whole, err := collect(t, &chunkedBody{chunks: [][]byte{[]byte(payload)}}, quietNormalizer())
	if err != nil {
		t.Fatal(err)
	}
	if !equal(texts(whole), want) {
		t.Fatalf("unsplit got %q", texts(whole))
	}

	// every single split point, including inside multi-byte runes and mid-line
	for cut := 1; cut < len(payload); cut++ {
		got, err := collect(t, &chunkedBody{chunks: splitAt(payload, cut)}, quietNormalizer())
		if err != nil {
			t.Fatalf("cut %d: %v", cut, err)
		}
		if !equal(texts(got), want) {
			t.Fatalf("cut %d: got %q want %q", cut, texts(got), want)
		}
	}

	// one byte per read
	var bytewise [][]byte
	for i := 0; i < len(payload); i++ {
		bytewise = append(bytewise, []byte{payload[i]})
	}
	got, err := collect(t, &chunkedBody{chunks: bytewise}, quietNormalizer())
	if err != nil {
		t.Fatal(err)
	}
	if !equal(texts(got), want) {
		t.Fatalf("bytewise got %q", texts(got))
	}
}

func TestTerminationFramesNeverProduceDeltas(t *testing.T) {
	payload := frame("a") +
		`data: {"choices":[{"delta":{"content":"ignored"},"finish_reason":"stop"}]}` + "\n\n" +
		`data: {"choices":[{"delta":{"content":"also ignored"},"finish_reason":"length"}]}` + "\n\n" +
		"data: [DONE]\n\n"
	got, err := collect(t, &chunkedBody{chunks: [][]byte{[]byte(payload)}}, quietNormalizer())
	if err != nil {
		t.Fatal(err)
	}
	if !equal(texts(got), []string{"a"}) {
		t.Fatalf("got %q", texts(got))
	}
}

func TestMalformedFrameDoesNotInterruptStream(t *testing.T) {
	var parseErrs []error
	norm := quietNormalizer()
	norm.OnParseError = func(err error) { parseErrs = append(parseErrs, err) }

	payload := frame("before") + "data: {not json\n\n" + frame("after")
	got, err := collect(t, &chunkedBody{chunks: splitAt(payload, 10, 40)}, norm)
	if err != nil {
		t.Fatal(err)
	}
	if !equal(texts(got), []string{"before", "after"}) {
		t.Fatalf("got %q", texts(got))
	}
	if len(parseErrs) != 1 || !errors.Is(parseErrs[0], ErrParse) {
		t.Fatalf("expected one ErrParse, got %v", parseErrs)
	}
}

func TestConcatenationLaw(t *testing.T) {
	parts := []string{"The ", "quick ", "brown ", "fox", " jumps."}
	var payload strings.Builder
	for _, p := range parts {
		payload.WriteString(frame(p))
	}
	payload.WriteString("data: [DONE]\n\n")

	got, err := collect(t, &chunkedBody{chunks: splitAt(payload.String(), 7, 55, 101)}, quietNormalizer())
	if err != nil {
		t.Fatal(err)
	}
	if joined := models.Join(got); joined != "The quick brown fox jumps." {
		t.Fatalf("joined=%q", joined)
	}
}

func TestTrailingUnterminatedLineIsProcessed(t *testing.T) {
	payload := strings.TrimSuffix(frame("tail"), "\n\n")
	got, err := collect(t, &chunkedBody{chunks: [][]byte{[]byte(payload)}}, quietNormalizer())
	if err != nil {
		t.Fatal(err)
	}
	if !equal(texts(got), []string{"tail"}) {
		t.Fatalf("got %q", texts(got))
	}
}

func TestEmptyBodyClosesCleanly(t *testing.T) {
	body := &chunkedBody{}
	got, err := collect(t, body, quietNormalizer())
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v err=%v", got, err)
	}
	if body.closes != 1 {
		t.Fatalf("closes=%d", body.closes)
	}
}

func TestReadErrorIsTerminalAndKeepsEmittedDeltas(t *testing.T) {
	body := &chunkedBody{
		chunks: [][]byte{[]byte(frame("partial"))},
		err:    errors.New("connection reset by peer"),
	}
	got, err := collect(t, body, quietNormalizer())
	if !errors.Is(err, ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
	if !equal(texts(got), []string{"partial"}) {
		t.Fatalf("got %q", texts(got))
	}
	if body.closes != 1 {
		t.Fatalf("closes=%d", body.closes)
	}
}

func TestBodyClosedExactlyOnceOnEveryExit(t *testing.T) {
	t.Run("early break", func(t *testing.T) {
		body := &chunkedBody{chunks: [][]byte{[]byte(frame("a") + frame("b"))}}
		s := New(body, quietNormalizer())
		for range s.Deltas(context.Background()) {
			break
		}
		_ = s.Close()
		if body.closes != 1 {
			t.Fatalf("closes=%d", body.closes)
		}
	})
	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		body := &chunkedBody{chunks: [][]byte{[]byte(frame("a"))}}
		s := New(body, quietNormalizer())
		_, err := Collect(ctx, s)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		_ = s.Close()
		if body.closes != 1 {
			t.Fatalf("closes=%d", body.closes)
		}
	})
	t.Run("never iterated", func(t *testing.T) {
		body := &chunkedBody{}
		s := New(body, quietNormalizer())
		_ = s.Close()
		_ = s.Close()
		if body.closes != 1 {
			t.Fatalf("closes=%d", body.closes)
		}
	})
}
