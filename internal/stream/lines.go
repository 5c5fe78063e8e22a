package stream

import "bytes"

// State is the position of a LineSplitter in its lifecycle.
type State int

const (
	// AwaitingNextChunk means no partial line is buffered.
	AwaitingNextChunk State = iota
	// AccumulatingPartialLine means bytes of an unterminated line are buffered.
	AccumulatingPartialLine
	// EmittingCompleteLines means the last Feed produced complete lines that
	// the caller is processing.
	EmittingCompleteLines
	// Closed means Close was called; further Feeds are ignored.
	Closed
)

func (s State) String() string {
	switch s {
	case AwaitingNextChunk:
		return "awaiting"
	case AccumulatingPartialLine:
		return "accumulating"
	case EmittingCompleteLines:
		return "emitting"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// maxLineSize bounds a single buffered line (1 MiB).
const maxLineSize = 1 << 20

// LineSplitter reassembles newline-delimited frames across arbitrary chunk boundaries.
// Splitting on '\n' is safe for UTF-8 input because the byte never occurs inside a
// multi-byte sequence.
type LineSplitter struct {
	buf        []byte
	state      State
	overflowed int
}

// State reports the current state.
func (l *LineSplitter) State() State {
	return l.state
}

// Overflows reports how many partial lines were dropped for exceeding maxLineSize.
func (l *LineSplitter) Overflows() int {
	return l.overflowed
}

// Feed appends chunk and returns every line it completed, without the trailing newline.
func (l *LineSplitter) Feed(chunk []byte) []string {
	if l.state == Closed {
		return nil
	}

	var lines []string
	for len(chunk) > 0 {
		idx := bytes.IndexByte(chunk, '\n')
		if idx < 0 {
			l.buf = append(l.buf, chunk...)
			break
		}
		l.buf = append(l.buf, chunk[:idx]...)
		lines = append(lines, string(l.buf))
		l.buf = l.buf[:0]
		chunk = chunk[idx+1:]
	}

	if len(l.buf) > maxLineSize {
		l.buf = l.buf[:0]
		l.overflowed++
	}

	switch {
	case len(lines) > 0:
		l.state = EmittingCompleteLines
	case len(l.buf) > 0:
		l.state = AccumulatingPartialLine
	default:
		l.state = AwaitingNextChunk
	}
	return lines
}

// Done tells the splitter the caller has processed the lines of the last Feed.
func (l *LineSplitter) Done() {
	if l.state != EmittingCompleteLines {
		return
	}
	if len(l.buf) > 0 {
		l.state = AccumulatingPartialLine
	} else {
		l.state = AwaitingNextChunk
	}
}

// Close ends the input and returns the trailing unterminated line, if any.
func (l *LineSplitter) Close() (string, bool) {
	if l.state == Closed {
		return "", false
	}
	l.state = Closed
	if len(l.buf) == 0 {
		return "", false
	}
	rest := string(l.buf)
	l.buf = nil
	return rest, true
}
