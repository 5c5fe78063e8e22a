package gemini

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// documentLines re-frames a body holding one or more whole JSON documents
// (pretty-printed or not) as one compact document per line.
type documentLines struct {
	upstream io.ReadCloser
	pr       *io.PipeReader
}

func newDocumentLines(body io.ReadCloser) io.ReadCloser {
	pr, pw := io.Pipe()
	go pump(body, pw)
	return &documentLines{upstream: body, pr: pr}
}

func pump(body io.Reader, pw *io.PipeWriter) {
	dec := json.NewDecoder(body)
	var line bytes.Buffer
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			pw.Close()
			return
		}

		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			// Hand the undecodable rest through verbatim; the line parser
			// reports it frame by frame.
			_, copyErr := io.Copy(pw, io.MultiReader(dec.Buffered(), body))
			pw.CloseWithError(copyErr)
			return
		}
		if err != nil {
			pw.CloseWithError(err)
			return
		}

		line.Reset()
		if err := json.Compact(&line, raw); err != nil {
			line.Write(raw)
		}
		line.WriteByte('\n')
		if _, err := pw.Write(line.Bytes()); err != nil {
			return
		}
	}
}

func (d *documentLines) Read(p []byte) (int, error) {
	return d.pr.Read(p)
}

func (d *documentLines) Close() error {
	d.pr.Close()
	return d.upstream.Close()
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (r generateResponse) text() (string, error) {
	if r.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", r.Error.Code, r.Error.Message)
	}
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return r.Candidates[0].Content.Parts[0].Text, nil
}

// ParseDocument extracts candidates[0].content.parts[0].text from one document
// line. A JSON array of documents yields the concatenation of each element's
// text. An SSE "data: " prefix is tolerated.
func ParseDocument(line string) (string, error) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "data: "))

	if strings.HasPrefix(line, "[") {
		var docs []generateResponse
		if err := json.Unmarshal([]byte(line), &docs); err != nil {
			return "", err
		}
		var b strings.Builder
		for _, doc := range docs {
			text, err := doc.text()
			if err != nil {
				return "", err
			}
			b.WriteString(text)
		}
		return b.String(), nil
	}

	var doc generateResponse
	if err := json.Unmarshal([]byte(line), &doc); err != nil {
		return "", err
	}
	return doc.text()
}
