package provider

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	ssePrefix   = "data: "
	sseDone     = "data: [DONE]"
	stopMarker  = `"finish_reason":"stop"`
	limitMarker = `"finish_reason":"length"`
)

var errEmptyPayload = errors.New("empty data frame")

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ParseChatDelta extracts choices[0].delta.content from an OpenAI-style SSE
// data frame. Non-data lines (event:, id:, comments) carry no text.
func ParseChatDelta(line string) (string, error) {
	if !strings.HasPrefix(line, ssePrefix) {
		return "", nil
	}
	payload := strings.TrimSpace(line[len(ssePrefix):])
	if payload == "" {
		return "", errEmptyPayload
	}
	if payload == "[DONE]" {
		return "", nil
	}

	var chunk chatChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return "", err
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == nil {
		return "", nil
	}
	return *chunk.Choices[0].Delta.Content, nil
}

// SkipDoneOrFinish matches the [DONE] sentinel and frames finishing with
// "stop" or "length".
func SkipDoneOrFinish(line string) bool {
	return line == sseDone || strings.Contains(line, stopMarker) || strings.Contains(line, limitMarker)
}

// SkipDoneOrStop matches the [DONE] sentinel and frames finishing with "stop".
func SkipDoneOrStop(line string) bool {
	return line == sseDone || strings.Contains(line, stopMarker)
}
