package llmjson

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"screen-agent/internal/domain/entity"
)

// Backticks are written as \x60 because raw strings cannot hold them. The
// body ends at the first closing fence; whatever follows it is dropped.
var fenceRegex = regexp.MustCompile("(?s)^\x60\x60\x60[a-zA-Z]*[ \t]*\n?(.*?)\x60\x60\x60")

const snippetLen = 300

// StripFence removes a leading markdown code fence, with or without a
// language tag, and anything after its closing fence. Text without a fence is
// returned trimmed.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if m := fenceRegex.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	// Unterminated fence: drop the opening line only.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		return strings.TrimSpace(s[nl+1:])
	}
	return ""
}

// Extract strips a fence and, when prose surrounds the payload, narrows the
// text to the outermost JSON object.
func Extract(s string) string {
	s = StripFence(s)
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return s
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// Decode parses a model response into T. Any failure is an *entity.ParseError
// carrying a truncated copy of the response.
func Decode[T any](response string) (*T, error) {
	payload := Extract(response)
	if payload == "" {
		return nil, &entity.ParseError{Err: errors.New("empty response")}
	}

	var out T
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, &entity.ParseError{Err: err, Snippet: Truncate(payload, snippetLen)}
	}
	return &out, nil
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
