// ABOUTME: Splits a raw model completion into the conversational message and the JSON routine payload
// ABOUTME: Tolerates code fences and repairs invalid backslash escapes before decoding
package completion

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Section markers the prompts ask the model to emit
const (
	MessageMarker = "MENSAJE:"
	JSONMarker    = "JSON:"
)

var (
	// ErrMissingMessageSection means no text was found between MENSAJE: and JSON:
	ErrMissingMessageSection = errors.New("completion has no MENSAJE section")
	// ErrMissingJSONSection means no JSON object follows the JSON: marker
	ErrMissingJSONSection = errors.New("completion has no JSON section")
	// ErrMalformedPayload means the JSON object could not be decoded even after repair
	ErrMalformedPayload = errors.New("completion JSON is malformed")
)

var (
	fencedObject  = regexp.MustCompile("(?s)^\\s*```(?:json)?\\s*(\\{.+?\\})\\s*```")
	leadingFence  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// Parse extracts the message and the decoded JSON object from a MENSAJE/JSON completion.
// The payload is not schema-checked.
func Parse(raw string) (string, map[string]any, error) {
	msgStart := strings.Index(raw, MessageMarker)
	if msgStart < 0 {
		return "", nil, ErrMissingMessageSection
	}
	body := raw[msgStart+len(MessageMarker):]

	jsonAt := strings.Index(body, JSONMarker)
	if jsonAt < 0 {
		return "", nil, ErrMissingMessageSection
	}
	message := strings.TrimSpace(body[:jsonAt])
	if message == "" {
		return "", nil, ErrMissingMessageSection
	}

	rest := body[jsonAt+len(JSONMarker):]

	var object string
	if m := fencedObject.FindStringSubmatch(rest); m != nil {
		object = m[1]
	} else {
		object = braceSpan(rest)
	}
	if object == "" {
		return "", nil, ErrMissingJSONSection
	}

	payload, err := decode(object)
	if err != nil {
		return "", nil, err
	}
	return message, payload, nil
}

// ParsePayload decodes a completion that should contain only a JSON object,
// optionally wrapped in a code fence
func ParsePayload(raw string) (map[string]any, error) {
	content := strings.TrimSpace(raw)
	content = leadingFence.ReplaceAllString(content, "")
	content = trailingFence.ReplaceAllString(content, "")

	object := braceSpan(content)
	if object == "" {
		return nil, ErrMissingJSONSection
	}
	return decode(object)
}

// RepairEscapes doubles every backslash that does not start a valid JSON escape
func RepairEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if n := validEscapeLen(s[i:]); n > 0 {
			b.WriteString(s[i : i+n])
			i += n - 1
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

// validEscapeLen returns the length of the escape sequence at the start of s, or 0 if invalid
func validEscapeLen(s string) int {
	if len(s) < 2 {
		return 0
	}
	switch s[1] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return 2
	case 'u':
		if len(s) < 6 {
			return 0
		}
		for _, h := range s[2:6] {
			if !isHex(h) {
				return 0
			}
		}
		return 6
	}
	return 0
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// braceSpan returns the text from the first '{' to the last '}', or "" if there is none
func braceSpan(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func decode(object string) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(RepairEscapes(object)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return payload, nil
}
