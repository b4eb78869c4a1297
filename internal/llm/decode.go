package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DecodeStatus says how a model reply was turned into structured data
type DecodeStatus int

const (
	DecodeFailed    DecodeStatus = iota // Nothing usable; the caller must fall back
	DecodeParsed                        // The reply (minus code fences) was valid JSON
	DecodeRecovered                     // JSON was cut out of surrounding prose
)

func (s DecodeStatus) String() string {
	switch s {
	case DecodeParsed:
		return "parsed"
	case DecodeRecovered:
		return "recovered"
	default:
		return "failed"
	}
}

var (
	ErrMissingJSON    = errors.New("no JSON value in model response")
	ErrSchemaMismatch = errors.New("model response does not match schema")
)

// Decoded is the outcome of DecodeJSON. Callers must check OK before using the target.
type Decoded struct {
	Status  DecodeStatus
	Payload string // The JSON text that was decoded
	Err     error
}

// OK reports whether the target was populated
func (d Decoded) OK() bool {
	return d.Status == DecodeParsed || d.Status == DecodeRecovered
}

// DecodeJSON decodes a model reply into v. It strips ```json / ``` fences, tries
// the whole text, then the span from the first '{' to the last '}', then the
// span from the first '[' to the last ']'.
func DecodeJSON(raw string, v any) Decoded {
	return decode(raw, "", v)
}

// DecodeJSONSchema is DecodeJSON plus validation of the payload against a JSON schema
func DecodeJSONSchema(raw, schema string, v any) Decoded {
	return decode(raw, schema, v)
}

func decode(raw, schema string, v any) Decoded {
	text := stripFences(raw)
	if text == "" {
		return Decoded{Status: DecodeFailed, Err: ErrEmptyResponse}
	}

	var firstErr error
	try := func(payload string, status DecodeStatus) (Decoded, bool) {
		if err := unmarshalChecked(payload, schema, v); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return Decoded{}, false
		}
		return Decoded{Status: status, Payload: payload}, true
	}

	if d, ok := try(text, DecodeParsed); ok {
		return d
	}
	if span, ok := enclosedSpan(text, '{', '}'); ok {
		if d, ok := try(span, DecodeRecovered); ok {
			return d
		}
	}
	if span, ok := enclosedSpan(text, '[', ']'); ok {
		if d, ok := try(span, DecodeRecovered); ok {
			return d
		}
	}

	if errors.Is(firstErr, ErrSchemaMismatch) {
		return Decoded{Status: DecodeFailed, Payload: text, Err: firstErr}
	}
	return Decoded{Status: DecodeFailed, Payload: text, Err: fmt.Errorf("%w: %v", ErrMissingJSON, firstErr)}
}

// stripFences removes a leading ```json or ``` and a trailing ```
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[3:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// enclosedSpan returns text from the first open to the last close delimiter
func enclosedSpan(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func unmarshalChecked(payload, schema string, v any) error {
	if schema != "" {
		result, err := gojsonschema.Validate(
			gojsonschema.NewStringLoader(schema),
			gojsonschema.NewStringLoader(payload),
		)
		if err != nil {
			// Not JSON at all, or a broken schema
			return err
		}
		if !result.Valid() {
			msgs := make([]string, 0, len(result.Errors()))
			for _, e := range result.Errors() {
				msgs = append(msgs, e.String())
			}
			return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(msgs, "; "))
		}
	}
	return json.Unmarshal([]byte(payload), v)
}
