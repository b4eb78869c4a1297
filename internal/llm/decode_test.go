package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type founderList struct {
	Founders []struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"founders"`
}

func TestDecodeJSON_FencedObject(t *testing.T) {
	raw := "```json\n{\"founders\": [{\"name\": \"Ada\", \"role\": \"CEO\"}]}\n```"

	var out founderList
	d := DecodeJSON(raw, &out)

	require.True(t, d.OK(), "decode error: %v", d.Err)
	assert.Equal(t, DecodeParsed, d.Status)
	require.Len(t, out.Founders, 1)
	assert.Equal(t, "Ada", out.Founders[0].Name)
}

func TestDecodeJSON_BareFence(t *testing.T) {
	var out map[string]any
	d := DecodeJSON("```\n{\"a\": 1}\n```", &out)

	assert.Equal(t, DecodeParsed, d.Status)
	assert.Equal(t, float64(1), out["a"])
}

func TestDecodeJSON_ObjectInProse(t *testing.T) {
	raw := "Sure! Here is the analysis:\n{\"credibility_score\": 7, \"red_flags\": []}\nLet me know if you need more."

	var out struct {
		CredibilityScore int `json:"credibility_score"`
	}
	d := DecodeJSON(raw, &out)

	require.True(t, d.OK())
	assert.Equal(t, DecodeRecovered, d.Status)
	assert.Equal(t, 7, out.CredibilityScore)
	assert.Equal(t, `{"credibility_score": 7, "red_flags": []}`, d.Payload)
}

func TestDecodeJSON_ArrayInProse(t *testing.T) {
	raw := "Feedback follows: [{\"feedback\": \"x\", \"page_number\": 2}] done"

	var out []map[string]any
	d := DecodeJSON(raw, &out)

	require.True(t, d.OK(), "decode error: %v", d.Err)
	assert.Equal(t, DecodeRecovered, d.Status)
	require.Len(t, out, 1)
	assert.Equal(t, float64(2), out[0]["page_number"])
}

func TestDecodeJSON_Garbage(t *testing.T) {
	var out map[string]any
	d := DecodeJSON("I could not find any founders on this slide.", &out)

	assert.False(t, d.OK())
	assert.Equal(t, DecodeFailed, d.Status)
	assert.True(t, errors.Is(d.Err, ErrMissingJSON))
}

func TestDecodeJSON_Empty(t *testing.T) {
	var out map[string]any
	d := DecodeJSON("  ```json\n```  ", &out)

	assert.Equal(t, DecodeFailed, d.Status)
	assert.ErrorIs(t, d.Err, ErrEmptyResponse)
}

func TestDecodeJSONSchema_Mismatch(t *testing.T) {
	schema := `{
		"type": "object",
		"required": ["founders"],
		"properties": {"founders": {"type": "array"}}
	}`

	var out founderList
	d := DecodeJSONSchema(`{"people": []}`, schema, &out)

	assert.Equal(t, DecodeFailed, d.Status)
	assert.ErrorIs(t, d.Err, ErrSchemaMismatch)
}

func TestDecodeJSONSchema_Valid(t *testing.T) {
	schema := `{"type": "object", "required": ["founders"]}`

	var out founderList
	d := DecodeJSONSchema("here: {\"founders\": []} ok", schema, &out)

	assert.Equal(t, DecodeRecovered, d.Status)
	assert.NoError(t, d.Err)
}

func TestDecodeStatus_String(t *testing.T) {
	assert.Equal(t, "parsed", DecodeParsed.String())
	assert.Equal(t, "recovered", DecodeRecovered.String())
	assert.Equal(t, "failed", DecodeFailed.String())
}
