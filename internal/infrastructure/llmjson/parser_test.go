package llmjson

import (
	"testing"

	"screen-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `  {"a":1} `, `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"no tag", "```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"same line", "```{\"a\":1}```", `{"a":1}`},
		{"trailing prose", "```json\n{\"a\":1}\n```\nLet me know if you need anything else.", `{"a":1}`},
		{"trailing prose with inline code", "```json\n{\"a\":\"x\"}\n```\nRun ```ls``` first.", `{"a":"x"}`},
		{"unterminated", "```json\n{\"a\":1}", `{"a":1}`},
		{"prose only", "A desktop with a terminal.", "A desktop with a terminal."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFence(tt.in))
		})
	}
}

func TestExtract_SurroundingProse(t *testing.T) {
	in := "Here is the plan:\n{\"goal\": \"x\", \"nested\": {\"k\": 1}}\nHope this helps."
	assert.Equal(t, `{"goal": "x", "nested": {"k": 1}}`, Extract(in))
}

func TestDecode(t *testing.T) {
	type doc struct {
		Elements []string `json:"elements"`
	}

	got, err := Decode[doc]("```json\n{\"elements\": [\"a\", \"b\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Elements)

	got, err = Decode[doc]("```json\n{\"elements\": [\"a\"]}\n```\nLet me know if you need anything else.")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.Elements)

	_, err = Decode[doc]("not json at all")
	require.ErrorIs(t, err, entity.ErrParse)

	var perr *entity.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "not json at all", perr.Snippet)

	_, err = Decode[doc]("   ")
	assert.ErrorIs(t, err, entity.ErrParse)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcd", 2))
	assert.Equal(t, "", Truncate("abcd", 0))
	assert.Equal(t, "ab...", Truncate("abé", 3), "does not split the two-byte é")
	assert.Equal(t, "日...", Truncate("日本語", 4))
}
