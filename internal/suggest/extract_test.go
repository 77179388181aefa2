package suggest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_JSONArray(t *testing.T) {
	got := Extract(`  ["How do I book a session?", "Can I change my mentor?", "What are badges?"]  `, Conversation)
	assert.Equal(t, []string{"How do I book a session?", "Can I change my mentor?", "What are badges?"}, got)
}

func TestExtract_JSONArrayTooLong(t *testing.T) {
	got := Extract(`["A?","B?","C?","D?"]`, Conversation)
	assert.Equal(t, []string{"A?", "B?", "C?"}, got)
}

func TestExtract_PadsShortArrayWithoutDuplicates(t *testing.T) {
	got := Extract(`["Q1?","Q2?"]`, Conversation)

	require.Len(t, got, 3)
	assert.Equal(t, "Q1?", got[0])
	assert.Equal(t, "Q2?", got[1])
	assert.Contains(t, Fallback(Conversation), got[2])
}

func TestExtract_PadSkipsFallbackAlreadyPresent(t *testing.T) {
	pool := Fallback(Initial)
	got := Extract(`["`+pool[0]+`"]`, Initial)

	assert.Equal(t, []string{pool[0], pool[1], pool[2]}, got)
}

func TestExtract_MalformedJSONUsesFallback(t *testing.T) {
	got := Extract(`["unterminated, "oops"]`, Error)
	assert.Equal(t, Fallback(Error), got)
}

func TestExtract_NonStringArrayUsesFallback(t *testing.T) {
	got := Extract(`[1, 2, 3]`, Initial)
	assert.Equal(t, Fallback(Initial), got)
}

func TestExtract_QuotedSubstrings(t *testing.T) {
	raw := "Sure! Here you go:\n```json\n[\"How long is a session?\", \"Who can be a mentor?\", \"Is it free?\"]\n```"
	got := Extract(raw, Conversation)
	assert.Equal(t, []string{"How long is a session?", "Who can be a mentor?", "Is it free?"}, got)
}

func TestExtract_EnumeratedLines(t *testing.T) {
	raw := `Here are some ideas:
1. How do I message my mentor?
2) Can I have two mentors?
- This line is not a question
* What is a badge?
4. Where is my feedback?`

	got := Extract(raw, Conversation)
	assert.Equal(t, []string{"How do I message my mentor?", "Can I have two mentors?", "What is a badge?"}, got)
}

func TestExtract_DedupesCandidates(t *testing.T) {
	got := Extract(`["Same?", "Same?", " Same? "]`, Initial)

	require.Len(t, got, 3)
	assert.Equal(t, "Same?", got[0])
	assert.NotContains(t, got[1:], "Same?")
}

func TestExtract_AlwaysThreeNonEmpty(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"garbage without questions",
		"[",
		"]",
		"[]",
		`[""]`,
		`{"questions": ["a?"]}`,
		"\"\"",
		"???",
		strings.Repeat("x", 10000),
		"1.\n2.\n3.",
		"\x00\xff\xfe",
	}

	for _, kind := range []Kind{Initial, Conversation, Error, Kind("unknown")} {
		for _, in := range inputs {
			got := Extract(in, kind)
			require.Len(t, got, Count, "input %q kind %s", in, kind)
			for _, s := range got {
				assert.NotEmpty(t, strings.TrimSpace(s), "input %q kind %s", in, kind)
			}
		}
	}
}

func TestFallback_DistinctSets(t *testing.T) {
	assert.NotEqual(t, Fallback(Initial), Fallback(Conversation))
	assert.NotEqual(t, Fallback(Initial), Fallback(Error))
	assert.NotEqual(t, Fallback(Conversation), Fallback(Error))
}

func TestFallback_ReturnsCopy(t *testing.T) {
	a := Fallback(Initial)
	a[0] = "mutated"
	assert.NotEqual(t, "mutated", Fallback(Initial)[0])
}
