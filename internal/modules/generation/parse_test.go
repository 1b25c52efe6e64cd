package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalModelJSONBare(t *testing.T) {
	var out map[string]string
	require.NoError(t, unmarshalModelJSON(`{"display_script":"hi"}`, &out))
	assert.Equal(t, "hi", out["display_script"])
}

func TestUnmarshalModelJSONStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"display_script\": \"fenced\"}\n```"
	var out map[string]string
	require.NoError(t, unmarshalModelJSON(raw, &out))
	assert.Equal(t, "fenced", out["display_script"])
}

func TestUnmarshalModelJSONExtractsFragmentFromProse(t *testing.T) {
	raw := `Sure! Here is the JSON you asked for:
{"title": "Stoichiometry", "search_query": "stoichiometry basics"}
Let me know if you need anything else.`
	var out map[string]string
	require.NoError(t, unmarshalModelJSON(raw, &out))
	assert.Equal(t, "Stoichiometry", out["title"])
}

func TestUnmarshalModelJSONArrayFragment(t *testing.T) {
	raw := `The answers are: [{"question": "Q1 {tricky} text"}] as requested.`
	var out []map[string]string
	require.NoError(t, unmarshalModelJSON(raw, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Q1 {tricky} text", out[0]["question"])
}

func TestUnmarshalModelJSONHandlesBracesInsideStrings(t *testing.T) {
	raw := `{"solution": "use } and { carefully", "question": "q"}`
	var out map[string]string
	require.NoError(t, unmarshalModelJSON("noise before "+raw, &out))
	assert.Equal(t, "use } and { carefully", out["solution"])
}

func TestUnmarshalModelJSONRejectsGarbage(t *testing.T) {
	var out map[string]string
	assert.Error(t, unmarshalModelJSON("no json here at all", &out))
	assert.Error(t, unmarshalModelJSON("{truncated", &out))
}

func TestParseTranscript(t *testing.T) {
	transcript, err := parseTranscript(`{"display_script": "2H2 + O2 -> 2H2O", "reading_script": "two H two plus O two"}`)
	require.NoError(t, err)
	assert.Equal(t, "2H2 + O2 -> 2H2O", transcript.DisplayScript)
	assert.Equal(t, "two H two plus O two", transcript.ReadingScript)
}

func TestParseTranscriptReadingFallsBackToDisplay(t *testing.T) {
	transcript, err := parseTranscript(`{"display_script": "plain text", "reading_script": ""}`)
	require.NoError(t, err)
	assert.Equal(t, "plain text", transcript.ReadingScript)
}

func TestParseTranscriptRequiresDisplayScript(t *testing.T) {
	_, err := parseTranscript(`{"display_script": "", "reading_script": "spoken"}`)
	assert.Error(t, err)
}
