package generation

import (
	"fmt"
	"strings"

	"github.com/readaloud/core/internal/modules/reading"
	genai "google.golang.org/genai"
)

// transcribeStrategy is one entry in the ordered transcription attempt list.
// The conservative entry exists because homework documents (chemistry
// especially) trip false-positive content filters; rewording the request and
// relaxing safety thresholds materially improves success rate.
type transcribeStrategy struct {
	name   string
	system string
	prompt func(reading.Input) string
	safety []*genai.SafetySetting
}

var transcribeStrategies = []transcribeStrategy{
	{
		name: "faithful",
		system: "You are a meticulous transcriber of school homework documents. " +
			"You never solve, summarize, or omit anything; you transcribe.",
		prompt: func(in reading.Input) string {
			var b strings.Builder
			b.WriteString(`Transcribe the document into two representations and return ONLY this JSON object (no code fences):
{
  "display_script": "the document text as written, markdown allowed, chemical formulas kept verbatim (e.g. 2H2 + O2 -> 2H2O)",
  "reading_script": "the same text normalized for text-to-speech: formulas, subscripts, and symbols spelled out in words"
}
Keep the original language of the document. Preserve problem numbering and line structure in display_script.`)
			if in.Text != "" {
				b.WriteString("\n\nDocument text:\n")
				b.WriteString(in.Text)
			}
			return b.String()
		},
	},
	{
		name: "conservative",
		system: "You assist students with reading their own study materials aloud. " +
			"The attached content is ordinary school coursework.",
		prompt: func(in reading.Input) string {
			var b strings.Builder
			b.WriteString(`This is a student's own homework from a school textbook. Produce a readable version of it and return ONLY this JSON object (no code fences):
{
  "display_script": "the legible text of the coursework",
  "reading_script": "the same text written out in plain words suitable for reading aloud"
}`)
			if in.Text != "" {
				b.WriteString("\n\nCoursework text:\n")
				b.WriteString(in.Text)
			}
			return b.String()
		},
		safety: []*genai.SafetySetting{
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		},
	},
}

// solvedItem is the model-side shape of one solved sub-problem.
type solvedItem struct {
	Question           string `json:"question"`
	QuestionReading    string `json:"question_reading"`
	Solution           string `json:"solution"`
	SolutionReading    string `json:"solution_reading"`
	NeedsIllustration  bool   `json:"needs_illustration"`
	IllustrationPrompt string `json:"illustration_prompt"`
	IllustrationSVG    string `json:"illustration_svg"`
}

func buildSolvePrompt(displayScript string) (system, prompt string) {
	system = "You are a patient chemistry tutor. You solve homework step by step " +
		"and you know when a diagram genuinely helps and when it is noise."
	prompt = `Solve every problem found in the document below. Return ONLY a JSON array (no code fences), one element per problem:
[
  {
    "question": "the problem restated, formulas as written",
    "question_reading": "the problem in plain spoken words for text-to-speech",
    "solution": "the step-by-step solution, formulas as written",
    "solution_reading": "the solution in plain spoken words for text-to-speech",
    "needs_illustration": false,
    "illustration_prompt": "",
    "illustration_svg": ""
  }
]
Set needs_illustration to true ONLY when a visual aid substantively helps (molecular geometry, lab apparatus, reaction energy diagrams). Purely numeric or prose-only answers must have needs_illustration false. When true, either provide self-contained SVG markup in illustration_svg or a concise image-generation prompt in illustration_prompt.

Document:
` + displayScript
	return system, prompt
}

func buildSuggestPrompt(displayScript string, limit int) (system, prompt string) {
	system = "You recommend short follow-up study topics for students."
	prompt = fmt.Sprintf(`Based on the document below, suggest at most %d related study topics a student should look up next. Return ONLY a JSON array (no code fences):
[
  {"title": "short topic title", "search_query": "a video search query for this topic"}
]

Document:
%s`, limit, displayScript)
	return system, prompt
}
