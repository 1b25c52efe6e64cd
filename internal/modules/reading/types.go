package reading

import "time"

// Input is one user submission: raw text, or the decoded bytes of an uploaded
// document plus its MIME type. Exactly the submitted content participates in
// fingerprinting; file names and other metadata never do.
type Input struct {
	Text        string
	FileContent []byte
	MIMEType    string
}

// IsEmpty reports whether the submission carries no content at all.
func (in Input) IsEmpty() bool {
	return in.Text == "" && len(in.FileContent) == 0
}

// ContentBytes returns the exact bytes that identify this submission.
func (in Input) ContentBytes() []byte {
	if len(in.FileContent) > 0 {
		return in.FileContent
	}
	return []byte(in.Text)
}

// Transcript is the dual-representation script extracted from a document:
// a display form (formulas as written) and a reading form normalized for
// speech synthesis ("2H2O" -> "two molecules of water").
type Transcript struct {
	DisplayScript string `json:"display_script"`
	ReadingScript string `json:"reading_script"`
}

// Audio is synthesized speech content.
type Audio struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Illustration is an optional visual aid attached to a solution item, either
// generated image bytes or vector markup.
type Illustration struct {
	MIMEType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data,omitempty"`
	SVG      string `json:"svg,omitempty"`
}

// IsEmpty reports whether the illustration carries no renderable content.
func (il Illustration) IsEmpty() bool {
	return len(il.Data) == 0 && il.SVG == ""
}

// SolutionItem is one solved sub-problem. Question and solution each carry a
// display form and a reading form.
type SolutionItem struct {
	Question        string        `json:"question"`
	QuestionReading string        `json:"question_reading"`
	Solution        string        `json:"solution"`
	SolutionReading string        `json:"solution_reading"`
	Illustration    *Illustration `json:"illustration,omitempty"`
}

// RelatedTopic is one suggested follow-up study topic.
type RelatedTopic struct {
	Title       string `json:"title"`
	SearchQuery string `json:"search_query"`
}

// ProcessingResult is the immutable unit of caching: everything generated for
// one submission.
type ProcessingResult struct {
	Script        string         `json:"script"`
	ReadingScript string         `json:"reading_script"`
	Audio         Audio          `json:"audio"`
	RelatedTopics []RelatedTopic `json:"related_topics"`
	Solutions     []SolutionItem `json:"solutions"`
}

// CachedRecord is the persisted envelope around a ProcessingResult. ID is
// always the fingerprint of the exact input that produced Data.
type CachedRecord struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Data      ProcessingResult `json:"data"`
}

// HistoryEntry is the display-oriented projection of a stored record.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
}

// Outcome is what a pipeline run yields to the caller.
type Outcome struct {
	Record      CachedRecord `json:"record"`
	WasCacheHit bool         `json:"was_cache_hit"`
	// Persisted is false when the result was generated but could not be
	// written to the store; the next identical submission regenerates.
	Persisted bool `json:"persisted"`
}
