package reading

import "context"

// Gateway abstracts the four external generation capabilities the pipeline
// depends on. Every call is an asynchronous boundary and can fail
// independently; the orchestrator decides which failures are fatal.
type Gateway interface {
	// Transcribe extracts the dual-representation script from the
	// submission. Implementations MUST run an ordered strategy list: a
	// primary prompt, and on a content-policy rejection (ErrContentRejected,
	// not an ordinary failure) exactly one retry with a more conservative
	// strategy. Both exhausted means the returned error wraps
	// ErrTranscriptionFailed.
	Transcribe(ctx context.Context, input Input) (Transcript, error)

	// Solve produces solved sub-problems for the transcribed document.
	// Illustrations are attached per item only when the item substantively
	// needs a visual aid; purely numeric or prose-only answers never get one.
	Solve(ctx context.Context, displayScript string, input Input) ([]SolutionItem, error)

	// SuggestRelatedTopics proposes a small bounded set of follow-up topics.
	SuggestRelatedTopics(ctx context.Context, displayScript string) ([]RelatedTopic, error)

	// SynthesizeSpeech renders the reading-form script to audio.
	SynthesizeSpeech(ctx context.Context, readingScript string) (Audio, error)
}
