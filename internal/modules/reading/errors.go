package reading

import "errors"

var (
	// ErrInputRejected marks an empty or otherwise unusable submission.
	ErrInputRejected = errors.New("input rejected")

	// ErrContentRejected is the distinguishable content-policy rejection a
	// gateway reports from a generation backend. It is what triggers the
	// single conservative retry during transcription; it is never surfaced
	// to callers on its own.
	ErrContentRejected = errors.New("content policy rejection")

	// ErrTranscriptionFailed means every transcription strategy was
	// exhausted. Fatal for the run.
	ErrTranscriptionFailed = errors.New("transcription failed")

	// ErrSynthesisFailed means speech synthesis failed. Fatal for the run:
	// a record is never stored without audio.
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// ErrStoreUnavailable wraps storage-layer failures. Non-fatal on read
	// (degrades to a cache miss); logged on write.
	ErrStoreUnavailable = errors.New("result store unavailable")

	// ErrMalformedRecord marks a stored payload that no longer decodes.
	// Such entries are treated as absent and purged.
	ErrMalformedRecord = errors.New("malformed cache record")
)
